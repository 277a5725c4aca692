package project

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Status is the project lifecycle status
type Status string

const (
	StatusDraft     Status = "draft"
	StatusCompleted Status = "completed"
	StatusExported  Status = "exported"
	StatusOrdered   Status = "ordered"
)

// PresetSnapshot is the physical product definition copied from a
// LayoutPreset when the project is created, so later preset edits cannot
// change an existing design's dimensions.
type PresetSnapshot struct {
	PresetID        uuid.UUID `json:"presetId"`
	WidthCm         float64   `json:"widthCm"`
	HeightCm        float64   `json:"heightCm"`
	DPI             float64   `json:"dpi"`
	PageCount       int       `json:"pageCount"` // page cap, 0 = unlimited
	BackgroundColor string    `json:"backgroundColor"`
	ProductType     string    `json:"productType"`
}

// Project is the aggregate root: a customer's design plus its physical
// product parameters and export artifacts.
type Project struct {
	ID      uuid.UUID `db:"id" json:"id"`
	OwnerID uuid.UUID `db:"owner_id" json:"owner_id"`
	Name    string    `db:"name" json:"name"`
	Status  Status    `db:"status" json:"status"`

	// Preset is the physical-product snapshot, stored as JSONB.
	Preset PresetSnapshot `db:"-" json:"preset"`
	// PresetRaw is the DB representation of Preset.
	PresetRaw []byte `db:"preset" json:"-"`

	// DocumentRaw is the design document JSON as persisted by the last
	// manual save (JSONB column).
	DocumentRaw []byte `db:"document" json:"-"`

	// Thumbnails are page preview URLs in page order (JSONB).
	Thumbnails   []string `db:"-" json:"thumbnails"`
	ThumbnailRaw []byte   `db:"thumbnails" json:"-"`

	// Export artifact
	PDFKey         string     `db:"pdf_key" json:"pdf_key,omitempty"`
	PDFGeneratedAt *time.Time `db:"pdf_generated_at" json:"pdf_generated_at,omitempty"`

	SavedAt   *time.Time `db:"saved_at" json:"saved_at,omitempty"` // last manual save
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// Document decodes the persisted design document.
func (p *Project) Document() (*Document, error) {
	return DecodeDocument(p.DocumentRaw)
}

// SetDocument encodes and stores the design document.
func (p *Project) SetDocument(doc *Document) error {
	data, err := doc.Encode()
	if err != nil {
		return err
	}
	p.DocumentRaw = data
	return nil
}

// IsOrdered reports whether the project is attached to a purchase.
func (p *Project) IsOrdered() bool {
	return p.Status == StatusOrdered
}

// marshalSidecars prepares the JSONB columns before writing.
func (p *Project) marshalSidecars() error {
	preset, err := json.Marshal(p.Preset)
	if err != nil {
		return err
	}
	p.PresetRaw = preset

	thumbs := p.Thumbnails
	if thumbs == nil {
		thumbs = []string{}
	}
	tb, err := json.Marshal(thumbs)
	if err != nil {
		return err
	}
	p.ThumbnailRaw = tb
	return nil
}

// unmarshalSidecars rehydrates the JSONB columns after reading.
func (p *Project) unmarshalSidecars() error {
	if len(p.PresetRaw) > 0 {
		if err := json.Unmarshal(p.PresetRaw, &p.Preset); err != nil {
			return err
		}
	}
	if len(p.ThumbnailRaw) > 0 {
		if err := json.Unmarshal(p.ThumbnailRaw, &p.Thumbnails); err != nil {
			return err
		}
	}
	return nil
}
