package asset

import (
	"time"

	"github.com/google/uuid"
)

// Asset is one uploaded or materialized image tied to a project. The
// original and its 150x150 preview thumbnail are stored separately.
type Asset struct {
	ID        uuid.UUID `db:"id" json:"id"`
	ProjectID uuid.UUID `db:"project_id" json:"project_id"`
	OwnerID   uuid.UUID `db:"owner_id" json:"owner_id"`

	Key      string `db:"key" json:"-"`
	ThumbKey string `db:"thumb_key" json:"-"`
	URL      string `db:"url" json:"url"`
	ThumbURL string `db:"thumb_url" json:"thumb_url"`

	ContentType string `db:"content_type" json:"content_type"`
	Width       int    `db:"width" json:"width"`
	Height      int    `db:"height" json:"height"`
	SizeBytes   int64  `db:"size_bytes" json:"size_bytes"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
