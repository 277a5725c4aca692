package project

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// CreateProjectRequest is the payload for creating a project
type CreateProjectRequest struct {
	Name     string    `json:"name" validate:"required,min=1,max=200"`
	PresetID uuid.UUID `json:"preset_id" validate:"required"`
}

// UpdateProjectRequest is the payload for renaming a project or moving
// its status. Empty fields are left unchanged.
type UpdateProjectRequest struct {
	Name   string `json:"name" validate:"omitempty,min=1,max=200"`
	Status string `json:"status" validate:"omitempty,projectstatus"`
}

// SaveProgressRequest carries an auto-save snapshot. The document is
// stored as received, so the raw message is kept opaque here.
type SaveProgressRequest struct {
	Document   json.RawMessage `json:"document" validate:"required"`
	Thumbnails []string        `json:"thumbnails"`
	Timestamp  time.Time       `json:"timestamp" validate:"required"`
}

// SaveRequest carries a manual save.
type SaveRequest struct {
	Document   json.RawMessage `json:"document" validate:"required"`
	Thumbnails []string        `json:"thumbnails"`
}

// AddPageRequest inserts a page after the given index; -1 prepends.
type AddPageRequest struct {
	AfterIndex int `json:"after_index" validate:"min=-1"`
}

// ProjectResponse is the list/summary representation of a project
type ProjectResponse struct {
	ID             uuid.UUID      `json:"id"`
	Name           string         `json:"name"`
	Status         Status         `json:"status"`
	Preset         PresetSnapshot `json:"preset"`
	Thumbnails     []string       `json:"thumbnails,omitempty"`
	PDFKey         string         `json:"pdf_key,omitempty"`
	SavedAt        *time.Time     `json:"saved_at,omitempty"`
	PDFGeneratedAt *time.Time     `json:"pdf_generated_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// ProjectDetailResponse includes the full document
type ProjectDetailResponse struct {
	ProjectResponse
	Document *Document `json:"document"`
}

// ProgressResponse is the payload for loading editor state
type ProgressResponse struct {
	Document   *Document `json:"document"`
	Thumbnails []string  `json:"thumbnails,omitempty"`
}

// ProjectResponseFromEntity converts entity to response DTO
func ProjectResponseFromEntity(p *Project) ProjectResponse {
	return ProjectResponse{
		ID:             p.ID,
		Name:           p.Name,
		Status:         p.Status,
		Preset:         p.Preset,
		Thumbnails:     p.Thumbnails,
		PDFKey:         p.PDFKey,
		SavedAt:        p.SavedAt,
		PDFGeneratedAt: p.PDFGeneratedAt,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

// ProjectDetailFromEntity converts entity plus decoded document to the
// detail DTO
func ProjectDetailFromEntity(p *Project, doc *Document) ProjectDetailResponse {
	return ProjectDetailResponse{
		ProjectResponse: ProjectResponseFromEntity(p),
		Document:        doc,
	}
}
