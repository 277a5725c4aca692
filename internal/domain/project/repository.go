package project

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines project data access interface
type Repository interface {
	Create(ctx context.Context, project *Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*Project, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Project, error)
	UpdateMeta(ctx context.Context, id uuid.UUID, name string, status Status) error
	UpdateDocument(ctx context.Context, id uuid.UUID, document []byte, thumbnails []byte, savedAt time.Time) error
	UpdateArtifact(ctx context.Context, id uuid.UUID, pdfKey string, generatedAt time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates new project repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, project *Project) error {
	if err := project.marshalSidecars(); err != nil {
		return err
	}
	query := `
		INSERT INTO projects (id, owner_id, name, status, preset, document, thumbnails, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		project.ID,
		project.OwnerID,
		project.Name,
		project.Status,
		project.PresetRaw,
		project.DocumentRaw,
		project.ThumbnailRaw,
		project.CreatedAt,
		project.UpdatedAt,
	)
	return err
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Project, error) {
	query := `SELECT * FROM projects WHERE id = $1`
	var project Project
	err := r.db.GetContext(ctx, &project, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := project.unmarshalSidecars(); err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *repository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Project, error) {
	query := `SELECT * FROM projects WHERE owner_id = $1 ORDER BY updated_at DESC`
	var projects []*Project
	if err := r.db.SelectContext(ctx, &projects, query, ownerID); err != nil {
		return nil, err
	}
	for _, p := range projects {
		if err := p.unmarshalSidecars(); err != nil {
			return nil, err
		}
	}
	return projects, nil
}

func (r *repository) UpdateMeta(ctx context.Context, id uuid.UUID, name string, status Status) error {
	query := `UPDATE projects SET name = $2, status = $3, updated_at = $4 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, name, status, time.Now())
	return err
}

func (r *repository) UpdateDocument(ctx context.Context, id uuid.UUID, document []byte, thumbnails []byte, savedAt time.Time) error {
	query := `UPDATE projects SET document = $2, thumbnails = $3, saved_at = $4, updated_at = $4 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, document, thumbnails, savedAt)
	return err
}

func (r *repository) UpdateArtifact(ctx context.Context, id uuid.UUID, pdfKey string, generatedAt time.Time) error {
	query := `UPDATE projects SET pdf_key = $2, pdf_generated_at = $3, status = $4, updated_at = $3 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, pdfKey, generatedAt, StatusExported)
	return err
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM projects WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
