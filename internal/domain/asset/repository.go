package asset

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines asset data access
type Repository interface {
	Create(ctx context.Context, a *Asset) error
	GetByID(ctx context.Context, id uuid.UUID) (*Asset, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*Asset, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates asset repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, a *Asset) error {
	query := `
		INSERT INTO assets (id, project_id, owner_id, key, thumb_key, url, thumb_url,
			content_type, width, height, size_bytes, created_at)
		VALUES (:id, :project_id, :owner_id, :key, :thumb_key, :url, :thumb_url,
			:content_type, :width, :height, :size_bytes, :created_at)`
	_, err := r.db.NamedExecContext(ctx, query, a)
	return err
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Asset, error) {
	var a Asset
	err := r.db.GetContext(ctx, &a, `SELECT * FROM assets WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*Asset, error) {
	var assets []*Asset
	err := r.db.SelectContext(ctx, &assets,
		`SELECT * FROM assets WHERE project_id = $1 ORDER BY created_at DESC`, projectID)
	return assets, err
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM assets WHERE id = $1`, id)
	return err
}
