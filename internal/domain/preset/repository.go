package preset

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines preset data access
type Repository interface {
	Create(ctx context.Context, p *Preset) error
	GetByID(ctx context.Context, id uuid.UUID) (*Preset, error)
	ListActive(ctx context.Context) ([]*Preset, error)
	ListByProductType(ctx context.Context, productType ProductType) ([]*Preset, error)
	Update(ctx context.Context, p *Preset) error
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates preset repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, p *Preset) error {
	query := `
		INSERT INTO presets (id, name, product_type, width_cm, height_cm, dpi,
			page_count, background_color, sort_order, active, created_at, updated_at)
		VALUES (:id, :name, :product_type, :width_cm, :height_cm, :dpi,
			:page_count, :background_color, :sort_order, :active, :created_at, :updated_at)`
	_, err := r.db.NamedExecContext(ctx, query, p)
	return err
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Preset, error) {
	var p Preset
	err := r.db.GetContext(ctx, &p, `SELECT * FROM presets WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) ListActive(ctx context.Context) ([]*Preset, error) {
	var presets []*Preset
	err := r.db.SelectContext(ctx, &presets,
		`SELECT * FROM presets WHERE active = true ORDER BY product_type, sort_order`)
	return presets, err
}

func (r *repository) ListByProductType(ctx context.Context, productType ProductType) ([]*Preset, error) {
	var presets []*Preset
	err := r.db.SelectContext(ctx, &presets,
		`SELECT * FROM presets WHERE active = true AND product_type = $1 ORDER BY sort_order`,
		productType)
	return presets, err
}

func (r *repository) Update(ctx context.Context, p *Preset) error {
	query := `
		UPDATE presets SET name = :name, product_type = :product_type,
			width_cm = :width_cm, height_cm = :height_cm, dpi = :dpi,
			page_count = :page_count, background_color = :background_color,
			sort_order = :sort_order, active = :active, updated_at = NOW()
		WHERE id = :id`
	_, err := r.db.NamedExecContext(ctx, query, p)
	return err
}
