package preset

import (
	"context"

	"github.com/google/uuid"

	"github.com/bananalab/canvas-api/internal/domain/project"
)

// Service handles preset business logic
type Service struct {
	repo Repository
}

// NewService creates preset service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns all active presets, optionally filtered by product type.
func (s *Service) List(ctx context.Context, productType ProductType) ([]*Preset, error) {
	if productType != "" {
		return s.repo.ListByProductType(ctx, productType)
	}
	return s.repo.ListActive(ctx)
}

// Get returns one preset by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Preset, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrPresetNotFound
	}
	return p, nil
}

// Snapshot resolves a preset into the frozen product parameters copied
// onto a new project. Inactive presets cannot start new projects.
func (s *Service) Snapshot(ctx context.Context, presetID uuid.UUID) (*project.PresetSnapshot, error) {
	p, err := s.Get(ctx, presetID)
	if err != nil {
		return nil, err
	}
	if !p.Active {
		return nil, ErrPresetInactive
	}
	return &project.PresetSnapshot{
		PresetID:        p.ID,
		WidthCm:         p.WidthCm,
		HeightCm:        p.HeightCm,
		DPI:             p.DPI,
		PageCount:       p.PageCount,
		BackgroundColor: p.BackgroundColor,
		ProductType:     string(p.ProductType),
	}, nil
}
