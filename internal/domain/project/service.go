package project

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/bananalab/canvas-api/internal/pkg/logger"
)

// maxConcurrentMaterializations caps the per-save image decode/upload
// parallelism.
const maxConcurrentMaterializations = 4

// Materializer converts an embedded base64 data URI into a stored image
// asset, returning the asset's public URL. Implemented by the asset
// service.
type Materializer interface {
	MaterializeDataURI(ctx context.Context, projectID uuid.UUID, dataURI string) (string, error)
}

// PresetSource resolves a layout preset into the snapshot copied onto new
// projects. Implemented by the preset repository.
type PresetSource interface {
	Snapshot(ctx context.Context, presetID uuid.UUID) (*PresetSnapshot, error)
}

// Service handles project business logic
type Service struct {
	repo      Repository
	snapshots SnapshotStore
	images    Materializer
	presets   PresetSource
}

// NewService creates project service
func NewService(repo Repository, snapshots SnapshotStore, images Materializer, presets PresetSource) *Service {
	return &Service{
		repo:      repo,
		snapshots: snapshots,
		images:    images,
		presets:   presets,
	}
}

// Create starts a new project from a preset. The preset's physical fields
// are copied onto the project so later preset edits do not affect it. The
// document starts with one empty page: a project never has zero pages.
func (s *Service) Create(ctx context.Context, ownerID, presetID uuid.UUID, name string) (*Project, error) {
	snap, err := s.presets.Snapshot(ctx, presetID)
	if err != nil {
		return nil, err
	}

	doc := NewDocument(snap.BackgroundColor)
	now := time.Now()
	p := &Project{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Name:      name,
		Status:    StatusDraft,
		Preset:    *snap,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := p.SetDocument(doc); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Get returns a project by id, enforcing ownership.
func (s *Service) Get(ctx context.Context, ownerID, projectID uuid.UUID) (*Project, error) {
	p, err := s.repo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProjectNotFound
	}
	if p.OwnerID != ownerID {
		return nil, ErrNotProjectOwner
	}
	return p, nil
}

// ListByOwner returns all projects of an owner.
func (s *Service) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Project, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// UpdateMeta renames a project and/or moves its status.
func (s *Service) UpdateMeta(ctx context.Context, ownerID, projectID uuid.UUID, name string, status Status) (*Project, error) {
	p, err := s.Get(ctx, ownerID, projectID)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = p.Name
	}
	if status == "" {
		status = p.Status
	}
	if err := s.repo.UpdateMeta(ctx, projectID, name, status); err != nil {
		return nil, err
	}
	p.Name = name
	p.Status = status
	return p, nil
}

// Delete removes a project. Projects attached to an order are kept.
func (s *Service) Delete(ctx context.Context, ownerID, projectID uuid.UUID) error {
	p, err := s.Get(ctx, ownerID, projectID)
	if err != nil {
		return err
	}
	if p.IsOrdered() {
		return ErrProjectOrdered
	}
	_ = s.snapshots.Delete(ctx, projectID)
	return s.repo.Delete(ctx, projectID)
}

// SaveProgress stores an auto-save snapshot. The document is stored
// verbatim, embedded base64 data included; no image processing happens on
// this path so it is safe at high frequency. Last writer wins by
// timestamp: a snapshot older than the current state is dropped.
func (s *Service) SaveProgress(ctx context.Context, ownerID, projectID uuid.UUID, doc *Document, thumbnails []string, takenAt time.Time) error {
	p, err := s.Get(ctx, ownerID, projectID)
	if err != nil {
		return err
	}

	// A manual save with an equal-or-newer timestamp is authoritative.
	if p.SavedAt != nil && !takenAt.After(*p.SavedAt) {
		logger.LogInfo(ctx, "Auto-save dropped, older than last manual save",
			"project_id", projectID.String())
		return nil
	}

	if existing, err := s.snapshots.Get(ctx, projectID); err == nil && existing != nil {
		if !takenAt.After(existing.Timestamp) {
			return nil // stale snapshot, keep the newer one
		}
	}

	data, err := doc.Encode()
	if err != nil {
		return err
	}
	return s.snapshots.Put(ctx, projectID, &Snapshot{
		Document:   data,
		Thumbnails: thumbnails,
		Timestamp:  takenAt,
	})
}

// LoadProgress returns the most recent state of the design: the auto-save
// snapshot when it is newer than the last manual save, the persisted
// document otherwise.
func (s *Service) LoadProgress(ctx context.Context, ownerID, projectID uuid.UUID) (*Document, []string, error) {
	p, err := s.Get(ctx, ownerID, projectID)
	if err != nil {
		return nil, nil, err
	}

	if snap, err := s.snapshots.Get(ctx, projectID); err == nil && snap != nil {
		if p.SavedAt == nil || snap.Timestamp.After(*p.SavedAt) {
			doc, err := DecodeDocument(snap.Document)
			if err == nil {
				return doc, snap.Thumbnails, nil
			}
			logger.LogWarn(ctx, "Corrupt auto-save snapshot, falling back to manual save",
				"project_id", projectID.String())
		}
	}

	doc, err := p.Document()
	if err != nil {
		return nil, nil, err
	}
	return doc, p.Thumbnails, nil
}

// SaveResult reports the outcome of a manual save.
type SaveResult struct {
	Document *Document `json:"document"`
	// FailedElements lists ids of image elements whose materialization
	// failed; they keep their base64 content and carry an uploadError
	// marker for retry.
	FailedElements []string  `json:"failed_elements,omitempty"`
	SavedAt        time.Time `json:"saved_at"`
}

// Save is the authoritative manual save: every image element still
// carrying a base64 data URI is materialized into a stored asset and its
// content rewritten to the asset URL. Materializations run in parallel,
// one failure never aborts the save; the failed element keeps its
// original content and is marked for retry. Saves are serialized per
// project.
func (s *Service) Save(ctx context.Context, ownerID, projectID uuid.UUID, doc *Document, thumbnails []string) (*SaveResult, error) {
	if _, err := s.Get(ctx, ownerID, projectID); err != nil {
		return nil, err
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	ok, err := s.snapshots.AcquireLock(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrSaveInProgress
	}
	defer func() {
		_ = s.snapshots.ReleaseLock(context.WithoutCancel(ctx), projectID)
	}()

	var (
		mu     sync.Mutex
		failed []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentMaterializations)

	for pi := range doc.Pages {
		for ci := range doc.Pages[pi].Cells {
			for ei := range doc.Pages[pi].Cells[ci].Elements {
				el := &doc.Pages[pi].Cells[ci].Elements[ei]
				if !el.HasDataURI() {
					continue
				}
				g.Go(func() error {
					url, err := s.images.MaterializeDataURI(gctx, projectID, el.Content)
					if err != nil {
						// Per-element fallback: keep the base64
						// content, flag for retry, never fail the save.
						logger.LogWarn(gctx, "Image materialization failed",
							"project_id", projectID.String(),
							"element_id", el.ID,
							"error", err.Error())
						mu.Lock()
						el.UploadError = err.Error()
						failed = append(failed, el.ID)
						mu.Unlock()
						return nil
					}
					mu.Lock()
					el.Content = url
					el.UploadError = ""
					mu.Unlock()
					return nil
				})
			}
		}
	}

	// All materializations must have been attempted before the save
	// returns; partial results are fine, a half-attempted save is not.
	if err := g.Wait(); err != nil {
		return nil, err
	}

	data, err := doc.Encode()
	if err != nil {
		return nil, err
	}

	var thumbData []byte
	if len(thumbnails) > 0 {
		thumbData, err = json.Marshal(thumbnails)
		if err != nil {
			return nil, err
		}
	}

	savedAt := time.Now()
	if err := s.repo.UpdateDocument(ctx, projectID, data, thumbData, savedAt); err != nil {
		return nil, err
	}

	// The finalized document supersedes any auto-save snapshot.
	_ = s.snapshots.Delete(ctx, projectID)

	return &SaveResult{
		Document:       doc,
		FailedElements: failed,
		SavedAt:        savedAt,
	}, nil
}

// ReferencedImageURLs returns the image URLs the latest document state
// still points at, auto-saved edits included. Asset cleanup uses this to
// decide which stored images are safe to reap.
func (s *Service) ReferencedImageURLs(ctx context.Context, ownerID, projectID uuid.UUID) ([]string, error) {
	doc, _, err := s.LoadProgress(ctx, ownerID, projectID)
	if err != nil {
		return nil, err
	}
	return doc.ImageURLs(), nil
}

// mutate loads the latest document state, applies fn and stores the result
// as an auto-save snapshot.
func (s *Service) mutate(ctx context.Context, ownerID, projectID uuid.UUID, fn func(p *Project, doc *Document) error) (*Document, error) {
	p, err := s.Get(ctx, ownerID, projectID)
	if err != nil {
		return nil, err
	}
	doc, _, err := s.LoadProgress(ctx, ownerID, projectID)
	if err != nil {
		return nil, err
	}
	if err := fn(p, doc); err != nil {
		return nil, err
	}
	data, err := doc.Encode()
	if err != nil {
		return nil, err
	}
	if err := s.snapshots.Put(ctx, projectID, &Snapshot{Document: data, Timestamp: time.Now()}); err != nil {
		return nil, err
	}
	return doc, nil
}

// AddPage inserts an empty page after afterIndex.
func (s *Service) AddPage(ctx context.Context, ownerID, projectID uuid.UUID, afterIndex int) (*Document, error) {
	return s.mutate(ctx, ownerID, projectID, func(p *Project, doc *Document) error {
		_, err := doc.AddPage(afterIndex, p.Preset.PageCount, p.Preset.BackgroundColor)
		return err
	})
}

// DuplicatePage clones the page at index.
func (s *Service) DuplicatePage(ctx context.Context, ownerID, projectID uuid.UUID, index int) (*Document, error) {
	return s.mutate(ctx, ownerID, projectID, func(p *Project, doc *Document) error {
		_, err := doc.DuplicatePage(index, p.Preset.PageCount)
		return err
	})
}

// DeletePage removes the page at index.
func (s *Service) DeletePage(ctx context.Context, ownerID, projectID uuid.UUID, index int) (*Document, error) {
	return s.mutate(ctx, ownerID, projectID, func(_ *Project, doc *Document) error {
		return doc.DeletePage(index)
	})
}
