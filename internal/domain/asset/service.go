package asset

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bananalab/canvas-api/internal/pkg/imaging"
	"github.com/bananalab/canvas-api/internal/pkg/logger"
	"github.com/bananalab/canvas-api/internal/pkg/storage"
)

// MaxUploadBytes is the upload size cap, decoded.
const MaxUploadBytes = 20 << 20

// DocumentImages resolves the image URLs currently referenced by a
// project's design document. Implemented by the project service.
type DocumentImages interface {
	ReferencedImageURLs(ctx context.Context, ownerID, projectID uuid.UUID) ([]string, error)
}

// Service handles image asset logic
type Service struct {
	repo      Repository
	store     storage.Storage
	processor *imaging.Processor
	documents DocumentImages
}

// NewService creates asset service
func NewService(repo Repository, store storage.Storage, processor *imaging.Processor, documents DocumentImages) *Service {
	return &Service{
		repo:      repo,
		store:     store,
		processor: processor,
		documents: documents,
	}
}

// Upload processes and stores an uploaded image: the original is capped to
// print resolution and a 150x150 cover-fit thumbnail is generated.
func (s *Service) Upload(ctx context.Context, ownerID, projectID uuid.UUID, reader io.Reader) (*Asset, error) {
	limited := io.LimitReader(reader, MaxUploadBytes+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, err
	}
	if len(data) > MaxUploadBytes {
		return nil, ErrFileTooLarge
	}
	return s.ingest(ctx, ownerID, projectID, data)
}

// MaterializeDataURI decodes an embedded base64 image and stores it as a
// regular asset, returning the asset URL. Used by manual save to replace
// data URIs in the design document.
func (s *Service) MaterializeDataURI(ctx context.Context, projectID uuid.UUID, dataURI string) (string, error) {
	data, err := decodeDataURI(dataURI)
	if err != nil {
		return "", err
	}
	if len(data) > MaxUploadBytes {
		return "", ErrFileTooLarge
	}

	a, err := s.ingest(ctx, uuid.Nil, projectID, data)
	if err != nil {
		return "", err
	}
	return a.URL, nil
}

func (s *Service) ingest(ctx context.Context, ownerID, projectID uuid.UUID, data []byte) (*Asset, error) {
	processed, err := s.processor.Process(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedType, err)
	}

	id := uuid.New()
	ext := imaging.ExtensionForMime(processed.ContentType)
	key := fmt.Sprintf("projects/%s/images/%s%s", projectID, id, ext)
	thumbKey := fmt.Sprintf("projects/%s/images/%s_thumb.jpg", projectID, id)

	if err := s.store.Put(ctx, key, bytes.NewReader(processed.Original), processed.ContentType); err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}
	if err := s.store.Put(ctx, thumbKey, bytes.NewReader(processed.Thumbnail), "image/jpeg"); err != nil {
		_ = s.store.Delete(ctx, key)
		return nil, fmt.Errorf("failed to store thumbnail: %w", err)
	}

	a := &Asset{
		ID:          id,
		ProjectID:   projectID,
		OwnerID:     ownerID,
		Key:         key,
		ThumbKey:    thumbKey,
		URL:         s.store.GetURL(key),
		ThumbURL:    s.store.GetURL(thumbKey),
		ContentType: processed.ContentType,
		Width:       processed.Width,
		Height:      processed.Height,
		SizeBytes:   int64(len(processed.Original)),
		CreatedAt:   time.Now(),
	}

	if err := s.repo.Create(ctx, a); err != nil {
		_ = s.store.Delete(ctx, key)
		_ = s.store.Delete(ctx, thumbKey)
		return nil, err
	}
	return a, nil
}

// ListByProject returns all assets of a project.
func (s *Service) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*Asset, error) {
	return s.repo.ListByProject(ctx, projectID)
}

// Delete removes an asset and its stored files.
func (s *Service) Delete(ctx context.Context, ownerID, assetID uuid.UUID) error {
	a, err := s.repo.GetByID(ctx, assetID)
	if err != nil {
		return err
	}
	if a == nil {
		return ErrAssetNotFound
	}
	if a.OwnerID != uuid.Nil && a.OwnerID != ownerID {
		return ErrNotAssetOwner
	}

	if err := s.repo.Delete(ctx, assetID); err != nil {
		return err
	}
	_ = s.store.Delete(ctx, a.Key)
	_ = s.store.Delete(ctx, a.ThumbKey)
	return nil
}

// CleanupUnused deletes assets no longer referenced by the project's
// design document. Returns the number of assets removed.
func (s *Service) CleanupUnused(ctx context.Context, ownerID, projectID uuid.UUID) (int, error) {
	referenced, err := s.documents.ReferencedImageURLs(ctx, ownerID, projectID)
	if err != nil {
		return 0, err
	}
	inUse := make(map[string]bool, len(referenced))
	for _, u := range referenced {
		inUse[u] = true
	}

	assets, err := s.repo.ListByProject(ctx, projectID)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, a := range assets {
		if inUse[a.URL] {
			continue
		}
		if err := s.repo.Delete(ctx, a.ID); err != nil {
			logger.LogWarn(ctx, "Failed to delete unused asset",
				"asset_id", a.ID.String(), "error", err.Error())
			continue
		}
		_ = s.store.Delete(ctx, a.Key)
		_ = s.store.Delete(ctx, a.ThumbKey)
		removed++
	}
	return removed, nil
}

// decodeDataURI parses "data:image/<fmt>;base64,<payload>". Only base64
// image payloads are accepted.
func decodeDataURI(uri string) ([]byte, error) {
	if !strings.HasPrefix(uri, "data:image/") {
		return nil, ErrInvalidDataURI
	}
	idx := strings.Index(uri, ",")
	if idx < 0 || !strings.HasSuffix(uri[:idx], ";base64") {
		return nil, ErrInvalidDataURI
	}
	data, err := base64.StdEncoding.DecodeString(uri[idx+1:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}
	return data, nil
}
