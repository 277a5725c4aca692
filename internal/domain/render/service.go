package render

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/bananalab/canvas-api/internal/domain/project"
	"github.com/bananalab/canvas-api/internal/pkg/logger"
	"github.com/bananalab/canvas-api/internal/pkg/storage"
)

// wakeChannel is the Redis pub/sub channel the worker listens on so a
// queued export starts without waiting for the next poll.
const wakeChannel = "exports:queued"

// ProjectSource loads a project with ownership enforced. Implemented by
// the project service.
type ProjectSource interface {
	Get(ctx context.Context, ownerID, projectID uuid.UUID) (*project.Project, error)
}

// ArtifactStore records the generated PDF on the project. Implemented by
// the project repository.
type ArtifactStore interface {
	UpdateArtifact(ctx context.Context, id uuid.UUID, pdfKey string, generatedAt time.Time) error
}

// ExportResult is the outcome of a synchronous export.
type ExportResult struct {
	PDFKey      string    `json:"pdf_key"`
	PDFURL      string    `json:"pdf_url"`
	PageCount   int       `json:"page_count"`
	Warnings    []string  `json:"warnings,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Service handles PDF export logic
type Service struct {
	projects  ProjectSource
	artifacts ArtifactStore
	jobs      JobRepository
	store     storage.Storage
	renderer  *PDFRenderer
	rdb       *redis.Client
}

// NewService creates render service. rdb may be nil; the worker then
// relies on polling alone.
func NewService(projects ProjectSource, artifacts ArtifactStore, jobs JobRepository, store storage.Storage, renderer *PDFRenderer, rdb *redis.Client) *Service {
	return &Service{
		projects:  projects,
		artifacts: artifacts,
		jobs:      jobs,
		store:     store,
		renderer:  renderer,
		rdb:       rdb,
	}
}

// Export renders the project's saved document to a PDF, stores it and
// records it on the project. Degraded renders succeed with warnings.
func (s *Service) Export(ctx context.Context, ownerID, projectID uuid.UUID) (*ExportResult, error) {
	p, err := s.projects.Get(ctx, ownerID, projectID)
	if err != nil {
		return nil, err
	}
	if len(p.DocumentRaw) == 0 {
		return nil, ErrEmptyProject
	}
	doc, err := p.Document()
	if err != nil {
		return nil, err
	}

	plan := Compose(doc, p.Preset)

	var buf bytes.Buffer
	warnings, err := s.renderer.Render(ctx, plan, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}

	now := time.Now()
	key := fmt.Sprintf("projects/%s/export/%s.pdf", projectID, now.UTC().Format("20060102-150405"))
	if err := s.store.Put(ctx, key, bytes.NewReader(buf.Bytes()), "application/pdf"); err != nil {
		return nil, fmt.Errorf("failed to store pdf: %w", err)
	}

	if err := s.artifacts.UpdateArtifact(ctx, projectID, key, now); err != nil {
		return nil, err
	}

	return &ExportResult{
		PDFKey:      key,
		PDFURL:      s.store.GetURL(key),
		PageCount:   len(plan.Pages),
		Warnings:    warnings,
		GeneratedAt: now,
	}, nil
}

// EnqueueExport queues the export for the render worker and wakes it.
func (s *Service) EnqueueExport(ctx context.Context, ownerID, projectID uuid.UUID) (*ExportJob, error) {
	if _, err := s.projects.Get(ctx, ownerID, projectID); err != nil {
		return nil, err
	}

	now := time.Now()
	job := &ExportJob{
		ID:        uuid.New(),
		ProjectID: projectID,
		OwnerID:   ownerID,
		Status:    JobPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, err
	}

	if s.rdb != nil {
		if err := s.rdb.Publish(ctx, wakeChannel, job.ID.String()).Err(); err != nil {
			logger.LogWarn(ctx, "Failed to publish export wake-up", "error", err.Error())
		}
	}
	return job, nil
}

// GetJob returns an export job, enforcing ownership.
func (s *Service) GetJob(ctx context.Context, ownerID, jobID uuid.UUID) (*ExportJob, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, ErrJobNotFound
	}
	if job.OwnerID != ownerID {
		return nil, ErrNotJobOwner
	}
	if job.PDFKey != "" {
		job.PDFURL = s.store.GetURL(job.PDFKey)
	}
	return job, nil
}

// ProcessNext claims and runs one queued export. Returns false when the
// queue is empty.
func (s *Service) ProcessNext(ctx context.Context) bool {
	job, ok, err := s.jobs.ClaimNext(ctx)
	if err != nil {
		logger.LogError(ctx, err, "Failed to claim export job")
		return false
	}
	if !ok {
		return false
	}

	start := time.Now()
	result, err := s.Export(ctx, job.OwnerID, job.ProjectID)
	if err != nil {
		logger.LogError(ctx, err, "Export job failed", "job_id", job.ID.String())
		if err2 := s.jobs.MarkFailed(ctx, job.ID, err.Error()); err2 != nil {
			logger.LogError(ctx, err2, "Failed to mark export job failed", "job_id", job.ID.String())
		}
		return true
	}

	if err := s.jobs.MarkDone(ctx, job.ID, result.PDFKey); err != nil {
		logger.LogError(ctx, err, "Failed to mark export job done", "job_id", job.ID.String())
		return true
	}

	logger.LogInfo(ctx, "Export job done",
		"job_id", job.ID.String(),
		"project_id", job.ProjectID.String(),
		"pages", result.PageCount,
		"took", time.Since(start).String())
	return true
}

// SubscribeWakeups forwards queue notifications to wake. Polling remains
// the primary mechanism; this only cuts latency.
func (s *Service) SubscribeWakeups(ctx context.Context, wake chan<- struct{}) {
	if s.rdb == nil {
		return
	}
	sub := s.rdb.Subscribe(ctx, wakeChannel)
	defer func() { _ = sub.Close() }()

	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.Channel():
			select {
			case wake <- struct{}{}:
			default:
			}
		}
	}
}
