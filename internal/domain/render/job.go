package render

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// JobStatus is the export job lifecycle
type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobDone       JobStatus = "done"
	JobFailed     JobStatus = "failed"
)

// maxJobAttempts bounds retries before a job stays failed.
const maxJobAttempts = 3

// ExportJob is one queued PDF export, processed by the render worker.
type ExportJob struct {
	ID        uuid.UUID `db:"id" json:"id"`
	ProjectID uuid.UUID `db:"project_id" json:"project_id"`
	OwnerID   uuid.UUID `db:"owner_id" json:"owner_id"`
	Status    JobStatus `db:"status" json:"status"`
	PDFKey    string    `db:"pdf_key" json:"pdf_key,omitempty"`
	PDFURL    string    `db:"-" json:"pdf_url,omitempty"`
	Error     string    `db:"error" json:"error,omitempty"`
	Attempts  int       `db:"attempts" json:"attempts"`

	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at,omitempty"`
}

// JobRepository defines export job data access
type JobRepository interface {
	Create(ctx context.Context, job *ExportJob) error
	GetByID(ctx context.Context, id uuid.UUID) (*ExportJob, error)
	ClaimNext(ctx context.Context) (*ExportJob, bool, error)
	MarkDone(ctx context.Context, id uuid.UUID, pdfKey string) error
	MarkFailed(ctx context.Context, id uuid.UUID, msg string) error
}

type jobRepository struct {
	db *sqlx.DB
}

// NewJobRepository creates export job repository
func NewJobRepository(db *sqlx.DB) JobRepository {
	return &jobRepository{db: db}
}

func (r *jobRepository) Create(ctx context.Context, job *ExportJob) error {
	query := `
		INSERT INTO export_jobs (id, project_id, owner_id, status, pdf_key, error,
			attempts, created_at, updated_at)
		VALUES (:id, :project_id, :owner_id, :status, :pdf_key, :error,
			:attempts, :created_at, :updated_at)`
	_, err := r.db.NamedExecContext(ctx, query, job)
	return err
}

func (r *jobRepository) GetByID(ctx context.Context, id uuid.UUID) (*ExportJob, error) {
	var job ExportJob
	err := r.db.GetContext(ctx, &job, `SELECT * FROM export_jobs WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// ClaimNext picks the oldest claimable job and marks it processing. The
// claim is a conditional update so concurrent workers never process the
// same job twice.
func (r *jobRepository) ClaimNext(ctx context.Context) (*ExportJob, bool, error) {
	var job ExportJob
	err := r.db.GetContext(ctx, &job, `
		SELECT * FROM export_jobs
		WHERE status IN ('pending', 'failed')
		  AND attempts < $1
		ORDER BY created_at ASC
		LIMIT 1`, maxJobAttempts)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE export_jobs
		SET status = 'processing', attempts = attempts + 1, error = '', updated_at = NOW()
		WHERE id = $1
		  AND status IN ('pending', 'failed')
		  AND attempts < $2`, job.ID, maxJobAttempts)
	if err != nil {
		return nil, false, err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return nil, false, nil
	}
	return &job, true, nil
}

func (r *jobRepository) MarkDone(ctx context.Context, id uuid.UUID, pdfKey string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE export_jobs
		SET status = 'done', pdf_key = $2, error = '', completed_at = NOW(), updated_at = NOW()
		WHERE id = $1`, id, pdfKey)
	return err
}

func (r *jobRepository) MarkFailed(ctx context.Context, id uuid.UUID, msg string) error {
	if len(msg) > 2000 {
		msg = msg[:2000]
	}
	_, err := r.db.ExecContext(ctx, `
		UPDATE export_jobs
		SET status = 'failed', error = $2, updated_at = NOW()
		WHERE id = $1`, id, msg)
	return err
}
