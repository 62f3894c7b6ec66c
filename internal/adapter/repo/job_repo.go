package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/juliusiqbal/ai-img-gen/internal/domain"
	"github.com/juliusiqbal/ai-img-gen/internal/infra"
	"github.com/juliusiqbal/ai-img-gen/internal/sqlinline"
)

// JobRepositoryPG implements domain.JobRepository.
type JobRepositoryPG struct {
	db infra.SQLExecutor
}

// NewJobRepository creates a job repository backed by PostgreSQL.
func NewJobRepository(db infra.SQLExecutor) *JobRepositoryPG {
	return &JobRepositoryPG{db: db}
}

// Create inserts a new job record.
func (r *JobRepositoryPG) Create(ctx context.Context, job *domain.GenerationJob) error {
	if job.Status == "" {
		job.Status = domain.JobStatusProcessing
	}
	err := r.db.QueryRow(ctx, sqlinline.QInsertGenerationJob,
		job.CategoryID,
		string(job.Status),
		nullableBytes(job.RequestData),
		job.ErrorMessage,
	).Scan(&job.ID, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert generation job: %w", err)
	}
	return nil
}

// UpdateStatus moves a job to status, replacing its error message.
func (r *JobRepositoryPG) UpdateStatus(ctx context.Context, id int64, status domain.JobStatus, errMsg string) error {
	tag, err := r.db.Exec(ctx, sqlinline.QUpdateGenerationJobStatus, id, string(status), errMsg)
	if err != nil {
		return fmt.Errorf("update generation job %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID fetches a job with its category name.
func (r *JobRepositoryPG) GetByID(ctx context.Context, id int64) (*domain.GenerationJob, error) {
	var (
		job          domain.GenerationJob
		status       string
		requestData  []byte
		categoryName string
	)
	err := r.db.QueryRow(ctx, sqlinline.QSelectGenerationJobByID, id).Scan(
		&job.ID,
		&job.CategoryID,
		&status,
		&requestData,
		&job.ErrorMessage,
		&job.CreatedAt,
		&job.UpdatedAt,
		&categoryName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get generation job %d: %w", id, err)
	}
	job.Status = domain.JobStatus(status)
	if len(requestData) > 0 {
		job.RequestData = requestData
	}
	job.Category = &domain.Category{ID: job.CategoryID, Name: categoryName}
	return &job, nil
}

var _ domain.JobRepository = (*JobRepositoryPG)(nil)
