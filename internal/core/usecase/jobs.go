package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kevinotieno/bizfinder/internal/core/domain"
	"github.com/kevinotieno/bizfinder/internal/core/ports"
)

// JobUseCase manages the lifecycle of asynchronous enrichment jobs: submit,
// read back, and spawn retry runs for weak results.
type JobUseCase struct {
	repo  ports.JobRepository
	queue ports.JobQueue

	now func() time.Time
}

func NewJobUseCase(repo ports.JobRepository, queue ports.JobQueue) *JobUseCase {
	return &JobUseCase{
		repo:  repo,
		queue: queue,
		now:   time.Now,
	}
}

func (uc *JobUseCase) Submit(ctx context.Context, businesses []domain.Business) (*domain.EnrichmentJob, error) {
	if len(businesses) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "submit job", fmt.Errorf("businesses list is empty"))
	}
	for i, b := range businesses {
		if strings.TrimSpace(b.Name) == "" {
			return nil, domain.WrapError(domain.ErrInvalidInput, "submit job", fmt.Errorf("business %d has no name", i))
		}
	}

	now := uc.now().UTC()
	job := &domain.EnrichmentJob{
		ID:         uuid.NewString(),
		Status:     domain.JobStatusPending,
		Businesses: businesses,
		Progress:   domain.Progress{Total: len(businesses)},
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := uc.repo.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	if err := uc.queue.PublishJobCreated(ctx, job.ID); err != nil {
		if markErr := uc.repo.UpdateStatus(ctx, job.ID, domain.JobStatusFailed, err.Error()); markErr != nil {
			return nil, fmt.Errorf("publish job: %w; mark failed status: %v", err, markErr)
		}
		return nil, fmt.Errorf("publish job: %w", err)
	}
	return job, nil
}

func (uc *JobUseCase) GetByID(ctx context.Context, id string) (*domain.EnrichmentJob, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "get job", fmt.Errorf("job id is required"))
	}
	job, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch job by id: %w", err)
	}
	return job, nil
}

// RetryFailed submits a follow-up job limited to businesses whose previous
// outcome was an error, not found, or a low-confidence find. The source job
// must have finished.
func (uc *JobUseCase) RetryFailed(ctx context.Context, id string) (*domain.EnrichmentJob, error) {
	job, err := uc.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.Status != domain.JobStatusCompleted && job.Status != domain.JobStatusFailed {
		return nil, domain.WrapError(domain.ErrConflict, "retry job", fmt.Errorf("job %s is %s", id, job.Status))
	}

	var retryable []domain.Business
	for _, result := range job.Results {
		if domain.QualifiesForRetry(result) {
			retryable = append(retryable, result.Business)
		}
	}
	if len(retryable) == 0 {
		return nil, domain.WrapError(domain.ErrNothingToRetry, "retry job", fmt.Errorf("job %s has no retryable businesses", id))
	}

	return uc.Submit(ctx, retryable)
}
