package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kevinotieno/bizfinder/internal/core/domain"
	"github.com/kevinotieno/bizfinder/internal/core/ports"
)

// ProcessJobUseCase executes one persisted enrichment job end to end,
// streaming progress snapshots into the repository as units complete.
type ProcessJobUseCase struct {
	repo     ports.JobRepository
	enricher ports.BatchEnricher
}

func NewProcessJobUseCase(repo ports.JobRepository, enricher ports.BatchEnricher) *ProcessJobUseCase {
	return &ProcessJobUseCase{
		repo:     repo,
		enricher: enricher,
	}
}

func (uc *ProcessJobUseCase) ProcessByID(ctx context.Context, jobID string) error {
	job, err := uc.repo.GetByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("fetch job by id: %w", err)
	}

	if err := uc.repo.UpdateStatus(ctx, job.ID, domain.JobStatusRunning, ""); err != nil {
		return fmt.Errorf("set status=running: %w", err)
	}

	results, err := uc.enricher.Enrich(ctx, job.Businesses, func(progress domain.Progress) {
		// Progress writes are advisory; a failed write must not abort the run.
		if updateErr := uc.repo.UpdateProgress(ctx, job.ID, progress); updateErr != nil {
			slog.Warn("job_progress_update_failed", "job_id", job.ID, "error", updateErr)
		}
	})
	if err != nil {
		if markErr := uc.repo.UpdateStatus(ctx, job.ID, domain.JobStatusFailed, err.Error()); markErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, markErr)
		}
		return err
	}

	if err := uc.repo.SaveResults(ctx, job.ID, results); err != nil {
		if markErr := uc.repo.UpdateStatus(ctx, job.ID, domain.JobStatusFailed, err.Error()); markErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, markErr)
		}
		return fmt.Errorf("save results: %w", err)
	}

	if err := uc.repo.UpdateStatus(ctx, job.ID, domain.JobStatusCompleted, ""); err != nil {
		return fmt.Errorf("set status=completed: %w", err)
	}
	return nil
}
