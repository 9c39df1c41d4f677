package ports

import (
	"context"

	"github.com/kevinotieno/bizfinder/internal/core/domain"
)

// SearchEngine fetches one search-results page and returns the absolute
// candidate URLs extracted from it, in page order.
type SearchEngine interface {
	Search(ctx context.Context, query string) ([]string, error)
}

// CandidateScorer scores how likely a candidate URL is to be the business's
// official website. Scores can be negative; hard rejects are strongly so.
type CandidateScorer interface {
	Score(url, businessName string) int
}

// LookupCache stores lookup results keyed by normalized business+location.
// A hit must be returned without any network access.
type LookupCache interface {
	Get(key string) (domain.LookupResult, bool)
	Set(key string, result domain.LookupResult)
}

// JobRepository persists enrichment job state.
type JobRepository interface {
	Create(ctx context.Context, job *domain.EnrichmentJob) error
	GetByID(ctx context.Context, id string) (*domain.EnrichmentJob, error)
	UpdateStatus(ctx context.Context, id string, status domain.JobStatus, errMessage string) error
	UpdateProgress(ctx context.Context, id string, progress domain.Progress) error
	SaveResults(ctx context.Context, id string, results []domain.EnrichedBusiness) error
}

// JobQueue publishes/consumes enrichment job events.
type JobQueue interface {
	PublishJobCreated(ctx context.Context, jobID string) error
	SubscribeJobCreated(ctx context.Context, handler func(context.Context, string) error) error
}
