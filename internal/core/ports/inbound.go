package ports

import (
	"context"

	"github.com/kevinotieno/bizfinder/internal/core/domain"
)

// WebsiteResolver is the inbound contract for a single website lookup.
// It never panics: a total lookup failure degrades to a zero result plus an
// error for the caller to classify.
type WebsiteResolver interface {
	Resolve(ctx context.Context, businessName, location string) (domain.LookupResult, error)
}

// ProgressFunc receives a snapshot after every completed unit of work.
type ProgressFunc func(domain.Progress)

// BatchEnricher is the inbound contract for enriching a list of businesses.
type BatchEnricher interface {
	Enrich(ctx context.Context, businesses []domain.Business, onProgress ProgressFunc) ([]domain.EnrichedBusiness, error)
}

// JobService is the inbound contract for asynchronous enrichment jobs.
type JobService interface {
	Submit(ctx context.Context, businesses []domain.Business) (*domain.EnrichmentJob, error)
	GetByID(ctx context.Context, id string) (*domain.EnrichmentJob, error)
	RetryFailed(ctx context.Context, id string) (*domain.EnrichmentJob, error)
}

// JobProcessor is the inbound contract for executing a persisted job.
type JobProcessor interface {
	ProcessByID(ctx context.Context, jobID string) error
}
