package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/kevinotieno/bizfinder/internal/core/domain"
	"github.com/kevinotieno/bizfinder/internal/core/ports"
)

const (
	DefaultBatchSize       = 3
	DefaultInterBatchDelay = 2 * time.Second
	DefaultLocation        = "Kenya"
)

type EnrichOptions struct {
	BatchSize       int
	InterBatchDelay time.Duration
	DefaultLocation string
}

func (o EnrichOptions) withDefaults() EnrichOptions {
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.InterBatchDelay <= 0 {
		o.InterBatchDelay = DefaultInterBatchDelay
	}
	if o.DefaultLocation == "" {
		o.DefaultLocation = DefaultLocation
	}
	return o
}

// EnrichBusinessesUseCase is the batch orchestrator: fixed-size batches,
// concurrent lookups within a batch, a full join before the inter-batch
// delay, and one progress snapshot per completed unit. Output preserves the
// input's order and cardinality.
type EnrichBusinessesUseCase struct {
	resolver ports.WebsiteResolver
	options  EnrichOptions

	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

func NewEnrichBusinessesUseCase(resolver ports.WebsiteResolver, options EnrichOptions) *EnrichBusinessesUseCase {
	return &EnrichBusinessesUseCase{
		resolver: resolver,
		options:  options.withDefaults(),
		now:      time.Now,
		sleep:    sleepContext,
	}
}

// Enrich processes every business and returns one enriched record per input.
// Per-business failures become status "error"; only cancellation surfaces as
// a returned error, and then the already-processed prefix is still returned.
func (uc *EnrichBusinessesUseCase) Enrich(
	ctx context.Context,
	businesses []domain.Business,
	onProgress ports.ProgressFunc,
) ([]domain.EnrichedBusiness, error) {
	results := make([]domain.EnrichedBusiness, len(businesses))
	for i, b := range businesses {
		results[i] = domain.EnrichedBusiness{Business: b, WebsiteStatus: domain.WebsiteStatusPending}
	}

	tracker := newProgressTracker(len(businesses), onProgress)

	for start := 0; start < len(businesses); start += uc.options.BatchSize {
		// Cancellation is honored between batches; in-flight lookups of the
		// current batch always run to completion.
		if err := ctx.Err(); err != nil {
			return results, err
		}

		end := start + uc.options.BatchSize
		if end > len(businesses) {
			end = len(businesses)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				enriched := uc.enrichOne(ctx, businesses[idx])
				results[idx] = enriched
				tracker.record(enriched)
			}(i)
		}
		wg.Wait()

		if end < len(businesses) {
			if err := uc.sleep(ctx, uc.options.InterBatchDelay); err != nil {
				return results, err
			}
		}
	}

	return results, nil
}

func (uc *EnrichBusinessesUseCase) enrichOne(ctx context.Context, business domain.Business) domain.EnrichedBusiness {
	enriched := domain.EnrichedBusiness{Business: business}
	enrichedAt := uc.now()
	enriched.EnrichedAt = &enrichedAt

	if business.HasKnownWebsite() {
		enriched.WebsiteStatus = domain.WebsiteStatusFound
		enriched.WebsiteURL = business.Website
		enriched.Confidence = 100
		return enriched
	}

	location := firstNonEmpty(business.Locality, business.Region, uc.options.DefaultLocation)
	result, err := uc.resolver.Resolve(ctx, business.Name, location)
	switch {
	case err != nil:
		enriched.WebsiteStatus = domain.WebsiteStatusError
	case result.URL != "":
		enriched.WebsiteStatus = domain.WebsiteStatusFound
		enriched.WebsiteURL = result.URL
		enriched.Confidence = result.Confidence
	default:
		enriched.WebsiteStatus = domain.WebsiteStatusNotFound
	}
	return enriched
}

type progressTracker struct {
	mu       sync.Mutex
	snapshot domain.Progress
	onUpdate ports.ProgressFunc
}

func newProgressTracker(total int, onUpdate ports.ProgressFunc) *progressTracker {
	return &progressTracker{
		snapshot: domain.Progress{Total: total},
		onUpdate: onUpdate,
	}
}

// record updates the counters atomically so every emitted snapshot satisfies
// completed == found + notFound + errors.
func (t *progressTracker) record(enriched domain.EnrichedBusiness) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.snapshot.Completed++
	switch enriched.WebsiteStatus {
	case domain.WebsiteStatusFound:
		t.snapshot.Found++
	case domain.WebsiteStatusNotFound:
		t.snapshot.NotFound++
	default:
		t.snapshot.Errors++
	}
	t.snapshot.CurrentBusiness = enriched.Name

	if t.onUpdate != nil {
		t.onUpdate(t.snapshot)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
