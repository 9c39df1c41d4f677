package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/kevinotieno/bizfinder/internal/core/domain"
	"github.com/kevinotieno/bizfinder/internal/core/ports"
)

// LookupOptions carries the strategy tunables derived from the heuristics
// table.
type LookupOptions struct {
	// SiteRestrict narrows the first query to the local country domain,
	// e.g. "co.ke".
	SiteRestrict string
	// ExcludeSites are dropped from the second query via -site: operators.
	ExcludeSites []string
	// DiscardBelow drops candidates scoring at or below this value.
	DiscardBelow int
	// EarlyStopScore skips remaining queries once the running best reaches it.
	EarlyStopScore int
}

func (o LookupOptions) withDefaults() LookupOptions {
	if o.SiteRestrict == "" {
		o.SiteRestrict = "co.ke"
	}
	if len(o.ExcludeSites) == 0 {
		o.ExcludeSites = []string{"facebook.com", "instagram.com", "linkedin.com", "tripadvisor.com"}
	}
	if o.DiscardBelow == 0 {
		o.DiscardBelow = -50
	}
	if o.EarlyStopScore == 0 {
		o.EarlyStopScore = 40
	}
	return o
}

// LookupWebsiteUseCase resolves a business's official website: cache first,
// then up to three progressively looser search queries whose candidates are
// scored against the heuristics table.
type LookupWebsiteUseCase struct {
	search  ports.SearchEngine
	scorer  ports.CandidateScorer
	cache   ports.LookupCache
	options LookupOptions

	// group collapses concurrent lookups for the same key into one network
	// sequence.
	group singleflight.Group
}

func NewLookupWebsiteUseCase(
	search ports.SearchEngine,
	scorer ports.CandidateScorer,
	cache ports.LookupCache,
	options LookupOptions,
) *LookupWebsiteUseCase {
	return &LookupWebsiteUseCase{
		search:  search,
		scorer:  scorer,
		cache:   cache,
		options: options.withDefaults(),
	}
}

func (uc *LookupWebsiteUseCase) Resolve(ctx context.Context, businessName, location string) (domain.LookupResult, error) {
	businessName = strings.TrimSpace(businessName)
	location = strings.TrimSpace(location)
	if businessName == "" {
		return domain.LookupResult{}, domain.WrapError(domain.ErrInvalidInput, "lookup website", fmt.Errorf("business name is required"))
	}

	key := cacheKey(businessName, location)
	if cached, ok := uc.cache.Get(key); ok {
		return cached, nil
	}

	value, err, _ := uc.group.Do(key, func() (any, error) {
		// A concurrent lookup may have populated the cache while this call
		// waited on the flight group.
		if cached, ok := uc.cache.Get(key); ok {
			return cached, nil
		}
		result, err := uc.resolveUncached(ctx, businessName, location)
		if err != nil {
			return domain.LookupResult{}, err
		}
		uc.cache.Set(key, result)
		return result, nil
	})
	if err != nil {
		return domain.LookupResult{}, err
	}
	return value.(domain.LookupResult), nil
}

func (uc *LookupWebsiteUseCase) resolveUncached(ctx context.Context, businessName, location string) (domain.LookupResult, error) {
	queries := uc.buildQueries(businessName, location)

	var best *domain.ScoredCandidate
	failedQueries := 0
	for _, query := range queries {
		if err := ctx.Err(); err != nil {
			return domain.LookupResult{}, err
		}

		candidates, err := uc.search.Search(ctx, query)
		if err != nil {
			// Query-level failure: log and fall through to the looser query.
			slog.Warn("search_query_failed", "business", businessName, "query", query, "error", err)
			failedQueries++
			continue
		}

		if candidate, ok := uc.bestCandidate(candidates, businessName); ok {
			if best == nil || candidate.Score > best.Score {
				best = &candidate
			}
		}
		if best != nil && best.Score >= uc.options.EarlyStopScore {
			break
		}
	}

	if failedQueries == len(queries) {
		return domain.LookupResult{}, domain.WrapError(domain.ErrTemporary, "lookup website", fmt.Errorf("all %d search queries failed", failedQueries))
	}

	if best == nil {
		return domain.LookupResult{}, nil
	}
	return domain.LookupResult{
		URL:        best.URL,
		Confidence: clampConfidence(best.Score),
	}, nil
}

// bestCandidate scores a page's candidates, drops hopeless ones and returns
// the top scorer.
func (uc *LookupWebsiteUseCase) bestCandidate(candidates []string, businessName string) (domain.ScoredCandidate, bool) {
	scored := make([]domain.ScoredCandidate, 0, len(candidates))
	for _, url := range candidates {
		score := uc.scorer.Score(url, businessName)
		if score <= uc.options.DiscardBelow {
			continue
		}
		scored = append(scored, domain.ScoredCandidate{URL: url, Score: score})
	}
	if len(scored) == 0 {
		return domain.ScoredCandidate{}, false
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	return scored[0], true
}

func (uc *LookupWebsiteUseCase) buildQueries(businessName, location string) []string {
	var exclusions strings.Builder
	for _, site := range uc.options.ExcludeSites {
		exclusions.WriteString(" -site:")
		exclusions.WriteString(site)
	}

	return []string{
		fmt.Sprintf("%q %s site:%s", businessName, location, uc.options.SiteRestrict),
		fmt.Sprintf("%q %s%s", businessName, location, exclusions.String()),
		fmt.Sprintf("%s official website %s", businessName, location),
	}
}

func cacheKey(businessName, location string) string {
	return strings.ToLower(businessName) + "|" + strings.ToLower(location)
}

func clampConfidence(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
