package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kevinotieno/bizfinder/internal/core/domain"
)

type resolverFake struct {
	mu        sync.Mutex
	results   map[string]domain.LookupResult
	errs      map[string]error
	locations map[string]string
	calls     int
}

func newResolverFake() *resolverFake {
	return &resolverFake{
		results:   map[string]domain.LookupResult{},
		errs:      map[string]error{},
		locations: map[string]string{},
	}
}

func (f *resolverFake) Resolve(_ context.Context, businessName, location string) (domain.LookupResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.locations[businessName] = location
	if err, ok := f.errs[businessName]; ok {
		return domain.LookupResult{}, err
	}
	return f.results[businessName], nil
}

func (f *resolverFake) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newEnrichUC(resolver *resolverFake) *EnrichBusinessesUseCase {
	uc := NewEnrichBusinessesUseCase(resolver, EnrichOptions{})
	uc.sleep = func(context.Context, time.Duration) error { return nil }
	return uc
}

func TestEnrichKnownWebsiteShortCircuits(t *testing.T) {
	resolver := newResolverFake()
	uc := newEnrichUC(resolver)

	out, err := uc.Enrich(context.Background(), []domain.Business{
		{Name: "Known Biz", Website: "https://example.co.ke", Locality: "Nairobi"},
	}, nil)
	if err != nil {
		t.Fatalf("Enrich() error = %v", err)
	}
	if out[0].WebsiteStatus != domain.WebsiteStatusFound {
		t.Fatalf("expected found, got %s", out[0].WebsiteStatus)
	}
	if out[0].WebsiteURL != "https://example.co.ke" {
		t.Fatalf("expected known website preserved, got %q", out[0].WebsiteURL)
	}
	if resolver.callCount() != 0 {
		t.Fatalf("known website must not trigger a lookup, got %d calls", resolver.callCount())
	}
}

func TestEnrichSentinelWebsiteTriggersLookup(t *testing.T) {
	resolver := newResolverFake()
	resolver.results["Java House"] = domain.LookupResult{URL: "https://javahouse.co.ke", Confidence: 60}
	uc := newEnrichUC(resolver)

	out, err := uc.Enrich(context.Background(), []domain.Business{
		{Name: "Java House", Website: domain.WebsiteSentinel, Locality: "Nairobi"},
	}, nil)
	if err != nil {
		t.Fatalf("Enrich() error = %v", err)
	}
	if resolver.callCount() != 1 {
		t.Fatalf("sentinel website must trigger a lookup")
	}
	if out[0].WebsiteStatus != domain.WebsiteStatusFound || out[0].Confidence != 60 {
		t.Fatalf("unexpected result: %+v", out[0])
	}
}

func TestEnrichPreservesOrderAndCardinality(t *testing.T) {
	resolver := newResolverFake()
	names := []string{"A", "B", "C", "D", "E", "F", "G"}
	businesses := make([]domain.Business, 0, len(names))
	for _, n := range names {
		businesses = append(businesses, domain.Business{Name: n, Locality: "Nairobi"})
	}
	resolver.errs["C"] = errors.New("boom")
	resolver.results["E"] = domain.LookupResult{URL: "https://e.co.ke", Confidence: 50}

	uc := newEnrichUC(resolver)
	out, err := uc.Enrich(context.Background(), businesses, nil)
	if err != nil {
		t.Fatalf("Enrich() error = %v", err)
	}
	if len(out) != len(names) {
		t.Fatalf("expected %d results, got %d", len(names), len(out))
	}
	for i, n := range names {
		if out[i].Name != n {
			t.Fatalf("result %d = %q, want %q", i, out[i].Name, n)
		}
	}
	if out[2].WebsiteStatus != domain.WebsiteStatusError {
		t.Fatalf("expected error status for C, got %s", out[2].WebsiteStatus)
	}
	if out[4].WebsiteStatus != domain.WebsiteStatusFound {
		t.Fatalf("expected found status for E, got %s", out[4].WebsiteStatus)
	}
	if out[0].WebsiteStatus != domain.WebsiteStatusNotFound {
		t.Fatalf("expected not_found status for A, got %s", out[0].WebsiteStatus)
	}
}

func TestEnrichProgressInvariantHoldsAfterEveryUnit(t *testing.T) {
	resolver := newResolverFake()
	resolver.errs["B"] = errors.New("boom")
	resolver.results["C"] = domain.LookupResult{URL: "https://c.co.ke", Confidence: 45}
	businesses := []domain.Business{
		{Name: "A"}, {Name: "B"}, {Name: "C"}, {Name: "D"}, {Name: "E"},
	}

	var mu sync.Mutex
	var snapshots []domain.Progress
	uc := newEnrichUC(resolver)
	_, err := uc.Enrich(context.Background(), businesses, func(p domain.Progress) {
		mu.Lock()
		snapshots = append(snapshots, p)
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("Enrich() error = %v", err)
	}

	if len(snapshots) != len(businesses) {
		t.Fatalf("expected one snapshot per unit, got %d", len(snapshots))
	}
	for i, p := range snapshots {
		if p.Completed != p.Found+p.NotFound+p.Errors {
			t.Fatalf("snapshot %d violates invariant: %+v", i, p)
		}
		if p.Completed > p.Total {
			t.Fatalf("snapshot %d exceeds total: %+v", i, p)
		}
		if p.CurrentBusiness == "" {
			t.Fatalf("snapshot %d has no current business", i)
		}
	}
	final := snapshots[len(snapshots)-1]
	if final.Completed != 5 || final.Found != 1 || final.Errors != 1 || final.NotFound != 3 {
		t.Fatalf("unexpected final snapshot: %+v", final)
	}
}

func TestEnrichLocationFallbackChain(t *testing.T) {
	resolver := newResolverFake()
	uc := newEnrichUC(resolver)

	_, err := uc.Enrich(context.Background(), []domain.Business{
		{Name: "HasLocality", Locality: "Nakuru", Region: "Rift Valley"},
		{Name: "HasRegion", Region: "Rift Valley"},
		{Name: "HasNeither"},
	}, nil)
	if err != nil {
		t.Fatalf("Enrich() error = %v", err)
	}
	if resolver.locations["HasLocality"] != "Nakuru" {
		t.Fatalf("expected locality, got %q", resolver.locations["HasLocality"])
	}
	if resolver.locations["HasRegion"] != "Rift Valley" {
		t.Fatalf("expected region fallback, got %q", resolver.locations["HasRegion"])
	}
	if resolver.locations["HasNeither"] != DefaultLocation {
		t.Fatalf("expected default location, got %q", resolver.locations["HasNeither"])
	}
}

func TestEnrichCancellationStopsBeforeNextBatch(t *testing.T) {
	resolver := newResolverFake()
	businesses := []domain.Business{
		{Name: "A"}, {Name: "B"}, {Name: "C"}, {Name: "D"}, {Name: "E"}, {Name: "F"},
	}

	ctx, cancel := context.WithCancel(context.Background())
	uc := newEnrichUC(resolver)
	out, err := uc.Enrich(ctx, businesses, func(domain.Progress) {
		cancel()
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(out) != len(businesses) {
		t.Fatalf("cancelled run must still return full cardinality, got %d", len(out))
	}
	// The first batch joins before cancellation is observed.
	if resolver.callCount() != DefaultBatchSize {
		t.Fatalf("expected exactly one batch of lookups, got %d", resolver.callCount())
	}
	for _, r := range out[DefaultBatchSize:] {
		if r.WebsiteStatus != domain.WebsiteStatusPending {
			t.Fatalf("unstarted business should stay pending, got %s", r.WebsiteStatus)
		}
	}
}

func TestEnrichDelaysBetweenBatchesOnly(t *testing.T) {
	resolver := newResolverFake()
	businesses := make([]domain.Business, 7)
	for i := range businesses {
		businesses[i] = domain.Business{Name: string(rune('A' + i))}
	}

	var delays []time.Duration
	uc := NewEnrichBusinessesUseCase(resolver, EnrichOptions{InterBatchDelay: 250 * time.Millisecond})
	uc.sleep = func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}

	if _, err := uc.Enrich(context.Background(), businesses, nil); err != nil {
		t.Fatalf("Enrich() error = %v", err)
	}
	// 7 businesses in batches of 3 -> delays after batch 1 and 2, none after the last.
	if len(delays) != 2 {
		t.Fatalf("expected 2 inter-batch delays, got %d", len(delays))
	}
	for _, d := range delays {
		if d != 250*time.Millisecond {
			t.Fatalf("unexpected delay %s", d)
		}
	}
}

func TestEnrichEmptyInput(t *testing.T) {
	uc := newEnrichUC(newResolverFake())
	out, err := uc.Enrich(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("Enrich() error = %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected empty output, got %d", len(out))
	}
}
