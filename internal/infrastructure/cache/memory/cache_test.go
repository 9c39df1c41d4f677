package memory

import (
	"testing"
	"time"

	"github.com/kevinotieno/bizfinder/internal/core/domain"
)

func TestCacheRoundTrip(t *testing.T) {
	cache := New(time.Hour)
	cache.Set("java house|nairobi", domain.LookupResult{URL: "https://javahouse.co.ke", Confidence: 60})

	got, ok := cache.Get("java house|nairobi")
	if !ok {
		t.Fatalf("expected cache hit")
	}
	if got.URL != "https://javahouse.co.ke" || got.Confidence != 60 {
		t.Fatalf("unexpected cached result: %+v", got)
	}
}

func TestCacheMiss(t *testing.T) {
	cache := New(time.Hour)
	if _, ok := cache.Get("absent"); ok {
		t.Fatalf("expected miss for absent key")
	}
}

func TestCacheExpiresAfterTTL(t *testing.T) {
	cache := New(time.Hour)
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return current }

	cache.Set("key", domain.LookupResult{URL: "https://example.co.ke", Confidence: 40})

	current = current.Add(59 * time.Minute)
	if _, ok := cache.Get("key"); !ok {
		t.Fatalf("expected hit before TTL")
	}

	current = current.Add(2 * time.Minute)
	if _, ok := cache.Get("key"); ok {
		t.Fatalf("expected miss after TTL")
	}
}

func TestCacheStoresNotFoundResults(t *testing.T) {
	cache := New(time.Hour)
	cache.Set("ghost cafe|nairobi", domain.LookupResult{Confidence: 0})

	got, ok := cache.Get("ghost cafe|nairobi")
	if !ok {
		t.Fatalf("expected not-found result to be cached")
	}
	if got.URL != "" {
		t.Fatalf("unexpected URL: %q", got.URL)
	}
}
