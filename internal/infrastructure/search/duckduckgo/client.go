package duckduckgo

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/kevinotieno/bizfinder/internal/infrastructure/resilience"
)

const (
	DefaultBaseURL = "https://html.duckduckgo.com/html/"

	defaultTimeout   = 15 * time.Second
	defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) bizfinder/1.0"

	// Results pages are small; anything larger is not worth parsing.
	maxResponseBytes = 2 * 1024 * 1024
)

// Client fetches DuckDuckGo HTML search results and extracts candidate URLs.
// Outbound requests share a rate limiter so concurrent lookups cannot hammer
// the search engine.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	executor   *resilience.Executor
}

type Options struct {
	BaseURL            string
	UserAgent          string
	RequestTimeout     time.Duration
	RateLimitRPS       float64
	ResilienceExecutor *resilience.Executor
}

func New(options Options) *Client {
	baseURL := strings.TrimSpace(options.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	userAgent := strings.TrimSpace(options.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	timeout := options.RequestTimeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	var limiter *rate.Limiter
	if options.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(options.RateLimitRPS), 1)
	}

	return &Client{
		baseURL:    baseURL,
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
		executor:   options.ResilienceExecutor,
	}
}

// Search runs one query against the results endpoint and returns the
// extracted candidate URLs. The per-request timeout bounds each fetch so a
// hung request cannot stall a whole batch.
func (c *Client) Search(ctx context.Context, query string) ([]string, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}

	var candidates []string
	call := func(ctx context.Context) error {
		fetched, err := c.fetchCandidates(ctx, query)
		if err != nil {
			return err
		}
		candidates = fetched
		return nil
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "search.fetch", call, classifySearchError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return nil, wrapTemporaryIfNeeded("search results", err)
	}
	return candidates, nil
}

func (c *Client) fetchCandidates(ctx context.Context, query string) ([]string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	params := url.Values{}
	params.Set("q", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create search request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "en")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, newHTTPStatusError(resp)
	}

	candidates, err := extractCandidates(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("parse search results: %w", err)
	}
	return candidates, nil
}
