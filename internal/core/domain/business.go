package domain

import "time"

// WebsiteSentinel is the upstream convention for "no website known".
const WebsiteSentinel = "N/A"

type WebsiteStatus string

const (
	WebsiteStatusPending  WebsiteStatus = "pending"
	WebsiteStatusFound    WebsiteStatus = "found"
	WebsiteStatusNotFound WebsiteStatus = "not_found"
	WebsiteStatusError    WebsiteStatus = "error"
)

// Business is a discovered local business as delivered by the upstream
// discovery collaborator. The enrichment pipeline only reads these fields.
type Business struct {
	Name       string   `json:"name"`
	Category   string   `json:"category,omitempty"`
	Locality   string   `json:"locality,omitempty"`
	Region     string   `json:"region,omitempty"`
	Website    string   `json:"website,omitempty"`
	Contact    string   `json:"contact,omitempty"`
	ProfileURL string   `json:"profile_url,omitempty"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
	Rating     *float64 `json:"rating,omitempty"`
}

// HasKnownWebsite reports whether the upstream record already carries a
// usable website, in which case enrichment short-circuits without a lookup.
func (b Business) HasKnownWebsite() bool {
	return b.Website != "" && b.Website != WebsiteSentinel
}

// EnrichedBusiness is a Business plus the fields the pipeline adds.
type EnrichedBusiness struct {
	Business

	WebsiteURL    string        `json:"website_url,omitempty"`
	WebsiteStatus WebsiteStatus `json:"website_status"`
	Confidence    int           `json:"confidence,omitempty"`
	EnrichedAt    *time.Time    `json:"enriched_at,omitempty"`
}

// LookupResult is the outcome of a single website lookup. An empty URL means
// no candidate qualified.
type LookupResult struct {
	URL        string `json:"url,omitempty"`
	Confidence int    `json:"confidence"`
}

// ScoredCandidate pairs a candidate URL with its heuristic score. It only
// lives inside one lookup's evaluation.
type ScoredCandidate struct {
	URL   string
	Score int
}

// Progress is the orchestrator's snapshot after each completed unit of work.
// Completed always equals Found + NotFound + Errors.
type Progress struct {
	Total           int    `json:"total"`
	Completed       int    `json:"completed"`
	Found           int    `json:"found"`
	NotFound        int    `json:"not_found"`
	Errors          int    `json:"errors"`
	CurrentBusiness string `json:"current_business,omitempty"`
}
