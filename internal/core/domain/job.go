package domain

import "time"

type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// EnrichmentJob is one asynchronous batch-enrichment run: the submitted
// businesses, the live progress counters, and the enriched results once the
// worker finishes. Results preserve the order and cardinality of Businesses.
type EnrichmentJob struct {
	ID         string             `json:"id"`
	Status     JobStatus          `json:"status"`
	Businesses []Business         `json:"businesses"`
	Results    []EnrichedBusiness `json:"results,omitempty"`
	Progress   Progress           `json:"progress"`
	Error      string             `json:"error,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// LowConfidenceThreshold marks "found" results weak enough to qualify for an
// explicit retry run.
const LowConfidenceThreshold = 30

// QualifiesForRetry reports whether an enriched record should be re-run by
// the retry-failed operation.
func QualifiesForRetry(e EnrichedBusiness) bool {
	switch e.WebsiteStatus {
	case WebsiteStatusError, WebsiteStatusNotFound:
		return true
	case WebsiteStatusFound:
		return e.Confidence < LowConfidenceThreshold
	default:
		return false
	}
}
