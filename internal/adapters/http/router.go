package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/kevinotieno/bizfinder/internal/core/domain"
	"github.com/kevinotieno/bizfinder/internal/core/ports"
	"github.com/kevinotieno/bizfinder/internal/observability/metrics"
)

const serviceName = "api"

type Router struct {
	resolver ports.WebsiteResolver
	jobs     ports.JobService
	metrics  *metrics.HTTPServerMetrics
}

func NewRouter(resolver ports.WebsiteResolver, jobs ports.JobService, m *metrics.HTTPServerMetrics) *Router {
	return &Router{
		resolver: resolver,
		jobs:     jobs,
		metrics:  m,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/lookup", rt.lookupWebsite)
	mux.HandleFunc("/v1/jobs", rt.submitJob)
	mux.HandleFunc("/v1/jobs/", rt.jobByID)

	var handler http.Handler = mux
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	return requestIDMiddleware(accessLogMiddleware(handler))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) lookupWebsite(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		CompanyName string `json:"company_name"`
		Location    string `json:"location"`
		CompanyType string `json:"company_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.CompanyName) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "company_name is required"})
		return
	}
	location := strings.TrimSpace(req.Location)
	if location == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "location is required"})
		return
	}
	// The business type sharpens the search when the caller knows it.
	if companyType := strings.TrimSpace(req.CompanyType); companyType != "" {
		location = location + " " + companyType
	}

	start := time.Now()
	result, err := rt.resolver.Resolve(r.Context(), req.CompanyName, location)
	if err != nil {
		rt.recordLookup("error", time.Since(start))
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	status := domain.WebsiteStatusFound
	if result.URL == "" {
		status = domain.WebsiteStatusNotFound
	}
	rt.recordLookup(string(status), time.Since(start))

	writeJSON(w, http.StatusOK, map[string]any{
		"websiteUrl": result.URL,
		"confidence": result.Confidence,
		"status":     status,
	})
}

func (rt *Router) submitJob(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Businesses []domain.Business `json:"businesses"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	job, err := rt.jobs.Submit(r.Context(), req.Businesses)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordJobSubmitted(serviceName, "submit")
	}
	writeJSON(w, http.StatusAccepted, job)
}

// jobByID dispatches /v1/jobs/{job_id} and /v1/jobs/{job_id}/retry.
func (rt *Router) jobByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/jobs/")
	if id, ok := strings.CutSuffix(rest, "/retry"); ok {
		rt.retryJob(w, r, id)
		return
	}

	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if rest == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "job id is required"})
		return
	}

	job, err := rt.jobs.GetByID(r.Context(), rest)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (rt *Router) retryJob(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "job id is required"})
		return
	}

	job, err := rt.jobs.RetryFailed(r.Context(), id)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordJobSubmitted(serviceName, "retry")
	}
	writeJSON(w, http.StatusAccepted, job)
}

func (rt *Router) recordLookup(outcome string, duration time.Duration) {
	if rt.metrics == nil {
		return
	}
	rt.metrics.RecordLookup(serviceName, outcome, duration)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
