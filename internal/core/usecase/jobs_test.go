package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/kevinotieno/bizfinder/internal/core/domain"
)

type jobRepoFake struct {
	jobs        map[string]*domain.EnrichmentJob
	createErr   error
	statusLog   []domain.JobStatus
	progress    []domain.Progress
	progressErr error
	saved       []domain.EnrichedBusiness
}

func newJobRepoFake() *jobRepoFake {
	return &jobRepoFake{jobs: map[string]*domain.EnrichmentJob{}}
}

func (f *jobRepoFake) Create(_ context.Context, job *domain.EnrichmentJob) error {
	if f.createErr != nil {
		return f.createErr
	}
	copied := *job
	f.jobs[job.ID] = &copied
	return nil
}

func (f *jobRepoFake) GetByID(_ context.Context, id string) (*domain.EnrichmentJob, error) {
	job, ok := f.jobs[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrJobNotFound, "get job", errors.New(id))
	}
	copied := *job
	return &copied, nil
}

func (f *jobRepoFake) UpdateStatus(_ context.Context, id string, status domain.JobStatus, errMessage string) error {
	f.statusLog = append(f.statusLog, status)
	if job, ok := f.jobs[id]; ok {
		job.Status = status
		job.Error = errMessage
	}
	return nil
}

func (f *jobRepoFake) UpdateProgress(_ context.Context, id string, progress domain.Progress) error {
	if f.progressErr != nil {
		return f.progressErr
	}
	f.progress = append(f.progress, progress)
	if job, ok := f.jobs[id]; ok {
		job.Progress = progress
	}
	return nil
}

func (f *jobRepoFake) SaveResults(_ context.Context, id string, results []domain.EnrichedBusiness) error {
	f.saved = results
	if job, ok := f.jobs[id]; ok {
		job.Results = results
	}
	return nil
}

type queueFake struct {
	published  []string
	publishErr error
}

func (f *queueFake) PublishJobCreated(_ context.Context, jobID string) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, jobID)
	return nil
}

func (f *queueFake) SubscribeJobCreated(context.Context, func(context.Context, string) error) error {
	return nil
}

func TestSubmitCreatesAndPublishesJob(t *testing.T) {
	repo := newJobRepoFake()
	queue := &queueFake{}
	uc := NewJobUseCase(repo, queue)

	job, err := uc.Submit(context.Background(), []domain.Business{{Name: "Java House", Locality: "Nairobi"}})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if job.ID == "" {
		t.Fatalf("expected generated job id")
	}
	if job.Status != domain.JobStatusPending {
		t.Fatalf("expected pending status, got %s", job.Status)
	}
	if job.Progress.Total != 1 {
		t.Fatalf("expected progress total 1, got %d", job.Progress.Total)
	}
	if len(queue.published) != 1 || queue.published[0] != job.ID {
		t.Fatalf("expected job id published, got %v", queue.published)
	}
	if _, ok := repo.jobs[job.ID]; !ok {
		t.Fatalf("expected job persisted")
	}
}

func TestSubmitRejectsEmptyAndNameless(t *testing.T) {
	uc := NewJobUseCase(newJobRepoFake(), &queueFake{})

	if _, err := uc.Submit(context.Background(), nil); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for empty list, got %v", err)
	}
	if _, err := uc.Submit(context.Background(), []domain.Business{{Name: "  "}}); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for nameless business, got %v", err)
	}
}

func TestSubmitMarksJobFailedWhenPublishFails(t *testing.T) {
	repo := newJobRepoFake()
	queue := &queueFake{publishErr: errors.New("nats down")}
	uc := NewJobUseCase(repo, queue)

	_, err := uc.Submit(context.Background(), []domain.Business{{Name: "Acme"}})
	if err == nil {
		t.Fatalf("expected publish error")
	}
	if len(repo.statusLog) != 1 || repo.statusLog[0] != domain.JobStatusFailed {
		t.Fatalf("expected job marked failed, got %v", repo.statusLog)
	}
}

func TestRetryFailedFiltersRetryableBusinesses(t *testing.T) {
	repo := newJobRepoFake()
	repo.jobs["job-1"] = &domain.EnrichmentJob{
		ID:     "job-1",
		Status: domain.JobStatusCompleted,
		Results: []domain.EnrichedBusiness{
			{Business: domain.Business{Name: "ErrBiz"}, WebsiteStatus: domain.WebsiteStatusError},
			{Business: domain.Business{Name: "MissingBiz"}, WebsiteStatus: domain.WebsiteStatusNotFound},
			{Business: domain.Business{Name: "WeakBiz"}, WebsiteStatus: domain.WebsiteStatusFound, Confidence: 20},
			{Business: domain.Business{Name: "StrongBiz"}, WebsiteStatus: domain.WebsiteStatusFound, Confidence: 80},
		},
	}
	uc := NewJobUseCase(repo, &queueFake{})

	retry, err := uc.RetryFailed(context.Background(), "job-1")
	if err != nil {
		t.Fatalf("RetryFailed() error = %v", err)
	}
	if len(retry.Businesses) != 3 {
		t.Fatalf("expected 3 retryable businesses, got %d", len(retry.Businesses))
	}
	for _, b := range retry.Businesses {
		if b.Name == "StrongBiz" {
			t.Fatalf("high-confidence find must not be retried")
		}
	}
}

func TestRetryFailedRejectsUnfinishedJob(t *testing.T) {
	repo := newJobRepoFake()
	repo.jobs["job-1"] = &domain.EnrichmentJob{ID: "job-1", Status: domain.JobStatusRunning}
	uc := NewJobUseCase(repo, &queueFake{})

	_, err := uc.RetryFailed(context.Background(), "job-1")
	if !domain.IsKind(err, domain.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestRetryFailedRejectsNothingToRetry(t *testing.T) {
	repo := newJobRepoFake()
	repo.jobs["job-1"] = &domain.EnrichmentJob{
		ID:     "job-1",
		Status: domain.JobStatusCompleted,
		Results: []domain.EnrichedBusiness{
			{Business: domain.Business{Name: "StrongBiz"}, WebsiteStatus: domain.WebsiteStatusFound, Confidence: 90},
		},
	}
	uc := NewJobUseCase(repo, &queueFake{})

	_, err := uc.RetryFailed(context.Background(), "job-1")
	if !domain.IsKind(err, domain.ErrNothingToRetry) {
		t.Fatalf("expected nothing-to-retry error, got %v", err)
	}
}
