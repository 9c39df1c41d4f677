package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/kevinotieno/bizfinder/internal/core/domain"
)

type JobRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *JobRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082901)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS enrichment_jobs (
	id TEXT PRIMARY KEY,
	status TEXT NOT NULL,
	businesses JSONB NOT NULL DEFAULT '[]'::jsonb,
	results JSONB,
	progress_total INTEGER NOT NULL DEFAULT 0,
	progress_completed INTEGER NOT NULL DEFAULT 0,
	progress_found INTEGER NOT NULL DEFAULT 0,
	progress_not_found INTEGER NOT NULL DEFAULT 0,
	progress_errors INTEGER NOT NULL DEFAULT 0,
	current_business TEXT NOT NULL DEFAULT '',
	error_message TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_enrichment_jobs_status ON enrichment_jobs(status);
CREATE INDEX IF NOT EXISTS idx_enrichment_jobs_created_at ON enrichment_jobs(created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *JobRepository) Create(ctx context.Context, job *domain.EnrichmentJob) error {
	businessesJSON, err := json.Marshal(job.Businesses)
	if err != nil {
		return fmt.Errorf("marshal businesses: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO enrichment_jobs (
	id, status, businesses, progress_total, progress_completed, progress_found,
	progress_not_found, progress_errors, current_business, error_message, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
`,
		job.ID, string(job.Status), businessesJSON,
		job.Progress.Total, job.Progress.Completed, job.Progress.Found,
		job.Progress.NotFound, job.Progress.Errors, job.Progress.CurrentBusiness,
		job.Error, job.CreatedAt, job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

func (r *JobRepository) GetByID(ctx context.Context, id string) (*domain.EnrichmentJob, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, status, businesses, results, progress_total, progress_completed, progress_found,
	progress_not_found, progress_errors, current_business, error_message, created_at, updated_at
FROM enrichment_jobs
WHERE id = $1
`, id)

	var job domain.EnrichmentJob
	var status string
	var businessesRaw []byte
	var resultsRaw []byte

	err := row.Scan(
		&job.ID, &status, &businessesRaw, &resultsRaw,
		&job.Progress.Total, &job.Progress.Completed, &job.Progress.Found,
		&job.Progress.NotFound, &job.Progress.Errors, &job.Progress.CurrentBusiness,
		&job.Error, &job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrJobNotFound, "get job", fmt.Errorf("id=%s", id))
		}
		return nil, fmt.Errorf("get job by id: %w", err)
	}

	job.Status = domain.JobStatus(status)
	if err := json.Unmarshal(businessesRaw, &job.Businesses); err != nil {
		return nil, fmt.Errorf("unmarshal businesses: %w", err)
	}
	if len(resultsRaw) > 0 {
		if err := json.Unmarshal(resultsRaw, &job.Results); err != nil {
			return nil, fmt.Errorf("unmarshal results: %w", err)
		}
	}
	return &job, nil
}

func (r *JobRepository) UpdateStatus(ctx context.Context, id string, status domain.JobStatus, errMessage string) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE enrichment_jobs
SET status = $2, error_message = $3, updated_at = $4
WHERE id = $1
`, id, string(status), errMessage, r.now())
	if err != nil {
		return fmt.Errorf("update job status: %w", err)
	}
	return r.requireRow(result, id)
}

func (r *JobRepository) UpdateProgress(ctx context.Context, id string, progress domain.Progress) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE enrichment_jobs
SET progress_total = $2, progress_completed = $3, progress_found = $4,
	progress_not_found = $5, progress_errors = $6, current_business = $7, updated_at = $8
WHERE id = $1
`, id, progress.Total, progress.Completed, progress.Found,
		progress.NotFound, progress.Errors, progress.CurrentBusiness, r.now())
	if err != nil {
		return fmt.Errorf("update job progress: %w", err)
	}
	return r.requireRow(result, id)
}

func (r *JobRepository) SaveResults(ctx context.Context, id string, results []domain.EnrichedBusiness) error {
	resultsJSON, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}

	result, err := r.db.ExecContext(ctx, `
UPDATE enrichment_jobs
SET results = $2, updated_at = $3
WHERE id = $1
`, id, resultsJSON, r.now())
	if err != nil {
		return fmt.Errorf("save job results: %w", err)
	}
	return r.requireRow(result, id)
}

func (r *JobRepository) requireRow(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return domain.WrapError(domain.ErrJobNotFound, "update job", fmt.Errorf("id=%s", id))
	}
	return nil
}
