// Package store persists run output: postings and run summaries in Postgres,
// plus a Redis seen-set that lets repeated runs skip already-ingested jobs.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jobpulse/backend/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS job_postings (
    job_id           TEXT PRIMARY KEY,
    title            TEXT NOT NULL,
    category         TEXT NOT NULL,
    company_name     TEXT NOT NULL,
    location_raw     TEXT,
    location_city    TEXT,
    location_country TEXT,
    region           TEXT NOT NULL,
    work_type        TEXT NOT NULL,
    date_posted      TIMESTAMPTZ,
    required_skills  TEXT[],
    experience_level TEXT NOT NULL,
    employment_type  TEXT NOT NULL,
    description      TEXT,
    source_url       TEXT,
    search_query     TEXT,
    search_location  TEXT,
    scraped_at       TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS pipeline_runs (
    id             BIGSERIAL PRIMARY KEY,
    source         TEXT NOT NULL,
    total_jobs     INT NOT NULL,
    total_parsed   INT NOT NULL,
    duplicates     INT NOT NULL,
    failed_pages   INT NOT NULL,
    failed_queries INT NOT NULL,
    captcha_seen   BOOLEAN NOT NULL,
    started_at     TIMESTAMPTZ NOT NULL,
    finished_at    TIMESTAMPTZ NOT NULL
);
`

const upsertPosting = `
INSERT INTO job_postings (
    job_id, title, category, company_name, location_raw, location_city,
    location_country, region, work_type, date_posted, required_skills,
    experience_level, employment_type, description, source_url,
    search_query, search_location, scraped_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
ON CONFLICT (job_id) DO UPDATE SET
    title = EXCLUDED.title,
    category = EXCLUDED.category,
    company_name = EXCLUDED.company_name,
    location_raw = EXCLUDED.location_raw,
    work_type = EXCLUDED.work_type,
    required_skills = EXCLUDED.required_skills,
    scraped_at = EXCLUDED.scraped_at
`

const insertRun = `
INSERT INTO pipeline_runs (
    source, total_jobs, total_parsed, duplicates, failed_pages,
    failed_queries, captcha_seen, started_at, finished_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
RETURNING id
`

// Postgres persists postings and run summaries.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates and verifies a pool, then ensures the schema exists.
func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("schema setup failed: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// SavePostings upserts the corpus keyed by job_id. Postings without a
// provider id get a synthetic key from title and company so reruns update
// in place instead of duplicating.
func (p *Postgres) SavePostings(ctx context.Context, jobs []domain.JobPosting) error {
	for _, job := range jobs {
		jobID := job.JobID
		if jobID == "" {
			jobID = "synthetic:" + job.Title + "|" + job.CompanyName
		}
		_, err := p.pool.Exec(ctx, upsertPosting,
			jobID, job.Title, string(job.Category), job.CompanyName,
			job.LocationRaw, job.LocationCity, job.LocationCountry,
			string(job.Region), string(job.WorkType), job.DatePosted,
			job.RequiredSkills, string(job.ExperienceLevel),
			string(job.EmploymentType), job.Description, job.SourceURL,
			job.SearchQuery, job.SearchLocation, job.ScrapedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert posting %q: %w", job.Title, err)
		}
	}
	return nil
}

// SaveRun records one run summary and returns its id.
func (p *Postgres) SaveRun(ctx context.Context, result *domain.PipelineRunResult) (int64, error) {
	var id int64
	err := p.pool.QueryRow(ctx, insertRun,
		result.Source, len(result.Jobs), result.TotalParsed,
		result.DuplicateCount, result.TotalFailedPages,
		len(result.FailedQueries), result.CaptchaEncountered,
		result.StartedAt, result.FinishedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to record run: %w", err)
	}
	return id, nil
}

// Close releases the pool.
func (p *Postgres) Close() {
	p.pool.Close()
}
