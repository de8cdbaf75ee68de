package storage

import (
	"context"
	"fmt"
)

// schema is the single jobs table the dashboard reads. Workflow columns
// (status, applied_at, ...) belong to the presentation layer; the pipeline
// only writes them at insert time with their defaults.
const schema = `
CREATE TABLE IF NOT EXISTS jobs (
    id               TEXT PRIMARY KEY,
    title            TEXT NOT NULL,
    company          TEXT NOT NULL,
    location         TEXT,
    url              TEXT,
    salary           TEXT,
    remote           BOOLEAN NOT NULL DEFAULT FALSE,
    seniority        TEXT,
    role_type        TEXT,
    application_type TEXT,
    freshness        TEXT,
    description      TEXT,
    source           TEXT,
    status           TEXT NOT NULL DEFAULT 'new',
    suitability      INTEGER NOT NULL DEFAULT 0,
    posted_at        TIMESTAMPTZ,
    career_page_url  TEXT,
    red_flags        JSONB NOT NULL DEFAULT '[]',
    research_status  TEXT NOT NULL DEFAULT 'skipped',
    researched_at    TIMESTAMPTZ,
    applied_at       TIMESTAMPTZ,
    interview_date   TIMESTAMPTZ,
    outcome_at       TIMESTAMPTZ,
    outcome_notes    TEXT,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs (status);
CREATE INDEX IF NOT EXISTS idx_jobs_suitability ON jobs (suitability DESC);
CREATE INDEX IF NOT EXISTS idx_jobs_freshness ON jobs (freshness);
`

// EnsureSchema applies the jobs schema. Safe to run repeatedly.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
