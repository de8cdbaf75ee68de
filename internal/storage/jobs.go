package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/jobsift/jobsift/internal/candidate"
)

const insertJobSQL = `
INSERT INTO jobs (
    id, title, company, location, url, salary, remote, seniority, role_type,
    application_type, freshness, description, source, status, suitability,
    posted_at, career_page_url, red_flags, research_status, researched_at
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8, $9,
    $10, $11, $12, $13, $14, $15,
    $16, $17, $18, $19, $20
)
ON CONFLICT (id) DO NOTHING`

// IdentityRows fetches the minimal columns needed to build the dedupe
// index against existing storage: one snapshot per sync invocation.
func (s *Store) IdentityRows(ctx context.Context) ([]candidate.Candidate, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, COALESCE(source, ''), title, company, COALESCE(url, ''),
		        COALESCE(salary, ''), COALESCE(description, '')
		 FROM jobs`)
	if err != nil {
		return nil, fmt.Errorf("fetch existing jobs: %w", err)
	}
	defer rows.Close()

	var existing []candidate.Candidate
	for rows.Next() {
		var c candidate.Candidate
		if err := rows.Scan(&c.ID, &c.Source, &c.Title, &c.Company, &c.URL, &c.Salary, &c.Description); err != nil {
			return nil, fmt.Errorf("scan existing job: %w", err)
		}
		existing = append(existing, c)
	}
	return existing, rows.Err()
}

// SweepStale flips freshness to stale for rows whose posting date (or row
// creation date when posted_at is null) is older than cutoff. Converges:
// repeated sweeps are no-ops.
func (s *Store) SweepStale(ctx context.Context, cutoff time.Time) (int64, error) {
	byPosted, err := s.pool.Exec(ctx,
		`UPDATE jobs SET freshness = 'stale'
		 WHERE posted_at < $1 AND freshness IS DISTINCT FROM 'stale'`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("sweep by posted_at: %w", err)
	}

	byCreated, err := s.pool.Exec(ctx,
		`UPDATE jobs SET freshness = 'stale'
		 WHERE posted_at IS NULL AND created_at < $1 AND freshness IS DISTINCT FROM 'stale'`, cutoff)
	if err != nil {
		return byPosted.RowsAffected(), fmt.Errorf("sweep by created_at: %w", err)
	}

	return byPosted.RowsAffected() + byCreated.RowsAffected(), nil
}

// InsertCandidate performs an insert-or-ignore for one candidate. The bool
// reports whether a row was actually written; a conflict on id is a silent
// no-op so re-runs stay safe.
func (s *Store) InsertCandidate(ctx context.Context, c candidate.Candidate, scoreCutoff int) (bool, error) {
	tag, err := s.pool.Exec(ctx, insertJobSQL, insertArgs(c, scoreCutoff, time.Now().UTC())...)
	if err != nil {
		return false, fmt.Errorf("insert job %s: %w", c.ID, err)
	}
	return tag.RowsAffected() > 0, nil
}

// BulkUpsert writes a whole batch inside one transaction, for replaying a
// fallback artifact after a failed sync. All-or-nothing.
func (s *Store) BulkUpsert(ctx context.Context, batch []candidate.Candidate, scoreCutoff int) (int64, error) {
	var inserted int64
	err := s.WithTransaction(ctx, func(tx pgx.Tx) error {
		now := time.Now().UTC()
		for _, c := range batch {
			tag, err := tx.Exec(ctx, insertJobSQL, insertArgs(c, scoreCutoff, now)...)
			if err != nil {
				return fmt.Errorf("insert job %s: %w", c.ID, err)
			}
			inserted += tag.RowsAffected()
		}
		return nil
	})
	return inserted, err
}

// CountAll returns the total number of persisted jobs.
func (s *Store) CountAll(ctx context.Context) (int64, error) {
	var count int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM jobs`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count jobs: %w", err)
	}
	return count, nil
}

// GhostedJob identifies an application flipped to ghosted.
type GhostedJob struct {
	ID      string
	Company string
	Title   string
}

// AutoGhost marks awaiting applications older than cutoff as ghosted.
// Removal stays a status transition; rows are never deleted.
func (s *Store) AutoGhost(ctx context.Context, cutoff time.Time, note string) ([]GhostedJob, error) {
	rows, err := s.pool.Query(ctx,
		`UPDATE jobs
		 SET status = 'ghosted', outcome_at = NOW(), outcome_notes = $2, updated_at = NOW()
		 WHERE status = 'awaiting' AND applied_at < $1
		 RETURNING id, company, title`, cutoff, note)
	if err != nil {
		return nil, fmt.Errorf("auto-ghost: %w", err)
	}
	defer rows.Close()

	var ghosted []GhostedJob
	for rows.Next() {
		var g GhostedJob
		if err := rows.Scan(&g.ID, &g.Company, &g.Title); err != nil {
			return nil, fmt.Errorf("scan ghosted job: %w", err)
		}
		ghosted = append(ghosted, g)
	}

	if len(ghosted) > 0 {
		s.logger.Info("ghosted stale applications", zap.Int("count", len(ghosted)))
	}
	return ghosted, rows.Err()
}

func insertArgs(c candidate.Candidate, scoreCutoff int, now time.Time) []any {
	var postedAt any
	if t, ok := c.PostedTime(); ok {
		postedAt = t
	}

	flags := c.RedFlags
	if flags == nil {
		flags = []candidate.RedFlag{}
	}
	// Marshal of a flat struct slice cannot fail.
	flagsJSON, _ := json.Marshal(flags)

	hasResearch := c.DirectJobURL != "" || c.RedFlags != nil
	researchStatus := "skipped"
	var researchedAt any
	switch {
	case hasResearch:
		researchStatus = "complete"
		researchedAt = now
	case c.Suitability >= scoreCutoff:
		researchStatus = "pending"
	}

	return []any{
		c.ID, c.Title, c.Company, nullable(c.Location), nullable(c.URL), nullable(c.Salary),
		c.Remote, c.Seniority, c.RoleType, c.Type, c.Freshness, nullable(c.Description),
		nullable(c.Source), "new", c.Suitability, postedAt, nullable(c.DirectJobURL),
		flagsJSON, researchStatus, researchedAt,
	}
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
