// Package sync moves the surviving candidates of a run into storage. The
// batch flows through a fixed chain of narrowing steps; the only writes are
// insert-or-ignore, so re-running a sync never duplicates or mutates rows.
package sync

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/jobsift/jobsift/internal/candidate"
	"github.com/jobsift/jobsift/internal/config"
	"github.com/jobsift/jobsift/internal/dedupe"
)

// FailedImportName is the candidates-dir artifact written when inserts fail
// mid-batch, so the run can be replayed without refetching.
const FailedImportName = "failed-import"

// Store is the slice of the storage layer the sync needs.
type Store interface {
	SweepStale(ctx context.Context, cutoff time.Time) (int64, error)
	IdentityRows(ctx context.Context) ([]candidate.Candidate, error)
	InsertCandidate(ctx context.Context, c candidate.Candidate, scoreCutoff int) (bool, error)
	BulkUpsert(ctx context.Context, batch []candidate.Candidate, scoreCutoff int) (int64, error)
}

// Syncer runs the persistence phase.
type Syncer struct {
	store  Store
	files  *candidate.FileStore
	params config.Params
	logger *zap.Logger
	now    func() time.Time
}

func New(store Store, files *candidate.FileStore, params config.Params, logger *zap.Logger) *Syncer {
	return &Syncer{
		store:  store,
		files:  files,
		params: params,
		logger: logger,
		now:    time.Now,
	}
}

// Result summarizes one sync.
type Result struct {
	Swept    int64
	Loaded   int
	Unique   int
	Existing int
	New      int
	Inserted int
}

type step struct {
	initial int
	dropped int
	left    int
}

func (s *Syncer) logStep(name string, info step) {
	s.logger.Info("sync step",
		zap.String("name", name),
		zap.Int("initial", info.initial),
		zap.Int("dropped", info.dropped),
		zap.Int("left", info.left),
	)
}

// Sync sweeps stale rows, loads every candidate file, narrows the batch and
// inserts what survives. The existing-rows snapshot is fetched once; inserts
// racing another writer fall back to the ON CONFLICT no-op.
func (s *Syncer) Sync(ctx context.Context) (Result, error) {
	var res Result

	cutoff := s.now().AddDate(0, 0, -s.params.StaleAfterDays)
	swept, err := s.store.SweepStale(ctx, cutoff)
	if err != nil {
		// The sweep is housekeeping; a failed sweep must not block inserts.
		s.logger.Warn("stale sweep failed", zap.Error(err))
	} else if swept > 0 {
		s.logger.Info("marked stale jobs", zap.Int64("count", swept))
	}
	res.Swept = swept

	all, err := s.files.LoadAll(s.params.Sources)
	if err != nil {
		return res, err
	}
	res.Loaded = len(all)
	if len(all) == 0 {
		s.logger.Info("no candidates to sync")
		return res, nil
	}

	unique := dedupe.Dedupe(all)
	res.Unique = len(unique)
	s.logStep("dedupe", step{initial: len(all), dropped: len(all) - len(unique), left: len(unique)})

	existing, err := s.store.IdentityRows(ctx)
	if err != nil {
		return res, err
	}
	res.Existing = len(existing)
	idx := dedupe.NewIndex(existing)

	batch := keep(unique, func(c candidate.Candidate) bool { return !idx.Matches(c) })
	s.logStep("already-known", step{initial: len(unique), dropped: len(unique) - len(batch), left: len(batch)})

	prev := len(batch)
	batch = keep(batch, func(c candidate.Candidate) bool { return !c.Expired })
	s.logStep("expired", step{initial: prev, dropped: prev - len(batch), left: len(batch)})

	prev = len(batch)
	batch = keep(batch, func(c candidate.Candidate) bool { return c.MaxSalary() > s.params.MinSalary })
	s.logStep("salary-floor", step{initial: prev, dropped: prev - len(batch), left: len(batch)})

	prev = len(batch)
	batch = keep(batch, func(c candidate.Candidate) bool { return c.Suitability >= s.params.ScoreCutoff })
	s.logStep("score-cutoff", step{initial: prev, dropped: prev - len(batch), left: len(batch)})

	res.New = len(batch)
	if len(batch) == 0 {
		s.logger.Info("no new jobs to add", zap.Int("existing", res.Existing))
		return res, nil
	}

	sort.SliceStable(batch, func(i, j int) bool {
		return batch[i].Suitability > batch[j].Suitability
	})

	inserted, err := s.insert(ctx, batch)
	res.Inserted = inserted
	if err != nil {
		return res, err
	}

	s.logger.Info("sync finished",
		zap.Int("existing", res.Existing),
		zap.Int("new", res.New),
		zap.Int("inserted", res.Inserted),
	)
	s.logTopOpportunities(batch)

	return res, nil
}

// insert writes the batch row by row. On any failure the untouched remainder
// still has a consistent fallback: the whole batch is saved as an artifact
// and inserts stay replayable because of the id conflict no-op.
func (s *Syncer) insert(ctx context.Context, batch []candidate.Candidate) (int, error) {
	inserted := 0
	for _, c := range batch {
		ok, err := s.store.InsertCandidate(ctx, c, s.params.ScoreCutoff)
		if err != nil {
			if saveErr := s.files.Save(FailedImportName, batch); saveErr != nil {
				s.logger.Error("could not write fallback artifact", zap.Error(saveErr))
			} else {
				s.logger.Warn("insert failed, fallback artifact written",
					zap.String("artifact", s.files.Path(FailedImportName)),
				)
			}
			return inserted, fmt.Errorf("sync aborted: %w", err)
		}
		if ok {
			inserted++
		}
	}
	return inserted, nil
}

// Replay re-imports a previously written fallback artifact in a single
// transaction and removes the artifact on success.
func (s *Syncer) Replay(ctx context.Context) (int64, error) {
	batch, _, err := s.files.Load(FailedImportName)
	if err != nil {
		return 0, err
	}
	if len(batch) == 0 {
		s.logger.Info("no fallback artifact to replay")
		return 0, nil
	}

	inserted, err := s.store.BulkUpsert(ctx, batch, s.params.ScoreCutoff)
	if err != nil {
		return 0, fmt.Errorf("replay fallback artifact: %w", err)
	}

	if err := os.Remove(s.files.Path(FailedImportName)); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("could not remove fallback artifact", zap.Error(err))
	}

	s.logger.Info("replayed fallback artifact",
		zap.Int("batch", len(batch)),
		zap.Int64("inserted", inserted),
	)
	return inserted, nil
}

func (s *Syncer) logTopOpportunities(batch []candidate.Candidate) {
	for i, c := range batch {
		if i >= 5 {
			break
		}
		s.logger.Info("top opportunity",
			zap.Int("rank", i+1),
			zap.String("title", c.Title),
			zap.String("company", c.Company),
			zap.Int("suitability", c.Suitability),
		)
	}
}

func keep(batch []candidate.Candidate, pred func(candidate.Candidate) bool) []candidate.Candidate {
	kept := batch[:0:0]
	for _, c := range batch {
		if pred(c) {
			kept = append(kept, c)
		}
	}
	return kept
}
