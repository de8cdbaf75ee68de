// Package research plans which new candidates are worth company research
// and merges the findings back into the per-source candidate files.
package research

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"go.uber.org/zap"

	"github.com/jobsift/jobsift/internal/ai"
	"github.com/jobsift/jobsift/internal/candidate"
	"github.com/jobsift/jobsift/internal/config"
	"github.com/jobsift/jobsift/internal/dedupe"
)

const (
	// QueueName is the candidates-dir artifact holding the research queue.
	QueueName = "research-queue"
	// ResultsName is the candidates-dir artifact holding research results.
	ResultsName = "research-results"
)

// Service ties queue planning and result merging to one candidates dir.
type Service struct {
	files  *candidate.FileStore
	params config.Params
	logger *zap.Logger
}

func NewService(files *candidate.FileStore, params config.Params, logger *zap.Logger) *Service {
	return &Service{files: files, params: params, logger: logger}
}

// QueueStats summarizes one planning pass.
type QueueStats struct {
	Loaded  int
	Unique  int
	New     int
	Queued  int
	Skipped int
}

// PlanQueue loads every source file, collapses duplicates, drops candidates
// already present in storage and writes the research queue. Research is the
// expensive phase, so only new candidates at or above the threshold that are
// not already known recruiters get queued. The queue file is written even
// when empty so a later merge never reads a stale queue.
func (s *Service) PlanQueue(existing *dedupe.Index) (QueueStats, error) {
	var stats QueueStats

	all, err := s.files.LoadAll(s.params.Sources)
	if err != nil {
		return stats, err
	}
	stats.Loaded = len(all)

	unique := dedupe.Dedupe(all)
	stats.Unique = len(unique)

	fresh := make([]candidate.Candidate, 0, len(unique))
	for _, c := range unique {
		if existing.Matches(c) {
			continue
		}
		fresh = append(fresh, c)
	}
	stats.New = len(fresh)

	queue := make([]candidate.Candidate, 0, len(fresh))
	for _, c := range fresh {
		if c.Suitability < s.params.ResearchThreshold || c.Type == candidate.TypeRecruiter {
			stats.Skipped++
			continue
		}
		queue = append(queue, c)
	}
	sort.SliceStable(queue, func(i, j int) bool {
		return queue[i].Suitability > queue[j].Suitability
	})
	stats.Queued = len(queue)

	if err := s.files.Save(QueueName, queue); err != nil {
		return stats, fmt.Errorf("write research queue: %w", err)
	}

	s.logger.Info("planned research queue",
		zap.Int("loaded", stats.Loaded),
		zap.Int("unique", stats.Unique),
		zap.Int("new", stats.New),
		zap.Int("queued", stats.Queued),
		zap.Int("skipped", stats.Skipped),
	)

	for i, c := range queue {
		if i >= 5 {
			break
		}
		s.logger.Info("queued for research",
			zap.Int("rank", i+1),
			zap.String("title", c.Title),
			zap.String("company", c.Company),
			zap.Int("suitability", c.Suitability),
		)
	}

	return stats, nil
}

// LoadQueue reads the planned queue. A missing file means the filter phase
// never ran, which operators must resolve before research can proceed.
func (s *Service) LoadQueue() ([]candidate.Candidate, error) {
	path := s.files.Path(QueueName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ai.NeedsIntervention("missing "+path+", run the filter step first", err)
		}
		return nil, fmt.Errorf("read research queue: %w", err)
	}

	var queue []candidate.Candidate
	if err := json.Unmarshal(data, &queue); err != nil {
		return nil, fmt.Errorf("decode research queue: %w", err)
	}
	return queue, nil
}

// SaveResults persists research results next to the queue so a failed merge
// can be retried without re-running the model.
func (s *Service) SaveResults(results []ai.ResearchResult) error {
	if results == nil {
		results = []ai.ResearchResult{}
	}
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("encode research results: %w", err)
	}
	if err := os.WriteFile(s.files.Path(ResultsName), data, 0o644); err != nil {
		return fmt.Errorf("write research results: %w", err)
	}
	return nil
}

// LoadResults reads previously saved research results.
func (s *Service) LoadResults() ([]ai.ResearchResult, error) {
	data, err := os.ReadFile(s.files.Path(ResultsName))
	if err != nil {
		return nil, fmt.Errorf("read research results: %w", err)
	}
	var results []ai.ResearchResult
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("decode research results: %w", err)
	}
	return results, nil
}

// MergeStats summarizes one merge pass across all source files.
type MergeStats struct {
	Files      int
	Total      int
	Updated    int
	URLs       int
	Recruiters int
	RedFlags   int
	Expired    int
}

// MergeResults applies research findings to every source file. Matching is
// by exact candidate id only; a result that names no loaded candidate is
// ignored. Files without any match are left untouched.
func (s *Service) MergeResults(results []ai.ResearchResult) (MergeStats, error) {
	var stats MergeStats
	if len(results) == 0 {
		s.logger.Info("no research results to merge")
		return stats, nil
	}

	byID := make(map[string]ai.ResearchResult, len(results))
	for _, r := range results {
		if r.ID != "" {
			byID[r.ID] = r
		}
	}

	for _, source := range s.params.Sources {
		batch, _, err := s.files.Load(source)
		if err != nil {
			return stats, err
		}
		if len(batch) == 0 {
			continue
		}

		updated := 0
		for i := range batch {
			r, ok := byID[batch[i].ID]
			if !ok {
				continue
			}
			applyResult(&batch[i], r, &stats)
			updated++
		}

		stats.Files++
		stats.Total += len(batch)
		stats.Updated += updated

		if updated == 0 {
			continue
		}
		if err := s.files.Save(source, batch); err != nil {
			return stats, err
		}
		s.logger.Info("merged research into source",
			zap.String("source", source),
			zap.Int("jobs", len(batch)),
			zap.Int("updated", updated),
		)
	}

	s.logger.Info("research merge finished",
		zap.Int("files", stats.Files),
		zap.Int("updated", stats.Updated),
		zap.Int("direct_urls", stats.URLs),
		zap.Int("recruiters", stats.Recruiters),
		zap.Int("red_flags", stats.RedFlags),
		zap.Int("expired", stats.Expired),
	)
	return stats, nil
}

func applyResult(c *candidate.Candidate, r ai.ResearchResult, stats *MergeStats) {
	c.DirectJobURL = r.DirectJobURL
	if r.DirectJobURL != "" {
		stats.URLs++
	}

	c.Expired = r.Expired
	if r.Expired {
		stats.Expired++
	}

	c.RedFlags = r.RedFlags
	if c.RedFlags == nil {
		c.RedFlags = []candidate.RedFlag{}
	}
	if len(c.RedFlags) > 0 {
		stats.RedFlags++
	}

	if r.IsRecruiter && c.Type != candidate.TypeRecruiter {
		c.Type = candidate.TypeRecruiter
		stats.Recruiters++
	}
}
