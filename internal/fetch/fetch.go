// Package fetch pulls raw postings from job-board APIs and turns them into
// scored candidate files. Each source only maps wire fields; normalization,
// acceptance filtering and scoring are shared.
package fetch

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/jobsift/jobsift/internal/candidate"
	"github.com/jobsift/jobsift/internal/config"
	"github.com/jobsift/jobsift/internal/filter"
	"github.com/jobsift/jobsift/internal/score"
)

// Source is a job-board provider. Fetch returns raw records mapped to the
// candidate shape; the pipeline's only contract with a source is that every
// record passes through Normalize before use.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]candidate.Candidate, error)
}

// Processor turns raw source records into a filtered, scored, sorted batch.
type Processor struct {
	norm   *candidate.Normalizer
	scorer *score.Scorer
	filter *filter.Filter
	logger *zap.Logger
}

func NewProcessor(params config.Params, logger *zap.Logger) *Processor {
	return &Processor{
		norm:   candidate.NewNormalizer(),
		scorer: score.New(params),
		filter: filter.New(params),
		logger: logger,
	}
}

// Process normalizes, filters and scores one source batch. Unusable records
// and excluded candidates are dropped; drop reasons are counted for logging
// only.
func (p *Processor) Process(source string, raw []candidate.Candidate) []candidate.Candidate {
	reasons := make(map[string]int)
	invalid := 0

	processed := make([]candidate.Candidate, 0, len(raw))
	for _, record := range raw {
		c, ok := p.norm.Normalize(source, record)
		if !ok {
			invalid++
			continue
		}

		if reason := p.filter.ShouldExclude(c); reason != "" {
			reasons[reason]++
			continue
		}

		c.Suitability = p.scorer.Score(c)
		processed = append(processed, c)
	}

	sort.SliceStable(processed, func(i, j int) bool {
		return processed[i].Suitability > processed[j].Suitability
	})

	p.logger.Info("processed source batch",
		zap.String("source", source),
		zap.Int("raw", len(raw)),
		zap.Int("invalid", invalid),
		zap.Int("kept", len(processed)),
		zap.Any("excluded", reasons),
	)

	return processed
}

// Result is the outcome of one source fetch.
type Result struct {
	Source string
	Count  int
	Err    error
}

// All runs every source concurrently and joins before returning. The join
// is best-effort: one failing source is reported in its Result but does not
// discard what the others fetched.
func All(ctx context.Context, sources []Source, processor *Processor, files *candidate.FileStore, logger *zap.Logger) []Result {
	results := make([]Result, len(sources))
	var wg sync.WaitGroup

	for i, src := range sources {
		wg.Add(1)
		go func(i int, src Source) {
			defer wg.Done()

			raw, err := src.Fetch(ctx)
			if err != nil {
				logger.Warn("source fetch failed",
					zap.String("source", src.Name()),
					zap.Error(err),
				)
				results[i] = Result{Source: src.Name(), Err: err}
				return
			}

			processed := processor.Process(src.Name(), raw)
			if err := files.Save(src.Name(), processed); err != nil {
				results[i] = Result{Source: src.Name(), Err: err}
				return
			}
			results[i] = Result{Source: src.Name(), Count: len(processed)}
		}(i, src)
	}

	wg.Wait()
	return results
}
