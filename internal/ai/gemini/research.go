package gemini

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/jobsift/jobsift/internal/ai"
	"github.com/jobsift/jobsift/internal/candidate"
	"github.com/jobsift/jobsift/internal/logger"
)

const defaultResearchBatchSize = 8

// Investigator researches queued candidates in fixed-size batches: recruiter
// detection, direct listing verification, expiry, red flags.
type Investigator struct {
	gen       contentGenerator
	batchSize int
	logger    *zap.Logger
}

func NewInvestigator(gen contentGenerator, batchSize int, log *zap.Logger) *Investigator {
	if batchSize <= 0 {
		batchSize = defaultResearchBatchSize
	}
	return &Investigator{gen: gen, batchSize: batchSize, logger: log}
}

// Research runs the queue through the model batch by batch. Results that do
// not reference a queued id are dropped; an entirely empty outcome across a
// non-empty queue needs operator attention.
func (v *Investigator) Research(ctx context.Context, queue []candidate.Candidate) ([]ai.ResearchResult, error) {
	if len(queue) == 0 {
		return nil, nil
	}

	batches := (len(queue) + v.batchSize - 1) / v.batchSize
	var results []ai.ResearchResult

	for i := 0; i < len(queue); i += v.batchSize {
		end := i + v.batchSize
		if end > len(queue) {
			end = len(queue)
		}
		batch := queue[i:end]

		v.logger.Info("researching batch",
			zap.Int("batch", i/v.batchSize+1),
			zap.Int("batches", batches),
			zap.Int("size", len(batch)),
		)

		parsed, err := v.generateArray(ctx, buildResearchPrompt(batch))
		if err != nil {
			return nil, err
		}

		results = append(results, validateResults(parsed, batch)...)
	}

	if len(results) == 0 {
		return nil, ai.NeedsIntervention("no valid research results were returned", nil)
	}
	return results, nil
}

// generateArray calls the model and parses a JSON array of loose objects,
// retrying once on malformed output.
func (v *Investigator) generateArray(ctx context.Context, prompt string) ([]any, error) {
	raw, err := v.gen.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("research call: %w", err)
	}

	parsed, parseErr := parseArray(raw)
	if parseErr == nil {
		return parsed, nil
	}

	v.logger.Warn("research output was not valid JSON, retrying",
		zap.Error(parseErr),
		zap.String("output", logger.TruncateForLog(raw, 500)),
	)

	raw, err = v.gen.GenerateContent(ctx, prompt+strictJSONInstruction)
	if err != nil {
		return nil, fmt.Errorf("research retry call: %w", err)
	}

	parsed, parseErr = parseArray(raw)
	if parseErr != nil {
		return nil, ai.NeedsIntervention("research output was not valid JSON after retry", parseErr)
	}
	return parsed, nil
}

func parseArray(raw string) ([]any, error) {
	text := extractJSON(raw)
	sliced, ok := sliceJSONArray(text)
	if !ok {
		return nil, fmt.Errorf("no JSON array in output")
	}

	var parsed []any
	if err := json.Unmarshal([]byte(sliced), &parsed); err != nil {
		return nil, err
	}
	return parsed, nil
}

// validateResults keeps only results whose id names a candidate from the
// batch, so hallucinated ids can never touch another candidate's record.
func validateResults(items []any, batch []candidate.Candidate) []ai.ResearchResult {
	expected := make(map[string]struct{}, len(batch))
	for _, c := range batch {
		expected[c.ID] = struct{}{}
	}

	valid := make([]ai.ResearchResult, 0, len(items))
	for _, item := range items {
		var result ai.ResearchResult
		if err := decodeLoose(item, &result); err != nil {
			continue
		}
		if _, ok := expected[result.ID]; !ok {
			continue
		}
		valid = append(valid, result)
	}
	return valid
}

func buildResearchPrompt(batch []candidate.Candidate) string {
	payload, _ := json.MarshalIndent(batch, "", "  ")

	return fmt.Sprintf(`Research this list of jobs and return ONLY a JSON array.

Jobs:
%s

For each job id, return exactly:
{
  "id": "...",
  "company": "...",
  "is_recruiter": true|false,
  "direct_job_url": "https://..." or null,
  "expired": true|false,
  "red_flags": [
    {"type":"layoffs|glassdoor_low|financial|turnover|news_negative","severity":"high|medium|low","summary":"...","source":"https://..."}
  ]
}

Rules:
- Verify direct job URLs before returning them.
- If you cannot verify a direct listing, return direct_job_url=null.
- Mark expired=true if the role appears closed or unavailable.
- Only include red flags that are backed by evidence.
- Return strict JSON array only. No prose, no markdown.
`, payload)
}
