package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/jobsift/jobsift/internal/ai"
	"github.com/jobsift/jobsift/internal/candidate"
	"github.com/jobsift/jobsift/internal/logger"
)

// contentGenerator is the prompt-in, text-out surface of the provider
// client, narrowed so tests can stub it.
type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Search collects candidates via AI-driven web and email intake. One model
// call returns every source at once, keyed by source tag.
type Search struct {
	gen         contentGenerator
	sources     []string
	scoreCutoff int
	logger      *zap.Logger
}

// defaultGatherSources are the source tags the intake prompt asks for. Board
// APIs with real clients (adzuna, reed) are fetched directly and never go
// through the model.
var defaultGatherSources = []string{"linkedin", "uiuxjobsboard", "workinstartups", "indeed"}

func NewSearch(gen contentGenerator, sources []string, scoreCutoff int, log *zap.Logger) *Search {
	if len(sources) == 0 {
		sources = defaultGatherSources
	}
	return &Search{gen: gen, sources: sources, scoreCutoff: scoreCutoff, logger: log}
}

// gatherMeta is the diagnostics object the prompt requires so a silently
// skipped email intake is detectable.
type gatherMeta struct {
	EmailChecked    bool   `json:"email_checked"`
	MessagesScanned int    `json:"email_messages_scanned"`
	EmailError      string `json:"email_error"`
}

// Gather runs the intake prompt and decodes the per-source candidate arrays.
// Malformed output gets one retry with a stricter instruction; a second
// failure needs operator attention, not another scheduled run.
func (s *Search) Gather(ctx context.Context) (map[string][]candidate.Candidate, error) {
	prompt := s.buildPrompt()

	parsed, err := s.generateObject(ctx, prompt)
	if err != nil {
		return nil, err
	}

	meta := decodeMeta(parsed["_meta"])

	gathered := make(map[string][]candidate.Candidate, len(s.sources))
	for _, source := range s.sources {
		rows, err := decodeCandidates(parsed[source])
		if err != nil {
			return nil, ai.NeedsIntervention(fmt.Sprintf("gather output for source %q was malformed", source), err)
		}

		kept := make([]candidate.Candidate, 0, len(rows))
		for _, c := range rows {
			if c.Title == "" || c.Company == "" {
				continue
			}
			if c.Suitability < s.scoreCutoff {
				continue
			}
			kept = append(kept, c)
		}
		gathered[source] = kept

		s.logger.Info("gathered source",
			zap.String("source", source),
			zap.Int("returned", len(rows)),
			zap.Int("kept", len(kept)),
		)
	}

	// The model reports email intake status itself; non-empty linkedin
	// results are accepted as equivalent evidence.
	if !meta.EmailChecked && len(gathered["linkedin"]) == 0 {
		return nil, ai.NeedsIntervention("email intake did not run, check mail access credentials", nil)
	}
	if meta.EmailError != "" {
		s.logger.Warn("email intake reported an error", zap.String("error", meta.EmailError))
	}

	return gathered, nil
}

// generateObject calls the model and parses a single JSON object out of the
// response, retrying once on malformed output.
func (s *Search) generateObject(ctx context.Context, prompt string) (map[string]any, error) {
	raw, err := s.gen.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("gather call: %w", err)
	}

	parsed, parseErr := parseObject(raw)
	if parseErr == nil {
		return parsed, nil
	}

	s.logger.Warn("gather output was not valid JSON, retrying",
		zap.Error(parseErr),
		zap.String("output", logger.TruncateForLog(raw, 500)),
	)

	raw, err = s.gen.GenerateContent(ctx, prompt+strictJSONInstruction)
	if err != nil {
		return nil, fmt.Errorf("gather retry call: %w", err)
	}

	parsed, parseErr = parseObject(raw)
	if parseErr != nil {
		return nil, ai.NeedsIntervention("gather output was not valid JSON after retry", parseErr)
	}
	return parsed, nil
}

func parseObject(raw string) (map[string]any, error) {
	text := extractJSON(raw)
	sliced, ok := sliceJSONObject(text)
	if !ok {
		return nil, fmt.Errorf("no JSON object in output")
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(sliced), &parsed); err != nil {
		return nil, err
	}
	return parsed, nil
}

func decodeMeta(value any) gatherMeta {
	var meta gatherMeta
	if value == nil {
		return meta
	}
	// Best effort; a missing or malformed _meta only weakens diagnostics.
	_ = decodeLoose(value, &meta)
	return meta
}

// decodeCandidates turns one source's loose array into typed candidates.
// Weak typing tolerates the model returning numbers as strings and similar.
func decodeCandidates(value any) ([]candidate.Candidate, error) {
	if value == nil {
		return nil, nil
	}
	items, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("expected an array, got %T", value)
	}

	rows := make([]candidate.Candidate, 0, len(items))
	for _, item := range items {
		var c candidate.Candidate
		if err := decodeLoose(item, &c); err != nil {
			return nil, err
		}
		rows = append(rows, c)
	}
	return rows, nil
}

func decodeLoose(input, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}

func (s *Search) buildPrompt() string {
	var b strings.Builder

	b.WriteString("You are running job intake for a UX/Product Designer job dashboard.\n\n")
	b.WriteString("Run web and email intake and return ONLY one JSON object with keys: ")
	b.WriteString(strings.Join(s.sources, ", "))
	b.WriteString(".\nEach key must map to an array of jobs.\n\n")
	b.WriteString("Intake per source:\n")
	b.WriteString("- linkedin: scan recent LinkedIn job-alert emails (last 7 days), extract job links and details.\n")
	b.WriteString("- uiuxjobsboard: current UK remote design listings.\n")
	b.WriteString("- workinstartups: design jobs.\n")
	b.WriteString("- indeed: UK UX/product designer listings; if unavailable return an empty array.\n\n")
	b.WriteString("For EACH job, output fields:\n")
	b.WriteString("{title, company, location, type, url, remote, salary, seniority, roleType, freshness, description, suitability, postedAt}\n\n")
	b.WriteString("Hard filters:\n")
	b.WriteString("- Keep ONLY Manchester-area or Remote UK roles.\n")
	b.WriteString("- Exclude contract/freelance/part-time.\n")
	b.WriteString("- Exclude lead/principal/head-of roles.\n")
	b.WriteString("- Exclude strong UI-only focus roles.\n")
	b.WriteString("- Exclude stale jobs older than 14 days.\n\n")
	b.WriteString("Scoring:\n")
	b.WriteString("- ecommerce/retail, user research, conversion, figma: +3 each\n")
	b.WriteString("- b2b/saas, prototyping, design system: +2 each\n")
	b.WriteString("- Senior UX: +3, Mid UX: +2\n")
	b.WriteString("- Remote: +2\n")
	b.WriteString("- 80k+: +3, 65-79k: +2, 50-64k: +1\n")
	b.WriteString("- UI/UX or UI-designer emphasis: -5\n\n")
	fmt.Fprintf(&b, "Cutoff:\n- Return ONLY jobs with suitability >= %d.\n\n", s.scoreCutoff)
	b.WriteString("Output rules:\n")
	b.WriteString("- Return strict JSON only (no markdown, no prose).\n")
	b.WriteString("- Ensure every array exists even if empty.\n")
	b.WriteString("- Include this diagnostics object:\n")
	b.WriteString(`  "_meta": {"email_checked": true|false, "email_messages_scanned": number, "email_error": null|string}`)
	b.WriteString("\n")

	return b.String()
}
