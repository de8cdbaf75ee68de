package fetch

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/jobsift/jobsift/internal/candidate"
	"github.com/jobsift/jobsift/internal/config"
)

type stubSource struct {
	name string
	rows []candidate.Candidate
	err  error
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Fetch(ctx context.Context) ([]candidate.Candidate, error) {
	return s.rows, s.err
}

func rawPosting(title, company string) candidate.Candidate {
	return candidate.Candidate{
		Title:       title,
		Company:     company,
		Location:    "Manchester",
		Salary:      "£60k-70k",
		Description: "user research on a b2b product",
		PostedAt:    time.Now().AddDate(0, 0, -2).Format("2006-01-02"),
	}
}

func TestProcessorDropsAndSorts(t *testing.T) {
	p := NewProcessor(config.Defaults(), zap.NewNop())

	strong := rawPosting("Senior UX Designer", "Acme")
	strong.Description += " with figma and conversion optimisation for ecommerce"
	weak := rawPosting("UX Designer", "Globex")
	excluded := rawPosting("Lead Product Designer", "Initech")
	unusable := candidate.Candidate{Title: "No Company Role"}

	processed := p.Process("adzuna", []candidate.Candidate{weak, unusable, excluded, strong})

	if len(processed) != 2 {
		t.Fatalf("expected 2 kept, got %d", len(processed))
	}
	if processed[0].Company != "Acme" {
		t.Fatalf("expected suitability-desc order, got %q first", processed[0].Company)
	}
	if processed[0].Suitability <= processed[1].Suitability {
		t.Fatalf("order broken: %d then %d", processed[0].Suitability, processed[1].Suitability)
	}
	for _, c := range processed {
		if c.ID == "" {
			t.Fatalf("processed candidates must carry ids")
		}
	}
}

func TestAllIsBestEffort(t *testing.T) {
	files := candidate.NewFileStore(t.TempDir())
	p := NewProcessor(config.Defaults(), zap.NewNop())

	sources := []Source{
		&stubSource{name: "adzuna", rows: []candidate.Candidate{rawPosting("Senior UX Designer", "Acme")}},
		&stubSource{name: "reed", err: errors.New("api down")},
	}

	results := All(context.Background(), sources, p, files, zap.NewNop())

	if len(results) != 2 {
		t.Fatalf("expected a result per source, got %d", len(results))
	}
	if results[0].Err != nil || results[0].Count != 1 {
		t.Fatalf("healthy source must report its count: %+v", results[0])
	}
	if results[1].Err == nil {
		t.Fatalf("failed source must report its error")
	}

	saved, _, err := files.Load("adzuna")
	if err != nil || len(saved) != 1 {
		t.Fatalf("healthy source's file must be written: %v, %d", err, len(saved))
	}
}
