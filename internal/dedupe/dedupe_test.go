package dedupe

import (
	"testing"

	"github.com/jobsift/jobsift/internal/candidate"
)

func TestDedupeKeepsBestAndUnionsSources(t *testing.T) {
	batch := []candidate.Candidate{
		{ID: "reed-acme-ux", Title: "UX Designer", Company: "Acme Ltd", Source: "reed", Suitability: 10},
		{ID: "adzuna-acme-ux", Title: "UX Designer (Remote)", Company: "ACME", Source: "adzuna", Suitability: 14},
	}

	deduped := Dedupe(batch)
	if len(deduped) != 1 {
		t.Fatalf("expected 1 candidate after dedupe, got %d", len(deduped))
	}

	winner := deduped[0]
	if winner.ID != "adzuna-acme-ux" {
		t.Fatalf("expected the higher-scored candidate to win, got %q", winner.ID)
	}
	if winner.Source != "adzuna,reed" {
		t.Fatalf("expected source union, got %q", winner.Source)
	}
}

func TestDedupeTiesBreakOnPostedAt(t *testing.T) {
	batch := []candidate.Candidate{
		{ID: "old", Title: "UX Designer", Company: "Acme", Source: "reed", Suitability: 12, PostedAt: "2026-01-01"},
		{ID: "new", Title: "UX Designer", Company: "Acme", Source: "adzuna", Suitability: 12, PostedAt: "2026-01-20"},
	}

	deduped := Dedupe(batch)
	if len(deduped) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(deduped))
	}
	if deduped[0].ID != "new" {
		t.Fatalf("expected the fresher candidate to win the tie, got %q", deduped[0].ID)
	}
}

func TestDedupeDistinctCandidatesSurvive(t *testing.T) {
	batch := []candidate.Candidate{
		{ID: "a", Title: "UX Designer", Company: "Acme", Source: "reed", Suitability: 12},
		{ID: "b", Title: "Product Designer", Company: "Globex", Source: "adzuna", Suitability: 10},
	}

	deduped := Dedupe(batch)
	if len(deduped) != 2 {
		t.Fatalf("expected both candidates to survive, got %d", len(deduped))
	}
}

func TestDedupeMatchesByURL(t *testing.T) {
	batch := []candidate.Candidate{
		{ID: "x", Title: "UX Designer", Company: "Acme", Source: "reed", Suitability: 12,
			URL: "https://boards.example.com/jobs/1"},
		{ID: "y", Title: "Totally Different Listing Name", Company: "Unrelated Co", Source: "adzuna", Suitability: 9,
			URL: "https://boards.example.com/jobs/1/"},
	}

	deduped := Dedupe(batch)
	if len(deduped) != 1 {
		t.Fatalf("same canonical url must merge, got %d candidates", len(deduped))
	}
}

func TestIndexMatches(t *testing.T) {
	existing := []candidate.Candidate{
		{ID: "adzuna-acme-ux-designer", Title: "UX Designer", Company: "Acme Ltd", Source: "adzuna",
			URL: "https://boards.example.com/jobs/1"},
	}
	idx := NewIndex(existing)

	if idx.Len() != 1 {
		t.Fatalf("expected 1 indexed row, got %d", idx.Len())
	}

	byID := candidate.Candidate{ID: "adzuna-acme-ux-designer", Title: "Other", Company: "Other"}
	if !idx.Matches(byID) {
		t.Fatalf("expected match by id")
	}

	fuzzy := candidate.Candidate{ID: "reed-acme-ux-designer", Title: "UX Designer (Hybrid)", Company: "ACME", Source: "reed"}
	if !idx.Matches(fuzzy) {
		t.Fatalf("expected fuzzy match on company+title")
	}

	fresh := candidate.Candidate{ID: "reed-globex-product", Title: "Product Designer", Company: "Globex", Source: "reed"}
	if idx.Matches(fresh) {
		t.Fatalf("unrelated candidate must not match")
	}
}
