package score

import (
	"testing"
	"time"

	"github.com/jobsift/jobsift/internal/candidate"
	"github.com/jobsift/jobsift/internal/config"
)

func fixedScorer(now time.Time) *Scorer {
	s := New(config.Defaults())
	s.now = func() time.Time { return now }
	return s
}

func TestScoreAdditiveFamilies(t *testing.T) {
	s := New(config.Defaults())

	c := candidate.Candidate{
		Title:       "Designer",
		Company:     "Acme",
		Description: "ecommerce retail conversion figma",
	}
	// ecommerce/retail (+3), conversion (+3), figma (+3). Keywords within
	// one family must not stack.
	if got := s.Score(c); got != 9 {
		t.Fatalf("expected 9, got %d", got)
	}
}

func TestScoreSeniorityAndRemote(t *testing.T) {
	s := New(config.Defaults())

	base := candidate.Candidate{Title: "Senior UX Designer", Company: "Acme"}
	if got := s.Score(base); got != 3 {
		t.Fatalf("expected 3 for senior ux, got %d", got)
	}

	remote := base
	remote.Remote = true
	if got := s.Score(remote); got != s.Score(base)+2 {
		t.Fatalf("remote must add exactly 2: %d vs %d", s.Score(remote), s.Score(base))
	}

	mid := candidate.Candidate{Title: "Mid-weight Designer", Company: "Acme"}
	if got := s.Score(mid); got != 2 {
		t.Fatalf("expected 2 for mid, got %d", got)
	}
}

func TestScoreSalaryTiers(t *testing.T) {
	s := New(config.Defaults())

	cases := []struct {
		salary string
		want   int
	}{
		{"£85k", 3},
		{"£80,000", 3},
		{"£70k", 2},
		{"£55k", 1},
		{"£40k", 0},
		{"", 0},
	}
	for _, tc := range cases {
		c := candidate.Candidate{Title: "Designer", Company: "Acme", Salary: tc.salary}
		if got := s.Score(c); got != tc.want {
			t.Fatalf("salary %q: expected %d, got %d", tc.salary, tc.want, got)
		}
	}
}

func TestScoreFreshnessBonus(t *testing.T) {
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	s := fixedScorer(now)

	fresh := candidate.Candidate{Title: "Designer", Company: "Acme", PostedAt: "2026-01-25"}
	if got := s.Score(fresh); got != 2 {
		t.Fatalf("expected freshness bonus 2, got %d", got)
	}

	old := candidate.Candidate{Title: "Designer", Company: "Acme", PostedAt: "2025-12-01"}
	if got := s.Score(old); got != 0 {
		t.Fatalf("expected no bonus for old posting, got %d", got)
	}

	// Without a parseable date the freshness label decides.
	labeled := candidate.Candidate{Title: "Designer", Company: "Acme", Freshness: candidate.FreshnessRecent}
	if got := s.Score(labeled); got != 2 {
		t.Fatalf("expected bonus from freshness label, got %d", got)
	}
}

func TestScoreUIPenaltyAndFloor(t *testing.T) {
	s := New(config.Defaults())

	penalized := candidate.Candidate{Title: "UI Designer", Company: "Acme"}
	if got := s.Score(penalized); got != 0 {
		t.Fatalf("score must floor at 0, got %d", got)
	}

	// The penalty still subtracts from an otherwise strong candidate.
	strong := candidate.Candidate{
		Title:       "Senior UX Designer",
		Company:     "Acme",
		Description: "figma user research design system",
		Remote:      true,
	}
	uiHeavy := strong
	uiHeavy.Title = "Senior UI/UX Designer"
	// Switching the title away from "senior ux" also loses the +3 match.
	if s.Score(uiHeavy) >= s.Score(strong) {
		t.Fatalf("ui emphasis must lower the score: %d vs %d", s.Score(uiHeavy), s.Score(strong))
	}
}

func TestScoreMonotonicInSignals(t *testing.T) {
	s := New(config.Defaults())

	c := candidate.Candidate{Title: "Senior UX Designer", Company: "Acme"}
	prev := s.Score(c)

	c.Description = "figma"
	if got := s.Score(c); got <= prev {
		t.Fatalf("adding a signal must not lower the score: %d -> %d", prev, got)
	}
	prev = s.Score(c)

	c.Remote = true
	if got := s.Score(c); got <= prev {
		t.Fatalf("remote must not lower the score: %d -> %d", prev, got)
	}
}
