package filter

import (
	"testing"
	"time"

	"github.com/jobsift/jobsift/internal/candidate"
	"github.com/jobsift/jobsift/internal/config"
)

func fixedFilter(now time.Time) *Filter {
	f := New(config.Defaults())
	f.now = func() time.Time { return now }
	return f
}

// good returns a candidate that passes every rule.
func good() candidate.Candidate {
	return candidate.Candidate{
		Title:       "Senior UX Designer",
		Company:     "Acme",
		Location:    "Manchester",
		Salary:      "£60k-70k",
		Description: "user research and wireframes for a b2b product",
	}
}

func TestShouldExcludePasses(t *testing.T) {
	f := New(config.Defaults())
	if reason := f.ShouldExclude(good()); reason != "" {
		t.Fatalf("expected candidate to pass, got reason %q", reason)
	}
}

func TestShouldExcludeReasons(t *testing.T) {
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	f := fixedFilter(now)

	cases := []struct {
		name   string
		mutate func(c *candidate.Candidate)
		want   string
	}{
		{
			name:   "wrong city",
			mutate: func(c *candidate.Candidate) { c.Location = "Edinburgh" },
			want:   ReasonLocation,
		},
		{
			name: "remote overseas",
			mutate: func(c *candidate.Candidate) {
				c.Remote = true
				c.Location = "Remote, United States"
			},
			want: ReasonOverseas,
		},
		{
			name:   "stale by posted date",
			mutate: func(c *candidate.Candidate) { c.PostedAt = "2025-12-01" },
			want:   ReasonStale,
		},
		{
			name:   "stale by label",
			mutate: func(c *candidate.Candidate) { c.Freshness = candidate.FreshnessStale },
			want:   ReasonStale,
		},
		{
			name:   "contract in description",
			mutate: func(c *candidate.Candidate) { c.Description = "6 month contract, user research" },
			want:   ReasonContract,
		},
		{
			name:   "engineering title",
			mutate: func(c *candidate.Candidate) { c.Title = "Senior UX Engineer" },
			want:   ReasonEngineering,
		},
		{
			name:   "product manager",
			mutate: func(c *candidate.Candidate) { c.Title = "Product Manager" },
			want:   ReasonProductMgr,
		},
		{
			name:   "lead role",
			mutate: func(c *candidate.Candidate) { c.Title = "Lead Product Designer" },
			want:   ReasonLead,
		},
		{
			name:   "ui title",
			mutate: func(c *candidate.Candidate) { c.Title = "UI Designer" },
			want:   ReasonUIFocus,
		},
		{
			name:   "denylisted employer",
			mutate: func(c *candidate.Candidate) { c.Company = "Bet365 Group" },
			want:   ReasonDenylisted,
		},
		{
			name:   "salary below floor",
			mutate: func(c *candidate.Candidate) { c.Salary = "£40k" },
			want:   ReasonLowSalary,
		},
		{
			name:   "missing salary",
			mutate: func(c *candidate.Candidate) { c.Salary = "" },
			want:   ReasonLowSalary,
		},
		{
			name:   "wrong designer discipline",
			mutate: func(c *candidate.Candidate) { c.Title = "Service Designer" },
			want:   ReasonWrongDesigner,
		},
		{
			name:   "not a design role",
			mutate: func(c *candidate.Candidate) { c.Title = "Marketing Executive" },
			want:   ReasonNotDesignRole,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := good()
			tc.mutate(&c)
			if got := f.ShouldExclude(c); got != tc.want {
				t.Fatalf("expected reason %q, got %q", tc.want, got)
			}
		})
	}
}

// The rule table is ordered: a candidate that is both stale and a contract
// role reports stale.
func TestShouldExcludeFirstMatchWins(t *testing.T) {
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	f := fixedFilter(now)

	c := good()
	c.PostedAt = "2025-12-01"
	c.Description = "fixed term contract"

	if got := f.ShouldExclude(c); got != ReasonStale {
		t.Fatalf("expected stale to win over contract, got %q", got)
	}
}

func TestUIEmphasisHeuristic(t *testing.T) {
	f := New(config.Defaults())

	c := good()
	c.Description = "visual design, pixel perfection, photoshop and branding work"
	if got := f.ShouldExclude(c); got != ReasonUIFocus {
		t.Fatalf("expected ui-focus for UI-heavy description, got %q", got)
	}

	// One UX signal rescues the candidate.
	c.Description += " alongside user research"
	if got := f.ShouldExclude(c); got == ReasonUIFocus {
		t.Fatalf("ux signal must disable the ui-emphasis rule")
	}
}

func TestRemoteInCountryPasses(t *testing.T) {
	f := New(config.Defaults())

	c := good()
	c.Remote = true
	c.Location = "Remote, UK"
	if got := f.ShouldExclude(c); got != "" {
		t.Fatalf("remote uk must pass, got %q", got)
	}
}
