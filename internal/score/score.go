// Package score computes the suitability score for a candidate. Scoring is
// a pure function of candidate fields so fixtures reproduce exactly.
package score

import (
	"strings"
	"time"

	"github.com/jobsift/jobsift/internal/candidate"
	"github.com/jobsift/jobsift/internal/config"
)

// signalFamily awards points when any of its keywords appears in the
// description. Families are summed, never multiplied.
type signalFamily struct {
	points   int
	keywords []string
}

var descriptionFamilies = []signalFamily{
	// Domain and problem fit.
	{points: 3, keywords: []string{"e-commerce", "ecommerce", "retail"}},
	{points: 3, keywords: []string{"conversion", "cro"}},
	{points: 3, keywords: []string{"figma"}},
	{points: 3, keywords: []string{"user research", "user testing"}},
	// Delivery and collaboration depth.
	{points: 2, keywords: []string{"b2b", "saas"}},
	{points: 2, keywords: []string{"design system"}},
	{points: 2, keywords: []string{"prototyp"}},
}

// Salary tiers are checked top-down against the parsed range maximum;
// exactly one applies.
var salaryTiers = []struct {
	floor  float64
	points int
}{
	{80000, 3},
	{65000, 2},
	{50000, 1},
}

// Scorer evaluates candidates against the configured thresholds. The clock
// is injectable so freshness bonuses stay deterministic under test.
type Scorer struct {
	params config.Params
	now    func() time.Time
}

func New(params config.Params) *Scorer {
	return &Scorer{params: params, now: time.Now}
}

// Score returns the non-negative suitability score for c.
func (s *Scorer) Score(c candidate.Candidate) int {
	title := strings.ToLower(c.Title)
	desc := strings.ToLower(c.Description)

	total := 0

	for _, family := range descriptionFamilies {
		for _, keyword := range family.keywords {
			if strings.Contains(desc, keyword) {
				total += family.points
				break
			}
		}
	}

	// Seniority match.
	switch {
	case strings.Contains(title, "senior") && strings.Contains(title, "ux"):
		total += 3
	case strings.Contains(title, "mid"):
		total += 2
	}

	if c.Remote {
		total += 2
	}

	// Salary is scored from the maximum of the parsed range, not the
	// minimum: a role topping out above a tier is worth the tier.
	if max := c.MaxSalary(); max > 0 {
		for _, tier := range salaryTiers {
			if max >= tier.floor {
				total += tier.points
				break
			}
		}
	}

	if s.isFresh(c) {
		total += 2
	}

	// Heavy UI emphasis in the title signals the wrong kind of role.
	if strings.Contains(title, "ui/ux") || strings.Contains(title, "ui designer") {
		total -= 5
	}

	if total < 0 {
		return 0
	}
	return total
}

func (s *Scorer) isFresh(c candidate.Candidate) bool {
	if posted, ok := c.PostedTime(); ok {
		days := int(s.now().Sub(posted).Hours() / 24)
		return days >= 0 && days < s.params.MaxAgeDays
	}
	return c.Freshness == candidate.FreshnessFresh || c.Freshness == candidate.FreshnessRecent
}
