package candidate

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	freshDays  = 7
	recentDays = 30
)

// classRule maps a set of substrings to a label. Rules are evaluated in
// order; the first rule with any matching keyword wins.
type classRule struct {
	keywords []string
	label    string
}

// Order matters: "senior lead designer" must resolve to lead.
var seniorityRules = []classRule{
	{keywords: []string{"lead", "principal", "head"}, label: SeniorityLead},
	{keywords: []string{"senior", "sr"}, label: SenioritySenior},
	{keywords: []string{"junior", "entry"}, label: SeniorityJunior},
}

// recruiterSignals is a disjunction: any match flips the application type.
// No precedence between entries.
var recruiterSignals = []string{
	"recruiter",
	"recruitment",
	"agency",
	"staffing",
	"talent partner",
	"headhunter",
}

// Normalizer classifies raw candidate fields into the canonical vocabulary.
// now is injectable for deterministic freshness tests.
type Normalizer struct {
	now func() time.Time
}

func NewNormalizer() *Normalizer {
	return &Normalizer{now: time.Now}
}

// Normalize converts a raw record from the given source into the canonical
// shape. The second return value is false when the record is unusable
// (missing title or company); such records are dropped, never an error.
func (n *Normalizer) Normalize(source string, raw Candidate) (Candidate, bool) {
	if strings.TrimSpace(raw.Title) == "" || strings.TrimSpace(raw.Company) == "" {
		return Candidate{}, false
	}

	c := raw
	c.Source = strings.ToLower(strings.TrimSpace(source))
	c.Type = NormalizeApplicationType(raw.Type, raw.Company, raw.Description)
	c.Seniority = NormalizeSeniority(raw.Seniority, raw.Title)
	c.RoleType = NormalizeRoleType(raw.RoleType, raw.Title, raw.Description)
	c.Freshness = n.normalizeFreshness(raw.Freshness, raw.PostedAt)
	if c.Suitability < 0 {
		c.Suitability = 0
	}
	c.EnsureID()

	return c, true
}

// NormalizeApplicationType tests the raw type tag, company name and
// description against the recruiter-signal vocabulary. Any match means
// recruiter; the check is order-independent.
func NormalizeApplicationType(rawType, company, description string) string {
	text := strings.ToLower(rawType + " " + company + " " + description)
	for _, signal := range recruiterSignals {
		if strings.Contains(text, signal) {
			return TypeRecruiter
		}
	}
	return TypeDirect
}

// NormalizeSeniority classifies the raw seniority field plus title through
// the ordered seniority rules, defaulting to mid.
func NormalizeSeniority(rawSeniority, title string) string {
	text := strings.ToLower(rawSeniority + " " + title)
	for _, rule := range seniorityRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(text, keyword) {
				return rule.label
			}
		}
	}
	return SeniorityMid
}

// NormalizeRoleType is a substring classifier over a two-label set.
func NormalizeRoleType(rawRoleType, title, description string) string {
	text := strings.ToLower(rawRoleType + " " + title + " " + description)
	if strings.Contains(text, "product") {
		return RoleProduct
	}
	return RoleUX
}

var freshnessDayHint = regexp.MustCompile(`(\d+)\s*day`)

// normalizeFreshness prefers computing from the posting age; a negative age
// (future date) is treated as unparseable and falls through to the free-text
// hint, then to unknown.
func (n *Normalizer) normalizeFreshness(rawFreshness, postedAt string) string {
	probe := Candidate{PostedAt: postedAt}
	if posted, ok := probe.PostedTime(); ok {
		days := int(n.now().Sub(posted).Hours() / 24)
		if days >= 0 {
			return freshnessFromAge(days)
		}
	}

	text := strings.ToLower(strings.TrimSpace(rawFreshness))
	if text == "" {
		return FreshnessUnknown
	}
	for _, label := range []string{FreshnessFresh, FreshnessRecent, FreshnessStale} {
		if strings.Contains(text, label) {
			return label
		}
	}

	if match := freshnessDayHint.FindStringSubmatch(text); match != nil {
		if days, err := strconv.Atoi(match[1]); err == nil {
			return freshnessFromAge(days)
		}
	}

	return FreshnessUnknown
}

func freshnessFromAge(days int) string {
	switch {
	case days < freshDays:
		return FreshnessFresh
	case days <= recentDays:
		return FreshnessRecent
	default:
		return FreshnessStale
	}
}
