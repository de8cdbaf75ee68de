package candidate

import (
	"sort"
	"strings"
	"time"
)

// Seniority levels, ordered from most to least senior for classification.
const (
	SeniorityLead   = "lead"
	SenioritySenior = "senior"
	SeniorityMid    = "mid"
	SeniorityJunior = "junior"
)

// Role types.
const (
	RoleUX      = "ux"
	RoleProduct = "product"
)

// Application types.
const (
	TypeDirect    = "direct"
	TypeRecruiter = "recruiter"
)

// Freshness buckets.
const (
	FreshnessFresh   = "fresh"
	FreshnessRecent  = "recent"
	FreshnessStale   = "stale"
	FreshnessUnknown = "unknown"
)

// RedFlag is a research finding about an employer, ordered by discovery.
type RedFlag struct {
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Summary  string `json:"summary"`
	Source   string `json:"source,omitempty"`
}

// Candidate is a normalized job posting flowing through the pipeline.
// PostedAt stays a string because sources disagree on date formats; use
// PostedTime when a parsed value is needed.
type Candidate struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location,omitempty"`
	Source      string `json:"source,omitempty"`
	Type        string `json:"type,omitempty"`
	URL         string `json:"url,omitempty"`
	Remote      bool   `json:"remote,omitempty"`
	Salary      string `json:"salary,omitempty"`
	Seniority   string `json:"seniority,omitempty"`
	RoleType    string `json:"roleType,omitempty"`
	Freshness   string `json:"freshness,omitempty"`
	Description string `json:"description,omitempty"`
	Suitability int    `json:"suitability"`
	PostedAt    string `json:"postedAt,omitempty"`

	// Research fields, populated after the research phase.
	DirectJobURL string    `json:"directJobUrl,omitempty"`
	Expired      bool      `json:"expired,omitempty"`
	RedFlags     []RedFlag `json:"redFlags,omitempty"`
}

// postedAtLayouts covers the formats seen across job boards.
var postedAtLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"02/01/2006",
}

// PostedTime parses PostedAt. The second return value is false when the
// field is empty or unparseable.
func (c *Candidate) PostedTime() (time.Time, bool) {
	raw := strings.TrimSpace(c.PostedAt)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range postedAtLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// SplitSourceTags splits a comma-joined source value into trimmed,
// lowercased tags.
func SplitSourceTags(value string) []string {
	var tags []string
	for _, part := range strings.Split(value, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			tags = append(tags, part)
		}
	}
	return tags
}

// MergeSourceTags unions the given source values into a sorted,
// deduplicated, comma-joined set. Source on a merged record is always the
// union of every contributing origin.
func MergeSourceTags(values ...string) string {
	set := make(map[string]struct{})
	for _, value := range values {
		for _, tag := range SplitSourceTags(value) {
			set[tag] = struct{}{}
		}
	}
	if len(set) == 0 {
		return ""
	}
	tags := make([]string, 0, len(set))
	for tag := range set {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return strings.Join(tags, ",")
}
