// Package dedupe detects candidates that describe the same real posting.
// Identity is layered: a canonical URL when present, then progressively
// fuzzier keys derived from company, title, salary and description.
package dedupe

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/jobsift/jobsift/internal/candidate"
)

const fingerprintLen = 120

var (
	nonAlnum     = regexp.MustCompile(`[^a-z0-9]+`)
	parenthetic  = regexp.MustCompile(`\([^)]*\)`)
	legalSuffix  = regexp.MustCompile(`\b(ltd|limited|llp|inc|corp|co|plc)\b`)
	spaceCollaps = regexp.MustCompile(`\s+`)
)

func normalizeText(value string) string {
	text := nonAlnum.ReplaceAllString(strings.ToLower(value), " ")
	return strings.TrimSpace(spaceCollaps.ReplaceAllString(text, " "))
}

// NormalizeCompany drops legal suffixes so "Acme Ltd" and "ACME" compare
// equal.
func NormalizeCompany(company string) string {
	text := legalSuffix.ReplaceAllString(normalizeText(company), "")
	return strings.TrimSpace(spaceCollaps.ReplaceAllString(text, " "))
}

// NormalizeTitle strips parenthetical qualifiers like "(Remote)" before
// normalizing.
func NormalizeTitle(title string) string {
	return normalizeText(parenthetic.ReplaceAllString(title, " "))
}

// CanonicalizeURL reduces a posting URL to lowercased host plus path with
// trailing slashes stripped. Scheme and query string are identity noise:
// tracking parameters differ per source for the same posting. Returns ""
// when the URL is absent or unparseable.
func CanonicalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return ""
	}
	host := strings.ToLower(parsed.Hostname())
	path := strings.TrimRight(parsed.EscapedPath(), "/")
	return host + strings.ToLower(path)
}

func descriptionFingerprint(description string) string {
	text := normalizeText(description)
	if len(text) > fingerprintLen {
		text = text[:fingerprintLen]
	}
	return text
}

func salaryComponent(c candidate.Candidate) string {
	bounds := candidate.ParseSalaryBounds(c.Salary)
	if bounds == nil {
		// Intentional weak fallback: an empty component still has to
		// collide on company+title before two candidates merge.
		return ""
	}
	return strconv.FormatFloat(bounds.Max, 'f', -1, 64)
}

// BuildKeys returns the ordered identity keys for a candidate, strongest
// first. A match on any key marks two candidates as the same posting.
func BuildKeys(c candidate.Candidate) []string {
	var keys []string

	if canonical := CanonicalizeURL(c.URL); canonical != "" {
		keys = append(keys, "url:"+canonical)
	}

	companyKey := NormalizeCompany(c.Company)
	titleKey := NormalizeTitle(c.Title)

	keys = append(keys,
		"sct:"+normalizeText(c.Source)+"|"+companyKey+"|"+titleKey,
		"ct:"+companyKey+"|"+titleKey,
		"content:"+companyKey+"|"+titleKey+"|"+salaryComponent(c)+"|"+descriptionFingerprint(c.Description),
	)

	return keys
}
