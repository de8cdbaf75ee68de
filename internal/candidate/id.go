package candidate

import (
	"fmt"
	"strings"
)

const idComponentLimit = 30

// slugify lowercases s and collapses every non-alphanumeric run into a
// single hyphen, truncated for database compatibility. Empty input maps to
// "unknown" so a missing field still yields a stable id component.
func slugify(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		s = "unknown"
	}

	var b strings.Builder
	lastHyphen := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	slug := b.String()
	if len(slug) > idComponentLimit {
		slug = slug[:idComponentLimit]
	}
	return slug
}

// GenerateID derives the deterministic candidate id from source, company
// and title. It must stay stable across runs: the id is the primary dedupe
// handle against already-persisted rows.
func GenerateID(source, company, title string) string {
	return fmt.Sprintf("%s-%s-%s", slugify(source), slugify(company), slugify(title))
}

// EnsureID fills in the derived id when a source did not provide one.
func (c *Candidate) EnsureID() {
	if c.ID == "" {
		c.ID = GenerateID(c.Source, c.Company, c.Title)
	}
}
