package dedupe

import (
	"sort"
	"time"

	"github.com/jobsift/jobsift/internal/candidate"
)

// Dedupe collapses duplicates within one batch. The batch is processed in
// (suitability desc, postedAt desc) order so the best and freshest record
// of a duplicate cluster is seen first and becomes the representative.
// A later candidate matching any claimed key is dropped, but its source
// tags are unioned into the winner.
func Dedupe(batch []candidate.Candidate) []candidate.Candidate {
	sorted := make([]candidate.Candidate, len(batch))
	copy(sorted, batch)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Suitability != sorted[j].Suitability {
			return sorted[i].Suitability > sorted[j].Suitability
		}
		return postedOrZero(sorted[i]).After(postedOrZero(sorted[j]))
	})

	keyOwners := make(map[string]int)
	deduped := make([]candidate.Candidate, 0, len(sorted))

	for _, c := range sorted {
		keys := BuildKeys(c)

		owner := -1
		for _, key := range keys {
			if idx, ok := keyOwners[key]; ok {
				owner = idx
				break
			}
		}

		if owner >= 0 {
			deduped[owner].Source = candidate.MergeSourceTags(deduped[owner].Source, c.Source)
			continue
		}

		c.Source = candidate.MergeSourceTags(c.Source)
		idx := len(deduped)
		deduped = append(deduped, c)
		for _, key := range keys {
			keyOwners[key] = idx
		}
	}

	return deduped
}

func postedOrZero(c candidate.Candidate) time.Time {
	if t, ok := c.PostedTime(); ok {
		return t
	}
	return time.Time{}
}

// Index holds the identity keys of rows already in storage, built from a
// point-in-time snapshot fetched once per sync.
type Index struct {
	ids  map[string]struct{}
	keys map[string]struct{}
}

// NewIndex indexes existing rows by id and by every dedupe key.
func NewIndex(existing []candidate.Candidate) *Index {
	idx := &Index{
		ids:  make(map[string]struct{}, len(existing)),
		keys: make(map[string]struct{}, len(existing)*4),
	}
	for _, row := range existing {
		if row.ID != "" {
			idx.ids[row.ID] = struct{}{}
		}
		for _, key := range BuildKeys(row) {
			idx.keys[key] = struct{}{}
		}
	}
	return idx
}

// Matches reports whether c is already present: same id, or any identity
// key in common with an existing row.
func (i *Index) Matches(c candidate.Candidate) bool {
	if _, ok := i.ids[c.ID]; ok {
		return true
	}
	for _, key := range BuildKeys(c) {
		if _, ok := i.keys[key]; ok {
			return true
		}
	}
	return false
}

// Len returns the number of indexed rows by id.
func (i *Index) Len() int { return len(i.ids) }
