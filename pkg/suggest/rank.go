// Package suggest builds ranked tag suggestions from the day-entries and
// alias-dictionary caches: frequency and recency aggregation, alias-expanded
// substring matching, and an idle-deferred recompute keyed on input
// freshness.
package suggest

import (
	"sort"
	"strings"

	"tableflip.dev/donelog/pkg/record"
	"tableflip.dev/donelog/pkg/tag"
)

// RecentWindowDays is the trailing window used for the recency rank key.
const RecentWindowDays = 7

// DefaultLimit caps how many suggestions are surfaced.
const DefaultLimit = 10

// Stat aggregates one canonical tag across all recorded days.
type Stat struct {
	// Tag is the canonical display form.
	Tag string
	// Total counts occurrences across all days (at most one per entry).
	Total int
	// Recent counts occurrences within the trailing window ending today.
	Recent int
	// LastSeen is the most recent day key the tag appeared on.
	LastSeen string
	// Keys are the match keys used for substring filtering: the folded
	// canonical form plus every alias key that folds to this tag.
	Keys []string
}

// Rank aggregates and orders tag statistics. Order: any-recent-occurrence
// first, then recent count, then last-seen day, then total count, all
// descending, with the canonical tag name ascending as the stable tie-break.
// Day keys are zero padded, so lexicographic comparison is date comparison.
func Rank(days []*record.Day, aliases map[string]string, today string) []Stat {
	inverse := make(map[string][]string, len(aliases))
	for key, value := range aliases {
		canon := tag.NormalizeValue(value)
		if canon == "" {
			continue
		}
		inverse[canon] = append(inverse[canon], key)
	}

	window := record.RecentWindow(today, RecentWindowDays)

	byTag := make(map[string]*Stat)
	for _, day := range days {
		if day == nil {
			continue
		}
		for _, entry := range day.Entries {
			for _, canon := range tag.Extract(entry.Text, aliases) {
				st := byTag[canon]
				if st == nil {
					st = &Stat{Tag: canon}
					byTag[canon] = st
				}
				st.Total++
				if _, recent := window[day.Date]; recent {
					st.Recent++
				}
				if day.Date > st.LastSeen {
					st.LastSeen = day.Date
				}
			}
		}
	}

	stats := make([]Stat, 0, len(byTag))
	for _, st := range byTag {
		st.Keys = matchKeys(st.Tag, inverse[st.Tag])
		stats = append(stats, *st)
	}
	sort.SliceStable(stats, func(i, j int) bool {
		a, b := stats[i], stats[j]
		if (a.Recent > 0) != (b.Recent > 0) {
			return a.Recent > 0
		}
		if a.Recent != b.Recent {
			return a.Recent > b.Recent
		}
		if a.LastSeen != b.LastSeen {
			return a.LastSeen > b.LastSeen
		}
		if a.Total != b.Total {
			return a.Total > b.Total
		}
		return a.Tag < b.Tag
	})
	return stats
}

// Filter narrows ranked stats to those matching the typed text: an empty
// normalized input returns the top of the ranking; otherwise a tag matches
// when its canonical form or any of its alias keys contains the normalized
// input as a substring. Rank order is preserved.
func Filter(stats []Stat, typed string, limit int) []Stat {
	if limit <= 0 {
		limit = DefaultLimit
	}
	needle := tag.NormalizeKey(typed)
	out := make([]Stat, 0, limit)
	for _, st := range stats {
		if needle != "" && !matches(st, needle) {
			continue
		}
		out = append(out, st)
		if len(out) == limit {
			break
		}
	}
	return out
}

func matches(st Stat, needle string) bool {
	for _, key := range st.Keys {
		if strings.Contains(key, needle) {
			return true
		}
	}
	return false
}

func matchKeys(canon string, aliasKeys []string) []string {
	keys := make([]string, 0, len(aliasKeys)+1)
	if folded := tag.NormalizeKey(canon); folded != "" {
		keys = append(keys, folded)
	}
	for _, k := range aliasKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
