package tag

// DefaultAliases is the built-in alias dictionary: common shorthand spellings
// folded to canonical tags. Persisting an empty dictionary means "restore
// these defaults", never "no aliases".
func DefaultAliases() map[string]string {
	return map[string]string{
		"gym":     "health",
		"run":     "health",
		"workout": "health",
		"mtg":     "work",
		"meeting": "work",
		"fam":     "family",
		"book":    "reading",
		"study":   "learning",
	}
}

// NormalizeAliases re-keys a raw dictionary through NormalizeKey and
// NormalizeValue, dropping pairs whose key or value normalizes away. The
// second return lists
// raw keys that collided after normalization, which editing UIs must block
// save on.
func NormalizeAliases(raw map[string]string) (map[string]string, []string) {
	out := make(map[string]string, len(raw))
	var dups []string
	for k, v := range raw {
		key := NormalizeKey(k)
		val := NormalizeValue(v)
		if key == "" || val == "" {
			continue
		}
		if _, exists := out[key]; exists {
			dups = append(dups, k)
			continue
		}
		out[key] = val
	}
	return out, dups
}
