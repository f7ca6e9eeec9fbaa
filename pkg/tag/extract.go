package tag

import "regexp"

// tokenPattern matches a hash marker (half or full width) followed by at least
// one character that is neither whitespace nor another marker. Tokens may sit
// on any line of a multi-line text.
var tokenPattern = regexp.MustCompile(`[#＃][^\s#＃]+`)

// Extract returns the canonical tags found in text, deduplicated, preserving
// first-seen order. Duplicate spellings that fold to the same canonical tag
// collapse to one occurrence.
func Extract(text string, aliases map[string]string) []string {
	matches := tokenPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}
	tags := make([]string, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		canon := Canonical(m, aliases)
		if canon == "" {
			continue
		}
		if _, dup := seen[canon]; dup {
			continue
		}
		seen[canon] = struct{}{}
		tags = append(tags, canon)
	}
	return tags
}
