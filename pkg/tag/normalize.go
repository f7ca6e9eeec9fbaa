// Package tag implements hashtag extraction, alias-based canonicalization,
// and cursor-position analysis for autocomplete-while-typing. Everything in
// this package is a pure function over its inputs.
package tag

import (
	"strings"

	"golang.org/x/text/width"
)

// Bracket and punctuation characters stripped from token edges. Width folding
// runs first, so full-width ASCII variants collapse into these sets; the CJK
// corner brackets and sentence punctuation are listed explicitly because they
// are not width variants of anything.
const (
	openingRunes = "([{<「『【〈《〔“‘\"'"
	closingRunes = ")]}>」』】〉》〕”’\"'.,!?;:、。・…~"
)

// NormalizeKey folds a raw token to an alias-dictionary lookup key:
// width-fold, trim, strip leading '#' markers, strip leading open brackets
// and trailing closing brackets/punctuation, lowercase. Applying it twice
// yields the same key as applying it once. Total; may return "", which
// callers must treat as "no key".
func NormalizeKey(raw string) string {
	s := strings.TrimSpace(width.Fold.String(raw))
	s = strings.TrimLeft(s, "#")
	s = strings.TrimLeft(s, openingRunes)
	s = strings.TrimRight(s, closingRunes)
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeValue folds a canonical tag for storage: width-fold and trim only.
// Case is preserved because canonical tags are display strings.
func NormalizeValue(raw string) string {
	return strings.TrimSpace(width.Fold.String(raw))
}

// Canonical resolves a raw token to its canonical tag through the alias
// dictionary: a dictionary hit yields the (normalized) stored value, a miss
// yields the normalized key itself. Returns "" for tokens that normalize away
// entirely.
func Canonical(raw string, aliases map[string]string) string {
	key := NormalizeKey(raw)
	if key == "" {
		return ""
	}
	if v, ok := aliases[key]; ok {
		if canon := NormalizeValue(v); canon != "" {
			return canon
		}
	}
	return key
}
