package commands

import (
	"errors"
	"strings"

	"tableflip.dev/donelog/pkg/store"
)

// resolveEntryID matches a possibly-shortened id against the day's entries.
func resolveEntryID(p store.Persistence, date, partial string) (string, error) {
	partial = strings.TrimSpace(partial)
	if partial == "" {
		return "", errors.New("entry id required")
	}
	d := p.ReadDay(date)
	match := ""
	for _, e := range d.Entries {
		if e.ID == partial {
			return e.ID, nil
		}
		if strings.HasPrefix(e.ID, partial) {
			if match != "" {
				return "", errors.New("ambiguous entry id " + partial)
			}
			match = e.ID
		}
	}
	if match == "" {
		return "", errors.New("no entry with id " + partial + " on " + date)
	}
	return match, nil
}
