// Package app provides high-level journal operations over the record store.
// Every field mutation re-reads the freshest stored record before merging,
// so updating one field never clobbers a concurrently-added entry.
package app

import (
	"context"
	"errors"
	"strings"

	"tableflip.dev/donelog/pkg/record"
	"tableflip.dev/donelog/pkg/store"
	"tableflip.dev/donelog/pkg/tag"
)

var (
	ErrNoPersistence = errors.New("app: no persistence configured")
	ErrEmptyText     = errors.New("app: entry text required")
	ErrEntryNotFound = errors.New("app: entry not found")
	ErrUnknownMood   = errors.New("app: unknown mood")
	ErrEmptyAliasKey = errors.New("app: alias key required")
)

// Service provides journal operations for CLIs and UIs to share.
type Service struct {
	Persistence store.Persistence
}

// AddEntry appends a new accomplishment to the given day.
func (s *Service) AddEntry(ctx context.Context, date, text string) (record.Entry, error) {
	if s.Persistence == nil {
		return record.Entry{}, ErrNoPersistence
	}
	if strings.TrimSpace(text) == "" {
		return record.Entry{}, ErrEmptyText
	}
	d := s.Persistence.ReadDay(date)
	e := record.NewEntry(text)
	d.Entries = append(d.Entries, e)
	if err := s.Persistence.WriteDay(d); err != nil {
		return record.Entry{}, err
	}
	return e, nil
}

// EditEntry replaces the text of the entry with the given id.
func (s *Service) EditEntry(ctx context.Context, date, id, text string) (record.Entry, error) {
	if s.Persistence == nil {
		return record.Entry{}, ErrNoPersistence
	}
	if strings.TrimSpace(text) == "" {
		return record.Entry{}, ErrEmptyText
	}
	return s.mutateEntry(date, id, func(e *record.Entry) {
		e.Text = text
	})
}

// SetDone sets the completion flag of the entry with the given id.
func (s *Service) SetDone(ctx context.Context, date, id string, done bool) (record.Entry, error) {
	if s.Persistence == nil {
		return record.Entry{}, ErrNoPersistence
	}
	return s.mutateEntry(date, id, func(e *record.Entry) {
		e.Done = done
	})
}

// DeleteEntry removes the entry with the given id from the day.
func (s *Service) DeleteEntry(ctx context.Context, date, id string) error {
	if s.Persistence == nil {
		return ErrNoPersistence
	}
	d := s.Persistence.ReadDay(date)
	kept := d.Entries[:0]
	found := false
	for _, e := range d.Entries {
		if e.ID == id {
			found = true
			continue
		}
		kept = append(kept, e)
	}
	if !found {
		return ErrEntryNotFound
	}
	d.Entries = kept
	return s.Persistence.WriteDay(d)
}

// SetMood sets the day's mood. An empty value clears it.
func (s *Service) SetMood(ctx context.Context, date, mood string) (*record.Day, error) {
	if s.Persistence == nil {
		return nil, ErrNoPersistence
	}
	m, ok := record.ParseMood(mood)
	if !ok {
		return nil, ErrUnknownMood
	}
	d := s.Persistence.ReadDay(date)
	d.Mood = m
	if err := s.Persistence.WriteDay(d); err != nil {
		return nil, err
	}
	return d, nil
}

// SetNote replaces the day's free note.
func (s *Service) SetNote(ctx context.Context, date, note string) (*record.Day, error) {
	if s.Persistence == nil {
		return nil, ErrNoPersistence
	}
	d := s.Persistence.ReadDay(date)
	d.Note = strings.TrimSpace(note)
	if err := s.Persistence.WriteDay(d); err != nil {
		return nil, err
	}
	return d, nil
}

// Day returns the record for one date.
func (s *Service) Day(ctx context.Context, date string) (*record.Day, error) {
	if s.Persistence == nil {
		return nil, ErrNoPersistence
	}
	return s.Persistence.ReadDay(date), nil
}

// Days returns every recorded day, newest-first.
func (s *Service) Days(ctx context.Context) ([]*record.Day, error) {
	if s.Persistence == nil {
		return nil, ErrNoPersistence
	}
	return s.Persistence.ScanAll(ctx), nil
}

// Aliases returns the current alias dictionary.
func (s *Service) Aliases(ctx context.Context) (map[string]string, error) {
	if s.Persistence == nil {
		return nil, ErrNoPersistence
	}
	return s.Persistence.ReadAliases(), nil
}

// SetAlias adds or replaces one alias mapping.
func (s *Service) SetAlias(ctx context.Context, key, value string) (map[string]string, error) {
	if s.Persistence == nil {
		return nil, ErrNoPersistence
	}
	k := tag.NormalizeKey(key)
	v := tag.NormalizeValue(value)
	if k == "" || v == "" {
		return nil, ErrEmptyAliasKey
	}
	dict := s.Persistence.ReadAliases()
	dict[k] = v
	return s.Persistence.WriteAliases(dict)
}

// RemoveAlias deletes one alias mapping. Removing the last one resets the
// dictionary to the built-in defaults.
func (s *Service) RemoveAlias(ctx context.Context, key string) (map[string]string, error) {
	if s.Persistence == nil {
		return nil, ErrNoPersistence
	}
	k := tag.NormalizeKey(key)
	if k == "" {
		return nil, ErrEmptyAliasKey
	}
	dict := s.Persistence.ReadAliases()
	delete(dict, k)
	return s.Persistence.WriteAliases(dict)
}

// ResetAliases restores the built-in default dictionary.
func (s *Service) ResetAliases(ctx context.Context) (map[string]string, error) {
	if s.Persistence == nil {
		return nil, ErrNoPersistence
	}
	return s.Persistence.ResetAliases()
}

// Watch subscribes to cross-process persistence change events.
func (s *Service) Watch(ctx context.Context) (<-chan store.Event, error) {
	if s.Persistence == nil {
		return nil, ErrNoPersistence
	}
	return s.Persistence.Watch(ctx)
}

// mutateEntry re-reads the freshest record, applies fn to the matching
// entry, and writes the merged result back.
func (s *Service) mutateEntry(date, id string, fn func(*record.Entry)) (record.Entry, error) {
	d := s.Persistence.ReadDay(date)
	for i := range d.Entries {
		if d.Entries[i].ID == id {
			fn(&d.Entries[i])
			if err := s.Persistence.WriteDay(d); err != nil {
				return record.Entry{}, err
			}
			return d.Entries[i], nil
		}
	}
	return record.Entry{}, ErrEntryNotFound
}
