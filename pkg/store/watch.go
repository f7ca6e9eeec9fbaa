package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// EventKind classifies which logical key a storage change touched, so
// consumers can filter changes they do not care about.
type EventKind int

const (
	// EventDayChanged indicates a day record was written or removed; Date
	// carries the day key.
	EventDayChanged EventKind = iota

	// EventAliasesChanged indicates the alias dictionary changed.
	EventAliasesChanged

	// EventCounterChanged indicates the shared last-write counter moved
	// without this process observing the write that moved it.
	EventCounterChanged

	// EventPrefChanged indicates a preference key changed.
	EventPrefChanged

	// EventInvalidated signals an unclassifiable change; consumers should
	// treat every cache as dirty.
	EventInvalidated
)

func (k EventKind) String() string {
	switch k {
	case EventDayChanged:
		return "day"
	case EventAliasesChanged:
		return "aliases"
	case EventCounterChanged:
		return "counter"
	case EventPrefChanged:
		return "pref"
	default:
		return "invalidated"
	}
}

// Event is emitted by Persistence.Watch when another process modifies the
// underlying store.
type Event struct {
	Kind EventKind
	Date string
}

// Watch streams change events until ctx is cancelled. Callers should drain
// the returned channel; events are dropped rather than blocking the watcher
// when the consumer lags, which is safe because the fingerprint check catches
// anything a dropped event would have flagged.
func (p *persistence) Watch(ctx context.Context) (<-chan Event, error) {
	if p.basePath == "" {
		return nil, errors.New("store: base path unknown")
	}
	if err := os.MkdirAll(p.basePath, 0o755); err != nil {
		return nil, fmt.Errorf("store: ensure base path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("store: create watcher: %w", err)
	}
	var closeOnce sync.Once
	closeWatcher := func() {
		closeOnce.Do(func() {
			if err := watcher.Close(); err != nil {
				p.log.Warn().Err(err).Msg("watcher close")
			}
		})
	}

	dirs, err := collectDirs(p.basePath)
	if err != nil {
		closeWatcher()
		return nil, fmt.Errorf("store: enumerate directories: %w", err)
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			closeWatcher()
			return nil, fmt.Errorf("store: watch %s: %w", dir, err)
		}
	}

	events := make(chan Event, 64)

	go func() {
		defer close(events)
		defer closeWatcher()

		watched := make(map[string]struct{}, len(dirs))
		for _, dir := range dirs {
			watched[dir] = struct{}{}
		}

		send := func(ev Event) {
			select {
			case events <- ev:
			default:
			}
		}

		throttle := newEventThrottle(100 * time.Millisecond)
		defer throttle.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				p.log.Warn().Err(err).Msg("watcher error")
				throttle.Enqueue(Event{Kind: EventInvalidated}, send)
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if evt.Op&fsnotify.Create == fsnotify.Create {
					if info, err := os.Stat(evt.Name); err == nil && info.IsDir() {
						absDir := filepath.Clean(evt.Name)
						if _, found := watched[absDir]; !found {
							if err := watcher.Add(absDir); err != nil {
								p.log.Warn().Str("dir", absDir).Err(err).Msg("watch add")
							} else {
								watched[absDir] = struct{}{}
								// Files written between the directory's
								// creation and the watch registration never
								// produce events; classify whatever is
								// already there.
								entries, err := os.ReadDir(absDir)
								if err != nil {
									throttle.Enqueue(Event{Kind: EventInvalidated}, send)
								} else {
									for _, entry := range entries {
										if entry.IsDir() {
											continue
										}
										throttle.Enqueue(p.classify(filepath.Join(absDir, entry.Name())), send)
									}
								}
							}
						}
						continue
					}
				}
				throttle.Enqueue(p.classify(evt.Name), send)
			}
		}
	}()

	return events, nil
}

// classify derives the logical event for a changed file path.
func (p *persistence) classify(path string) Event {
	rel, err := filepath.Rel(p.basePath, path)
	if err != nil || rel == "." {
		return Event{Kind: EventInvalidated}
	}
	parts := strings.Split(rel, string(os.PathSeparator))
	if len(parts) == 2 && parts[0] == daysDir {
		return Event{Kind: EventDayChanged, Date: parts[1]}
	}
	if len(parts) != 1 {
		return Event{Kind: EventInvalidated}
	}
	switch {
	case parts[0] == aliasesKey:
		return Event{Kind: EventAliasesChanged}
	case parts[0] == counterKey:
		return Event{Kind: EventCounterChanged}
	case strings.HasPrefix(parts[0], prefKeyPrefix):
		return Event{Kind: EventPrefChanged}
	}
	return Event{Kind: EventInvalidated}
}

// collectDirs walks base and returns all directories that should be watched.
func collectDirs(base string) ([]string, error) {
	dirs := []string{base}
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() && path != base {
			dirs = append(dirs, path)
		}
		return nil
	})
	return dirs, err
}

// eventThrottle coalesces rapid change notifications so consumers refresh
// once per burst of filesystem activity instead of on every single write.
type eventThrottle struct {
	mu      sync.Mutex
	timer   *time.Timer
	pending map[EventKind]map[string]struct{}
	delay   time.Duration
}

func newEventThrottle(delay time.Duration) *eventThrottle {
	return &eventThrottle{
		delay:   delay,
		pending: make(map[EventKind]map[string]struct{}),
	}
}

func (t *eventThrottle) Enqueue(ev Event, send func(Event)) {
	t.mu.Lock()
	if t.pending[ev.Kind] == nil {
		t.pending[ev.Kind] = make(map[string]struct{})
	}
	t.pending[ev.Kind][ev.Date] = struct{}{}

	if t.timer == nil {
		t.timer = time.AfterFunc(t.delay, func() {
			t.flush(send)
		})
	}
	t.mu.Unlock()
}

func (t *eventThrottle) flush(send func(Event)) {
	t.mu.Lock()
	pending := t.pending
	t.pending = make(map[EventKind]map[string]struct{})
	t.timer = nil
	t.mu.Unlock()

	for kind, dates := range pending {
		for date := range dates {
			send(Event{Kind: kind, Date: date})
		}
	}
}

func (t *eventThrottle) Stop() {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.mu.Unlock()
}
