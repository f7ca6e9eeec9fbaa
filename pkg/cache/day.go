package cache

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"tableflip.dev/donelog/pkg/record"
	"tableflip.dev/donelog/pkg/sched"
	"tableflip.dev/donelog/pkg/store"
)

// DayCache caches the full parsed collection of day records, newest-first.
// Reads are synchronous and non-blocking; rescans happen through EnsureFresh
// and only replace the cached slice when the scan result differs
// structurally, so unchanged refreshes keep the previous reference and
// trigger no notifications.
type DayCache struct {
	mu    sync.RWMutex
	store store.Persistence
	coord *Coordinator
	log   zerolog.Logger

	value  []*record.Day
	loaded bool
	dirty  bool
	lastFP store.Fingerprint

	subs   map[int]func()
	nextID int

	// External listeners are reference counted: the first subscriber
	// attaches the filesystem watcher and the same-process hook, the last
	// unsubscribe detaches them.
	watchStop context.CancelFunc
	localOff  func()
}

// DayOption adjusts day cache construction.
type DayOption func(*DayCache)

// WithDayLogger injects a logger; the default discards everything.
func WithDayLogger(log zerolog.Logger) DayOption {
	return func(c *DayCache) { c.log = log }
}

// NewDayCache builds a cache over the given persistence. Refresh work is
// deferred through s.
func NewDayCache(p store.Persistence, s sched.Scheduler, opts ...DayOption) *DayCache {
	c := &DayCache{
		store: p,
		subs:  make(map[int]func()),
		log:   zerolog.Nop(),
	}
	c.coord = NewCoordinator(s, func(force bool) { c.EnsureFresh(force) })
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot returns the cached value and whether a scan has ever completed.
// ok=false means "never loaded", which is distinct from a loaded empty store.
// The returned slice must be treated as immutable.
func (c *DayCache) Snapshot() ([]*record.Day, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value, c.loaded
}

// MarkDirty records that a relevant mutation happened since the last scan.
func (c *DayCache) MarkDirty() {
	c.mu.Lock()
	c.dirty = true
	c.mu.Unlock()
}

// Refresh asks the coordinator for a deferred rescan.
func (c *DayCache) Refresh(req Request) {
	c.coord.Request(req)
}

// RefreshNow performs a forced synchronous rescan.
func (c *DayCache) RefreshNow() []*record.Day {
	return c.EnsureFresh(true)
}

// EnsureFresh rescans the store when dirty, forced, or when the cheap
// fingerprint diverged from the last scan (this catches writers that update
// storage without going through the counter path). An unchanged rescan keeps
// the old slice reference and notifies nobody.
func (c *DayCache) EnsureFresh(force bool) []*record.Day {
	ctx := context.Background()

	c.mu.Lock()
	if !force && c.loaded && !c.dirty {
		if fp := c.store.Fingerprint(ctx); fp == c.lastFP {
			v := c.value
			c.mu.Unlock()
			return v
		}
	}
	c.mu.Unlock()

	// Full scan runs outside the lock; Snapshot stays non-blocking.
	days := c.store.ScanAll(ctx)
	fp := c.store.Fingerprint(ctx)

	c.mu.Lock()
	c.dirty = false
	c.lastFP = fp
	changed := !c.loaded || !record.DaysEqual(days, c.value)
	if changed {
		c.value = days
	}
	c.loaded = true
	v := c.value
	var listeners []func()
	if changed {
		listeners = c.listenersLocked()
	}
	c.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
	return v
}

// Subscribe registers a change listener and returns its unsubscribe func.
// Listeners fire after a rescan that changed the cached value.
func (c *DayCache) Subscribe(fn func()) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	attach := len(c.subs) == 1
	c.mu.Unlock()

	if attach {
		c.attachExternal()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			detach := len(c.subs) == 0
			c.mu.Unlock()
			if detach {
				c.detachExternal()
			}
		})
	}
}

func (c *DayCache) listenersLocked() []func() {
	fns := make([]func(), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	return fns
}

func (c *DayCache) attachExternal() {
	ctx, stop := context.WithCancel(context.Background())

	localOff := c.store.SubscribeLocal(func(key string) {
		if !strings.HasPrefix(key, store.DayKey("")) {
			return
		}
		c.MarkDirty()
		c.coord.Request(Request{})
	})

	c.mu.Lock()
	c.watchStop = stop
	c.localOff = localOff
	c.mu.Unlock()

	ch, err := c.store.Watch(ctx)
	if err != nil {
		// Degrade to fingerprint-only freshness; reads still work.
		c.log.Warn().Err(err).Msg("day cache: external watch unavailable")
		return
	}
	go func() {
		for ev := range ch {
			switch ev.Kind {
			case store.EventDayChanged, store.EventCounterChanged, store.EventInvalidated:
				c.MarkDirty()
				c.coord.Request(Request{})
			}
		}
	}()
}

func (c *DayCache) detachExternal() {
	c.mu.Lock()
	stop := c.watchStop
	localOff := c.localOff
	c.watchStop = nil
	c.localOff = nil
	c.mu.Unlock()

	if stop != nil {
		stop()
	}
	if localOff != nil {
		localOff()
	}
	c.coord.Stop()
}
