package cache

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"tableflip.dev/donelog/pkg/sched"
	"tableflip.dev/donelog/pkg/store"
)

// AliasCache caches the single alias-dictionary record. Same shape as
// DayCache, specialized to one key, plus mutate-and-notify helpers for the
// editing surface: dictionary edits are explicit user actions, so their
// refresh is immediate rather than idle-deferred.
type AliasCache struct {
	mu    sync.RWMutex
	store store.Persistence
	coord *Coordinator
	log   zerolog.Logger

	value   map[string]string
	loaded  bool
	dirty   bool
	lastSeq int64

	subs   map[int]func()
	nextID int

	watchStop context.CancelFunc
	localOff  func()
}

// AliasOption adjusts alias cache construction.
type AliasOption func(*AliasCache)

// WithAliasLogger injects a logger; the default discards everything.
func WithAliasLogger(log zerolog.Logger) AliasOption {
	return func(c *AliasCache) { c.log = log }
}

// NewAliasCache builds a cache over the given persistence.
func NewAliasCache(p store.Persistence, s sched.Scheduler, opts ...AliasOption) *AliasCache {
	c := &AliasCache{
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

// Snapshot returns the cached dictionary and whether it has ever been read.
// The returned map must be treated as immutable.
func (c *AliasCache) Snapshot() (map[string]string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value, c.loaded
}

// MarkDirty records that the dictionary may have changed since the last read.
func (c *AliasCache) MarkDirty() {
	c.mu.Lock()
	c.dirty = true
	c.mu.Unlock()
}

// Refresh asks the coordinator for a deferred re-read.
func (c *AliasCache) Refresh(req Request) {
	c.coord.Request(req)
}

// EnsureFresh re-reads the dictionary when dirty, forced, or when the shared
// write counter moved since the last read. Shallow key/value comparison keeps
// the old map reference on no-op refreshes.
func (c *AliasCache) EnsureFresh(force bool) map[string]string {
	ctx := context.Background()

	c.mu.Lock()
	if !force && c.loaded && !c.dirty {
		if seq := c.store.Fingerprint(ctx).CounterSeq; seq == c.lastSeq {
			v := c.value
			c.mu.Unlock()
			return v
		}
	}
	c.mu.Unlock()

	next := c.store.ReadAliases()
	seq := c.store.Fingerprint(ctx).CounterSeq

	c.mu.Lock()
	c.dirty = false
	c.lastSeq = seq
	changed := !c.loaded || !aliasesEqual(next, c.value)
	if changed {
		c.value = next
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

// MutateAndNotify persists the dictionary (empty-after-normalization resets
// to defaults), then marks dirty and schedules an immediate refresh so
// same-process editors observe the change on their next read without waiting
// for an idle slot. Returns the dictionary actually stored.
func (c *AliasCache) MutateAndNotify(next map[string]string) (map[string]string, error) {
	stored, err := c.store.WriteAliases(next)
	if err != nil {
		return nil, err
	}
	c.MarkDirty()
	c.coord.Request(Request{Immediate: true, Force: true})
	return stored, nil
}

// ResetAndNotify restores the built-in default set, persists it, notifies,
// and returns the restored value.
func (c *AliasCache) ResetAndNotify() (map[string]string, error) {
	stored, err := c.store.ResetAliases()
	if err != nil {
		return nil, err
	}
	c.MarkDirty()
	c.coord.Request(Request{Immediate: true, Force: true})
	return stored, nil
}

// Subscribe registers a change listener; first subscriber attaches external
// listeners, last unsubscribe detaches them.
func (c *AliasCache) Subscribe(fn func()) func() {
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

func (c *AliasCache) listenersLocked() []func() {
	fns := make([]func(), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	return fns
}

func (c *AliasCache) attachExternal() {
	ctx, stop := context.WithCancel(context.Background())

	localOff := c.store.SubscribeLocal(func(key string) {
		if key != store.AliasesKey() {
			return
		}
		c.MarkDirty()
		c.coord.Request(Request{Immediate: true, Force: true})
	})

	c.mu.Lock()
	c.watchStop = stop
	c.localOff = localOff
	c.mu.Unlock()

	ch, err := c.store.Watch(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("alias cache: external watch unavailable")
		return
	}
	go func() {
		for ev := range ch {
			switch ev.Kind {
			case store.EventAliasesChanged, store.EventInvalidated:
				c.MarkDirty()
				c.coord.Request(Request{})
			}
		}
	}()
}

func (c *AliasCache) detachExternal() {
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

func aliasesEqual(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if bv, ok := b[k]; !ok || bv != v {
			return false
		}
	}
	return true
}
