package suggest

import (
	"fmt"
	"hash/fnv"
	"sort"
	"sync"
	"time"

	"tableflip.dev/donelog/pkg/cache"
	"tableflip.dev/donelog/pkg/record"
	"tableflip.dev/donelog/pkg/sched"
)

// State reports whether the engine's ranked output reflects its inputs.
type State int

const (
	// StateDisabled means suggestions are not being computed at all.
	StateDisabled State = iota
	// StateComputing means inputs are not loaded yet or a recomputation is
	// pending; consumers should show a loading affordance rather than a
	// stale or empty list.
	StateComputing
	// StateReady means the ranked output matches the current inputs.
	StateReady
)

const computeTimeoutHint = time.Second

// Engine derives ranked suggestions from the day and alias caches. It
// recomputes only when a composite freshness key over both inputs changes,
// and always off the caller's stack through the scheduler. The engine is
// enabled only while the consuming affordance is open, so closed UIs pay no
// aggregation cost per keystroke.
type Engine struct {
	mu    sync.Mutex
	days  *cache.DayCache
	alias *cache.AliasCache
	sched sched.Scheduler
	loc   *time.Location
	now   func() time.Time

	enabled     bool
	computedKey string
	stats       []Stat
	cancel      sched.CancelFunc

	subs   map[int]func()
	nextID int

	offDays  func()
	offAlias func()
}

// EngineOption adjusts engine construction.
type EngineOption func(*Engine)

// WithClock replaces the time source (tests).
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// NewEngine wires the engine to its input caches. loc is the reference zone
// for the recency window.
func NewEngine(days *cache.DayCache, alias *cache.AliasCache, s sched.Scheduler, loc *time.Location, opts ...EngineOption) *Engine {
	e := &Engine{
		days:  days,
		alias: alias,
		sched: s,
		loc:   loc,
		now:   time.Now,
		subs:  make(map[int]func()),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetEnabled opens or closes the engine. Enabling subscribes to both input
// caches and kicks off the first computation; disabling unsubscribes and
// cancels any pending one.
func (e *Engine) SetEnabled(v bool) {
	e.mu.Lock()
	if e.enabled == v {
		e.mu.Unlock()
		return
	}
	e.enabled = v
	e.mu.Unlock()

	if v {
		e.offDays = e.days.Subscribe(e.poke)
		e.offAlias = e.alias.Subscribe(e.poke)
		e.days.Refresh(cache.Request{})
		e.alias.Refresh(cache.Request{})
		e.poke()
		return
	}

	if e.offDays != nil {
		e.offDays()
		e.offDays = nil
	}
	if e.offAlias != nil {
		e.offAlias()
		e.offAlias = nil
	}
	e.mu.Lock()
	cancel := e.cancel
	e.cancel = nil
	e.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Snapshot returns the current ranked stats and their state. The slice must
// be treated as immutable.
func (e *Engine) Snapshot() ([]Stat, State) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.enabled {
		return e.stats, StateDisabled
	}
	key, loaded := e.freshnessKey()
	if !loaded || key != e.computedKey || e.cancel != nil {
		return e.stats, StateComputing
	}
	return e.stats, StateReady
}

// SuggestionsFor filters the current ranking for the typed text.
func (e *Engine) SuggestionsFor(typed string, limit int) ([]Stat, State) {
	stats, state := e.Snapshot()
	return Filter(stats, typed, limit), state
}

// Subscribe registers a listener fired after each completed recomputation.
func (e *Engine) Subscribe(fn func()) func() {
	e.mu.Lock()
	id := e.nextID
	e.nextID++
	e.subs[id] = fn
	e.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			delete(e.subs, id)
			e.mu.Unlock()
		})
	}
}

// poke re-evaluates the freshness key and schedules a recomputation when the
// computed output is stale. A pending computation is left in place: it will
// observe the latest snapshots when it runs.
func (e *Engine) poke() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.enabled || e.cancel != nil {
		return
	}
	key, loaded := e.freshnessKey()
	if !loaded || key == e.computedKey {
		return
	}
	e.cancel = e.sched.Schedule(e.compute, computeTimeoutHint)
}

func (e *Engine) compute() {
	e.mu.Lock()
	e.cancel = nil
	e.mu.Unlock()

	days, okDays := e.days.Snapshot()
	aliases, okAlias := e.alias.Snapshot()
	if !okDays || !okAlias {
		// Inputs still loading; the cache notification will poke again.
		return
	}
	today := record.DateKey(e.now(), e.loc)
	stats := Rank(days, aliases, today)

	e.mu.Lock()
	// Key off the snapshots that produced this ranking. Re-reading the
	// caches here could observe a newer value and mask it forever: the next
	// poke would compare equal and skip the recomputation.
	e.computedKey = e.keyFor(days, aliases)
	e.stats = stats
	listeners := make([]func(), 0, len(e.subs))
	for _, fn := range e.subs {
		listeners = append(listeners, fn)
	}
	e.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

// freshnessKey reads the current cache snapshots and derives their key.
func (e *Engine) freshnessKey() (string, bool) {
	days, okDays := e.days.Snapshot()
	aliases, okAlias := e.alias.Snapshot()
	if !okDays || !okAlias {
		return "", false
	}
	return e.keyFor(days, aliases), true
}

// keyFor is a cheap composite over the given inputs: the day slice identity
// (snapshots are referentially stable across no-op refreshes), day count and
// most recent day key, a hash of the alias dictionary, and today's date so
// the recency window rolls over at midnight. It depends only on its
// arguments, never on the live caches.
func (e *Engine) keyFor(days []*record.Day, aliases map[string]string) string {
	top := ""
	if len(days) > 0 {
		top = days[0].Date
	}
	keys := make([]string, 0, len(aliases))
	for k := range aliases {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	h := fnv.New64a()
	for _, k := range keys {
		h.Write([]byte(k))
		h.Write([]byte{'='})
		h.Write([]byte(aliases[k]))
		h.Write([]byte{';'})
	}
	today := record.DateKey(e.now(), e.loc)
	return fmt.Sprintf("%p|%d|%s|%d|%x|%s", days, len(days), top, len(aliases), h.Sum64(), today)
}
