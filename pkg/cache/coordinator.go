// Package cache holds the in-memory caches that sit between the persistent
// store and every consumer: cheap synchronous snapshots for reading, dirty
// tracking against external and same-process writes, and coalesced,
// rate-limited refresh work that never runs on the caller's stack.
package cache

import (
	"sync"
	"time"

	"tableflip.dev/donelog/pkg/sched"
)

// Request describes one refresh trigger. Immediate bypasses the idle delay
// (next tick instead) for explicit user actions; Force bypasses the throttle
// window but still respects the single-in-flight rule.
type Request struct {
	Immediate bool
	Force     bool
}

const (
	// DefaultMinInterval is the throttle window between non-forced refresh
	// requests. Requests inside the window are dropped, not queued.
	DefaultMinInterval = 500 * time.Millisecond

	// idleTimeoutHint bounds how long the scheduler may sit on a deferred
	// refresh before running it anyway.
	idleTimeoutHint = 2 * time.Second
)

// Coordinator throttles and deduplicates refresh requests for one cache.
// At most one deferred job is ever pending; a request arriving while one is
// pending is a no-op, because the pending job will observe the latest state
// when it runs.
type Coordinator struct {
	mu          sync.Mutex
	sched       sched.Scheduler
	refresh     func(force bool)
	minInterval time.Duration
	last        time.Time
	cancel      sched.CancelFunc
	clock       func() time.Time
}

// NewCoordinator wraps refresh with throttle and single-flight semantics.
func NewCoordinator(s sched.Scheduler, refresh func(force bool)) *Coordinator {
	return &Coordinator{
		sched:       s,
		refresh:     refresh,
		minInterval: DefaultMinInterval,
		clock:       time.Now,
	}
}

// Request schedules a refresh according to the request flags. Never invokes
// the refresh synchronously, even for Immediate: deferring by at least one
// tick keeps state mutation out of the caller's read path.
func (c *Coordinator) Request(req Request) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		return
	}
	now := c.clock()
	if !req.Force && !c.last.IsZero() && now.Sub(c.last) < c.minInterval {
		return
	}
	c.last = now

	hint := idleTimeoutHint
	if req.Immediate {
		hint = sched.Immediate
	}
	force := req.Force
	c.cancel = c.sched.Schedule(func() {
		c.mu.Lock()
		c.cancel = nil
		c.mu.Unlock()
		c.refresh(force)
	}, hint)
}

// Pending reports whether a deferred refresh is scheduled but not yet run.
func (c *Coordinator) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancel != nil
}

// Stop cancels any pending refresh. Safe to call repeatedly.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}
