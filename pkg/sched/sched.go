// Package sched provides deferred execution with cooperative cancellation:
// work runs "when convenient, by the timeout hint at the latest", never on
// the caller's stack.
package sched

import (
	"sync/atomic"
	"time"
)

// Immediate requests execution on the next tick, bypassing the idle delay.
const Immediate time.Duration = 0

// CancelFunc prevents a not-yet-run work item from running. Idempotent, and
// a no-op once the work has started.
type CancelFunc func()

// Scheduler defers work off the current call stack. There is no ordering
// guarantee between scheduled items beyond best effort; callers must not
// depend on precise timing, only on "will eventually run, asynchronously".
type Scheduler interface {
	Schedule(work func(), hint time.Duration) CancelFunc
}

// DefaultIdleDelay approximates "when the host is otherwise idle". The exact
// value only affects smoothness, never correctness.
const DefaultIdleDelay = 50 * time.Millisecond

// New returns a timer-backed Scheduler. Work scheduled with a positive hint
// runs after min(delay, hint); a hint of Immediate runs on the next tick.
func New(delay time.Duration) Scheduler {
	if delay <= 0 {
		delay = DefaultIdleDelay
	}
	return &timerScheduler{delay: delay}
}

type timerScheduler struct {
	delay time.Duration
}

func (s *timerScheduler) Schedule(work func(), hint time.Duration) CancelFunc {
	d := s.delay
	if hint >= 0 && hint < d {
		d = hint
	}
	// The settled flag makes cancellation race-free: whichever of run or
	// cancel flips it first wins, and the loser is a no-op.
	var settled atomic.Bool
	timer := time.AfterFunc(d, func() {
		if settled.CompareAndSwap(false, true) {
			work()
		}
	})
	return func() {
		if settled.CompareAndSwap(false, true) {
			timer.Stop()
		}
	}
}
