package sched

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestScheduleRunsOffCallerStack(t *testing.T) {
	s := New(20 * time.Millisecond)

	done := make(chan struct{})
	var ran atomic.Bool
	s.Schedule(func() {
		ran.Store(true)
		close(done)
	}, time.Hour)

	// The idle delay has not elapsed yet, so the work cannot have run.
	if ran.Load() {
		t.Fatal("work ran synchronously")
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("work never ran")
	}
}

func TestScheduleHonorsHintOverDelay(t *testing.T) {
	s := New(time.Hour)

	done := make(chan struct{})
	s.Schedule(func() { close(done) }, 5*time.Millisecond)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("hint should cap the idle delay")
	}
}

func TestCancelPreventsRun(t *testing.T) {
	s := New(50 * time.Millisecond)

	var ran atomic.Bool
	cancel := s.Schedule(func() { ran.Store(true) }, time.Hour)
	cancel()
	cancel() // idempotent

	time.Sleep(100 * time.Millisecond)
	if ran.Load() {
		t.Fatal("cancelled work ran")
	}
}

func TestCancelAfterRunIsNoOp(t *testing.T) {
	s := New(time.Millisecond)

	done := make(chan struct{})
	cancel := s.Schedule(func() { close(done) }, Immediate)
	<-done
	cancel() // must not panic or block
}
