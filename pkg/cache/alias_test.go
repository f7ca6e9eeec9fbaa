package cache

import (
	"reflect"
	"testing"
)

func sameMap(a, b map[string]string) bool {
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}

func TestAliasCacheLoadsDefaults(t *testing.T) {
	mp := newMemoryPersistence()
	c := NewAliasCache(mp, &manualScheduler{})

	if _, ok := c.Snapshot(); ok {
		t.Fatal("fresh cache claims to be loaded")
	}

	got := c.EnsureFresh(false)
	if got["gym"] != "health" {
		t.Fatalf("defaults missing: %v", got)
	}
	if _, ok := c.Snapshot(); !ok {
		t.Fatal("loaded flag not set")
	}
}

func TestAliasCacheReferentialStability(t *testing.T) {
	mp := newMemoryPersistence()
	c := NewAliasCache(mp, &manualScheduler{})

	first := c.EnsureFresh(true)
	second := c.EnsureFresh(true)
	if !sameMap(first, second) {
		t.Fatal("no-op re-read replaced the map")
	}

	if _, err := mp.WriteAliases(map[string]string{"jog": "health"}); err != nil {
		t.Fatal(err)
	}
	third := c.EnsureFresh(true)
	if sameMap(second, third) {
		t.Fatal("changed re-read kept the old map")
	}
	if len(third) != 1 || third["jog"] != "health" {
		t.Fatalf("got %v", third)
	}
}

func TestAliasCacheMutateAndNotify(t *testing.T) {
	mp := newMemoryPersistence()
	ms := &manualScheduler{}
	c := NewAliasCache(mp, ms)

	fired := 0
	off := c.Subscribe(func() { fired++ })
	defer off()

	c.EnsureFresh(true)
	if fired != 1 {
		t.Fatalf("fired = %d after load", fired)
	}

	stored, err := c.MutateAndNotify(map[string]string{"jog": "health"})
	if err != nil {
		t.Fatal(err)
	}
	if stored["jog"] != "health" {
		t.Fatalf("got %v", stored)
	}

	// An explicit edit refreshes on the next tick, bypassing idle delay.
	if ms.pending() == 0 {
		t.Fatal("no refresh scheduled after mutate")
	}
	ms.runAll()
	if fired != 2 {
		t.Fatalf("fired = %d after mutate", fired)
	}

	got, _ := c.Snapshot()
	if len(got) != 1 || got["jog"] != "health" {
		t.Fatalf("snapshot %v", got)
	}
}

func TestAliasCacheResetOnEmptyWrite(t *testing.T) {
	mp := newMemoryPersistence()
	c := NewAliasCache(mp, &manualScheduler{})

	stored, err := c.MutateAndNotify(map[string]string{"  ": "  "})
	if err != nil {
		t.Fatal(err)
	}
	if stored["gym"] != "health" {
		t.Fatalf("empty write should restore defaults: %v", stored)
	}
}

func TestAliasCacheResetAndNotify(t *testing.T) {
	mp := newMemoryPersistence()
	ms := &manualScheduler{}
	c := NewAliasCache(mp, ms)

	if _, err := c.MutateAndNotify(map[string]string{"jog": "health"}); err != nil {
		t.Fatal(err)
	}
	ms.runAll()

	stored, err := c.ResetAndNotify()
	if err != nil {
		t.Fatal(err)
	}
	if stored["gym"] != "health" || stored["jog"] != "" {
		t.Fatalf("got %v", stored)
	}
	ms.runAll()

	got, _ := c.Snapshot()
	if got["gym"] != "health" {
		t.Fatalf("snapshot after reset: %v", got)
	}
}

func TestAliasesEqual(t *testing.T) {
	a := map[string]string{"x": "1", "y": "2"}
	b := map[string]string{"y": "2", "x": "1"}
	if !aliasesEqual(a, b) {
		t.Fatal("order must not matter")
	}
	if aliasesEqual(a, map[string]string{"x": "1"}) {
		t.Fatal("length mismatch")
	}
	if aliasesEqual(a, map[string]string{"x": "1", "y": "3"}) {
		t.Fatal("value mismatch")
	}
}
