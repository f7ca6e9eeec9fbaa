package cache

import (
	"reflect"
	"testing"
)

func sameSlice(a, b interface{}) bool {
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}

func TestDayCacheNeverLoadedIsDistinctFromEmpty(t *testing.T) {
	mp := newMemoryPersistence()
	c := NewDayCache(mp, &manualScheduler{})

	if _, ok := c.Snapshot(); ok {
		t.Fatal("fresh cache claims to be loaded")
	}

	c.EnsureFresh(false)

	got, ok := c.Snapshot()
	if !ok {
		t.Fatal("loaded flag not set after scan")
	}
	if len(got) != 0 {
		t.Fatalf("empty store: got %d records", len(got))
	}
}

func TestDayCacheReferentialStability(t *testing.T) {
	mp := newMemoryPersistence()
	c := NewDayCache(mp, &manualScheduler{})

	if err := mp.WriteDay(dayWith("2026-08-30", "walked")); err != nil {
		t.Fatal(err)
	}

	first := c.EnsureFresh(true)
	if len(first) != 1 {
		t.Fatalf("got %d records", len(first))
	}

	// A forced rescan with no underlying change keeps the old reference.
	second := c.EnsureFresh(true)
	if !sameSlice(first, second) {
		t.Fatal("no-op rescan replaced the slice")
	}

	if err := mp.WriteDay(dayWith("2026-08-31", "ran")); err != nil {
		t.Fatal(err)
	}
	third := c.EnsureFresh(true)
	if sameSlice(second, third) {
		t.Fatal("changed rescan kept the old slice")
	}
	if len(third) != 2 || third[0].Date != "2026-08-31" {
		t.Fatalf("got %+v", third)
	}
}

func TestDayCacheNotifiesOnlyOnChange(t *testing.T) {
	mp := newMemoryPersistence()
	ms := &manualScheduler{}
	c := NewDayCache(mp, ms)

	fired := 0
	off := c.Subscribe(func() { fired++ })
	defer off()

	c.EnsureFresh(true) // initial load counts as a change
	c.EnsureFresh(true) // no-op
	if fired != 1 {
		t.Fatalf("fired = %d, want 1", fired)
	}

	if err := mp.WriteDay(dayWith("2026-08-30", "walked")); err != nil {
		t.Fatal(err)
	}
	// The local write hook scheduled a deferred refresh.
	ms.runAll()
	if fired != 2 {
		t.Fatalf("fired = %d, want 2", fired)
	}
}

func TestDayCacheFingerprintCatchesForeignWrites(t *testing.T) {
	mp := newMemoryPersistence()
	c := NewDayCache(mp, &manualScheduler{})

	c.EnsureFresh(true)

	// Another process writes: no local notification, only the counter moves.
	mp.bumpExternally(dayWith("2026-08-30", "from elsewhere"))

	got := c.EnsureFresh(false)
	if len(got) != 1 {
		t.Fatalf("foreign write not picked up: %+v", got)
	}
}

func TestDayCacheCleanFingerprintSkipsScan(t *testing.T) {
	mp := newMemoryPersistence()
	c := NewDayCache(mp, &manualScheduler{})

	if err := mp.WriteDay(dayWith("2026-08-30", "walked")); err != nil {
		t.Fatal(err)
	}
	first := c.EnsureFresh(true)
	second := c.EnsureFresh(false)
	if !sameSlice(first, second) {
		t.Fatal("clean unforced refresh should return the cached slice")
	}
}

func TestDayCacheSubscribeRefCountsExternalListeners(t *testing.T) {
	mp := newMemoryPersistence()
	c := NewDayCache(mp, &manualScheduler{})

	off1 := c.Subscribe(func() {})
	off2 := c.Subscribe(func() {})

	mp.mu.Lock()
	attached := len(mp.subs)
	mp.mu.Unlock()
	if attached != 1 {
		t.Fatalf("local hooks = %d, want 1", attached)
	}

	off1()
	off1() // repeat unsubscribe is a no-op
	mp.mu.Lock()
	attached = len(mp.subs)
	mp.mu.Unlock()
	if attached != 1 {
		t.Fatal("detached while a subscriber remains")
	}

	off2()
	mp.mu.Lock()
	attached = len(mp.subs)
	mp.mu.Unlock()
	if attached != 0 {
		t.Fatal("last unsubscribe did not detach")
	}
}
