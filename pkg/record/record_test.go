package record

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseMood(t *testing.T) {
	for _, m := range Moods() {
		got, ok := ParseMood("  " + string(m) + " ")
		if !ok || got != m {
			t.Fatalf("ParseMood(%q) = %q, %v", m, got, ok)
		}
	}
	if got, ok := ParseMood(""); !ok || got != MoodUnset {
		t.Fatalf("empty clears: got %q, %v", got, ok)
	}
	if _, ok := ParseMood("amazing"); ok {
		t.Fatal("unknown mood accepted")
	}
}

func TestSanitize(t *testing.T) {
	d := &Day{
		Date: "2026-08-30",
		Entries: []Entry{
			{ID: "a", Text: "kept"},
			{ID: "b", Text: "   "},
			{ID: "a", Text: "duplicate id"},
			{Text: "needs an id"},
		},
	}
	d.Sanitize()

	if len(d.Entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(d.Entries))
	}
	if d.Entries[0].ID != "a" || d.Entries[0].Text != "kept" {
		t.Fatalf("first wins: got %+v", d.Entries[0])
	}
	if d.Entries[1].ID == "" {
		t.Fatal("missing id not assigned")
	}
}

func TestSanitizeNil(t *testing.T) {
	var d *Day
	d.Sanitize() // must not panic
}

func TestIsEmpty(t *testing.T) {
	if !(*Day)(nil).IsEmpty() {
		t.Fatal("nil should be empty")
	}
	if !NewDay("2026-08-30").IsEmpty() {
		t.Fatal("fresh day should be empty")
	}
	if (&Day{Date: "2026-08-30", Mood: MoodGood}).IsEmpty() {
		t.Fatal("mood counts as data")
	}
	if (&Day{Date: "2026-08-30", Note: "n"}).IsEmpty() {
		t.Fatal("note counts as data")
	}
}

func TestCloneIsolation(t *testing.T) {
	d := &Day{Date: "2026-08-30", Entries: []Entry{{ID: "a", Text: "x"}}}
	cp := d.Clone()
	cp.Entries[0].Text = "changed"
	if d.Entries[0].Text != "x" {
		t.Fatal("clone shares entry backing array")
	}
}

func TestEqual(t *testing.T) {
	now := Timestamp{Time: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)}
	a := &Day{Date: "2026-08-30", Entries: []Entry{{ID: "1", Text: "x", Created: now}}, LastModified: now}
	b := a.Clone()
	if !a.Equal(b) {
		t.Fatal("clone should be equal")
	}
	b.Entries[0].Done = true
	if a.Equal(b) {
		t.Fatal("done flag ignored")
	}
	if !DaysEqual([]*Day{a}, []*Day{a.Clone()}) {
		t.Fatal("DaysEqual on clones")
	}
	if DaysEqual([]*Day{a}, nil) {
		t.Fatal("length mismatch")
	}
}

func TestTimestampJSON(t *testing.T) {
	var zero Timestamp
	b, err := json.Marshal(zero)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `""` {
		t.Fatalf("zero marshals as %s", b)
	}

	ts := Timestamp{Time: time.Date(2026, 8, 30, 9, 30, 0, 0, time.UTC)}
	b, err = json.Marshal(ts)
	if err != nil {
		t.Fatal(err)
	}
	var back Timestamp
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatal(err)
	}
	if !back.Equal(ts.Time) {
		t.Fatalf("round trip: got %v, want %v", back, ts)
	}

	var fromEmpty Timestamp
	if err := json.Unmarshal([]byte(`""`), &fromEmpty); err != nil {
		t.Fatal(err)
	}
	if !fromEmpty.IsZero() {
		t.Fatal("empty string should decode to zero time")
	}
}

func TestRecentWindow(t *testing.T) {
	w := RecentWindow("2026-08-30", 7)
	if len(w) != 7 {
		t.Fatalf("got %d keys", len(w))
	}
	if _, ok := w["2026-08-30"]; !ok {
		t.Fatal("today missing")
	}
	if _, ok := w["2026-08-24"]; !ok {
		t.Fatal("window start missing")
	}
	if _, ok := w["2026-08-23"]; ok {
		t.Fatal("window too wide")
	}

	// Month boundary.
	w = RecentWindow("2026-09-02", 7)
	if _, ok := w["2026-08-27"]; !ok {
		t.Fatal("window does not cross month boundary")
	}

	if len(RecentWindow("not-a-date", 7)) != 0 {
		t.Fatal("invalid key should yield empty window")
	}
}

func TestDateKeyZeroPadded(t *testing.T) {
	got := DateKey(time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), time.UTC)
	if got != "2026-01-05" {
		t.Fatalf("got %q", got)
	}
}
