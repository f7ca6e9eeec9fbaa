// Package record defines the persisted day-record model: one record per
// calendar day holding accomplishment entries, a mood, and a free note.
package record

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Mood is a small fixed enumeration describing how the day felt.
type Mood string

const (
	MoodUnset Mood = ""
	MoodGreat Mood = "great"
	MoodGood  Mood = "good"
	MoodOK    Mood = "ok"
	MoodLow   Mood = "low"
	MoodBad   Mood = "bad"
)

// Moods lists every settable mood value.
func Moods() []Mood {
	return []Mood{MoodGreat, MoodGood, MoodOK, MoodLow, MoodBad}
}

// ParseMood maps a user-supplied string to a Mood. Empty clears the mood.
func ParseMood(s string) (Mood, bool) {
	m := Mood(strings.ToLower(strings.TrimSpace(s)))
	if m == MoodUnset {
		return MoodUnset, true
	}
	for _, known := range Moods() {
		if m == known {
			return m, true
		}
	}
	return MoodUnset, false
}

// Entry is one accomplishment line within a day.
type Entry struct {
	ID      string    `json:"id"`
	Text    string    `json:"text"`
	Done    bool      `json:"done,omitempty"`
	Created Timestamp `json:"created,omitempty"`
}

// Day is the persisted unit: everything recorded for one calendar date.
// Date is the zero-padded YYYY-MM-DD key; the storage key is authoritative,
// so readers correct a mismatched embedded date to match the key.
type Day struct {
	Date         string    `json:"date"`
	Entries      []Entry   `json:"entries,omitempty"`
	Mood         Mood      `json:"mood,omitempty"`
	Note         string    `json:"note,omitempty"`
	LastModified Timestamp `json:"lastModified,omitempty"`
}

// NewDay returns an empty-but-valid record for the given date key.
func NewDay(date string) *Day {
	return &Day{Date: date}
}

// NewEntry builds an entry with a fresh ID and creation time.
func NewEntry(text string) Entry {
	return Entry{
		ID:      uuid.NewString(),
		Text:    text,
		Created: Timestamp{Time: time.Now()},
	}
}

// Sanitize enforces the record invariants: empty/whitespace-only entry text is
// dropped, entry IDs are unique within the record (first wins), and entries
// missing an ID get one assigned.
func (d *Day) Sanitize() {
	if d == nil {
		return
	}
	kept := d.Entries[:0]
	seen := make(map[string]struct{}, len(d.Entries))
	for _, e := range d.Entries {
		if strings.TrimSpace(e.Text) == "" {
			continue
		}
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		if _, dup := seen[e.ID]; dup {
			continue
		}
		seen[e.ID] = struct{}{}
		kept = append(kept, e)
	}
	d.Entries = kept
}

// Entry returns the entry with the given id, if present.
func (d *Day) Entry(id string) (Entry, bool) {
	for _, e := range d.Entries {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// IsEmpty reports whether the record carries no user data at all.
func (d *Day) IsEmpty() bool {
	return d == nil || (len(d.Entries) == 0 && d.Mood == MoodUnset && d.Note == "")
}

// Clone deep-copies the record so cached values stay isolated from callers.
func (d *Day) Clone() *Day {
	if d == nil {
		return nil
	}
	cp := *d
	if len(d.Entries) > 0 {
		cp.Entries = append([]Entry(nil), d.Entries...)
	}
	return &cp
}

// Equal reports structural equality, used by caches to decide whether a rescan
// actually changed anything before notifying subscribers.
func (d *Day) Equal(other *Day) bool {
	if d == nil || other == nil {
		return d == other
	}
	if d.Date != other.Date || d.Mood != other.Mood || d.Note != other.Note {
		return false
	}
	if !d.LastModified.Equal(other.LastModified.Time) {
		return false
	}
	if len(d.Entries) != len(other.Entries) {
		return false
	}
	for i := range d.Entries {
		a, b := d.Entries[i], other.Entries[i]
		if a.ID != b.ID || a.Text != b.Text || a.Done != b.Done {
			return false
		}
		if !a.Created.Equal(b.Created.Time) {
			return false
		}
	}
	return true
}

// DaysEqual compares two newest-first scan results structurally.
func DaysEqual(a, b []*Day) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
