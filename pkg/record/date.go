package record

import "time"

// LayoutISO is the calendar-day key format. Zero padding keeps lexicographic
// ordering equal to chronological ordering.
const LayoutISO = "2006-01-02"

// DateKey formats t as a day key in the given reference zone.
func DateKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(LayoutISO)
}

// Today returns the current day key in the reference zone.
func Today(loc *time.Location) string {
	return DateKey(time.Now(), loc)
}

// ParseDateKey validates and parses a YYYY-MM-DD key.
func ParseDateKey(s string) (time.Time, error) {
	return time.Parse(LayoutISO, s)
}

// RecentWindow returns the set of the n most recent day keys ending at today
// (inclusive). today must be a valid day key; an invalid key yields an empty
// set rather than an error since callers treat the window as advisory.
func RecentWindow(today string, n int) map[string]struct{} {
	window := make(map[string]struct{}, n)
	t, err := ParseDateKey(today)
	if err != nil {
		return window
	}
	for i := 0; i < n; i++ {
		window[t.AddDate(0, 0, -i).Format(LayoutISO)] = struct{}{}
	}
	return window
}
