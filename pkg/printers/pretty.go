// Package printers renders day records and tag statistics for the terminal.
package printers

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"tableflip.dev/donelog/pkg/record"
)

type PrettyPrint struct {
	ShowID bool
}

var spacing = strings.Repeat(" ", len("171dff69  "))

func (pp *PrettyPrint) NewLine() {
	fmt.Println("")
}

// DayHeader prints the date line with mood and note annotations.
func (pp *PrettyPrint) DayHeader(d *record.Day) {
	t := color.New(color.Bold, color.Underline)
	c := color.New(color.Faint)

	if pp.ShowID {
		_, _ = t.Print(spacing)
	}
	_, _ = t.Print(d.Date)
	if d.Mood != record.MoodUnset {
		_, _ = c.Printf("  %s", d.Mood)
	}
	_, _ = c.Println("")
	if d.Note != "" {
		if pp.ShowID {
			fmt.Print(spacing)
		}
		n := color.New(color.Italic, color.Faint)
		_, _ = n.Println(d.Note)
	}
}

// Entries prints a day's entries, completed ones with a check glyph.
func (pp *PrettyPrint) Entries(entries ...record.Entry) {
	if len(entries) == 0 {
		f := color.New(color.Faint, color.Italic)
		if pp.ShowID {
			_, _ = f.Print(spacing)
		}
		_, _ = f.Print(" none\n\n")
		return
	}

	t := color.New()
	y := color.New(color.FgHiYellow, color.Italic, color.Faint)

	for _, e := range entries {
		if pp.ShowID {
			id := e.ID
			if len(id) > 8 {
				id = id[:8]
			}
			_, _ = y.Print(id)
			_, _ = y.Print(strings.Repeat(" ", len(spacing)-len(id)))
		}
		glyph := "•"
		if e.Done {
			glyph = "✓"
		}
		_, _ = t.Printf("%s %s\n", glyph, e.Text)
	}
	_, _ = t.Println("")
}

// Tags prints the canonical tags recognized in a just-added entry.
func (pp *PrettyPrint) Tags(tags []string) {
	if len(tags) == 0 {
		return
	}
	c := color.New(color.Faint)
	parts := make([]string, len(tags))
	for i, t := range tags {
		parts[i] = "#" + t
	}
	_, _ = c.Printf("tags: %s\n", strings.Join(parts, " "))
}

// Day prints a complete record: header plus entries.
func (pp *PrettyPrint) Day(d *record.Day) {
	if d == nil {
		return
	}
	pp.DayHeader(d)
	pp.Entries(d.Entries...)
}
