package suggest

import (
	"testing"

	"tableflip.dev/donelog/pkg/record"
)

func day(date string, texts ...string) *record.Day {
	d := record.NewDay(date)
	for _, text := range texts {
		d.Entries = append(d.Entries, record.NewEntry(text))
	}
	return d
}

func TestRankRecencyBeatsTotal(t *testing.T) {
	// 仕事 appears often but only outside the trailing window; 健康 appears
	// once, today.
	days := []*record.Day{
		day("2026-08-30", "散歩した #健康"),
		day("2026-07-01", "報告書 #仕事", "会議 #仕事"),
		day("2026-06-15", "残業 #仕事"),
	}

	stats := Rank(days, nil, "2026-08-30")
	if len(stats) != 2 {
		t.Fatalf("got %d stats", len(stats))
	}
	if stats[0].Tag != "健康" || stats[1].Tag != "仕事" {
		t.Fatalf("order: %s, %s", stats[0].Tag, stats[1].Tag)
	}
	if stats[0].Recent != 1 || stats[0].Total != 1 {
		t.Fatalf("健康: %+v", stats[0])
	}
	if stats[1].Recent != 0 || stats[1].Total != 3 || stats[1].LastSeen != "2026-07-01" {
		t.Fatalf("仕事: %+v", stats[1])
	}
}

func TestRankCountsOncePerEntry(t *testing.T) {
	days := []*record.Day{
		day("2026-08-30", "doubled #work #work"),
	}
	stats := Rank(days, nil, "2026-08-30")
	if len(stats) != 1 || stats[0].Total != 1 {
		t.Fatalf("got %+v", stats)
	}
}

func TestRankAliasesCollapseSpellings(t *testing.T) {
	aliases := map[string]string{"health": "健康", "gym": "健康"}
	days := []*record.Day{
		day("2026-08-30", "walked #health"),
		day("2026-08-29", "lifted #gym"),
		day("2026-08-28", "jogged #健康"),
	}
	stats := Rank(days, aliases, "2026-08-30")
	if len(stats) != 1 {
		t.Fatalf("got %d stats", len(stats))
	}
	st := stats[0]
	if st.Tag != "健康" || st.Total != 3 {
		t.Fatalf("got %+v", st)
	}
	// Match keys include the alias spellings for substring filtering.
	want := map[string]bool{"health": true, "gym": true, "健康": true}
	if len(st.Keys) != 3 {
		t.Fatalf("keys: %v", st.Keys)
	}
	for _, k := range st.Keys {
		if !want[k] {
			t.Fatalf("unexpected key %q in %v", k, st.Keys)
		}
	}
}

func TestRankTiesBreakByName(t *testing.T) {
	days := []*record.Day{
		day("2026-08-30", "#beta and #alpha"),
	}
	stats := Rank(days, nil, "2026-08-30")
	if len(stats) != 2 || stats[0].Tag != "alpha" || stats[1].Tag != "beta" {
		t.Fatalf("got %+v", stats)
	}
}

func TestFilter(t *testing.T) {
	aliases := map[string]string{"health": "健康"}
	days := []*record.Day{
		day("2026-08-30", "#健康 #work #reading"),
	}
	stats := Rank(days, aliases, "2026-08-30")

	// Latin typed text reaches a CJK tag through its alias key.
	got := Filter(stats, "he", 10)
	if len(got) != 1 || got[0].Tag != "健康" {
		t.Fatalf("got %+v", got)
	}

	// The leading # is normalized away before matching.
	got = Filter(stats, "#he", 10)
	if len(got) != 1 || got[0].Tag != "健康" {
		t.Fatalf("hash prefix: got %+v", got)
	}

	// Empty input returns the top of the ranking, capped.
	got = Filter(stats, "", 2)
	if len(got) != 2 {
		t.Fatalf("empty input: got %d", len(got))
	}

	if got := Filter(stats, "zzz", 10); len(got) != 0 {
		t.Fatalf("no match: got %+v", got)
	}
}
