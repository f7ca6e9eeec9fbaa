package printers

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/donelog/pkg/suggest"
)

// TagTable renders ranked tag statistics as an aligned table.
func (pp *PrettyPrint) TagTable(stats []suggest.Stat) {
	if len(stats) == 0 {
		f := color.New(color.Faint, color.Italic)
		_, _ = f.Println(" no tags recorded")
		return
	}

	table := uitable.New()
	table.MaxColWidth = 40
	table.AddRow("TAG", "TOTAL", "LAST 7 DAYS", "LAST SEEN")
	for _, st := range stats {
		table.AddRow("#"+st.Tag, st.Total, st.Recent, st.LastSeen)
	}
	fmt.Println(table)
}

// Suggestions renders a plain ranked list for the suggest command.
func (pp *PrettyPrint) Suggestions(stats []suggest.Stat) {
	if len(stats) == 0 {
		f := color.New(color.Faint, color.Italic)
		_, _ = f.Println(" no matches")
		return
	}
	for _, st := range stats {
		fmt.Printf("#%s\n", st.Tag)
	}
}

// AliasTable renders the alias dictionary.
func (pp *PrettyPrint) AliasTable(dict map[string]string, keys []string) {
	table := uitable.New()
	table.AddRow("ALIAS", "TAG")
	for _, k := range keys {
		table.AddRow(k, dict[k])
	}
	fmt.Println(table)
}
