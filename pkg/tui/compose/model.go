// Package compose is the interactive capture screen: a text input with a
// live tag-suggestion dropdown fed by the day and alias caches.
package compose

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tableflip.dev/donelog/pkg/app"
	"tableflip.dev/donelog/pkg/cache"
	"tableflip.dev/donelog/pkg/record"
	"tableflip.dev/donelog/pkg/sched"
	"tableflip.dev/donelog/pkg/store"
	"tableflip.dev/donelog/pkg/suggest"
	"tableflip.dev/donelog/pkg/tag"
)

const maxVisible = 5

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	faintStyle    = lipgloss.NewStyle().Faint(true)
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	statusStyle   = lipgloss.NewStyle().Faint(true).Italic(true)
)

type changedMsg struct{}

type savedMsg struct{ entry record.Entry }

type errMsg struct{ err error }

// Model drives the capture screen.
type Model struct {
	svc    *app.Service
	days   *cache.DayCache
	alias  *cache.AliasCache
	engine *suggest.Engine

	input textinput.Model

	today     string
	day       *record.Day
	visible   []suggest.Stat
	state     suggest.State
	active    tag.Token
	hasActive bool
	selected  int
	autoSpace bool
	status    string

	changes chan struct{}
	offDays func()
	offEng  func()
}

// New wires caches, scheduler, and engine around the given persistence and
// returns a model ready to hand to a bubbletea program.
func New(svc *app.Service, p store.Persistence) Model {
	s := sched.New(sched.DefaultIdleDelay)
	days := cache.NewDayCache(p, s)
	alias := cache.NewAliasCache(p, s)
	engine := suggest.NewEngine(days, alias, s, p.Location())
	engine.SetEnabled(true)

	ti := textinput.New()
	ti.Placeholder = "What got done? Use #tags"
	ti.CharLimit = 256
	ti.Prompt = "> "
	ti.Focus()

	m := Model{
		svc:       svc,
		days:      days,
		alias:     alias,
		engine:    engine,
		input:     ti,
		today:     record.Today(p.Location()),
		autoSpace: p.ReadBoolPref(store.PrefAutoSpace, true),
		changes:   make(chan struct{}, 1),
	}

	notify := func() {
		select {
		case m.changes <- struct{}{}:
		default:
		}
	}
	m.offDays = days.Subscribe(notify)
	m.offEng = engine.Subscribe(notify)
	m.reload()
	return m
}

// Init starts the cursor blink and the change listener.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForChange())
}

func (m Model) waitForChange() tea.Cmd {
	ch := m.changes
	return func() tea.Msg {
		<-ch
		return changedMsg{}
	}
}

func (m Model) saveEntry(text string) tea.Cmd {
	return func() tea.Msg {
		e, err := m.svc.AddEntry(context.Background(), m.today, text)
		if err != nil {
			return errMsg{err}
		}
		return savedMsg{entry: e}
	}
}

// reload refreshes the day snapshot and the suggestion dropdown from the
// caches' current state.
func (m *Model) reload() {
	snapshot, loaded := m.days.Snapshot()
	m.day = nil
	if loaded {
		for _, d := range snapshot {
			if d != nil && d.Date == m.today {
				m.day = d
				break
			}
		}
	}
	m.refreshSuggestions()
}

// refreshSuggestions recomputes the active token under the cursor and the
// filtered dropdown for it.
func (m *Model) refreshSuggestions() {
	val := m.input.Value()
	tok, ok := tag.ActiveToken(val, byteCursor(val, m.input.Position()))
	m.active, m.hasActive = tok, ok
	if !ok {
		m.visible = nil
		m.selected = 0
		return
	}
	m.visible, m.state = m.engine.SuggestionsFor(tok.Text, maxVisible)
	if m.selected >= len(m.visible) {
		m.selected = 0
	}
}

// accept replaces the active token with the selected canonical tag.
func (m *Model) accept() {
	if !m.hasActive || m.selected >= len(m.visible) {
		return
	}
	val := m.input.Value()
	cur := byteCursor(val, m.input.Position())
	next, nextCur := tag.Insert(val, cur, m.active, m.visible[m.selected].Tag, m.autoSpace)
	m.input.SetValue(next)
	m.input.SetCursor(utf8.RuneCountInString(next[:nextCur]))
	m.refreshSuggestions()
}

func (m *Model) close() {
	if m.offDays != nil {
		m.offDays()
		m.offDays = nil
	}
	if m.offEng != nil {
		m.offEng()
		m.offEng = nil
	}
	m.engine.SetEnabled(false)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case changedMsg:
		m.reload()
		return m, m.waitForChange()

	case savedMsg:
		m.status = fmt.Sprintf("saved: %s", msg.entry.Text)
		m.input.SetValue("")
		m.input.SetCursor(0)
		m.refreshSuggestions()
		return m, nil

	case errMsg:
		m.status = fmt.Sprintf("error: %v", msg.err)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.close()
			return m, tea.Quit

		case "esc":
			if m.hasActive {
				m.hasActive = false
				m.visible = nil
				return m, nil
			}
			m.close()
			return m, tea.Quit

		case "tab":
			if m.hasActive && len(m.visible) > 0 {
				m.accept()
			}
			return m, nil

		case "enter":
			if m.hasActive && len(m.visible) > 0 {
				m.accept()
				return m, nil
			}
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				return m, nil
			}
			return m, m.saveEntry(text)

		case "down", "ctrl+n":
			if len(m.visible) > 0 {
				m.selected = (m.selected + 1) % len(m.visible)
			}
			return m, nil

		case "up", "ctrl+p":
			if len(m.visible) > 0 {
				m.selected = (m.selected + len(m.visible) - 1) % len(m.visible)
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.refreshSuggestions()
	return m, cmd
}

func (m Model) View() string {
	var b strings.Builder

	header := m.today
	if m.day != nil && m.day.Mood != record.MoodUnset {
		header += "  " + string(m.day.Mood)
	}
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n\n")

	if m.day == nil || len(m.day.Entries) == 0 {
		b.WriteString(faintStyle.Render(" none"))
		b.WriteString("\n")
	} else {
		for _, e := range m.day.Entries {
			glyph := "•"
			if e.Done {
				glyph = "✓"
			}
			fmt.Fprintf(&b, "%s %s\n", glyph, e.Text)
		}
	}
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")

	if m.hasActive {
		if len(m.visible) == 0 && m.state == suggest.StateComputing {
			b.WriteString(faintStyle.Render("  …"))
			b.WriteString("\n")
		}
		for i, st := range m.visible {
			line := fmt.Sprintf("  #%s  %d", st.Tag, st.Total)
			if i == m.selected {
				line = selectedStyle.Render(line)
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(statusStyle.Render("enter save · tab complete · esc quit"))
	b.WriteString("\n")
	return b.String()
}

// Run drives the capture screen until the user quits.
func Run(ctx context.Context, svc *app.Service, p store.Persistence) error {
	m := New(svc, p)
	prog := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := prog.Run()
	return err
}

// byteCursor converts the text input's rune cursor to a byte offset.
func byteCursor(s string, runePos int) int {
	off := 0
	for i := 0; i < runePos && off < len(s); i++ {
		_, size := utf8.DecodeRuneInString(s[off:])
		off += size
	}
	return off
}
