// Package picker provides an interactive terminal selector for choosing a
// metric tag when the log contains several and none was requested.
package picker

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hdrscope/hdrscope/internal/series"
)

// ErrNoSelection is returned when the user quits the picker without
// choosing a tag.
var ErrNoSelection = fmt.Errorf("no metric selected")

type tagItem struct {
	summary series.TagSummary
	unit    string
}

func (i tagItem) Title() string { return i.summary.Tag }

func (i tagItem) Description() string {
	return fmt.Sprintf("%d slices, %d values, max %.2f %s",
		i.summary.Slices, i.summary.Values, i.summary.MaxValue, i.unit)
}

func (i tagItem) FilterValue() string { return i.summary.Tag }

type model struct {
	list     list.Model
	selected string
	quit     bool
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			if item, ok := m.list.SelectedItem().(tagItem); ok {
				m.selected = item.summary.Tag
				return m, tea.Quit
			}
		case "q", "esc", "ctrl+c":
			m.quit = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m model) View() string { return m.list.View() }

// Pick presents the tag summaries in a full-screen list and returns the
// tag the user selects. It returns ErrNoSelection if the user quits
// without picking one.
func Pick(summaries []series.TagSummary, unit string) (string, error) {
	items := make([]list.Item, 0, len(summaries))
	for _, s := range summaries {
		items = append(items, tagItem{summary: s, unit: unit})
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Select a metric"
	l.SetShowStatusBar(false)

	program := tea.NewProgram(model{list: l}, tea.WithAltScreen())
	final, err := program.Run()
	if err != nil {
		return "", fmt.Errorf("metric picker failed: %w", err)
	}

	m := final.(model)
	if m.quit || m.selected == "" {
		return "", ErrNoSelection
	}
	return m.selected, nil
}
