package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = newLayout(msg.Width, msg.Height)
		m.preview = viewport.New(m.layout.previewW, m.layout.panelH)
		m.shown = previewID{}
		return m, m.loadPreview()

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.preview, cmd = m.preview.Update(msg)
		return m, cmd

	case debounceMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		return m, m.fetch()

	case resultsMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.results, m.err = msg.results, msg.err
		m.cursor, m.offset = 0, 0
		m.shown = previewID{}
		m.preview.SetContent("")
		return m, m.loadPreview()

	case previewMsg:
		return m.showPreview(msg), nil
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		m.done = true
		return m, tea.Quit

	case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Edit):
		r, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.chosen = &r
		m.action = actionCopy
		if key.Matches(msg, keys.Edit) {
			m.action = actionEdit
		}
		m.done = true
		return m, tea.Quit

	case key.Matches(msg, keys.Up):
		return m.moveCursor(-1)
	case key.Matches(msg, keys.Down):
		return m.moveCursor(1)

	case key.Matches(msg, keys.Kind):
		m.filter.Kind = cycle(kindFilters, m.filter.Kind)
		return m.refetch()
	case key.Matches(msg, keys.Source):
		m.filter.Source = cycle(sourceFilters, m.filter.Source)
		return m.refetch()

	case key.Matches(msg, keys.HalfUp):
		m.preview.HalfViewUp()
		return m, nil
	case key.Matches(msg, keys.HalfDown):
		m.preview.HalfViewDown()
		return m, nil
	case key.Matches(msg, keys.PageUp):
		m.preview.ViewUp()
		return m, nil
	case key.Matches(msg, keys.PageDown):
		m.preview.ViewDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if q := m.input.Value(); q != m.query {
		m.query = q
		m.gen++
		return m, tea.Batch(cmd, m.debounce())
	}
	return m, cmd
}

// refetch runs the query again at once after a filter change.
func (m model) refetch() (tea.Model, tea.Cmd) {
	m.gen++
	return m, m.fetch()
}

func (m model) moveCursor(delta int) (tea.Model, tea.Cmd) {
	next := m.cursor + delta
	if next < 0 || next >= len(m.results) {
		return m, nil
	}
	m.cursor = next
	m.offset = scrollOffset(m.cursor, m.offset, m.layout.visibleItems())
	return m, m.loadPreview()
}

// scrollOffset keeps cursor inside a window of visible items.
func scrollOffset(cursor, offset, visible int) int {
	visible = max(visible, 1)
	if cursor < offset {
		return cursor
	}
	if cursor >= offset+visible {
		return cursor - visible + 1
	}
	return offset
}
