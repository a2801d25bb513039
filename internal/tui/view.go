package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/Zuo-Peng/aichatmd/internal/search"
	"github.com/Zuo-Peng/aichatmd/internal/transcript"
)

// rowsPerResult is the number of terminal lines each result occupies.
const rowsPerResult = 2

// layout splits the terminal into the input row, a result list on the left,
// a preview on the right and a status line.
type layout struct {
	listW, previewW, panelH int
}

func newLayout(width, height int) layout {
	if width <= 0 {
		width = 100
	}
	if height <= 0 {
		height = 26
	}
	// 4 columns and 4 rows go to the two panel borders
	return layout{
		listW:    max(width*2/5-4, 20),
		previewW: max(width*3/5-4, 20),
		panelH:   max(height-6, 5),
	}
}

func (l layout) visibleItems() int {
	return l.panelH / rowsPerResult
}

func (m model) View() string {
	if m.done {
		return ""
	}
	l := m.layout

	list := stylePanelBorder.Width(l.listW).Height(l.panelH).Render(m.renderResults())
	m.preview.Width = l.previewW
	m.preview.Height = l.panelH
	body := styleActiveBorder.Width(l.previewW).Height(l.panelH).Render(m.preview.View())

	return lipgloss.JoinVertical(lipgloss.Left,
		m.input.View(),
		lipgloss.JoinHorizontal(lipgloss.Top, list, body),
		m.statusBar(),
	)
}

func (m model) renderResults() string {
	l := m.layout
	if m.err != nil {
		return styleError.Width(l.listW).Render("Error: " + m.err.Error())
	}
	if len(m.results) == 0 {
		msg := "No matches"
		if m.query == "" && !m.listing {
			msg = "Type to search"
		}
		return styleSnippet.Width(l.listW).Height(l.panelH).
			Align(lipgloss.Center, lipgloss.Center).
			Render(msg)
	}

	end := min(m.offset+l.visibleItems(), len(m.results))
	var rows []string
	for i := m.offset; i < end; i++ {
		rows = append(rows, resultRows(m.results[i], l.listW, i == m.cursor)...)
	}
	return strings.Join(rows, "\n")
}

// resultRows formats one result:
//
//	[>] Platform  Title                 03-05
//	    Speaker (thinking): snippet
func resultRows(r search.Result, width int, selected bool) []string {
	marker := "  "
	if selected {
		marker = styleListSelected.Render("> ")
	}
	platform := r.Platform
	if platform == "" {
		platform = r.Source
	}
	badge := platformStyle(r.Source).Render(fmt.Sprintf("%-8s", platform))

	date := shortDate(r.LastMessage)
	titleW := width - 2 - 9 - runewidth.StringWidth(date) - 1
	title := fit(strings.Join(strings.Fields(r.Title), " "), titleW)
	top := marker + badge + " " + title + " " + styleSnippet.Render(date)

	who := r.Speaker
	if r.Kind == transcript.BlockThinking {
		who += " (thinking)"
	}
	snippet := strings.NewReplacer(">>>", "", "<<<", "").Replace(r.Snippet)
	if who != "" {
		snippet = who + ": " + snippet
	}
	bottom := "    " + styleSnippet.Render(fit(snippet, width-4))

	return []string{top, bottom}
}

// shortDate cuts "2024-03-05 02:07 PM UTC" down to "03-05".
func shortDate(ts string) string {
	if len(ts) < 10 || ts[4] != '-' {
		return ""
	}
	return ts[5:10]
}

// fit truncates or pads s to exactly w cells.
func fit(s string, w int) string {
	w = max(w, 0)
	if runewidth.StringWidth(s) > w {
		s = runewidth.Truncate(s, w, "")
	}
	return runewidth.FillRight(s, w)
}

func (m model) statusBar() string {
	noun := "matches"
	if m.listing && m.query == "" {
		noun = "transcripts"
	}
	parts := []string{
		fmt.Sprintf("%d %s", len(m.results), noun),
		"kind: " + orAll(m.filter.Kind) + " (tab)",
		"platform: " + orAll(m.filter.Source) + " (S-tab)",
		"Enter copy path",
		"C-o edit",
		"Esc quit",
	}
	return styleStatusBar.Render(strings.Join(parts, " | "))
}

func orAll(filter string) string {
	if filter == "" {
		return "all"
	}
	return filter
}
