package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Zuo-Peng/aichatmd/internal/index"
	"github.com/Zuo-Peng/aichatmd/internal/preview"
	"github.com/Zuo-Peng/aichatmd/internal/search"
)

type previewMsg struct {
	id      previewID
	content string
	hitLine int
	err     error
}

// loadPreview renders the selected result's transcript off the UI
// goroutine. It is a no-op when that preview is already shown.
func (m model) loadPreview() tea.Cmd {
	r, ok := m.selected()
	if !ok {
		return nil
	}
	id := previewID{key: r.TranscriptKey, block: r.BlockID}
	if id == m.shown {
		return nil
	}
	return renderPreview(m.db, r, m.query, m.layout.previewW)
}

func renderPreview(db *index.DB, r search.Result, query string, width int) tea.Cmd {
	return func() tea.Msg {
		content, hitLine, err := preview.Transcript(db, r.TranscriptKey, preview.Options{
			HitBlockID: r.BlockID,
			Context:    -1,
			Width:      width,
			Query:      query,
		})
		return previewMsg{
			id:      previewID{key: r.TranscriptKey, block: r.BlockID},
			content: content,
			hitLine: hitLine,
			err:     err,
		}
	}
}

// showPreview applies a rendered preview if it is still for the selection.
func (m model) showPreview(msg previewMsg) model {
	r, ok := m.selected()
	if !ok || msg.id != (previewID{key: r.TranscriptKey, block: r.BlockID}) {
		return m
	}
	if msg.err != nil {
		m.preview.SetContent("Preview error: " + msg.err.Error())
	} else {
		m.preview.SetContent(msg.content)
		m.preview.SetYOffset(max(msg.hitLine, 0))
	}
	m.shown = msg.id
	return m
}
