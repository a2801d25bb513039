// Package tui is an interactive browser over the conversion archive.
package tui

import (
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Zuo-Peng/aichatmd/internal/index"
	"github.com/Zuo-Peng/aichatmd/internal/open"
	"github.com/Zuo-Peng/aichatmd/internal/parse"
	"github.com/Zuo-Peng/aichatmd/internal/search"
	"github.com/Zuo-Peng/aichatmd/internal/transcript"
)

const debounceDelay = 200 * time.Millisecond

// exitAction is what happens to the chosen result once the TUI closes.
type exitAction int

const (
	actionCopy exitAction = iota
	actionEdit
)

// Filters are cycled in order. "" matches everything.
var (
	kindFilters   = []string{"", transcript.BlockText, transcript.BlockThinking}
	sourceFilters = append([]string{""}, sourceNames()...)
)

func sourceNames() []string {
	names := make([]string, len(parse.Sources))
	for i, s := range parse.Sources {
		names[i] = string(s)
	}
	return names
}

// cycle returns the filter value after cur.
func cycle(values []string, cur string) string {
	for i, v := range values {
		if v == cur {
			return values[(i+1)%len(values)]
		}
	}
	return values[0]
}

// previewID names the block a rendered preview belongs to.
type previewID struct {
	key   string
	block int
}

type model struct {
	db      *index.DB
	filter  search.Options // Query is taken from input
	listing bool           // an empty query lists every transcript
	query   string
	gen     int // bumped whenever query or filters change

	input   textinput.Model
	results []search.Result
	cursor  int
	offset  int

	preview viewport.Model
	shown   previewID
	layout  layout
	err     error

	chosen *search.Result
	action exitAction
	done   bool
}

type (
	resultsMsg struct {
		gen     int
		results []search.Result
		err     error
	}
	debounceMsg struct{ gen int }
)

func newModel(db *index.DB, query string, filter search.Options, listing bool) model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.PromptStyle = styleInputPrompt
	ti.TextStyle = styleInput
	ti.CharLimit = 256
	ti.Placeholder = "Search transcripts..."
	if listing {
		ti.Placeholder = "Filter transcripts..."
	}
	ti.SetValue(query)
	ti.Focus()

	return model{
		db:      db,
		filter:  filter,
		listing: listing,
		query:   query,
		input:   ti,
		preview: viewport.New(0, 0),
		layout:  newLayout(0, 0),
	}
}

// Run searches the archive interactively. Enter copies the chosen
// transcript's output path; C-o opens it in $EDITOR at the hit.
func Run(db *index.DB, query string, opts search.Options) error {
	return run(db, newModel(db, query, opts, false))
}

// RunList browses every archived transcript, most recent first.
func RunList(db *index.DB, opts search.Options) error {
	return run(db, newModel(db, "", opts, true))
}

func run(db *index.DB, m model) error {
	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	if err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	fm := final.(model)
	if fm.chosen == nil {
		return nil
	}
	if fm.action == actionEdit {
		return open.Transcript(db, fm.chosen.TranscriptKey, fm.chosen.BlockID)
	}
	return copyOutputPath(fm.chosen.OutputPath)
}

// copyOutputPath puts the Markdown path on the clipboard, printing it
// instead when no clipboard is available.
func copyOutputPath(path string) error {
	if path == "" {
		return fmt.Errorf("transcript has no output path")
	}
	if err := clipboard.WriteAll(path); err != nil {
		fmt.Println(path)
		return nil
	}
	fmt.Printf("Copied to clipboard: %s\n", path)
	return nil
}

func (m model) Init() tea.Cmd {
	if m.listing || m.query != "" {
		return tea.Batch(textinput.Blink, m.fetch())
	}
	return textinput.Blink
}

// fetch queries the archive for the current query and filters. The reply
// carries the generation it was issued for so late replies are dropped.
func (m model) fetch() tea.Cmd {
	db, opts, gen, listing := m.db, m.filter, m.gen, m.listing
	opts.Query = m.query
	return func() tea.Msg {
		var (
			results []search.Result
			err     error
		)
		switch {
		case opts.Query != "":
			results, err = search.Search(db, opts)
		case listing:
			results, err = search.ListAll(db, opts)
		}
		return resultsMsg{gen: gen, results: results, err: err}
	}
}

func (m model) debounce() tea.Cmd {
	gen := m.gen
	return tea.Tick(debounceDelay, func(time.Time) tea.Msg {
		return debounceMsg{gen: gen}
	})
}

func (m model) selected() (search.Result, bool) {
	if m.cursor < 0 || m.cursor >= len(m.results) {
		return search.Result{}, false
	}
	return m.results[m.cursor], true
}
