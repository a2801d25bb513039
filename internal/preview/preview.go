// Package preview draws an archived transcript for the terminal, laid out
// like its Markdown file: the preamble, then one section per text block.
package preview

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/Zuo-Peng/aichatmd/internal/index"
	"github.com/Zuo-Peng/aichatmd/internal/transcript"
)

type Options struct {
	HitBlockID int    // -1 = no hit
	Context    int    // blocks on each side of the hit, 0 = 10, <0 = all
	Width      int    // wrap width, 0 = no wrap
	Query      string // terms to highlight
}

var (
	styleMeta  = lipgloss.NewStyle().Faint(true)
	styleTitle = lipgloss.NewStyle().Bold(true)
	styleHit   = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("3"))
	styleThinking = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Faint(true)
	styleMatch    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)

	// speakers are colored in order of first appearance
	speakerPalette = []lipgloss.Style{
		lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
		lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
	}
)

// page accumulates wrapped output and counts the lines written.
type page struct {
	b     strings.Builder
	width int
	lines int
}

func (p *page) line(s string) {
	if p.width > 0 {
		s = ansi.Wrap(s, p.width, "")
	}
	for _, l := range strings.Split(s, "\n") {
		p.b.WriteString(l)
		p.b.WriteByte('\n')
		p.lines++
	}
}

func (p *page) String() string {
	return p.b.String()
}

// Transcript renders an archived transcript. It returns the text, the
// 0-based line of the hit block's header (-1 without a hit) and any error.
func Transcript(db *index.DB, key string, opts Options) (string, int, error) {
	t, err := db.GetTranscriptByKey(key)
	if err != nil {
		return "", -1, fmt.Errorf("get transcript: %w", err)
	}
	if t == nil {
		return "", -1, fmt.Errorf("transcript not found: %s", key)
	}

	context := opts.Context
	switch {
	case context == 0:
		context = 10
	case context < 0:
		context = 1 << 30
	}
	blocks, hit, start, total, err := db.GetBlocksWindow(key, opts.HitBlockID, context)
	if err != nil {
		return "", -1, fmt.Errorf("get blocks: %w", err)
	}

	p := &page{width: opts.Width}
	writePreamble(p, t)
	if total == 0 {
		p.line(styleMeta.Render("(no text blocks)"))
		return p.String(), -1, nil
	}

	if start > 0 {
		p.line(styleMeta.Render(fmt.Sprintf("... %d earlier blocks", start)))
		p.line("")
	}

	match := matcher(opts.Query)
	styles := speakerStyles(blocks)
	hitLine := -1
	for i, blk := range blocks {
		if i == hit {
			hitLine = p.lines
		}
		writeBlock(p, blk, styles[blk.Speaker], i == hit, match)
	}

	if after := total - start - len(blocks); after > 0 {
		p.line(styleMeta.Render(fmt.Sprintf("... %d later blocks", after)))
	}
	return p.String(), hitLine, nil
}

func writePreamble(p *page, t *index.TranscriptRow) {
	p.line(styleTitle.Render("# " + t.Title))
	p.line(styleMeta.Render(fmt.Sprintf("%s | first %s | last %s", t.Platform, t.FirstMessage, t.LastMessage)))
	p.line(styleMeta.Render(t.OutputPath))
	p.line(styleMeta.Render("---"))
	p.line("")
}

// writeBlock draws one block the way the converter laid it out: a
// "####" header naming the speaker and its line in the Markdown file, then
// the text. Thinking text is set off with a bar.
func writeBlock(p *page, blk index.BlockRow, speaker lipgloss.Style, isHit bool, match *regexp.Regexp) {
	head := fmt.Sprintf("#### %s @ %s", blk.Speaker, blk.Ts)
	thinking := blk.Kind == transcript.BlockThinking
	if thinking {
		head += " (thinking)"
	}
	loc := styleMeta.Render(fmt.Sprintf("  L%d", blk.LineNumber))
	if isHit {
		p.line(styleHit.Render(">> "+head) + loc)
	} else {
		p.line(speaker.Render(head) + loc)
	}

	bar := "  "
	if thinking {
		bar = styleThinking.Render("| ")
	}
	for _, l := range strings.Split(highlight(blk.Text, match), "\n") {
		p.line(bar + l)
	}
	p.line("")
}

// matcher builds a case-insensitive pattern for the query's terms, or nil
// when there are none.
func matcher(query string) *regexp.Regexp {
	var terms []string
	for _, f := range strings.Fields(query) {
		if f = strings.Trim(f, `"`); f != "" {
			terms = append(terms, regexp.QuoteMeta(f))
		}
	}
	if len(terms) == 0 {
		return nil
	}
	return regexp.MustCompile("(?i)" + strings.Join(terms, "|"))
}

func highlight(text string, match *regexp.Regexp) string {
	if match == nil {
		return text
	}
	return match.ReplaceAllStringFunc(text, func(s string) string {
		return styleMatch.Render(s)
	})
}

func speakerStyles(blocks []index.BlockRow) map[string]lipgloss.Style {
	styles := make(map[string]lipgloss.Style)
	for _, blk := range blocks {
		if _, ok := styles[blk.Speaker]; ok {
			continue
		}
		if n := len(styles); n < len(speakerPalette) {
			styles[blk.Speaker] = speakerPalette[n]
		} else {
			styles[blk.Speaker] = styleMeta
		}
	}
	return styles
}
