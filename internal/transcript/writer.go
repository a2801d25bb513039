package transcript

import (
	"fmt"
	"strings"
)

const (
	BlockText     = "text"
	BlockThinking = "thinking"
)

// Block is the searchable text under one message header. A header whose
// content switches between thinking and text yields one block per run.
type Block struct {
	Speaker   string
	Timestamp string
	Kind      string
	Text      string
	Line      int // 1-based line of the owning "####" header
}

// writer builds the Markdown output and records blocks as it goes. The
// first write error sticks and is returned by finish.
type writer struct {
	b      strings.Builder
	err    error
	lines  int
	blocks []Block

	speaker    string
	timestamp  string
	headerLine int
	open       int // index into blocks, -1 when none
}

func newWriter(capacity int) *writer {
	w := &writer{open: -1}
	w.b.Grow(capacity)
	return w
}

func (w *writer) printf(format string, args ...any) {
	if w.err != nil {
		return
	}
	s := fmt.Sprintf(format, args...)
	if _, err := w.b.WriteString(s); err != nil {
		w.err = err
		return
	}
	w.lines += strings.Count(s, "\n")
}

func (w *writer) preamble(title, platform, first, last string) {
	w.printf("# %s\n\n", title)
	w.printf("**Platform:** %s  \n", platform)
	w.printf("**First Message:** %s  \n", first)
	w.printf("**Last Message:** %s  \n", last)
	w.printf("\n---\n\n")
}

// header starts a new message block.
func (w *writer) header(speaker, timestamp string) {
	w.speaker, w.timestamp = speaker, timestamp
	w.headerLine = w.lines + 1
	w.open = -1
	w.printf("#### %s @ %s\n\n", speaker, timestamp)
}

func (w *writer) thinkingHeading() {
	w.printf("##### Thinking Process\n\n")
}

// heading writes a titled sub-section such as an attachment name. It does
// not start a new block.
func (w *writer) heading(level int, format string, args ...any) {
	w.printf("%s %s\n\n", strings.Repeat("#", level), fmt.Sprintf(format, args...))
}

func (w *writer) paragraph(kind, text string) {
	w.printf("%s\n\n", text)
	w.collect(kind, text)
}

func (w *writer) fenced(fence, lang, text string) {
	w.printf("%s%s\n%s\n%s\n\n", fence, lang, text, fence)
	w.collect(BlockText, text)
}

func (w *writer) rule() {
	w.printf("---\n\n")
	w.open = -1
}

func (w *writer) collect(kind, text string) {
	if w.open >= 0 && w.blocks[w.open].Kind == kind {
		w.blocks[w.open].Text += "\n\n" + text
		return
	}
	w.blocks = append(w.blocks, Block{
		Speaker:   w.speaker,
		Timestamp: w.timestamp,
		Kind:      kind,
		Text:      text,
		Line:      w.headerLine,
	})
	w.open = len(w.blocks) - 1
}

func (w *writer) finish() (string, []Block, error) {
	if w.err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrFormat, w.err)
	}
	return w.b.String(), w.blocks, nil
}
