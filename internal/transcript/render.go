// Package transcript renders decoded chat exports as Markdown.
package transcript

import (
	"fmt"
	"io"
	"log"

	"github.com/Zuo-Peng/aichatmd/internal/parse"
)

// Options is the frozen configuration of one conversion.
type Options struct {
	Source    parse.Source // used by Convert to pick the decoder
	Timezone  string       // IANA name, "" means UTC
	Reasoning bool         // show thinking / chain-of-thought content
	Title     string       // overrides the export's title when set
	UserName  string
	AIName    string

	Logger   *log.Logger // diagnostics; nil discards
	Progress Progress    // nil disables
}

// Progress is advanced once per source message. It never affects output.
type Progress interface {
	Start(total int)
	Advance()
	Finish()
}

type nopProgress struct{}

func (nopProgress) Start(int) {}
func (nopProgress) Advance()  {}
func (nopProgress) Finish()   {}

// Document is a rendered transcript.
type Document struct {
	Title        string
	Platform     string
	FirstMessage string
	LastMessage  string
	Markdown     string
	Blocks       []Block
}

// Convert decodes data as an export of opts.Source and renders it.
func Convert(data []byte, opts Options) (string, error) {
	t, err := parse.Decode(opts.Source, data)
	if err != nil {
		return "", err
	}
	doc, err := Render(t, opts)
	if err != nil {
		return "", err
	}
	return doc.Markdown, nil
}

// Render produces the Markdown document for a decoded export. Any
// malformed timestamp aborts the whole conversion.
func Render(t parse.Transcript, opts Options) (*Document, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil transcript", parse.ErrUnknownSource)
	}
	opts = opts.withDefaults(t.Source())
	defer opts.Progress.Finish()

	switch c := t.(type) {
	case *parse.ClaudeChat:
		return renderClaude(c, opts)
	case *parse.ChatGPTChat:
		return renderChatGPT(c, opts)
	case *parse.DeepSeekResponse:
		return renderDeepSeek(c, opts)
	default:
		return nil, fmt.Errorf("%w: %T", parse.ErrUnknownSource, t)
	}
}

func (o Options) withDefaults(source parse.Source) Options {
	o.Logger = orDiscard(o.Logger)
	if o.Progress == nil {
		o.Progress = nopProgress{}
	}
	if o.UserName == "" {
		o.UserName = "User"
	}
	if o.AIName == "" {
		o.AIName = source.DefaultAIName()
	}
	return o
}

func orDiscard(l *log.Logger) *log.Logger {
	if l == nil {
		return log.New(io.Discard, "", 0)
	}
	return l
}

func titleOr(override, native string) string {
	if override != "" {
		return override
	}
	return native
}

// newDocument writes the shared preamble and returns the writer for the
// message blocks.
func newDocument(title string, source parse.Source, first, last string, messages int) (*writer, *Document) {
	w := newWriter(messages * 500)
	doc := &Document{
		Title:        title,
		Platform:     source.PlatformName(),
		FirstMessage: first,
		LastMessage:  last,
	}
	w.preamble(doc.Title, doc.Platform, first, last)
	return w, doc
}

func (d *Document) finish(w *writer) (*Document, error) {
	md, blocks, err := w.finish()
	if err != nil {
		return nil, err
	}
	d.Markdown = md
	d.Blocks = blocks
	return d, nil
}
