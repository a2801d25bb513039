package transcript

import (
	"fmt"
	"strings"

	"github.com/Zuo-Peng/aichatmd/internal/parse"
)

func renderChatGPT(chat *parse.ChatGPTChat, opts Options) (*Document, error) {
	tf := NewTimeFormatter(opts.Timezone, EncodingUnix, opts.Logger)
	names := NewParticipants(parse.SourceChatGPT, opts.UserName, opts.AIName)

	msgs, err := chat.Messages()
	if err != nil {
		return nil, err
	}

	first, err := tf.FormatUnix(chat.CreateTime)
	if err != nil {
		return nil, fmt.Errorf("chat create_time: %w", err)
	}
	last, err := tf.FormatUnix(chat.UpdateTime)
	if err != nil {
		return nil, fmt.Errorf("chat update_time: %w", err)
	}

	w, doc := newDocument(titleOr(opts.Title, chat.Title), parse.SourceChatGPT, first, last, len(msgs))
	opts.Progress.Start(len(msgs))

	for i := range msgs {
		opts.Progress.Advance()
		m := &msgs[i]

		if m.Metadata.IsVisuallyHidden {
			continue
		}
		ct := parse.ClassifyChatGPT(m.Content.ContentType)
		if ct.Kind == parse.KindUserEditableContext {
			continue
		}
		if !opts.Reasoning && m.IsReasoning() {
			continue
		}
		if ct.IsUnknown() {
			opts.Logger.Printf("unknown content type %q", ct.Tag)
		}
		if !m.Content.HasText() {
			continue
		}

		ts, err := tf.FormatUnixPtr(m.CreateTime)
		if err != nil {
			return nil, fmt.Errorf("message %s: %w", m.ID, err)
		}
		w.header(names.Name(m.Author.Role), ts)

		c := &m.Content
		switch ct.Kind {
		case parse.KindTetherQuote:
			if blank(c.Text) {
				writeParts(w, BlockText, c)
				break
			}
			if c.Title != "" {
				w.heading(5, "Quoted Content: %s", c.Title)
			}
			w.fenced("````", "", c.Text)
		case parse.KindCode:
			lang := c.Language
			if lang == "unknown" {
				lang = ""
			}
			code := c.Text
			if blank(code) {
				code = strings.Join(nonBlank(c.TextParts()), "\n")
			}
			w.fenced("```", lang, code)
		case parse.KindThoughts:
			w.thinkingHeading()
			n := 0
			for _, th := range c.Thoughts {
				if !blank(th.Summary) {
					w.paragraph(BlockThinking, "**"+th.Summary+"**")
					n++
				}
				if !blank(th.Content) {
					w.paragraph(BlockThinking, th.Content)
					n++
				}
			}
			if n == 0 {
				writeParts(w, BlockThinking, c)
			}
		case parse.KindReasoningRecap:
			if recap := c.RecapText(); !blank(recap) {
				w.paragraph(BlockThinking, "*"+recap+"*")
				break
			}
			writeParts(w, BlockThinking, c)
		default:
			writeParts(w, BlockText, c)
		}

		w.rule()
	}

	return doc.finish(w)
}

// writeParts writes each non-blank string part, falling back to the text
// field when there are none.
func writeParts(w *writer, kind string, c *parse.ChatGPTContent) {
	parts := nonBlank(c.TextParts())
	for _, p := range parts {
		w.paragraph(kind, p)
	}
	if len(parts) == 0 && !blank(c.Text) {
		w.paragraph(kind, c.Text)
	}
}

func nonBlank(ss []string) []string {
	var out []string
	for _, s := range ss {
		if !blank(s) {
			out = append(out, s)
		}
	}
	return out
}
