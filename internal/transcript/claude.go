package transcript

import (
	"fmt"
	"log"
	"strings"

	"github.com/Zuo-Peng/aichatmd/internal/parse"
)

func renderClaude(chat *parse.ClaudeChat, opts Options) (*Document, error) {
	tf := NewTimeFormatter(opts.Timezone, EncodingRFC3339, opts.Logger)
	names := NewParticipants(parse.SourceClaude, opts.UserName, opts.AIName)

	first, err := tf.FormatString(chat.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("chat created_at: %w", err)
	}
	last, err := tf.FormatString(chat.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("chat updated_at: %w", err)
	}

	w, doc := newDocument(titleOr(opts.Title, chat.Name), parse.SourceClaude, first, last, len(chat.ChatMessages))
	opts.Progress.Start(len(chat.ChatMessages))

	state := stateNormal
	for i := range chat.ChatMessages {
		opts.Progress.Advance()
		m := &chat.ChatMessages[i]

		segs := visibleClaudeSegments(m.Segments(), opts.Reasoning, opts.Logger)
		if len(segs) == 0 && len(m.Attachments) == 0 {
			continue
		}

		name := names.Name(m.Sender)
		stamp := func(raw string) (string, error) {
			if raw == "" {
				raw = m.CreatedAt
			}
			ts, err := tf.FormatString(raw)
			if err != nil {
				return "", fmt.Errorf("message %d: %w", i, err)
			}
			return ts, nil
		}

		thinking := leadingThinking(segs)
		next, action := state.onMessage(thinking != nil)
		if action == actionExit {
			w.rule()
		}
		switch {
		case action == actionEnter:
			ts, err := stamp(thinking.Timestamp)
			if err != nil {
				return nil, err
			}
			w.header(name, ts)
			w.thinkingHeading()
		case next == stateNormal:
			ts, err := stamp("")
			if err != nil {
				return nil, err
			}
			w.header(name, ts)
		}
		state = next

		prevThinking := false
		for _, seg := range segs {
			next, action := state.onSegment(prevThinking, seg.Type.Kind)
			if action == actionSplit || action == actionEnter {
				ts, err := stamp(seg.Timestamp)
				if err != nil {
					return nil, err
				}
				w.rule()
				w.header(name, ts)
				if action == actionEnter {
					w.thinkingHeading()
				}
			}
			state = next

			writeClaudeSegment(w, seg)
			prevThinking = seg.Type.Kind == parse.KindThinking
		}

		for _, a := range m.Attachments {
			w.heading(4, "Attachment: %s", a.FileName)
			w.fenced("````", "", a.ExtractedContent)
		}

		if state == stateNormal {
			w.rule()
		}
	}
	if state == stateInReasoning {
		w.rule()
	}

	return doc.finish(w)
}

// visibleClaudeSegments drops every segment that renders nothing.
func visibleClaudeSegments(segs []parse.Segment, reasoning bool, logger *log.Logger) []parse.Segment {
	var out []parse.Segment
	for _, seg := range segs {
		switch seg.Type.Kind {
		case parse.KindToolResult:
			continue
		case parse.KindThinking:
			if !reasoning || (blank(seg.Text) && len(seg.Summaries) == 0) {
				continue
			}
		case parse.KindToolUse:
			if !isArtifact(seg) {
				continue
			}
		case parse.KindUnknown:
			logger.Printf("unknown content type %q", seg.Type.Tag)
			if blank(seg.Text) {
				continue
			}
		default:
			if blank(seg.Text) {
				continue
			}
		}
		out = append(out, seg)
	}
	return out
}

func isArtifact(seg parse.Segment) bool {
	a := seg.Artifact
	return seg.ToolName == "artifacts" && a != nil && (a.ID != "" || a.Content != "" || a.Code != "")
}

// leadingThinking returns the first segment when it is thinking. Text
// ahead of a message's thinking gets its own header, and the thinking
// then opens a new block.
func leadingThinking(segs []parse.Segment) *parse.Segment {
	if len(segs) > 0 && segs[0].Type.Kind == parse.KindThinking {
		return &segs[0]
	}
	return nil
}

func writeClaudeSegment(w *writer, seg parse.Segment) {
	switch seg.Type.Kind {
	case parse.KindThinking:
		body := seg.Text
		if blank(body) {
			body = strings.Join(seg.Summaries, "\n")
		}
		w.paragraph(BlockThinking, body)
	case parse.KindToolUse:
		a := seg.Artifact
		if a.ID != "" {
			w.heading(4, "Artifact: %s", a.ID)
		}
		if a.Content != "" {
			w.fenced("````", "", a.Content)
		}
		if a.Code != "" {
			w.fenced("```", "", a.Code)
		}
	default:
		w.paragraph(BlockText, seg.Text)
	}
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
