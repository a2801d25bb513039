package transcript

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/Zuo-Peng/aichatmd/internal/parse"
)

func renderDeepSeek(resp *parse.DeepSeekResponse, opts Options) (*Document, error) {
	tf := NewTimeFormatter(opts.Timezone, EncodingUnix, opts.Logger)
	names := NewParticipants(parse.SourceDeepSeek, opts.UserName, opts.AIName)

	if resp.Code != 0 {
		opts.Logger.Printf("WARN: deepseek response code %d: %s", resp.Code, resp.Msg)
	}
	chat := resp.Chat()
	session := chat.ChatSession

	first, err := tf.FormatUnix(session.InsertedAt)
	if err != nil {
		return nil, fmt.Errorf("session inserted_at: %w", err)
	}
	last, err := tf.FormatUnix(session.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("session updated_at: %w", err)
	}

	w, doc := newDocument(titleOr(opts.Title, session.Title), parse.SourceDeepSeek, first, last, len(chat.ChatMessages))
	opts.Progress.Start(len(chat.ChatMessages))

	for i := range chat.ChatMessages {
		opts.Progress.Advance()
		m := &chat.ChatMessages[i]

		var segs []parse.Segment
		for _, seg := range m.Segments() {
			if seg.Type.Kind == parse.KindThinking && !opts.Reasoning {
				continue
			}
			segs = append(segs, seg)
		}
		if len(segs) == 0 && len(m.Files) == 0 {
			continue
		}

		ts, err := tf.FormatUnix(m.InsertedAt)
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", m.MessageID, err)
		}
		w.header(names.Name(m.Role), ts)

		for _, seg := range segs {
			if seg.Type.Kind != parse.KindThinking {
				w.paragraph(BlockText, seg.Text)
				continue
			}
			w.thinkingHeading()
			w.paragraph(BlockThinking, seg.Text)
			if m.ThinkingElapsedSecs != nil {
				w.paragraph(BlockThinking, fmt.Sprintf("*Thought for %.0f seconds*", *m.ThinkingElapsedSecs))
			}
		}

		for _, f := range m.Files {
			size := f.FileSize
			if size < 0 {
				size = 0
			}
			w.heading(4, "File: %s", f.FileName)
			w.printf("Status: %s | Size: %s | Token Usage: %d\n\n", f.Status, humanize.Bytes(uint64(size)), f.TokenUsage)
		}

		w.rule()
	}

	return doc.finish(w)
}
