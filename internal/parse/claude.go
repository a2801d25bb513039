package parse

import (
	"encoding/json"
	"strings"
)

// ClaudeChat is a single conversation from a Claude data export.
type ClaudeChat struct {
	UUID         string          `json:"uuid"`
	Name         string          `json:"name"`
	CreatedAt    string          `json:"created_at"`
	UpdatedAt    string          `json:"updated_at"`
	ChatMessages []ClaudeMessage `json:"chat_messages"`
}

func (c *ClaudeChat) Source() Source { return SourceClaude }

type ClaudeMessage struct {
	UUID        string             `json:"uuid"`
	Sender      string             `json:"sender"`
	CreatedAt   string             `json:"created_at"`
	Text        string             `json:"text"` // older exports carry only this
	Content     []ClaudeContent    `json:"content"`
	Attachments []ClaudeAttachment `json:"attachments"`
}

type ClaudeContent struct {
	Type           string          `json:"type"`
	Text           string          `json:"text"`
	Thinking       string          `json:"thinking"`
	Summaries      []ClaudeSummary `json:"summaries"`
	StartTimestamp string          `json:"start_timestamp"`
	Name           string          `json:"name"`
	Input          json.RawMessage `json:"input"`
}

type ClaudeSummary struct {
	Summary string `json:"summary"`
}

// ClaudeArtifact is the input of an "artifacts" tool_use block.
type ClaudeArtifact struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	Code    string `json:"code"`
}

type ClaudeAttachment struct {
	FileName         string `json:"file_name"`
	ExtractedContent string `json:"extracted_content"`
}

// Segments classifies the message content blocks in order.
func (m *ClaudeMessage) Segments() []Segment {
	if len(m.Content) == 0 {
		if strings.TrimSpace(m.Text) == "" {
			return nil
		}
		return []Segment{{Type: ClassifyClaude("text"), Text: m.Text}}
	}

	segs := make([]Segment, 0, len(m.Content))
	for _, c := range m.Content {
		seg := Segment{
			Type:      ClassifyClaude(c.Type),
			Timestamp: c.StartTimestamp,
		}
		switch seg.Type.Kind {
		case KindThinking:
			seg.Text = c.Thinking
			for _, s := range c.Summaries {
				if s.Summary != "" {
					seg.Summaries = append(seg.Summaries, s.Summary)
				}
			}
		case KindToolUse:
			seg.ToolName = c.Name
			var a ClaudeArtifact
			if len(c.Input) > 0 && json.Unmarshal(c.Input, &a) == nil {
				seg.Artifact = &Artifact{ID: a.ID, Content: a.Content, Code: a.Code}
			}
		default:
			seg.Text = c.Text
		}
		segs = append(segs, seg)
	}
	return segs
}
