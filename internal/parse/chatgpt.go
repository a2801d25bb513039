package parse

import (
	"encoding/json"
	"strings"
)

// ChatGPTChat is one conversation from a ChatGPT export. Messages form a
// tree in Mapping; CurrentNode is the leaf of the branch the user last saw.
type ChatGPTChat struct {
	Title       string                 `json:"title"`
	CreateTime  float64                `json:"create_time"`
	UpdateTime  float64                `json:"update_time"`
	Mapping     map[string]ChatGPTNode `json:"mapping"`
	CurrentNode string                 `json:"current_node"`
}

func (c *ChatGPTChat) Source() Source { return SourceChatGPT }

// Messages returns the current branch oldest first.
func (c *ChatGPTChat) Messages() ([]ChatGPTMessage, error) {
	return OrderMessages(c.Mapping, c.CurrentNode)
}

type ChatGPTNode struct {
	ID       string          `json:"id"`
	Message  *ChatGPTMessage `json:"message"`
	Parent   *string         `json:"parent"`
	Children []string        `json:"children"`
}

type ChatGPTMessage struct {
	ID         string          `json:"id"`
	Author     ChatGPTAuthor   `json:"author"`
	CreateTime *float64        `json:"create_time"`
	Content    ChatGPTContent  `json:"content"`
	Status     string          `json:"status"`
	Metadata   ChatGPTMetadata `json:"metadata"`
}

type ChatGPTAuthor struct {
	Role string  `json:"role"`
	Name *string `json:"name"`
}

type ChatGPTContent struct {
	ContentType string            `json:"content_type"`
	Parts       []json.RawMessage `json:"parts"`
	Text        string            `json:"text"`
	Title       string            `json:"title"`
	Language    string            `json:"language"`
	Thoughts    []ChatGPTThought  `json:"thoughts"`
	Content     json.RawMessage   `json:"content"` // string for reasoning_recap
}

type ChatGPTThought struct {
	Summary string `json:"summary"`
	Content string `json:"content"`
}

type ChatGPTMetadata struct {
	IsVisuallyHidden bool   `json:"is_visually_hidden_from_conversation"`
	InitialText      string `json:"initial_text"`
	FinishedText     string `json:"finished_text"`
}

// TextParts returns the string entries of Parts. Multimodal parts such as
// image pointers are objects and are dropped.
func (c *ChatGPTContent) TextParts() []string {
	var out []string
	for _, raw := range c.Parts {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			out = append(out, s)
		}
	}
	return out
}

// RecapText returns the string form of the content field, or "" when the
// field is absent or not a string.
func (c *ChatGPTContent) RecapText() string {
	var s string
	if len(c.Content) == 0 || json.Unmarshal(c.Content, &s) != nil {
		return ""
	}
	return s
}

// HasText reports whether any textual field carries non-blank content.
func (c *ChatGPTContent) HasText() bool {
	if strings.TrimSpace(c.Text) != "" || strings.TrimSpace(c.RecapText()) != "" {
		return true
	}
	for _, p := range c.TextParts() {
		if strings.TrimSpace(p) != "" {
			return true
		}
	}
	for _, t := range c.Thoughts {
		if strings.TrimSpace(t.Content) != "" || strings.TrimSpace(t.Summary) != "" {
			return true
		}
	}
	return false
}

// IsReasoning reports whether the message is chain-of-thought output that
// should be hidden when reasoning is not shown.
func (m *ChatGPTMessage) IsReasoning() bool {
	switch ClassifyChatGPT(m.Content.ContentType).Kind {
	case KindThoughts, KindReasoningRecap:
		return true
	}
	if m.Author.Role != "tool" && m.Author.Role != "system" {
		return false
	}
	if m.Content.ContentType == "text" {
		return true
	}
	md := m.Metadata
	return (md.InitialText == "Reasoning" && strings.HasPrefix(md.FinishedText, "Reasoned")) ||
		(md.InitialText == "Thinking" && strings.HasPrefix(md.FinishedText, "Thought"))
}
