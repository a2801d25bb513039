package parse

import (
	"encoding/json"
	"fmt"
)

// Transcript is a decoded platform export. It is one of *ClaudeChat,
// *ChatGPTChat or *DeepSeekResponse.
type Transcript interface {
	Source() Source
}

// Segment is one classified unit of message content.
type Segment struct {
	Type      ContentType
	Text      string
	Summaries []string // thinking summaries, Claude only
	ToolName  string
	Artifact  *Artifact
	Timestamp string // raw segment timestamp; empty means use the message's
}

// Artifact is structured tool output attached to a tool_use segment.
// Empty fields are absent.
type Artifact struct {
	ID      string
	Content string
	Code    string
}

// Decode unmarshals a whole export document for the given source.
func Decode(source Source, data []byte) (Transcript, error) {
	var t Transcript
	switch source {
	case SourceClaude:
		t = &ClaudeChat{}
	case SourceChatGPT:
		t = &ChatGPTChat{}
	case SourceDeepSeek:
		t = &DeepSeekResponse{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, string(source))
	}
	if err := json.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("decode %s export: %w", source, err)
	}
	return t, nil
}
