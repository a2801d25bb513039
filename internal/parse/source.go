package parse

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownSource is returned for a chat source name that is not supported.
var ErrUnknownSource = errors.New("unknown chat source")

// Source identifies which platform export schema a document uses.
type Source string

const (
	SourceClaude   Source = "claude"
	SourceChatGPT  Source = "chatgpt"
	SourceDeepSeek Source = "deepseek"
)

// Sources lists every supported chat source.
var Sources = []Source{SourceClaude, SourceChatGPT, SourceDeepSeek}

// ParseSource maps a case-insensitive name to a Source.
func ParseSource(s string) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "claude":
		return SourceClaude, nil
	case "chatgpt":
		return SourceChatGPT, nil
	case "deepseek":
		return SourceDeepSeek, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSource, s)
	}
}

// PlatformName is the label printed in the transcript header.
func (s Source) PlatformName() string {
	switch s {
	case SourceClaude:
		return "Claude"
	case SourceChatGPT:
		return "ChatGPT"
	case SourceDeepSeek:
		return "DeepSeek"
	default:
		return string(s)
	}
}

// DefaultAIName is the assistant display name used when none is configured.
func (s Source) DefaultAIName() string {
	return s.PlatformName()
}

func (s Source) String() string {
	return string(s)
}
