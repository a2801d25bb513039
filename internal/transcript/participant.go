package transcript

import "github.com/Zuo-Peng/aichatmd/internal/parse"

// Participants maps platform role strings to display names.
type Participants struct {
	names map[string]string
}

// NewParticipants builds the role table for source. Roles not in the
// table pass through unchanged.
func NewParticipants(source parse.Source, userName, aiName string) Participants {
	var names map[string]string
	switch source {
	case parse.SourceClaude:
		names = map[string]string{"human": userName, "assistant": aiName}
	case parse.SourceChatGPT:
		names = map[string]string{"user": userName, "assistant": aiName, "system": aiName, "tool": aiName}
	case parse.SourceDeepSeek:
		names = map[string]string{"USER": userName, "ASSISTANT": aiName}
	}
	return Participants{names: names}
}

// Name returns the display name for role.
func (p Participants) Name(role string) string {
	if n, ok := p.names[role]; ok {
		return n
	}
	return role
}
