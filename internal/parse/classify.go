package parse

// Kind is the closed set of content kinds shared by all platforms.
type Kind int

const (
	KindUnknown Kind = iota
	KindText
	KindThinking
	KindToolUse
	KindToolResult
	KindMultimodalText
	KindTetherQuote
	KindUserEditableContext
	KindTool
	KindSystem
	KindCode
	KindThoughts
	KindReasoningRecap
)

// ContentType is a classified content tag. Tag keeps the platform's raw
// string so unknown kinds can still be reported.
type ContentType struct {
	Kind Kind
	Tag  string
}

// IsUnknown reports whether the tag was not recognized.
func (c ContentType) IsUnknown() bool {
	return c.Kind == KindUnknown
}

var claudeKinds = map[string]Kind{
	"text":        KindText,
	"thinking":    KindThinking,
	"tool_use":    KindToolUse,
	"tool_result": KindToolResult,
}

var chatGPTKinds = map[string]Kind{
	"text":                  KindText,
	"multimodal_text":       KindMultimodalText,
	"tether_quote":          KindTetherQuote,
	"user_editable_context": KindUserEditableContext,
	"tool":                  KindTool,
	"system":                KindSystem,
	"code":                  KindCode,
	"thoughts":              KindThoughts,
	"reasoning_recap":       KindReasoningRecap,
}

// ClassifyClaude maps a Claude content block type.
func ClassifyClaude(tag string) ContentType {
	return classify(claudeKinds, tag)
}

// ClassifyChatGPT maps a ChatGPT content_type.
func ClassifyChatGPT(tag string) ContentType {
	return classify(chatGPTKinds, tag)
}

func classify(kinds map[string]Kind, tag string) ContentType {
	if k, ok := kinds[tag]; ok {
		return ContentType{Kind: k, Tag: tag}
	}
	return ContentType{Kind: KindUnknown, Tag: tag}
}
