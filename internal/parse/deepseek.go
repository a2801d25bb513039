package parse

import "strings"

// DeepSeekResponse is the API envelope a DeepSeek conversation is exported in.
type DeepSeekResponse struct {
	Code int          `json:"code"`
	Msg  string       `json:"msg"`
	Data DeepSeekData `json:"data"`
}

func (r *DeepSeekResponse) Source() Source { return SourceDeepSeek }

// Chat unwraps the envelope.
func (r *DeepSeekResponse) Chat() *DeepSeekChat {
	return &r.Data.BizData
}

type DeepSeekData struct {
	BizCode int          `json:"biz_code"`
	BizMsg  string       `json:"biz_msg"`
	BizData DeepSeekChat `json:"biz_data"`
}

type DeepSeekChat struct {
	ChatSession  DeepSeekSession   `json:"chat_session"`
	ChatMessages []DeepSeekMessage `json:"chat_messages"`
}

type DeepSeekSession struct {
	ID               string  `json:"id"`
	Title            string  `json:"title"`
	CurrentMessageID int64   `json:"current_message_id"`
	InsertedAt       float64 `json:"inserted_at"`
	UpdatedAt        float64 `json:"updated_at"`
}

type DeepSeekMessage struct {
	MessageID           int64          `json:"message_id"`
	ParentID            *int64         `json:"parent_id"`
	Model               string         `json:"model"`
	Role                string         `json:"role"`
	Content             string         `json:"content"`
	ThinkingEnabled     bool           `json:"thinking_enabled"`
	ThinkingContent     *string        `json:"thinking_content"`
	ThinkingElapsedSecs *float64       `json:"thinking_elapsed_secs"`
	Files               []DeepSeekFile `json:"files"`
	InsertedAt          float64        `json:"inserted_at"`
}

type DeepSeekFile struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	FileName   string `json:"file_name"`
	FileSize   int64  `json:"file_size"`
	TokenUsage int64  `json:"token_usage"`
}

// Segments derives content segments from the message fields: thinking
// first, then the answer text.
func (m *DeepSeekMessage) Segments() []Segment {
	var segs []Segment
	if m.ThinkingEnabled && m.ThinkingContent != nil && strings.TrimSpace(*m.ThinkingContent) != "" {
		segs = append(segs, Segment{
			Type: ContentType{Kind: KindThinking, Tag: "thinking"},
			Text: *m.ThinkingContent,
		})
	}
	if strings.TrimSpace(m.Content) != "" {
		segs = append(segs, Segment{
			Type: ContentType{Kind: KindText, Tag: "text"},
			Text: m.Content,
		})
	}
	return segs
}
