package llm

import "context"

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// FallbackReply is returned to the user whenever a completion request fails.
// Error detail goes to the logs, never to the user.
const FallbackReply = "Извините, произошла ошибка при обработке вашего запроса. Попробуйте позже."

// PartType of a multimodal content part.
type PartType string

const (
	PartTypeText  PartType = "text"
	PartTypeImage PartType = "image"
)

// Part is one element of a multimodal message content.
type Part struct {
	Type     PartType
	Text     string
	ImageURL string
}

// Message is a single role-tagged turn of a completion request. A message
// with non-empty Parts is multimodal and its Content field is ignored.
type Message struct {
	Role    string
	Content string
	Parts   []Part
}

// NewTextMessage builds a plain text message.
func NewTextMessage(role, content string) *Message {
	return &Message{Role: role, Content: content}
}

// NewMultimodalMessage builds a user message carrying text plus one image
// reference.
func NewMultimodalMessage(role, text, imageURL string) *Message {
	return &Message{
		Role: role,
		Parts: []Part{
			{Type: PartTypeText, Text: text},
			{Type: PartTypeImage, ImageURL: imageURL},
		},
	}
}

// Client generates a completion for an assembled message list.
type Client interface {
	Complete(ctx context.Context, messages []*Message) (string, error)
}
