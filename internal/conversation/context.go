package conversation

import (
	"github.com/vavlxxx/vkgpt/internal/llm"
	"github.com/vavlxxx/vkgpt/internal/store"
)

// SystemPrompt is the fixed assistant persona prepended to every request.
const SystemPrompt = "Ты полезный AI-помощник в ВКонтакте. Отвечай дружелюбно и по делу."

// BuildContext assembles the message list for one completion request.
//
// The history already contains the just-persisted current user turn as its
// last element, stored as flat text. The completion API however expects the
// current turn in structured multimodal form when an image is present, so the
// persisted copy is dropped and the final turn is rebuilt from the request
// inputs: system prompt, then history[0..len-2] verbatim, then exactly one
// freshly built current turn.
func BuildContext(history []*store.Message, text, imageURL string) []*llm.Message {
	messages := make([]*llm.Message, 0, len(history)+1)
	messages = append(messages, llm.NewTextMessage(llm.RoleSystem, SystemPrompt))

	if len(history) > 0 {
		for _, message := range history[:len(history)-1] {
			messages = append(messages, llm.NewTextMessage(message.Role, message.Content))
		}
	}

	if imageURL != "" {
		messages = append(messages, llm.NewMultimodalMessage(llm.RoleUser, text, imageURL))
	} else {
		messages = append(messages, llm.NewTextMessage(llm.RoleUser, text))
	}
	return messages
}
