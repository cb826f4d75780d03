package bot

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/vavlxxx/vkgpt/internal/conversation"
	"github.com/vavlxxx/vkgpt/internal/llm"
	"github.com/vavlxxx/vkgpt/internal/store"
	"github.com/vavlxxx/vkgpt/internal/vk"
)

const (
	greeting = "Привет! Я AI-помощник на базе нейросети.\n" +
		"Задай мне любой вопрос!\n\n" +
		"Кнопки ниже помогут управлять чатами:\n" +
		"«Новый чат» — начать беседу заново\n" +
		"«Мои чаты» — вернуться к прошлой беседе"
	newChatCreated = "Создан новый чат. Начнем сначала!"
	chatSwitched   = "Чат переключен. Продолжаем беседу!"
	chatNotFound   = "Такой чат не найден."
	noChatsYet     = "У вас пока нет чатов. Просто задайте вопрос!"
	chooseChat     = "Выберите чат:"
	chatListLimit  = 10
	maxButtonLabel = 40
)

const (
	commandNewChat    = "new_chat"
	commandMyChats    = "my_chats"
	commandSwitchChat = "switch_chat"
)

// commandPayload is the JSON payload carried by keyboard buttons.
type commandPayload struct {
	Command string `json:"command"`
	ChatID  int64  `json:"chat_id,omitempty"`
}

func (b *Bot) handleMessage(ctx context.Context, message *vk.IncomingMessage) {
	logger := b.logger.With("trace_id", uuid.New().String()[:8], "user_id", message.FromID)
	logger.Infow("incoming message", "peer_id", message.PeerID, "text", message.Text)

	var payload commandPayload
	if message.Payload != "" {
		if err := json.Unmarshal([]byte(message.Payload), &payload); err != nil {
			logger.Warnw("ignoring malformed payload", "payload", message.Payload, "error", err)
		}
	}

	switch {
	case payload.Command == commandNewChat:
		b.handleNewChat(ctx, logger, message)
	case payload.Command == commandMyChats:
		b.handleMyChats(ctx, logger, message)
	case payload.Command == commandSwitchChat:
		b.handleSwitchChat(ctx, logger, message, payload.ChatID)
	case message.Text == "/start" || message.Text == "Начать":
		b.send(ctx, logger, message.PeerID, greeting, mainKeyboard())
	default:
		b.handleTurn(ctx, logger, message)
	}
}

func (b *Bot) handleNewChat(ctx context.Context, logger *zap.SugaredLogger, message *vk.IncomingMessage) {
	if _, err := b.conversations.NewChat(ctx, message.FromID); err != nil {
		logger.Errorw("creating chat failed", "error", err)
		b.send(ctx, logger, message.PeerID, llm.FallbackReply, nil)
		return
	}
	b.send(ctx, logger, message.PeerID, newChatCreated, mainKeyboard())
}

func (b *Bot) handleMyChats(ctx context.Context, logger *zap.SugaredLogger, message *vk.IncomingMessage) {
	chats, err := b.conversations.ListChats(ctx, message.FromID, chatListLimit)
	if err != nil {
		logger.Errorw("listing chats failed", "error", err)
		b.send(ctx, logger, message.PeerID, llm.FallbackReply, nil)
		return
	}
	if len(chats) == 0 {
		b.send(ctx, logger, message.PeerID, noChatsYet, mainKeyboard())
		return
	}
	b.send(ctx, logger, message.PeerID, chooseChat, chatsKeyboard(chats))
}

func (b *Bot) handleSwitchChat(ctx context.Context, logger *zap.SugaredLogger, message *vk.IncomingMessage, chatID int64) {
	err := b.conversations.SwitchChat(ctx, message.FromID, chatID)
	if errors.Is(err, store.ErrChatNotFound) {
		b.send(ctx, logger, message.PeerID, chatNotFound, mainKeyboard())
		return
	}
	if err != nil {
		logger.Errorw("switching chat failed", "chat_id", chatID, "error", err)
		b.send(ctx, logger, message.PeerID, llm.FallbackReply, nil)
		return
	}
	b.send(ctx, logger, message.PeerID, chatSwitched, mainKeyboard())
}

func (b *Bot) handleTurn(ctx context.Context, logger *zap.SugaredLogger, message *vk.IncomingMessage) {
	imageURL := message.ImageURL()
	if message.Text == "" && imageURL == "" {
		logger.Debugw("ignoring empty turn")
		return
	}

	if err := b.vk.SetTyping(ctx, message.PeerID); err != nil {
		logger.Warnw("setting typing activity failed", "error", err)
	}

	reply, err := b.conversations.Respond(ctx, message.FromID, message.Text, imageURL)
	if errors.Is(err, conversation.ErrEmptyTurn) {
		return
	}
	if err != nil {
		logger.Errorw("responding failed", "error", err)
		b.send(ctx, logger, message.PeerID, llm.FallbackReply, nil)
		return
	}
	b.send(ctx, logger, message.PeerID, reply, nil)
}

// send delivers a reply. Transport failures cannot be surfaced to the user
// (the reply channel itself failed), so they are logged only.
func (b *Bot) send(ctx context.Context, logger *zap.SugaredLogger, peerID int64, text string, keyboard *vk.Keyboard) {
	if err := b.vk.SendMessage(ctx, peerID, text, keyboard); err != nil {
		logger.Errorw("sending message failed", "peer_id", peerID, "error", err)
	}
}

func mainKeyboard() *vk.Keyboard {
	return &vk.Keyboard{
		Buttons: [][]vk.Button{{
			vk.NewTextButton("Новый чат", commandPayload{Command: commandNewChat}),
			vk.NewTextButton("Мои чаты", commandPayload{Command: commandMyChats}),
		}},
	}
}

func chatsKeyboard(chats []*store.Chat) *vk.Keyboard {
	rows := make([][]vk.Button, 0, len(chats))
	for _, chat := range chats {
		label := chat.Title
		if runes := []rune(label); len(runes) > maxButtonLabel {
			label = string(runes[:maxButtonLabel])
		}
		rows = append(rows, []vk.Button{
			vk.NewTextButton(label, commandPayload{Command: commandSwitchChat, ChatID: chat.ID}),
		})
	}
	return &vk.Keyboard{Inline: true, Buttons: rows}
}
