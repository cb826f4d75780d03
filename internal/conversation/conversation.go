package conversation

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/vavlxxx/vkgpt/internal/llm"
	"github.com/vavlxxx/vkgpt/internal/store"
)

// ErrEmptyTurn is returned for a turn carrying neither text nor an image.
// Such turns are rejected before any side effect.
var ErrEmptyTurn = errors.New("empty turn")

// PlaceholderTitle is used when a chat is created from a turn without text.
const PlaceholderTitle = "Новый чат"

const maxTitleRunes = 50

// Completer produces a reply for an assembled message list. It never fails:
// completion errors are converted to a user-safe fallback string at the
// client boundary.
type Completer interface {
	Reply(ctx context.Context, messages []*llm.Message) string
}

// Service orchestrates one user turn: resolve the active chat, persist the
// turn, assemble context, request a completion, persist and return the reply.
type Service struct {
	store        *store.Store
	completer    Completer
	logger       *zap.SugaredLogger
	historyLimit int

	mu        sync.Mutex
	userLocks map[int64]*sync.Mutex
}

// NewService instantiates the conversation service.
func NewService(s *store.Store, completer Completer, logger *zap.SugaredLogger, historyLimit int) *Service {
	return &Service{
		store:        s,
		completer:    completer,
		logger:       logger,
		historyLimit: historyLimit,
		userLocks:    map[int64]*sync.Mutex{},
	}
}

// Respond handles one incoming user turn and returns the assistant's reply.
// Store calls for a single user never overlap: concurrent turns from the same
// user are serialized, so the history read always sees the fully committed
// user turn it feeds back as context.
func (s *Service) Respond(ctx context.Context, userID int64, text, imageURL string) (string, error) {
	if text == "" && imageURL == "" {
		return "", ErrEmptyTurn
	}

	unlock := s.lockUser(userID)
	defer unlock()

	chatID, err := s.store.GetActiveChat(ctx, userID)
	if errors.Is(err, store.ErrChatNotFound) {
		chatID, err = s.store.CreateChat(ctx, userID, chatTitle(text))
		if err != nil {
			return "", errors.Wrap(err, "creating chat")
		}
	} else if err != nil {
		return "", errors.Wrap(err, "resolving active chat")
	}

	// History stores flat text, so an image is kept as a text annotation.
	storedText := text
	if imageURL != "" {
		storedText = fmt.Sprintf("%s (Вложение: %s)", text, imageURL)
	}
	if err := s.store.AppendMessage(ctx, chatID, store.RoleUser, storedText); err != nil {
		return "", errors.Wrap(err, "persisting user turn")
	}

	history, err := s.store.GetRecentMessages(ctx, chatID, s.historyLimit)
	if err != nil {
		return "", errors.Wrap(err, "reading history")
	}
	payload := BuildContext(history, text, imageURL)

	s.logger.Debugw("requesting completion",
		"user_id", userID, "chat_id", chatID, "context_size", len(payload), "has_image", imageURL != "")
	reply := s.completer.Reply(ctx, payload)

	if err := s.store.AppendMessage(ctx, chatID, store.RoleAssistant, reply); err != nil {
		return "", errors.Wrap(err, "persisting assistant turn")
	}
	return reply, nil
}

// NewChat creates and activates a fresh chat for the user.
func (s *Service) NewChat(ctx context.Context, userID int64) (int64, error) {
	unlock := s.lockUser(userID)
	defer unlock()

	chatID, err := s.store.CreateChat(ctx, userID, PlaceholderTitle)
	if err != nil {
		return 0, errors.Wrap(err, "creating chat")
	}
	return chatID, nil
}

// ListChats returns the user's most recent chats, newest first.
func (s *Service) ListChats(ctx context.Context, userID int64, limit int) ([]*store.Chat, error) {
	chats, err := s.store.ListChats(ctx, userID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "listing chats")
	}
	return chats, nil
}

// SwitchChat activates one of the user's chats. Returns
// store.ErrChatNotFound when the chat does not exist or belongs to someone
// else.
func (s *Service) SwitchChat(ctx context.Context, userID, chatID int64) error {
	unlock := s.lockUser(userID)
	defer unlock()

	return s.store.SetActiveChat(ctx, userID, chatID)
}

// lockUser serializes operations per user. Cross-user operations are fully
// independent.
func (s *Service) lockUser(userID int64) func() {
	s.mu.Lock()
	lock, ok := s.userLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.userLocks[userID] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// chatTitle derives a chat title from the first user turn.
func chatTitle(text string) string {
	if text == "" {
		return PlaceholderTitle
	}
	runes := []rune(text)
	if len(runes) <= maxTitleRunes {
		return text
	}
	return string(runes[:maxTitleRunes]) + "…"
}
