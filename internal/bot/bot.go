package bot

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/vavlxxx/vkgpt/internal/conversation"
	"github.com/vavlxxx/vkgpt/internal/vk"
)

const (
	longPollWait = 25
	retryDelay   = 3 * time.Second
)

// Bot routes incoming VK messages to the conversation service and delivers
// replies.
type Bot struct {
	vk            *vk.Client
	conversations *conversation.Service
	logger        *zap.SugaredLogger
}

// New instantiates the bot.
func New(vkClient *vk.Client, conversations *conversation.Service, logger *zap.SugaredLogger) *Bot {
	return &Bot{
		vk:            vkClient,
		conversations: conversations,
		logger:        logger,
	}
}

// Run polls for updates until the context is cancelled. Each message is
// handled in its own goroutine; per-user ordering is enforced by the
// conversation service.
func (b *Bot) Run(ctx context.Context) error {
	groupID, err := b.vk.GroupID(ctx)
	if err != nil {
		return errors.Wrap(err, "resolving group id")
	}
	server, err := b.vk.GetLongPollServer(ctx, groupID)
	if err != nil {
		return errors.Wrap(err, "fetching long poll server")
	}
	b.logger.Infow("bot has been started", "group_id", groupID)

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		messages, err := b.vk.Poll(ctx, server, longPollWait)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			b.logger.Warnw("long poll failed, refreshing server", "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryDelay):
			}
			if refreshed, err := b.vk.GetLongPollServer(ctx, groupID); err != nil {
				b.logger.Errorw("refreshing long poll server failed", "error", err)
			} else {
				server = refreshed
			}
			continue
		}

		for _, message := range messages {
			go b.handleMessage(ctx, message)
		}
	}
}
