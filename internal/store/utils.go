package store

import (
	"time"

	"github.com/pkg/errors"
)

func scanChat(row interface{ Scan(...interface{}) error }) (*Chat, error) {
	chat := &Chat{}
	var createdAt int64
	var active int
	if err := row.Scan(&chat.ID, &chat.UserID, &chat.Title, &createdAt, &active); err != nil {
		return nil, errors.Wrap(err, "scanning chat row")
	}
	chat.CreatedAt = time.UnixMicro(createdAt)
	chat.Active = active != 0
	return chat, nil
}

func scanMessage(row interface{ Scan(...interface{}) error }) (*Message, error) {
	message := &Message{}
	var createdAt int64
	if err := row.Scan(&message.ID, &message.ChatID, &message.Role, &message.Content, &createdAt); err != nil {
		return nil, errors.Wrap(err, "scanning message row")
	}
	message.CreatedAt = time.UnixMicro(createdAt)
	return message, nil
}
