package store

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// AppendMessage appends a message to the chat's sequence. Content is flat
// text; image attachments arrive already serialized into the text.
func (s *Store) AppendMessage(ctx context.Context, chatID int64, role, content string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (chat_id, role, content, created_at)
		VALUES (?, ?, ?, ?)
	`, chatID, role, content, time.Now().UnixMicro())
	if err != nil {
		return errors.Wrap(err, "inserting message")
	}
	return nil
}
