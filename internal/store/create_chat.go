package store

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// CreateChat deactivates the user's current active chat, inserts a new active
// chat and returns its id.
func (s *Store) CreateChat(ctx context.Context, userID int64, title string) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "beginning transaction")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `UPDATE chats SET is_active = 0 WHERE user_id = ? AND is_active = 1`, userID)
	if err != nil {
		return 0, errors.Wrap(err, "deactivating previous chats")
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO chats (user_id, title, created_at, is_active)
		VALUES (?, ?, ?, 1)
	`, userID, title, time.Now().UnixMicro())
	if err != nil {
		return 0, errors.Wrap(err, "inserting chat")
	}
	chatID, err := result.LastInsertId()
	if err != nil {
		return 0, errors.Wrap(err, "getting inserted chat id")
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "committing transaction")
	}
	return chatID, nil
}
