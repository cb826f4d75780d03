package store

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
)

// GetActiveChat returns the id of the user's most recently created active
// chat, or ErrChatNotFound when the user has none.
func (s *Store) GetActiveChat(ctx context.Context, userID int64) (int64, error) {
	var chatID int64
	err := s.db.QueryRowContext(ctx, `
		SELECT id FROM chats
		WHERE user_id = ? AND is_active = 1
		ORDER BY id DESC
		LIMIT 1
	`, userID).Scan(&chatID)
	if err == sql.ErrNoRows {
		return 0, ErrChatNotFound
	}
	if err != nil {
		return 0, errors.Wrap(err, "querying active chat")
	}
	return chatID, nil
}

// SetActiveChat activates chatID for the user, deactivating all their other
// chats. The chat must belong to the user; otherwise ErrChatNotFound is
// returned and no chat's state changes.
func (s *Store) SetActiveChat(ctx context.Context, userID, chatID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `UPDATE chats SET is_active = 0 WHERE user_id = ?`, userID)
	if err != nil {
		return errors.Wrap(err, "deactivating chats")
	}

	// Ownership check: the rollback above undoes the deactivation when the
	// chat does not belong to this user.
	result, err := tx.ExecContext(ctx, `
		UPDATE chats SET is_active = 1 WHERE id = ? AND user_id = ?
	`, chatID, userID)
	if err != nil {
		return errors.Wrap(err, "activating chat")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "getting affected rows")
	}
	if affected == 0 {
		return ErrChatNotFound
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "committing transaction")
	}
	return nil
}
