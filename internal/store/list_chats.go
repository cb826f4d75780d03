package store

import (
	"context"

	"github.com/pkg/errors"
)

// ListChats returns the user's chats, newest first, capped at limit.
func (s *Store) ListChats(ctx context.Context, userID int64, limit int) ([]*Chat, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, title, created_at, is_active
		FROM chats
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "querying chats")
	}
	defer rows.Close()

	var chats []*Chat
	for rows.Next() {
		chat, err := scanChat(rows)
		if err != nil {
			return nil, err
		}
		chats = append(chats, chat)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterating chat rows")
	}
	return chats, nil
}
