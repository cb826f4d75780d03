package store

import (
	"context"

	"github.com/pkg/errors"
)

// UpdateTitle sets the display title of a chat.
func (s *Store) UpdateTitle(ctx context.Context, chatID int64, title string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE chats SET title = ? WHERE id = ?`, title, chatID)
	if err != nil {
		return errors.Wrap(err, "updating chat title")
	}
	return nil
}
