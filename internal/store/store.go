package store

import (
	"database/sql"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

// ErrChatNotFound is returned when a chat does not exist or does not belong
// to the requesting user.
var ErrChatNotFound = errors.New("chat not found")

// Store implements a SQLite store for chats and messages.
type Store struct {
	db *sql.DB
}

// New store.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS chats (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			title TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			is_active INTEGER NOT NULL DEFAULT 0
		)
	`)
	if err != nil {
		return nil, errors.Wrap(err, "creating chats table")
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			chat_id INTEGER NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			FOREIGN KEY (chat_id) REFERENCES chats (id)
		)
	`)
	if err != nil {
		return nil, errors.Wrap(err, "creating messages table")
	}

	if _, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_chats_user_id ON chats(user_id)`); err != nil {
		return nil, errors.Wrap(err, "creating chats index")
	}
	if _, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_messages_chat_id ON messages(chat_id)`); err != nil {
		return nil, errors.Wrap(err, "creating messages index")
	}

	return &Store{
		db: db,
	}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
