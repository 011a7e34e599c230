package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"rolechat/internal/models"
)

// SQLStore keeps history rows in the messages table created by
// internal/storage. Appends are single inserts ordered by an
// auto-increment sequence, so no read-modify-write serialization is
// needed here.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) (*SQLStore, error) {
	if db == nil {
		return nil, errors.New("history: database must not be nil")
	}
	return &SQLStore{db: db}, nil
}

func (s *SQLStore) Append(ctx context.Context, scope string, msg models.Message) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (scope, id, sender, content, is_error, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		SanitizeScope(scope), msg.ID, string(msg.Sender), msg.Text, msg.IsError, msg.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("history: insert message: %w", err)
	}
	return nil
}

func (s *SQLStore) Read(ctx context.Context, scope string) ([]models.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, sender, content, is_error, created_at FROM messages WHERE scope = ? ORDER BY seq ASC`,
		SanitizeScope(scope),
	)
	if err != nil {
		return nil, fmt.Errorf("history: list messages: %w", err)
	}
	defer rows.Close()

	messages := []models.Message{}
	for rows.Next() {
		var m models.Message
		var sender string
		if err := rows.Scan(&m.ID, &sender, &m.Text, &m.IsError, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("history: scan message: %w", err)
		}
		m.Sender = models.Sender(sender)
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (s *SQLStore) Clear(ctx context.Context, scope string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE scope = ?`, SanitizeScope(scope)); err != nil {
		return fmt.Errorf("history: clear messages: %w", err)
	}
	return nil
}
