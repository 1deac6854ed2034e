package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/m-ce-m1/html-bot/models"
)

// MessageStore keeps the student-to-teacher question inbox.
type MessageStore struct {
	db *sql.DB
}

func NewMessageStore(db *sql.DB) *MessageStore {
	return &MessageStore{db: db}
}

// Record stores an incoming student question and returns its id.
func (s *MessageStore) Record(ctx context.Context, fromUserID int64, text string) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO messages (from_user_id, text, is_answered, timestamp)
		VALUES ($1, $2, 0, $3)
		RETURNING message_id
	`, fromUserID, text, time.Now().Unix()).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("record message: %w", err)
	}
	return id, nil
}

// Get returns the message or nil when it does not exist.
func (s *MessageStore) Get(ctx context.Context, id int64) (*models.StudentMessage, error) {
	var m models.StudentMessage
	var to sql.NullInt64
	var answered int
	var ts int64
	err := s.db.QueryRowContext(ctx, `
		SELECT message_id, from_user_id, to_user_id, text, is_answered, timestamp
		FROM messages WHERE message_id = $1
	`, id).Scan(&m.ID, &m.FromUserID, &to, &m.Text, &answered, &ts)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get message: %w", err)
	}
	if to.Valid {
		m.ToUserID = &to.Int64
	}
	m.Answered = answered != 0
	m.Timestamp = time.Unix(ts, 0)
	return &m, nil
}

// Unanswered returns open questions, oldest first.
func (s *MessageStore) Unanswered(ctx context.Context) ([]models.StudentMessage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT message_id, from_user_id, to_user_id, text, is_answered, timestamp
		FROM messages
		WHERE is_answered = 0
		ORDER BY timestamp, message_id
	`)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var out []models.StudentMessage
	for rows.Next() {
		var m models.StudentMessage
		var to sql.NullInt64
		var answered int
		var ts int64
		if err := rows.Scan(&m.ID, &m.FromUserID, &to, &m.Text, &answered, &ts); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		if to.Valid {
			m.ToUserID = &to.Int64
		}
		m.Answered = answered != 0
		m.Timestamp = time.Unix(ts, 0)
		out = append(out, m)
	}
	return out, rows.Err()
}

// MarkAnswered closes a question and records which admin answered it.
func (s *MessageStore) MarkAnswered(ctx context.Context, id, answeredBy int64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE messages SET is_answered = 1, to_user_id = $1 WHERE message_id = $2
	`, answeredBy, id)
	if err != nil {
		return fmt.Errorf("mark answered: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
