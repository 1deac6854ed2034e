package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/m-ce-m1/html-bot/models"
)

// AttemptLedger is the append-only record of completed tests.
type AttemptLedger struct {
	db *sql.DB
}

func NewAttemptLedger(db *sql.DB) *AttemptLedger {
	return &AttemptLedger{db: db}
}

// Count returns how many attempts the user has completed on the topic.
func (l *AttemptLedger) Count(ctx context.Context, userID, topicID int64) (int, error) {
	var n int
	err := l.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM attempts WHERE user_id = $1 AND topic_id = $2
	`, userID, topicID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count attempts: %w", err)
	}
	return n, nil
}

// Append writes one attempt row with an externally computed number.
func (l *AttemptLedger) Append(ctx context.Context, a models.Attempt) error {
	ts := a.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO attempts (user_id, topic_id, score, max_score, attempt_number, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, a.UserID, a.TopicID, a.Score, a.MaxScore, a.AttemptNumber, ts.Unix())
	if err != nil {
		return fmt.Errorf("append attempt: %w", err)
	}
	return nil
}

// CommitAttempt counts prior attempts and inserts the new row in one
// transaction, so the stored attempt_number is prior count + 1 even when the
// count read and the write race other writers.
func (l *AttemptLedger) CommitAttempt(ctx context.Context, userID, topicID int64, score, maxScore int) (int, error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("commit attempt: %w", err)
	}
	defer tx.Rollback()

	var prior int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM attempts WHERE user_id = $1 AND topic_id = $2
	`, userID, topicID).Scan(&prior)
	if err != nil {
		return 0, fmt.Errorf("commit attempt: %w", err)
	}

	number := prior + 1
	_, err = tx.ExecContext(ctx, `
		INSERT INTO attempts (user_id, topic_id, score, max_score, attempt_number, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, userID, topicID, score, maxScore, number, time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("commit attempt: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit attempt: %w", err)
	}
	return number, nil
}

// ListByUser returns the user's attempts with topic titles, most recent
// first.
func (l *AttemptLedger) ListByUser(ctx context.Context, userID int64, limit int) ([]models.Attempt, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT a.attempt_id, a.user_id, a.topic_id, t.title, a.score, a.max_score, a.attempt_number, a.timestamp
		FROM attempts a
		JOIN topics t ON t.topic_id = a.topic_id
		WHERE a.user_id = $1
		ORDER BY a.timestamp DESC, a.attempt_id DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()
	return scanAttempts(rows)
}

func scanAttempts(rows *sql.Rows) ([]models.Attempt, error) {
	var attempts []models.Attempt
	for rows.Next() {
		var a models.Attempt
		var ts int64
		if err := rows.Scan(&a.ID, &a.UserID, &a.TopicID, &a.TopicTitle,
			&a.Score, &a.MaxScore, &a.AttemptNumber, &ts); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		a.Timestamp = time.Unix(ts, 0)
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// StatFilters narrows the statistics queries.
type StatFilters struct {
	TopicID *int64
	UserID  *int64
	Limit   int
	Offset  int
}

// Filtered returns export rows (student name, topic, score) matching the
// filters, most recent first.
func (l *AttemptLedger) Filtered(ctx context.Context, f StatFilters) ([]models.StatRow, error) {
	query := `
		SELECT u.full_name, t.title, a.score, a.max_score, a.attempt_number, a.timestamp
		FROM attempts a
		JOIN users u ON u.user_id = a.user_id
		JOIN topics t ON t.topic_id = a.topic_id
		WHERE 1=1`
	args := []interface{}{}
	argCount := 1

	if f.TopicID != nil {
		query += " AND a.topic_id = $" + strconv.Itoa(argCount)
		args = append(args, *f.TopicID)
		argCount++
	}
	if f.UserID != nil {
		query += " AND a.user_id = $" + strconv.Itoa(argCount)
		args = append(args, *f.UserID)
		argCount++
	}
	query += " ORDER BY a.timestamp DESC, a.attempt_id DESC"
	if f.Limit > 0 {
		query += " LIMIT $" + strconv.Itoa(argCount)
		args = append(args, f.Limit)
		argCount++
		if f.Offset > 0 {
			query += " OFFSET $" + strconv.Itoa(argCount)
			args = append(args, f.Offset)
		}
	}

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("filtered attempts: %w", err)
	}
	defer rows.Close()

	var out []models.StatRow
	for rows.Next() {
		var r models.StatRow
		var ts int64
		if err := rows.Scan(&r.FullName, &r.TopicTitle, &r.Score, &r.MaxScore, &r.AttemptNumber, &ts); err != nil {
			return nil, fmt.Errorf("scan stat row: %w", err)
		}
		r.Timestamp = time.Unix(ts, 0)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Summary aggregates the whole ledger for the admin overview.
func (l *AttemptLedger) Summary(ctx context.Context) (*models.StatsSummary, error) {
	var s models.StatsSummary
	err := l.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(DISTINCT user_id), COALESCE(AVG(score * 100.0 / max_score), 0)
		FROM attempts
	`).Scan(&s.TotalAttempts, &s.Students, &s.AveragePercent)
	if err != nil {
		return nil, fmt.Errorf("stats summary: %w", err)
	}

	rows, err := l.db.QueryContext(ctx, `
		SELECT t.topic_id, t.title, COUNT(a.attempt_id), COALESCE(AVG(a.score * 100.0 / a.max_score), 0)
		FROM topics t
		LEFT JOIN attempts a ON a.topic_id = t.topic_id
		GROUP BY t.topic_id, t.title
		ORDER BY t.title
	`)
	if err != nil {
		return nil, fmt.Errorf("stats summary: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ta models.TopicAverage
		if err := rows.Scan(&ta.TopicID, &ta.Title, &ta.Attempts, &ta.AveragePercent); err != nil {
			return nil, fmt.Errorf("scan topic average: %w", err)
		}
		s.Topics = append(s.Topics, ta)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &s, nil
}
