package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/m-ce-m1/html-bot/models"
)

// QuestionStore persists topics and their question pools.
type QuestionStore struct {
	db *sql.DB
}

func NewQuestionStore(db *sql.DB) *QuestionStore {
	return &QuestionStore{db: db}
}

const topicColumns = `t.topic_id, t.title, t.is_available, t.attempt_limit, COUNT(q.question_id)`

func scanTopic(rows *sql.Rows) (models.Topic, error) {
	var t models.Topic
	var available int
	var limit sql.NullInt64
	if err := rows.Scan(&t.ID, &t.Title, &available, &limit, &t.Questions); err != nil {
		return t, err
	}
	t.IsAvailable = available != 0
	if limit.Valid {
		n := int(limit.Int64)
		t.AttemptLimit = &n
	}
	return t, nil
}

func (s *QuestionStore) listTopics(ctx context.Context, where string, args ...interface{}) ([]models.Topic, error) {
	query := `
		SELECT ` + topicColumns + `
		FROM topics t
		LEFT JOIN questions q ON q.topic_id = t.topic_id
		` + where + `
		GROUP BY t.topic_id, t.title, t.is_available, t.attempt_limit
		ORDER BY t.title`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	defer rows.Close()

	var topics []models.Topic
	for rows.Next() {
		t, err := scanTopic(rows)
		if err != nil {
			return nil, fmt.Errorf("scan topic: %w", err)
		}
		topics = append(topics, t)
	}
	return topics, rows.Err()
}

// ListAvailableTopics returns the topics students may see, by title.
func (s *QuestionStore) ListAvailableTopics(ctx context.Context) ([]models.Topic, error) {
	return s.listTopics(ctx, "WHERE t.is_available = 1")
}

// ListTopics returns every topic, hidden ones included.
func (s *QuestionStore) ListTopics(ctx context.Context) ([]models.Topic, error) {
	return s.listTopics(ctx, "")
}

// GetTopic returns the topic or nil when it does not exist.
func (s *QuestionStore) GetTopic(ctx context.Context, id int64) (*models.Topic, error) {
	var t models.Topic
	var available int
	var limit sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT t.topic_id, t.title, t.is_available, t.attempt_limit, COUNT(q.question_id)
		FROM topics t
		LEFT JOIN questions q ON q.topic_id = t.topic_id
		WHERE t.topic_id = $1
		GROUP BY t.topic_id, t.title, t.is_available, t.attempt_limit
	`, id).Scan(&t.ID, &t.Title, &available, &limit, &t.Questions)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get topic: %w", err)
	}
	t.IsAvailable = available != 0
	if limit.Valid {
		n := int(limit.Int64)
		t.AttemptLimit = &n
	}
	return &t, nil
}

// GetTopicByTitle returns the topic with this exact title or nil.
func (s *QuestionStore) GetTopicByTitle(ctx context.Context, title string) (*models.Topic, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `SELECT topic_id FROM topics WHERE title = $1`, title).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get topic by title: %w", err)
	}
	return s.GetTopic(ctx, id)
}

// CreateTopic inserts a hidden topic with the given attempt limit (nil means
// unlimited) and returns it.
func (s *QuestionStore) CreateTopic(ctx context.Context, title string, attemptLimit *int) (*models.Topic, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO topics (title, is_available, attempt_limit)
		VALUES ($1, 0, $2)
		RETURNING topic_id
	`, title, attemptLimit).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("create topic: %w", err)
	}
	return &models.Topic{ID: id, Title: title, AttemptLimit: attemptLimit}, nil
}

// SetAvailability flips the availability flag.
func (s *QuestionStore) SetAvailability(ctx context.Context, id int64, available bool) error {
	flag := 0
	if available {
		flag = 1
	}
	res, err := s.db.ExecContext(ctx, `UPDATE topics SET is_available = $1 WHERE topic_id = $2`, flag, id)
	if err != nil {
		return fmt.Errorf("set availability: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetAttemptLimit updates the per-topic limit; nil means unlimited.
func (s *QuestionStore) SetAttemptLimit(ctx context.Context, id int64, limit *int) error {
	res, err := s.db.ExecContext(ctx, `UPDATE topics SET attempt_limit = $1 WHERE topic_id = $2`, limit, id)
	if err != nil {
		return fmt.Errorf("set attempt limit: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SampleQuestions draws up to n questions uniformly at random, without
// replacement. Callers decide what a short sample means.
func (s *QuestionStore) SampleQuestions(ctx context.Context, topicID int64, n int) ([]models.Question, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT question_id, topic_id, text, option1, option2, option3, option4, correct_option
		FROM questions
		WHERE topic_id = $1
		ORDER BY RANDOM()
		LIMIT $2
	`, topicID, n)
	if err != nil {
		return nil, fmt.Errorf("sample questions: %w", err)
	}
	defer rows.Close()

	var questions []models.Question
	for rows.Next() {
		var q models.Question
		if err := rows.Scan(&q.ID, &q.TopicID, &q.Text,
			&q.Options[0], &q.Options[1], &q.Options[2], &q.Options[3], &q.CorrectOption); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// CountQuestions returns the pool size for a topic.
func (s *QuestionStore) CountQuestions(ctx context.Context, topicID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM questions WHERE topic_id = $1`, topicID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	return n, nil
}

// InsertQuestions bulk-inserts parsed payloads in one transaction and
// returns how many rows were written.
func (s *QuestionStore) InsertQuestions(ctx context.Context, topicID int64, payloads []models.QuestionPayload) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("insert questions: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO questions (topic_id, text, option1, option2, option3, option4, correct_option)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`)
	if err != nil {
		return 0, fmt.Errorf("insert questions: %w", err)
	}
	defer stmt.Close()

	for i, p := range payloads {
		if _, err := stmt.ExecContext(ctx, topicID, p.Text,
			p.Options[0], p.Options[1], p.Options[2], p.Options[3], p.CorrectOption); err != nil {
			return 0, fmt.Errorf("insert question %d: %w", i+1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("insert questions: %w", err)
	}
	return len(payloads), nil
}
