package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/m-ce-m1/html-bot/models"
)

// MaterialStore persists learning materials.
type MaterialStore struct {
	db *sql.DB
}

func NewMaterialStore(db *sql.DB) *MaterialStore {
	return &MaterialStore{db: db}
}

// Add inserts a material and returns its id.
func (s *MaterialStore) Add(ctx context.Context, m models.Material) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO materials (topic_id, type, content, title)
		VALUES ($1, $2, $3, $4)
		RETURNING material_id
	`, m.TopicID, m.Type, m.Content, m.Title).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("add material: %w", err)
	}
	return id, nil
}

// Get returns the material or nil when it does not exist.
func (s *MaterialStore) Get(ctx context.Context, id int64) (*models.Material, error) {
	m, err := s.get(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	return m, nil
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func (s *MaterialStore) get(ctx context.Context, q queryRower, id int64) (*models.Material, error) {
	var m models.Material
	var topicID sql.NullInt64
	err := q.QueryRowContext(ctx, `
		SELECT material_id, topic_id, type, content, title FROM materials WHERE material_id = $1
	`, id).Scan(&m.ID, &topicID, &m.Type, &m.Content, &m.Title)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get material: %w", err)
	}
	if topicID.Valid {
		m.TopicID = &topicID.Int64
	}
	return &m, nil
}

// ListForTopic returns the topic's materials followed by general ones. A nil
// topic id lists only the general materials.
func (s *MaterialStore) ListForTopic(ctx context.Context, topicID *int64) ([]models.Material, error) {
	var rows *sql.Rows
	var err error
	if topicID == nil {
		rows, err = s.db.QueryContext(ctx, `
			SELECT material_id, topic_id, type, content, title
			FROM materials
			WHERE topic_id IS NULL
			ORDER BY material_id DESC
		`)
	} else {
		rows, err = s.db.QueryContext(ctx, `
			SELECT material_id, topic_id, type, content, title
			FROM materials
			WHERE topic_id = $1 OR topic_id IS NULL
			ORDER BY (topic_id IS NULL), material_id DESC
		`, *topicID)
	}
	if err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	defer rows.Close()

	var out []models.Material
	for rows.Next() {
		var m models.Material
		var tid sql.NullInt64
		if err := rows.Scan(&m.ID, &tid, &m.Type, &m.Content, &m.Title); err != nil {
			return nil, fmt.Errorf("scan material: %w", err)
		}
		if tid.Valid {
			m.TopicID = &tid.Int64
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Remove deletes a material and returns the deleted row so the caller can
// clean up a stored file. ErrNotFound when the id is unknown.
func (s *MaterialStore) Remove(ctx context.Context, id int64) (*models.Material, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("remove material: %w", err)
	}
	defer tx.Rollback()

	m, err := s.get(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrNotFound
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM materials WHERE material_id = $1`, id); err != nil {
		return nil, fmt.Errorf("remove material: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("remove material: %w", err)
	}
	return m, nil
}
