package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/m-ce-m1/html-bot/models"
)

// ErrNotFound is returned by update/delete operations that matched no row.
var ErrNotFound = errors.New("not found")

// UserStore persists telegram users.
type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

// Upsert inserts a user or refreshes the name and role of an existing one.
func (s *UserStore) Upsert(ctx context.Context, u models.User) error {
	createdAt := u.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (user_id, full_name, role, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET full_name = EXCLUDED.full_name, role = EXCLUDED.role
	`, u.ID, u.FullName, u.Role, createdAt.Unix())
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

// Get returns the user or nil when unknown.
func (s *UserStore) Get(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	var createdAt int64
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, full_name, role, created_at FROM users WHERE user_id = $1
	`, id).Scan(&u.ID, &u.FullName, &u.Role, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	u.CreatedAt = time.Unix(createdAt, 0)
	return &u, nil
}

// ListByRole returns all users with the given role, oldest first.
func (s *UserStore) ListByRole(ctx context.Context, role string) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, full_name, role, created_at FROM users WHERE role = $1 ORDER BY created_at, user_id
	`, role)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		var createdAt int64
		if err := rows.Scan(&u.ID, &u.FullName, &u.Role, &createdAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		u.CreatedAt = time.Unix(createdAt, 0)
		users = append(users, u)
	}
	return users, rows.Err()
}
