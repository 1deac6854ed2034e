package storage

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/m-ce-m1/html-bot/models"
	"github.com/m-ce-m1/html-bot/util"
)

// openTestDB gives every test its own named in-memory database.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := util.OpenDB("sqlite", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	if err := util.CreateTablesIfNotExists(db, "sqlite"); err != nil {
		t.Fatalf("create tables: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seedUser(t *testing.T, db *sql.DB, id int64, name, role string) {
	t.Helper()
	if err := NewUserStore(db).Upsert(context.Background(), models.User{ID: id, FullName: name, Role: role}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
}

func seedTopic(t *testing.T, db *sql.DB, title string, limit *int) *models.Topic {
	t.Helper()
	topic, err := NewQuestionStore(db).CreateTopic(context.Background(), title, limit)
	if err != nil {
		t.Fatalf("seed topic: %v", err)
	}
	return topic
}

func payloads(n int) []models.QuestionPayload {
	out := make([]models.QuestionPayload, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, models.QuestionPayload{
			Text:          "question " + uuid.NewString()[:8],
			Options:       []string{"a", "b", "c", "d"},
			CorrectOption: i%4 + 1,
		})
	}
	return out
}
