package storage

import (
	"context"
	"testing"

	"github.com/m-ce-m1/html-bot/models"
)

func TestMessageInboxFlow(t *testing.T) {
	db := openTestDB(t)
	store := NewMessageStore(db)
	ctx := context.Background()

	seedUser(t, db, 100, "Anna Petrova", models.RoleStudent)
	seedUser(t, db, 1, "Teacher", models.RoleAdmin)

	first, err := store.Record(ctx, 100, "Что такое тег?")
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	second, err := store.Record(ctx, 100, "Как вставить картинку?")
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	open, err := store.Unanswered(ctx)
	if err != nil {
		t.Fatalf("unanswered: %v", err)
	}
	if len(open) != 2 {
		t.Fatalf("expected 2 open questions, got %d", len(open))
	}
	if open[0].ID != first {
		t.Fatalf("expected oldest question first, got id %d", open[0].ID)
	}

	if err := store.MarkAnswered(ctx, first, 1); err != nil {
		t.Fatalf("mark answered: %v", err)
	}

	open, err = store.Unanswered(ctx)
	if err != nil {
		t.Fatalf("unanswered after answer: %v", err)
	}
	if len(open) != 1 || open[0].ID != second {
		t.Fatalf("expected one open question left, got %+v", open)
	}

	answered, err := store.Get(ctx, first)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !answered.Answered || answered.ToUserID == nil || *answered.ToUserID != 1 {
		t.Fatalf("answer metadata not recorded: %+v", answered)
	}

	missing, err := store.Get(ctx, 9999)
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for unknown message")
	}
}
