package sessions

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/m-ce-m1/html-bot/models"
	"github.com/m-ce-m1/html-bot/quiz"
)

func sampleSession(userID int64) *quiz.Session {
	return &quiz.Session{
		ID:         "sess-1",
		UserID:     userID,
		TopicID:    3,
		TopicTitle: "CSS Selectors",
		Questions: []models.Question{
			{ID: 11, TopicID: 3, Text: "q1", Options: [4]string{"a", "b", "c", "d"}, CorrectOption: 2},
			{ID: 12, TopicID: 3, Text: "q2", Options: [4]string{"a", "b", "c", "d"}, CorrectOption: 4},
		},
		Current:   1,
		Correct:   1,
		StartedAt: time.Unix(1700000000, 0).UTC(),
	}
}

func TestMemoryStorePutGetClear(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	got, err := store.Get(ctx, 100)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for idle user, got %+v", got)
	}

	if err := store.Put(ctx, 100, sampleSession(100)); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err = store.Get(ctx, 100)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.ID != "sess-1" || got.Current != 1 || got.Correct != 1 {
		t.Fatalf("unexpected session: %+v", got)
	}
	if len(got.Questions) != 2 || got.Questions[1].CorrectOption != 4 {
		t.Fatalf("questions not preserved: %+v", got.Questions)
	}

	if err := store.Clear(ctx, 100); err != nil {
		t.Fatalf("clear: %v", err)
	}
	got, err = store.Get(ctx, 100)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil after clear, got %+v", got)
	}
}

func TestMemoryStoreReturnsDetachedCopies(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	orig := sampleSession(100)
	if err := store.Put(ctx, 100, orig); err != nil {
		t.Fatalf("put: %v", err)
	}
	orig.Correct = 99
	orig.Questions[0].Text = "mutated"

	got, err := store.Get(ctx, 100)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Correct != 1 || got.Questions[0].Text != "q1" {
		t.Fatalf("stored session shares memory with caller: %+v", got)
	}

	got.Current = 7
	again, err := store.Get(ctx, 100)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if again.Current != 1 {
		t.Fatalf("returned session shares memory with store: %+v", again)
	}
}

func TestMemoryStoreIsolatesUsers(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Put(ctx, 100, sampleSession(100)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Put(ctx, 200, sampleSession(200)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Clear(ctx, 100); err != nil {
		t.Fatalf("clear: %v", err)
	}

	got, err := store.Get(ctx, 200)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.UserID != 200 {
		t.Fatalf("other user's session lost: %+v", got)
	}
}

// The redis store persists sessions as JSON; everything needed to resume a
// test mid-flight must survive that encoding.
func TestSessionSurvivesJSONEncoding(t *testing.T) {
	orig := sampleSession(100)
	raw, err := json.Marshal(orig)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var back quiz.Session
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.ID != orig.ID || back.UserID != orig.UserID || back.TopicID != orig.TopicID {
		t.Fatalf("identity fields lost: %+v", back)
	}
	if back.Current != 1 || back.Correct != 1 {
		t.Fatalf("progress lost: %+v", back)
	}
	if len(back.Questions) != 2 || back.Questions[0].CorrectOption != 2 || back.Questions[1].Options[3] != "d" {
		t.Fatalf("question sample lost: %+v", back.Questions)
	}
	if !back.StartedAt.Equal(orig.StartedAt) {
		t.Fatalf("start time lost: %v != %v", back.StartedAt, orig.StartedAt)
	}
}
