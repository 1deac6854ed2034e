package storage

import (
	"context"
	"errors"
	"testing"
)

func TestTopicLifecycle(t *testing.T) {
	db := openTestDB(t)
	store := NewQuestionStore(db)
	ctx := context.Background()

	two := 2
	html := seedTopic(t, db, "HTML Basics", &two)
	css := seedTopic(t, db, "CSS", nil)

	if html.AttemptLimit == nil || *html.AttemptLimit != 2 {
		t.Fatalf("expected attempt limit 2, got %v", html.AttemptLimit)
	}
	if css.AttemptLimit != nil {
		t.Fatalf("expected unlimited topic, got limit %d", *css.AttemptLimit)
	}

	available, err := store.ListAvailableTopics(ctx)
	if err != nil {
		t.Fatalf("list available: %v", err)
	}
	if len(available) != 0 {
		t.Fatalf("new topics must start hidden, got %d visible", len(available))
	}

	if err := store.SetAvailability(ctx, html.ID, true); err != nil {
		t.Fatalf("set availability: %v", err)
	}
	available, err = store.ListAvailableTopics(ctx)
	if err != nil {
		t.Fatalf("list available: %v", err)
	}
	if len(available) != 1 || available[0].Title != "HTML Basics" {
		t.Fatalf("expected only HTML Basics visible, got %+v", available)
	}

	all, err := store.ListTopics(ctx)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 topics, got %d", len(all))
	}

	got, err := store.GetTopicByTitle(ctx, "CSS")
	if err != nil {
		t.Fatalf("get by title: %v", err)
	}
	if got == nil || got.ID != css.ID {
		t.Fatalf("get by title returned %+v", got)
	}

	if err := store.SetAttemptLimit(ctx, css.ID, &two); err != nil {
		t.Fatalf("set attempt limit: %v", err)
	}
	got, err = store.GetTopic(ctx, css.ID)
	if err != nil {
		t.Fatalf("get topic: %v", err)
	}
	if got.AttemptLimit == nil || *got.AttemptLimit != 2 {
		t.Fatalf("expected limit 2 after update, got %v", got.AttemptLimit)
	}

	if err := store.SetAvailability(ctx, 9999, true); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown topic, got %v", err)
	}

	missing, err := store.GetTopic(ctx, 9999)
	if err != nil {
		t.Fatalf("get missing topic: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for missing topic, got %+v", missing)
	}
}

func TestInsertAndCountQuestions(t *testing.T) {
	db := openTestDB(t)
	store := NewQuestionStore(db)
	ctx := context.Background()

	topic := seedTopic(t, db, "HTML Basics", nil)

	n, err := store.InsertQuestions(ctx, topic.ID, payloads(12))
	if err != nil {
		t.Fatalf("insert questions: %v", err)
	}
	if n != 12 {
		t.Fatalf("expected 12 inserted, got %d", n)
	}

	count, err := store.CountQuestions(ctx, topic.ID)
	if err != nil {
		t.Fatalf("count questions: %v", err)
	}
	if count != 12 {
		t.Fatalf("expected pool of 12, got %d", count)
	}

	got, err := store.GetTopic(ctx, topic.ID)
	if err != nil {
		t.Fatalf("get topic: %v", err)
	}
	if got.Questions != 12 {
		t.Fatalf("expected question count on topic, got %d", got.Questions)
	}
}

func TestSampleQuestionsWithoutReplacement(t *testing.T) {
	db := openTestDB(t)
	store := NewQuestionStore(db)
	ctx := context.Background()

	topic := seedTopic(t, db, "HTML Basics", nil)
	if _, err := store.InsertQuestions(ctx, topic.ID, payloads(12)); err != nil {
		t.Fatalf("insert questions: %v", err)
	}

	for i := 0; i < 20; i++ {
		sample, err := store.SampleQuestions(ctx, topic.ID, 10)
		if err != nil {
			t.Fatalf("sample: %v", err)
		}
		if len(sample) != 10 {
			t.Fatalf("expected 10 questions, got %d", len(sample))
		}
		seen := map[int64]bool{}
		for _, q := range sample {
			if seen[q.ID] {
				t.Fatalf("duplicate question %d in sample", q.ID)
			}
			seen[q.ID] = true
			if q.TopicID != topic.ID {
				t.Fatalf("question %d from wrong topic %d", q.ID, q.TopicID)
			}
			if q.CorrectOption < 1 || q.CorrectOption > 4 {
				t.Fatalf("correct option out of range: %d", q.CorrectOption)
			}
		}
	}
}

func TestSampleSmallerPoolReturnsAll(t *testing.T) {
	db := openTestDB(t)
	store := NewQuestionStore(db)
	ctx := context.Background()

	topic := seedTopic(t, db, "Tiny", nil)
	if _, err := store.InsertQuestions(ctx, topic.ID, payloads(3)); err != nil {
		t.Fatalf("insert questions: %v", err)
	}

	sample, err := store.SampleQuestions(ctx, topic.ID, 10)
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	if len(sample) != 3 {
		t.Fatalf("expected the whole pool of 3, got %d", len(sample))
	}
}
