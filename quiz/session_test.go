package quiz

import (
	"testing"

	"github.com/m-ce-m1/html-bot/models"
)

func testSession(n int) Session {
	qs := make([]models.Question, 0, n)
	for i := 0; i < n; i++ {
		qs = append(qs, models.Question{
			ID:            int64(i + 1),
			TopicID:       1,
			Text:          "prompt",
			Options:       [4]string{"w", "x", "y", "z"},
			CorrectOption: 2,
		})
	}
	return Session{ID: "s", UserID: 100, TopicID: 1, TopicTitle: "HTML Basics", Questions: qs}
}

func TestAnswerCorrectAdvancesAndScores(t *testing.T) {
	s := testSession(3)

	next, outcome := answer(s, 0, 2)
	if outcome != submitAdvanced {
		t.Fatalf("expected advance, got %v", outcome)
	}
	if next.Current != 1 || next.Correct != 1 {
		t.Fatalf("expected current=1 correct=1, got current=%d correct=%d", next.Current, next.Correct)
	}
	if s.Current != 0 || s.Correct != 0 {
		t.Fatalf("input session mutated: %+v", s)
	}
}

func TestAnswerIncorrectAdvancesWithoutScoring(t *testing.T) {
	s := testSession(3)

	next, outcome := answer(s, 0, 4)
	if outcome != submitAdvanced {
		t.Fatalf("expected advance, got %v", outcome)
	}
	if next.Current != 1 || next.Correct != 0 {
		t.Fatalf("expected current=1 correct=0, got current=%d correct=%d", next.Current, next.Correct)
	}
}

func TestAnswerStaleIndexIsNoOp(t *testing.T) {
	s := testSession(3)
	s, _ = answer(s, 0, 2)

	for _, idx := range []int{0, 2, 5, -1} {
		next, outcome := answer(s, idx, 2)
		if outcome != submitStale {
			t.Fatalf("index %d: expected stale, got %v", idx, outcome)
		}
		if next.Current != s.Current || next.Correct != s.Correct {
			t.Fatalf("index %d: stale answer changed state: %+v", idx, next)
		}
	}
}

func TestAnswerLastQuestionCompletes(t *testing.T) {
	s := testSession(2)
	s, _ = answer(s, 0, 2)

	next, outcome := answer(s, 1, 3)
	if outcome != submitCompleted {
		t.Fatalf("expected completion, got %v", outcome)
	}
	if !next.Finished() {
		t.Fatalf("session not finished after last answer")
	}
	if next.Correct != 1 {
		t.Fatalf("expected score 1, got %d", next.Correct)
	}
}

func TestAnswerAfterFinishIsStale(t *testing.T) {
	s := testSession(1)
	s, outcome := answer(s, 0, 2)
	if outcome != submitCompleted {
		t.Fatalf("expected completion, got %v", outcome)
	}

	next, outcome := answer(s, 1, 2)
	if outcome != submitStale {
		t.Fatalf("expected stale on finished session, got %v", outcome)
	}
	if next.Correct != 1 || next.Current != 1 {
		t.Fatalf("finished session changed: %+v", next)
	}
}

func TestRunningCountStaysBounded(t *testing.T) {
	s := testSession(10)
	pattern := []int{2, 3, 2, 2, 4, 2, 1, 2, 2, 3}

	for i, opt := range pattern {
		var outcome submitOutcome
		s, outcome = answer(s, i, opt)
		if outcome == submitStale {
			t.Fatalf("step %d unexpectedly stale", i)
		}
		if s.Correct < 0 || s.Correct > s.Current {
			t.Fatalf("step %d: correct=%d outside [0,%d]", i, s.Correct, s.Current)
		}
	}
	if s.Correct != 6 {
		t.Fatalf("expected 6 correct, got %d", s.Correct)
	}
}

func TestPresentationLabelsArePositional(t *testing.T) {
	s := testSession(10)
	s.Questions[0].Options = [4]string{"first", "second", "third", "fourth"}

	view := s.Presentation()
	if view.Index != 0 || view.Position != 1 || view.Total != 10 {
		t.Fatalf("unexpected view coordinates: %+v", view)
	}

	wantLabels := []string{"A", "B", "C", "D"}
	wantTexts := []string{"first", "second", "third", "fourth"}
	for i, opt := range view.Options {
		if opt.Label != wantLabels[i] {
			t.Fatalf("option %d label %q, want %q", i, opt.Label, wantLabels[i])
		}
		if opt.Index != i+1 {
			t.Fatalf("option %d index %d, want %d", i, opt.Index, i+1)
		}
		if opt.Text != wantTexts[i] {
			t.Fatalf("option %d text %q, want %q", i, opt.Text, wantTexts[i])
		}
	}

	s, _ = answer(s, 0, 2)
	view = s.Presentation()
	if view.Index != 1 || view.Position != 2 {
		t.Fatalf("expected second question view, got %+v", view)
	}
}
