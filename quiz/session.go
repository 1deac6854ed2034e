package quiz

import (
	"time"

	"github.com/m-ce-m1/html-bot/models"
)

// OptionLabels are the fixed positional labels shown to the user. option1
// is always A, option4 always D; the stored correct_option refers to this
// same ordering.
var OptionLabels = [4]string{"A", "B", "C", "D"}

// Session is the ephemeral state of one user taking a test. The question
// sample is frozen at start; Current and Correct move only through answer
// transitions.
type Session struct {
	ID         string            `json:"id"`
	UserID     int64             `json:"userId"`
	TopicID    int64             `json:"topicId"`
	TopicTitle string            `json:"topicTitle"`
	Questions  []models.Question `json:"questions"`
	Current    int               `json:"current"`
	Correct    int               `json:"correct"`
	StartedAt  time.Time         `json:"startedAt"`
}

// Option is one answer choice as presented to the user.
type Option struct {
	Label string
	Index int
	Text  string
}

// QuestionPresented is the outbound view of the session's current question.
// Index is the 0-based question index answer callbacks must echo back.
type QuestionPresented struct {
	Index    int
	Position int
	Total    int
	Prompt   string
	Options  [4]Option
}

// AttemptCompleted is the outbound result of a committed test.
type AttemptCompleted struct {
	TopicTitle    string
	Score         int
	MaxScore      int
	AttemptNumber int
}

// Presentation builds the view of the current question. Only valid while
// the session still has unanswered questions.
func (s *Session) Presentation() *QuestionPresented {
	q := s.Questions[s.Current]
	view := &QuestionPresented{
		Index:    s.Current,
		Position: s.Current + 1,
		Total:    len(s.Questions),
		Prompt:   q.Text,
	}
	for i, text := range q.Options {
		view.Options[i] = Option{Label: OptionLabels[i], Index: i + 1, Text: text}
	}
	return view
}

// Finished reports whether every question has been answered.
func (s *Session) Finished() bool {
	return s.Current >= len(s.Questions)
}

type submitOutcome int

const (
	submitStale submitOutcome = iota
	submitAdvanced
	submitCompleted
)

// answer applies one answer event to a session value and returns the new
// value. A question index that does not match the current one, including
// any answer against an already finished session, is stale and changes
// nothing.
func answer(s Session, questionIndex, option int) (Session, submitOutcome) {
	if s.Finished() || questionIndex != s.Current {
		return s, submitStale
	}
	if option == s.Questions[s.Current].CorrectOption {
		s.Correct++
	}
	s.Current++
	if s.Finished() {
		return s, submitCompleted
	}
	return s, submitAdvanced
}
