package quiz

import (
	"errors"
	"fmt"
)

// RejectReason codes why a test could not start.
type RejectReason string

const (
	RejectTopicUnavailable   RejectReason = "topic_unavailable"
	RejectNotEnoughQuestions RejectReason = "not_enough_questions"
	RejectLimitExhausted     RejectReason = "limit_exhausted"
)

// Rejection is the typed refusal to start a test. It carries enough context
// for the transport to explain the refusal to the user.
type Rejection struct {
	Reason     RejectReason
	TopicTitle string
	Needed     int
	Available  int
	Limit      int
}

func (r *Rejection) Error() string {
	switch r.Reason {
	case RejectTopicUnavailable:
		return "topic is not available"
	case RejectNotEnoughQuestions:
		return fmt.Sprintf("topic %q has %d questions, %d required", r.TopicTitle, r.Available, r.Needed)
	case RejectLimitExhausted:
		return fmt.Sprintf("attempt limit %d exhausted for topic %q", r.Limit, r.TopicTitle)
	}
	return string(r.Reason)
}

var (
	// ErrNoActiveSession signals an event for a user with no test in
	// progress, including a duplicate Finish after the session was cleared.
	ErrNoActiveSession = errors.New("no active test session")

	// ErrSessionNotFinished signals Finish on a session with unanswered
	// questions.
	ErrSessionNotFinished = errors.New("test session has unanswered questions")

	// ErrInvalidOption signals an answer option outside 1..4.
	ErrInvalidOption = errors.New("option index out of range")
)
