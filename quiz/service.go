package quiz

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/m-ce-m1/html-bot/logger"
	"github.com/m-ce-m1/html-bot/models"
)

// QuestionStore is the slice of the storage layer the state machine needs.
type QuestionStore interface {
	GetTopic(ctx context.Context, id int64) (*models.Topic, error)
	SampleQuestions(ctx context.Context, topicID int64, n int) ([]models.Question, error)
}

// AttemptLedger commits completed tests and answers the prior-count
// question for the limit gate.
type AttemptLedger interface {
	Count(ctx context.Context, userID, topicID int64) (int, error)
	CommitAttempt(ctx context.Context, userID, topicID int64, score, maxScore int) (int, error)
}

// SessionStore holds the per-user session snapshot. Get returns nil for an
// idle user.
type SessionStore interface {
	Get(ctx context.Context, userID int64) (*Session, error)
	Put(ctx context.Context, userID int64, s *Session) error
	Clear(ctx context.Context, userID int64) error
}

// SubmitResult is the outcome of one answer event: exactly one of the
// fields is set, except for a stale event where only Stale is true.
type SubmitResult struct {
	Stale     bool
	Next      *QuestionPresented
	Completed *AttemptCompleted
}

// Service drives test sessions. All operations for one user are serialized
// on a per-user mutex, which closes the limit-gate race between a Start and
// a concurrent Finish.
type Service struct {
	questions QuestionStore
	ledger    AttemptLedger
	sessions  SessionStore
	log       *logger.Logger
	length    int

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewService(questions QuestionStore, ledger AttemptLedger, sessions SessionStore, log *logger.Logger, testLength int) *Service {
	return &Service{
		questions: questions,
		ledger:    ledger,
		sessions:  sessions,
		log:       log,
		length:    testLength,
		locks:     map[int64]*sync.Mutex{},
	}
}

// TestLength returns the configured number of questions per test.
func (s *Service) TestLength() int {
	return s.length
}

// userLock returns the mutex for one user. Locks are never reclaimed.
func (s *Service) userLock(userID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	return l
}

// StartTest checks availability, sample size and the attempt limit, then
// opens a session and returns the first question. Any prior session for the
// user is discarded. Refusals come back as *Rejection.
func (s *Service) StartTest(ctx context.Context, userID, topicID int64) (*QuestionPresented, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	topic, err := s.questions.GetTopic(ctx, topicID)
	if err != nil {
		return nil, err
	}
	if topic == nil || !topic.IsAvailable {
		r := &Rejection{Reason: RejectTopicUnavailable}
		if topic != nil {
			r.TopicTitle = topic.Title
		}
		return nil, r
	}

	sample, err := s.questions.SampleQuestions(ctx, topicID, s.length)
	if err != nil {
		return nil, err
	}
	if len(sample) < s.length {
		return nil, &Rejection{
			Reason:     RejectNotEnoughQuestions,
			TopicTitle: topic.Title,
			Needed:     s.length,
			Available:  len(sample),
		}
	}

	if topic.AttemptLimit != nil {
		prior, err := s.ledger.Count(ctx, userID, topicID)
		if err != nil {
			return nil, err
		}
		if prior >= *topic.AttemptLimit {
			return nil, &Rejection{
				Reason:     RejectLimitExhausted,
				TopicTitle: topic.Title,
				Limit:      *topic.AttemptLimit,
			}
		}
	}

	sess := &Session{
		ID:         uuid.NewString(),
		UserID:     userID,
		TopicID:    topicID,
		TopicTitle: topic.Title,
		Questions:  sample,
		StartedAt:  time.Now(),
	}
	if err := s.sessions.Put(ctx, userID, sess); err != nil {
		return nil, err
	}
	s.log.Info("test started", "user_id", userID, "topic_id", topicID, "session_id", sess.ID)
	return sess.Presentation(), nil
}

// SubmitAnswer applies one answer event. Stale events are absorbed without
// touching the session. The last answer commits the attempt; on a commit
// failure the session stays finished-but-uncommitted so Finish can retry.
func (s *Service) SubmitAnswer(ctx context.Context, userID int64, questionIndex, option int) (*SubmitResult, error) {
	if option < 1 || option > 4 {
		return nil, ErrInvalidOption
	}
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	sess, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrNoActiveSession
	}

	next, outcome := answer(*sess, questionIndex, option)
	switch outcome {
	case submitStale:
		return &SubmitResult{Stale: true}, nil
	case submitAdvanced:
		if err := s.sessions.Put(ctx, userID, &next); err != nil {
			return nil, err
		}
		return &SubmitResult{Next: next.Presentation()}, nil
	default:
		if err := s.sessions.Put(ctx, userID, &next); err != nil {
			return nil, err
		}
		completed, err := s.finishLocked(ctx, &next)
		if err != nil {
			return nil, err
		}
		return &SubmitResult{Completed: completed}, nil
	}
}

// Finish commits a fully answered session. It exists as its own operation
// so the transport can retry after a failed commit. Calling it with no
// session is a caller bug and fails with ErrNoActiveSession.
func (s *Service) Finish(ctx context.Context, userID int64) (*AttemptCompleted, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	sess, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrNoActiveSession
	}
	if !sess.Finished() {
		return nil, ErrSessionNotFinished
	}
	return s.finishLocked(ctx, sess)
}

// Peek returns the current question of an in-progress session. A finished
// session awaiting its commit yields nil, so the caller can route to Finish.
func (s *Service) Peek(ctx context.Context, userID int64) (*QuestionPresented, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	sess, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrNoActiveSession
	}
	if sess.Finished() {
		return nil, nil
	}
	return sess.Presentation(), nil
}

// Abandon discards any in-progress session without a ledger write.
func (s *Service) Abandon(ctx context.Context, userID int64) error {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()
	return s.sessions.Clear(ctx, userID)
}

func (s *Service) finishLocked(ctx context.Context, sess *Session) (*AttemptCompleted, error) {
	number, err := s.ledger.CommitAttempt(ctx, sess.UserID, sess.TopicID, sess.Correct, len(sess.Questions))
	if err != nil {
		s.log.Error("attempt commit failed", "user_id", sess.UserID, "topic_id", sess.TopicID, "error", err)
		return nil, err
	}
	if err := s.sessions.Clear(ctx, sess.UserID); err != nil {
		s.log.Warn("session clear failed after commit", "user_id", sess.UserID, "error", err)
	}
	s.log.Info("test finished",
		"user_id", sess.UserID,
		"topic_id", sess.TopicID,
		"score", sess.Correct,
		"max_score", len(sess.Questions),
		"attempt_number", number,
	)
	return &AttemptCompleted{
		TopicTitle:    sess.TopicTitle,
		Score:         sess.Correct,
		MaxScore:      len(sess.Questions),
		AttemptNumber: number,
	}, nil
}
