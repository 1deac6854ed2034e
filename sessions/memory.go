// Package sessions provides the stores that hold in-progress test
// sessions. The in-memory store is the default; the redis store survives
// process restarts and is selected by configuration.
package sessions

import (
	"context"
	"sync"

	"github.com/m-ce-m1/html-bot/models"
	"github.com/m-ce-m1/html-bot/quiz"
)

// MemoryStore keeps sessions in a process-local map.
type MemoryStore struct {
	mu sync.RWMutex
	m  map[int64]*quiz.Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{m: map[int64]*quiz.Session{}}
}

// Get returns a detached copy, or nil when the user has no session.
func (s *MemoryStore) Get(_ context.Context, userID int64) (*quiz.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.m[userID]
	if !ok {
		return nil, nil
	}
	return clone(sess), nil
}

func (s *MemoryStore) Put(_ context.Context, userID int64, sess *quiz.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[userID] = clone(sess)
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, userID)
	return nil
}

// clone detaches the stored value so callers cannot mutate it in place,
// matching the serialization boundary of the redis store.
func clone(sess *quiz.Session) *quiz.Session {
	cp := *sess
	cp.Questions = append([]models.Question(nil), sess.Questions...)
	return &cp
}
