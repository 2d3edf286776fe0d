package memory

import (
	"errors"
	"sync"

	"github.com/aliskhannn/anatomy-quiz-bot/internal/domain/entities"
)

var (
	// ErrNoActiveQuestion is returned when a user answers without an
	// outstanding question.
	ErrNoActiveQuestion = errors.New("no active question for user")
	// ErrAlreadyAnswered is returned for duplicate submissions against the
	// same dispatched question.
	ErrAlreadyAnswered = errors.New("question already answered")
)

// SessionStore is the process-local tracker of each user's outstanding
// question. Nothing here is persisted; state is lost on restart, which is
// fine because a new dispatch recreates it.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*entities.SessionState
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*entities.SessionState),
	}
}

// Get returns a copy of the user's session state.
func (s *SessionStore) Get(userID string) (entities.SessionState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.sessions[userID]
	if !ok {
		return entities.SessionState{}, false
	}
	return *state, true
}

// Put replaces the user's session with a fresh unanswered state for the
// given question. A previously outstanding question is superseded.
func (s *SessionStore) Put(userID string, question entities.Question) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = &entities.SessionState{Question: question}
}

// Clear removes the user's session entirely.
func (s *SessionStore) Clear(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}

// MarkAnswered atomically flips the answered flag and returns the session
// state as of that moment. The flag is set before any I/O happens so a
// duplicate submission racing the store write is rejected deterministically.
func (s *SessionStore) MarkAnswered(userID string) (entities.SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.sessions[userID]
	if !ok {
		return entities.SessionState{}, ErrNoActiveQuestion
	}
	if state.Answered {
		return entities.SessionState{}, ErrAlreadyAnswered
	}

	state.Answered = true
	return *state, nil
}

// Reopen flips the answered flag back so the user can resubmit after a
// failed stats write. It only acts if the same question is still current,
// so a dispatch that raced in between is not clobbered.
func (s *SessionStore) Reopen(userID string, questionID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.sessions[userID]
	if !ok || state.Question.ID != questionID {
		return
	}
	state.Answered = false
}
