package memory

import (
	"errors"
	"sync"
	"testing"

	"github.com/aliskhannn/anatomy-quiz-bot/internal/domain/entities"
)

func question(id int) entities.Question {
	return entities.Question{
		ID:      id,
		Prompt:  "prompt",
		Options: []string{"a", "b", "c", "d"},
		Answer:  1,
	}
}

func TestSessionStoreLifecycle(t *testing.T) {
	store := NewSessionStore()

	if _, ok := store.Get("U1"); ok {
		t.Fatal("expected no session for new user")
	}

	store.Put("U1", question(1))
	state, ok := store.Get("U1")
	if !ok || state.Answered {
		t.Fatalf("expected unanswered session, got ok=%v state=%+v", ok, state)
	}

	store.Clear("U1")
	if _, ok := store.Get("U1"); ok {
		t.Fatal("expected session removed")
	}
}

func TestMarkAnsweredGuards(t *testing.T) {
	store := NewSessionStore()

	if _, err := store.MarkAnswered("U1"); !errors.Is(err, ErrNoActiveQuestion) {
		t.Fatalf("expected ErrNoActiveQuestion, got %v", err)
	}

	store.Put("U1", question(1))
	state, err := store.MarkAnswered("U1")
	if err != nil {
		t.Fatalf("first submission rejected: %v", err)
	}
	if state.Question.ID != 1 {
		t.Fatalf("expected question 1, got %d", state.Question.ID)
	}

	if _, err := store.MarkAnswered("U1"); !errors.Is(err, ErrAlreadyAnswered) {
		t.Fatalf("expected ErrAlreadyAnswered, got %v", err)
	}
}

func TestMarkAnsweredIsAtomicUnderRace(t *testing.T) {
	store := NewSessionStore()
	store.Put("U1", question(1))

	const attempts = 16
	var wg sync.WaitGroup
	accepted := make(chan struct{}, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.MarkAnswered("U1"); err == nil {
				accepted <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(accepted)

	count := 0
	for range accepted {
		count++
	}
	if count != 1 {
		t.Fatalf("expected exactly one accepted submission, got %d", count)
	}
}

func TestReopenAllowsResubmission(t *testing.T) {
	store := NewSessionStore()
	store.Put("U1", question(1))

	if _, err := store.MarkAnswered("U1"); err != nil {
		t.Fatalf("mark answered: %v", err)
	}

	store.Reopen("U1", 1)
	if _, err := store.MarkAnswered("U1"); err != nil {
		t.Fatalf("expected resubmission after reopen, got %v", err)
	}
}

func TestReopenIgnoresSupersededQuestion(t *testing.T) {
	store := NewSessionStore()
	store.Put("U1", question(1))
	_, _ = store.MarkAnswered("U1")

	// A new dispatch replaced the session in the meantime.
	store.Put("U1", question(2))
	store.Reopen("U1", 1)

	state, ok := store.Get("U1")
	if !ok || state.Question.ID != 2 || state.Answered {
		t.Fatalf("expected fresh session for question 2 untouched, got %+v", state)
	}
}

func TestPutSupersedesOutstandingQuestion(t *testing.T) {
	store := NewSessionStore()
	store.Put("U1", question(1))
	store.Put("U1", question(2))

	state, err := store.MarkAnswered("U1")
	if err != nil {
		t.Fatalf("mark answered: %v", err)
	}
	if state.Question.ID != 2 {
		t.Fatalf("expected superseding question 2, got %d", state.Question.ID)
	}
}
