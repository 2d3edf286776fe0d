package service

import (
	"context"

	"github.com/aliskhannn/anatomy-quiz-bot/internal/domain/entities"
)

// QuestionRepo loads the question set from the backing store.
type QuestionRepo interface {
	GetAll(ctx context.Context) ([]entities.Question, error)
}

// StatsRepo persists per-user aggregate stats.
type StatsRepo interface {
	Get(ctx context.Context, userID string) (*entities.UserStats, error)
	Upsert(ctx context.Context, stats *entities.UserStats) error
	Reset(ctx context.Context, userID string) error
}

// SessionTracker holds each user's outstanding question in process memory.
type SessionTracker interface {
	Get(userID string) (entities.SessionState, bool)
	Put(userID string, question entities.Question)
	Clear(userID string)
	MarkAnswered(userID string) (entities.SessionState, error)
	Reopen(userID string, questionID int)
}

// Messenger is the outbound message sink. Implementations must treat the
// platform being unavailable as a logged, non-fatal condition.
type Messenger interface {
	PushText(ctx context.Context, userID, text string) error
	PushQuestion(ctx context.Context, userID string, q entities.Question, correctCount int) error
	PushContinuePrompt(ctx context.Context, userID string) error
}
