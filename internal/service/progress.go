package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/aliskhannn/anatomy-quiz-bot/internal/domain/entities"
)

// ProgressService wraps the stats store with the read-never-fails policy and
// the get+mutate+upsert compositions.
type ProgressService struct {
	repo   StatsRepo
	logger *zap.Logger
}

func NewProgressService(repo StatsRepo, logger *zap.Logger) *ProgressService {
	return &ProgressService{repo: repo, logger: logger}
}

// Stats returns the user's persisted stats. Store errors are logged and
// substituted with a zero-valued record: quiz continuity matters more than
// surfacing backend errors to the user.
func (s *ProgressService) Stats(ctx context.Context, userID string) *entities.UserStats {
	stats, err := s.repo.Get(ctx, userID)
	if err != nil {
		s.logger.Warn("stats read failed, using zero record",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return entities.NewUserStats(userID)
	}
	return stats
}

// AddCorrect records a correct answer for the question. Unlike Stats, the
// mutation path propagates errors so the caller can roll back the session
// guard and let the user resubmit.
func (s *ProgressService) AddCorrect(ctx context.Context, userID string, questionID int) error {
	stats, err := s.repo.Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("get stats: %w", err)
	}

	stats.AddCorrect(questionID)

	if err := s.repo.Upsert(ctx, stats); err != nil {
		return fmt.Errorf("upsert stats: %w", err)
	}
	return nil
}

// AddWrong records a wrong answer.
func (s *ProgressService) AddWrong(ctx context.Context, userID string) error {
	stats, err := s.repo.Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("get stats: %w", err)
	}

	stats.AddWrong()

	if err := s.repo.Upsert(ctx, stats); err != nil {
		return fmt.Errorf("upsert stats: %w", err)
	}
	return nil
}

// Reset deletes the user's stored record entirely.
func (s *ProgressService) Reset(ctx context.Context, userID string) error {
	if err := s.repo.Reset(ctx, userID); err != nil {
		return fmt.Errorf("reset stats: %w", err)
	}
	return nil
}
