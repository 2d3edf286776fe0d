package service

import (
	"context"
	"errors"
	"math/rand"

	"go.uber.org/zap"

	"github.com/aliskhannn/anatomy-quiz-bot/internal/domain/entities"
	"github.com/aliskhannn/anatomy-quiz-bot/internal/infra/memory"
)

// QuizService orchestrates the question/answer state machine: pick the next
// question, track the outstanding session, evaluate submissions and update
// the persisted stats.
//
// Per user the machine is IDLE -> AWAITING_ANSWER -> IDLE. A session lives
// until it is answered or superseded by the next dispatch; there is no
// expiry.
type QuizService struct {
	questions QuestionRepo
	progress  *ProgressService
	sessions  SessionTracker
	messenger Messenger
	logger    *zap.Logger
}

func NewQuizService(
	questions QuestionRepo,
	progress *ProgressService,
	sessions SessionTracker,
	messenger Messenger,
	logger *zap.Logger,
) *QuizService {
	return &QuizService{
		questions: questions,
		progress:  progress,
		sessions:  sessions,
		messenger: messenger,
		logger:    logger,
	}
}

// DispatchQuestion picks a question the user has not solved yet, stores it
// as the outstanding session and pushes it. All failure modes end in a
// friendly message; nothing propagates to the webhook response.
func (s *QuizService) DispatchQuestion(ctx context.Context, userID string) {
	stats := s.progress.Stats(ctx, userID)

	questions, err := s.questions.GetAll(ctx)
	if err != nil {
		// Availability over strictness: an unreachable backend is the
		// same as an empty table from the user's point of view.
		s.logger.Warn("question load failed, treating pool as empty",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		questions = nil
	}

	if len(questions) == 0 {
		s.pushText(ctx, userID, msgNoQuestions)
		return
	}

	// Solved questions never repeat until the user resets.
	pool := make([]entities.Question, 0, len(questions))
	for _, q := range questions {
		if !stats.HasSolved(q.ID) {
			pool = append(pool, q)
		}
	}

	if len(pool) == 0 {
		s.pushText(ctx, userID, msgAllSolved)
		return
	}

	q := pool[rand.Intn(len(pool))]
	s.sessions.Put(userID, q)

	if err := s.messenger.PushQuestion(ctx, userID, q, stats.Correct); err != nil {
		s.logger.Error("failed to push question",
			zap.String("user_id", userID),
			zap.Int("question_id", q.ID),
			zap.Error(err),
		)
	}
}

// SubmitAnswer evaluates the user's choice against the outstanding question.
// The session's answered flag is flipped atomically before any network I/O,
// so a duplicate submission racing the stats write is rejected
// deterministically. If the stats write fails the flag is rolled back and
// the user is asked to resubmit.
func (s *QuizService) SubmitAnswer(ctx context.Context, userID string, choice int) {
	if choice < 1 || choice > entities.OptionCount {
		s.pushText(ctx, userID, msgInvalidSelection)
		return
	}

	state, err := s.sessions.MarkAnswered(userID)
	if err != nil {
		switch {
		case errors.Is(err, memory.ErrNoActiveQuestion):
			s.pushText(ctx, userID, msgNoActive)
		case errors.Is(err, memory.ErrAlreadyAnswered):
			s.pushText(ctx, userID, msgAlreadyAnswered)
		default:
			s.logger.Error("mark answered failed", zap.String("user_id", userID), zap.Error(err))
		}
		return
	}

	q := state.Question
	isCorrect := choice == q.Answer

	if isCorrect {
		err = s.progress.AddCorrect(ctx, userID, q.ID)
	} else {
		err = s.progress.AddWrong(ctx, userID)
	}
	if err != nil {
		// Reopen so the answer isn't silently dropped; the user can try
		// the same question again.
		s.sessions.Reopen(userID, q.ID)
		s.logger.Error("stats update failed, session reopened",
			zap.String("user_id", userID),
			zap.Int("question_id", q.ID),
			zap.Error(err),
		)
		s.pushText(ctx, userID, msgProcessingFailed)
		return
	}

	stats := s.progress.Stats(ctx, userID)
	s.pushText(ctx, userID, renderResult(q, choice, isCorrect, stats.Correct))

	if err := s.messenger.PushContinuePrompt(ctx, userID); err != nil {
		s.logger.Warn("failed to push continue prompt",
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}
}

// Score returns the user's current stats without side effects.
func (s *QuizService) Score(ctx context.Context, userID string) *entities.UserStats {
	return s.progress.Stats(ctx, userID)
}

// ResetProgress clears the in-memory session and deletes the persisted
// record, returning the user to zero state.
func (s *QuizService) ResetProgress(ctx context.Context, userID string) error {
	s.sessions.Clear(userID)

	if err := s.progress.Reset(ctx, userID); err != nil {
		s.logger.Error("progress reset failed", zap.String("user_id", userID), zap.Error(err))
		return err
	}

	s.logger.Info("user progress reset", zap.String("user_id", userID))
	return nil
}

func (s *QuizService) pushText(ctx context.Context, userID, text string) {
	if err := s.messenger.PushText(ctx, userID, text); err != nil {
		s.logger.Error("failed to push message",
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}
}
