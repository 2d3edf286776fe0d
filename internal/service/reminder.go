package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ReminderService pushes a daily quiz reminder to the configured user.
type ReminderService struct {
	progress  *ProgressService
	messenger Messenger
	userID    string
	hour      int
	minute    int
	logger    *zap.Logger
}

func NewReminderService(
	progress *ProgressService,
	messenger Messenger,
	userID string,
	hour, minute int,
	logger *zap.Logger,
) *ReminderService {
	return &ReminderService{
		progress:  progress,
		messenger: messenger,
		userID:    userID,
		hour:      hour,
		minute:    minute,
		logger:    logger,
	}
}

// Start begins the reminder scheduling loop and blocks until ctx is done.
func (s *ReminderService) Start(ctx context.Context) {
	if s.userID == "" {
		s.logger.Info("no reminder user configured, reminder service idle")
		return
	}

	s.logger.Info("reminder service started",
		zap.String("user_id", s.userID),
		zap.String("at", fmt.Sprintf("%02d:%02d", s.hour, s.minute)),
	)

	c := cron.New(cron.WithLocation(time.UTC))

	_, err := c.AddFunc(fmt.Sprintf("%d %d * * *", s.minute, s.hour), func() {
		s.sendDailyReminder(ctx)
	})
	if err != nil {
		s.logger.Error("failed to add cron job", zap.Error(err))
		return
	}

	c.Start()

	<-ctx.Done()

	c.Stop()
	s.logger.Info("reminder service stopped")
}

func (s *ReminderService) sendDailyReminder(ctx context.Context) {
	stats := s.progress.Stats(ctx, s.userID)

	if err := s.messenger.PushText(ctx, s.userID, renderReminder(stats.Correct)); err != nil {
		s.logger.Error("failed to send daily reminder",
			zap.String("user_id", s.userID),
			zap.Error(err),
		)
		return
	}

	s.logger.Info("daily reminder sent", zap.String("user_id", s.userID))
}
