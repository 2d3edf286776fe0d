package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/line/line-bot-sdk-go/v7/linebot"
	"go.uber.org/zap"

	"github.com/aliskhannn/anatomy-quiz-bot/internal/config"
	"github.com/aliskhannn/anatomy-quiz-bot/internal/delivery/line"
	"github.com/aliskhannn/anatomy-quiz-bot/internal/infra/memory"
	"github.com/aliskhannn/anatomy-quiz-bot/internal/infra/supabase"
	"github.com/aliskhannn/anatomy-quiz-bot/internal/infra/supabase/repository"
	"github.com/aliskhannn/anatomy-quiz-bot/internal/logger"
	"github.com/aliskhannn/anatomy-quiz-bot/internal/service"
)

func main() {
	// .env is optional; real deployments use plain environment variables.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	zlog, err := logger.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = zlog.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	supaClient, err := supabase.NewClient(supabase.Config{
		URL:     cfg.Supabase.URL,
		AnonKey: cfg.Supabase.AnonKey,
	})
	if err != nil {
		zlog.Fatal("failed to create supabase client", zap.Error(err))
	}

	bot, err := linebot.New(cfg.Line.ChannelSecret, cfg.Line.ChannelToken)
	if err != nil {
		zlog.Fatal("failed to create line client", zap.Error(err))
	}

	// Initialize repositories and services.
	questionRepo := repository.NewQuestionRepository(supaClient, zlog)
	statsRepo := repository.NewStatsRepository(supaClient, zlog)
	sessions := memory.NewSessionStore()

	gateway := line.NewGateway(bot, cfg.LocalTestMode, zlog)

	progressService := service.NewProgressService(statsRepo, zlog)
	quizService := service.NewQuizService(questionRepo, progressService, sessions, gateway, zlog)

	hour, minute, err := cfg.ReminderClock()
	if err != nil {
		zlog.Fatal("invalid reminder time", zap.Error(err))
	}
	reminderService := service.NewReminderService(progressService, gateway, cfg.ReminderUserID, hour, minute, zlog)
	go reminderService.Start(ctx)

	handler := line.NewHandler(
		bot,
		gateway,
		quizService,
		questionRepo,
		statsRepo,
		cfg.StrictSignature,
		zlog,
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		zlog.Info("http server started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Error("http server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	zlog.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("http server shutdown failed", zap.Error(err))
	}
}
