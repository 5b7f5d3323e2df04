package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"planbot/internal/bot"
	"planbot/internal/config"
	"planbot/internal/lifecycle"
	"planbot/internal/notify"
	"planbot/internal/repository"
	"planbot/internal/scheduler"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	callbackRepo := repository.NewCallbackRepository(db)

	machine := lifecycle.New(taskRepo, log)

	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		log.Fatal().Err(err).Msg("create telegram api")
	}
	log.Info().Str("account", api.Self.UserName).Msg("authorized")

	notifier := notify.New(api, log)

	sched := scheduler.New(userRepo, taskRepo, notifier, log)
	sched.Start(ctx)
	defer sched.Stop()

	if err := sched.RebuildAllJobs(ctx); err != nil {
		log.Fatal().Err(err).Msg("install daily triggers")
	}

	// Backfill reviews missed while the process was down, before polling so
	// the makeup lands ahead of any fresh interaction.
	recovery := scheduler.NewRecovery(userRepo, taskRepo, sched, log)
	if err := recovery.Run(ctx); err != nil {
		log.Error().Err(err).Msg("downtime recovery")
	}

	telegramBot, err := bot.New(api, userRepo, taskRepo, callbackRepo, machine, sched, notifier, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("create bot")
	}

	log.Info().Msg("planbot started")
	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("bot stopped")
	}
	log.Info().Msg("shutdown complete")
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}
