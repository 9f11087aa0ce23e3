package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"countdowns/internal/bot"
	"countdowns/internal/config"
	"countdowns/internal/logger"
	"countdowns/internal/repository"
	"countdowns/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "countdowns: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log := logger.New("countdowns", cfg.LogLevel, cfg.LogPretty)

	db, err := repository.NewDB(cfg.DatabaseURL, log)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	eventRepo := repository.NewEventRepository(db)
	settingsRepo := repository.NewSettingsRepository(db, cfg.DisplayMode())

	widgetSvc, err := service.NewWidgetService(eventRepo, cfg.WidgetRefresh, cfg.WidgetEntries, cfg.Location())
	if err != nil {
		return fmt.Errorf("widget: %w", err)
	}

	svc := bot.Services{
		Events:   service.NewEventService(eventRepo, log),
		Boards:   service.NewBoardService(eventRepo, settingsRepo),
		Settings: service.NewSettingsService(settingsRepo, log),
		Widget:   widgetSvc,
		Export:   service.NewExportService(eventRepo, cfg.Location()),
	}

	telegramBot, err := bot.New(cfg.TelegramToken, svc, &cfg, log)
	if err != nil {
		return fmt.Errorf("bot: %w", err)
	}

	log.Info().Str("timezone", cfg.Location().String()).Msg("countdowns bot started")
	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("bot stopped with error: %w", err)
	}
	log.Info().Msg("shutdown complete")
	return nil
}
