package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"signal_notification_bot/internal/app"
	"signal_notification_bot/internal/domain/channel"
	"signal_notification_bot/internal/domain/subscription"
	"signal_notification_bot/internal/infra/config"
	idb "signal_notification_bot/internal/infra/database"
	"signal_notification_bot/internal/infra/feed"
	"signal_notification_bot/internal/infra/logger"
	"signal_notification_bot/internal/infra/scheduler"
	"signal_notification_bot/internal/infra/telegram"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Could not load application configuration: %v", err)
	}

	logger.Init(cfg)
	baseLogger := logger.Base(cfg.Environment)
	mainLogger := baseLogger.WithField("component", "main")
	mainLogger.WithFields(logrus.Fields{
		"log_level":   cfg.LogLevel,
		"environment": cfg.Environment,
		"admin_id":    cfg.AdminTelegramID,
		"timezone":    cfg.Location.String(),
	}).Info("Configuration loaded")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Channel storage
	var channelRepo channel.Repository
	if cfg.DatabaseURL != "" {
		db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
		if err != nil {
			mainLogger.Fatalf("Could not connect to database: %v", err)
		}
		defer db.Close()
		if err := idb.EnsureSchema(ctx, db); err != nil {
			mainLogger.Fatalf("Could not prepare database schema: %v", err)
		}
		channelRepo = idb.NewPostgresChannelRepository(db)
		mainLogger.Info("Database connection established successfully")
	} else {
		channelRepo = idb.NewMemoryChannelRepository()
		mainLogger.Warn("DATABASE_URL is not set, channels are kept in memory only")
	}

	// Core state
	registry := subscription.NewRegistry()
	gate := channel.NewGate()
	directory := app.NewChannelDirectory(channelRepo, registry, gate, cfg.ChannelDefaults, baseLogger)
	if _, err := directory.Load(ctx); err != nil {
		mainLogger.Fatalf("Could not load channels: %v", err)
	}

	// Initialize Telegram Bot
	pref := telebot.Settings{
		Token:  cfg.TelegramToken,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) {
			entry := baseLogger.WithField("component", "telebot").WithError(err)
			if c != nil && c.Sender() != nil && c.Chat() != nil {
				entry = entry.WithFields(logrus.Fields{"message": c.Text(), "sender_id": c.Sender().ID, "chat_id": c.Chat().ID})
			}
			entry.Error("Telegram handler error")
		},
	}
	bot, err := telebot.NewBot(pref)
	if err != nil {
		mainLogger.Fatalf("Could not create Telegram bot: %v", err)
	}

	// Dispatch path
	notifier := telegram.NewSignalNotifier(telegram.NewTelebotAdapter(bot))
	dispatcher := app.NewDispatcher(registry, directory, gate, notifier, baseLogger)
	dispatcher.SetClock(func() time.Time { return time.Now().In(cfg.Location) })
	feedClient := feed.NewClient(cfg.SignalFeedURL, dispatcher.HandleSignal, baseLogger)

	resetScheduler := scheduler.NewResetScheduler(
		gate,
		feedClient,
		baseLogger,
		cfg.Location,
		cfg.CronSpecCounterReset,
		cfg.CronSpecFeedMonitor,
	)
	if err := resetScheduler.Start(); err != nil {
		mainLogger.Fatalf("Could not start reset scheduler: %v", err)
	}

	// Register Handlers
	adminService := app.NewAdminService(directory, gate, cfg.AdminTelegramID)
	subscriptionService := app.NewSubscriptionService(directory)
	cooldown := telegram.NewCooldown(cfg.CommandCooldown)

	telegram.RegisterBotCommands(ctx, bot, adminService, baseLogger)
	telegram.RegisterSubscriptionHandlers(ctx, bot, subscriptionService, cooldown, baseLogger)
	telegram.RegisterAdminHandlers(ctx, bot, adminService, baseLogger)
	mainLogger.Info("Command handlers registered")

	go bot.Start()
	feedDone := make(chan struct{})
	go func() {
		defer close(feedDone)
		_ = feedClient.Run(ctx)
	}()
	mainLogger.Info("Application setup complete. Bot, feed and scheduler are running")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	mainLogger.Info("Shutting down application...")
	cancel()
	<-feedDone
	resetScheduler.Stop()
	bot.Stop()
	mainLogger.Info("Application shut down gracefully")
}
