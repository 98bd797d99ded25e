package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"leadbot/internal/bot"
	"leadbot/internal/config"
	"leadbot/internal/notify"
	"leadbot/internal/storage"
	"leadbot/pkg/logger"
	"leadbot/pkg/redis"
	"leadbot/pkg/webhook"
)

// ENTRY POINT

func main() {
	// A missing token stops the process before anything connects.
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	zapLogger, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer zapLogger.Sync()

	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	store, err := storage.Open(ctx, cfg.Storage, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to init lead store", zap.Error(err))
	}
	defer store.Close()

	var queue notify.Queue = notify.NewMemoryQueue(cfg.Webhook.QueueSize)
	if cfg.Redis.Addr != "" {
		redisClient := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer redisClient.Close()
		if err := redisClient.Ping(ctx); err != nil {
			zapLogger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		queue = notify.NewRedisQueue(redisClient, cfg.Redis.QueueKey)
		zapLogger.Info("Using Redis notification queue", zap.String("key", cfg.Redis.QueueKey))
	}

	dispatcher := notify.New(
		webhook.NewClient(cfg.Webhook.HTTPRequestTimeout, zapLogger),
		queue,
		notify.Config{
			URL:           cfg.Webhook.URL,
			RatePerSecond: cfg.Webhook.RatePerSecond,
		},
		zapLogger,
	)
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		_ = dispatcher.Run(ctx)
	}()

	session, err := bot.NewSession(cfg.DiscordToken)
	if err != nil {
		zapLogger.Fatal("Failed to create Discord session", zap.Error(err))
	}

	coordinator := bot.NewCoordinator(session, store, dispatcher, zapLogger)
	discordBot := bot.New(session, coordinator, cfg.DiscordGuildID, zapLogger)

	if err := discordBot.Start(ctx); err != nil {
		zapLogger.Error("Bot stopped with error", zap.Error(err))
	}

	cancel()
	<-workerDone
	zapLogger.Info("Bot shutdown gracefully")
}
