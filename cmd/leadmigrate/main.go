package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"leadbot/internal/config"
	"leadbot/internal/storage"
	"leadbot/pkg/logger"
)

func main() {
	down := flag.Bool("down", false, "roll back the most recent migration instead of applying pending ones")
	flag.Parse()

	zapLogger, err := logger.New("info")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer zapLogger.Sync()

	cfg, err := config.LoadStorage()
	if err != nil {
		zapLogger.Fatal("Failed to load storage config", zap.Error(err))
	}

	ctx := context.Background()

	if *down {
		if err := storage.MigrateDown(ctx, *cfg, zapLogger); err != nil {
			zapLogger.Fatal("Failed to roll back migration", zap.Error(err))
		}
		return
	}

	store, err := storage.Open(ctx, *cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to apply migrations", zap.Error(err))
	}
	if err := store.Close(); err != nil {
		zapLogger.Error("Failed to close lead store", zap.Error(err))
	}
}
