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
	out := flag.String("o", "reports/leads.xlsx", "path of the workbook to write")
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
	store, err := storage.Open(ctx, *cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to open lead store", zap.Error(err))
	}
	defer store.Close()

	list, err := store.ListLeads(ctx)
	if err != nil {
		zapLogger.Fatal("Failed to list leads", zap.Error(err))
	}

	if err := storage.ExportLeadsToExcel(list, *out); err != nil {
		zapLogger.Fatal("Failed to export leads", zap.Error(err))
	}

	zapLogger.Info("Leads exported",
		zap.Int("count", len(list)),
		zap.String("path", *out))
}
