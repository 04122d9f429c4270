package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/DalintonC/lomigg-news/internal/config"
	"github.com/DalintonC/lomigg-news/internal/health"
	"github.com/DalintonC/lomigg-news/internal/logger"
	"github.com/DalintonC/lomigg-news/internal/storage"
)

const checkTimeout = 15 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	cfg, err := config.Load(config.DefaultFiles...)
	if err != nil {
		logrus.WithError(err).Error("failed to load config")
		return 1
	}

	// logs go to stderr, the report goes to stdout
	log := logger.NewWithOutput(os.Stderr, cfg.Environment, cfg.LogLevel, cfg.Debug)

	var counter health.ArticleCounter
	db, err := storage.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		log.WithError(err).Warn("database unreachable")
	} else {
		defer db.Close()
		counter = storage.NewArticleStorage(db)
	}

	result := health.NewChecker(cfg, counter, log).Run(ctx)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		log.WithError(err).Error("failed to write health report")
		return 1
	}

	if !result.Healthy() {
		return 1
	}

	return 0
}
