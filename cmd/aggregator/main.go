package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/DalintonC/lomigg-news/internal/aggregator"
	"github.com/DalintonC/lomigg-news/internal/config"
	"github.com/DalintonC/lomigg-news/internal/content"
	"github.com/DalintonC/lomigg-news/internal/logger"
	"github.com/DalintonC/lomigg-news/internal/metrics"
	"github.com/DalintonC/lomigg-news/internal/report"
	"github.com/DalintonC/lomigg-news/internal/retry"
	"github.com/DalintonC/lomigg-news/internal/source"
	"github.com/DalintonC/lomigg-news/internal/storage"
	"github.com/DalintonC/lomigg-news/internal/translation"
)

const flushTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load(config.DefaultFiles...)
	if err != nil {
		logrus.WithError(err).Error("failed to load config")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, cfg, logger.New(cfg.Environment, cfg.LogLevel, cfg.Debug))
	cancel()

	os.Exit(code)
}

// newTelegramReporter contacts the Bot API on construction.
var newTelegramReporter = report.NewTelegramReporter

func run(ctx context.Context, cfg config.Config, log logrus.FieldLogger) int {
	// configuration errors abort before anything touches the network
	provider, err := translation.NewProvider(cfg.TranslationSettings(), log)
	if err != nil {
		log.WithError(err).Error("invalid translation configuration")
		return 1
	}
	if cfg.SourcesFrom == "file" {
		if _, err := config.LoadSources(cfg.SourcesFile); err != nil {
			log.WithError(err).Error("failed to load sources")
			return 1
		}
	}

	reporter := newReporter(cfg, log)
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), flushTimeout)
		defer cancel()

		if err := reporter.Flush(flushCtx); err != nil {
			log.WithError(err).Warn("failed to flush error reports")
		}
	}()

	db, err := storage.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		log.WithError(err).Error("failed to connect to database")
		return 1
	}
	defer db.Close()

	version, err := storage.Migrate(db)
	if err != nil {
		log.WithError(err).Error("failed to migrate database")
		return 1
	}
	log.WithField("version", version).Debug("database schema ready")

	sources := newSourceProvider(cfg, storage.NewSourceStorage(db))

	var (
		articles = storage.NewArticleStorage(db)
		exporter = metrics.NewExporter()
		fetcher  = source.NewFetcher(
			cfg.FetchTimeout,
			cfg.UserAgent,
			cfg.MaxItemsPerSource,
			retry.New(cfg.FetchRetryPolicy(), retry.WithNotify(retryLogger(log, "fetch"))),
			log,
		)
		publisher = newPublisher(ctx, cfg, exporter, log)
	)

	opts := []aggregator.Option{
		aggregator.WithStoreRetry(retry.New(cfg.RetryPolicy(), retry.WithNotify(retryLogger(log, "store")))),
		aggregator.WithObserver(exporter),
		aggregator.WithRunHook(publisher.afterRun),
	}
	if provider != nil {
		opts = append(opts, aggregator.WithTranslator(provider))
	}
	if cfg.ExtractFullContent {
		opts = append(opts, aggregator.WithExtractor(content.NewExtractor(cfg.FetchTimeout, cfg.UserAgent)))
	}
	if cfg.RedisAddr != "" {
		cache, err := translation.NewRedisCache(ctx, cfg.RedisAddr, cfg.TranslationCacheTTL)
		if err != nil {
			log.WithError(err).Warn("translation cache unavailable, continuing without it")
		} else {
			defer cache.Close()
			opts = append(opts, aggregator.WithCache(cache))
		}
	}

	agg := aggregator.New(sources, fetcher, articles, reporter, log, aggregator.Config{
		Concurrency:      cfg.FetchConcurrency,
		FilterKeywords:   cfg.FilterKeywords,
		TranslationDelay: cfg.TranslationDelay,
	}, opts...)

	if cfg.RunInterval > 0 {
		log.WithField("interval", cfg.RunInterval.String()).Info("running periodically")

		if err := agg.Start(ctx, cfg.RunInterval); err != nil && !errors.Is(err, context.Canceled) {
			log.WithError(err).Error("aggregator stopped")
			return 1
		}
		return 0
	}

	if _, err := agg.Run(ctx); err != nil {
		log.WithError(err).Error("aggregation failed")
		return 1
	}

	return 0
}

func newReporter(cfg config.Config, log logrus.FieldLogger) report.Reporter {
	reporters := []report.Reporter{report.NewLogReporter(log)}

	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != 0 {
		tg, err := newTelegramReporter(cfg.TelegramBotToken, cfg.TelegramChatID, log)
		if err != nil {
			log.WithError(err).Warn("telegram reporting disabled")
		} else {
			reporters = append(reporters, tg)
		}
	}

	return report.Multi(reporters...)
}

func newSourceProvider(cfg config.Config, db aggregator.SourceProvider) aggregator.SourceProvider {
	if cfg.SourcesFrom == "db" {
		return db
	}

	return config.NewSourceFile(cfg.SourcesFile)
}

func retryLogger(log logrus.FieldLogger, component string) retry.Notify {
	return func(attempt int, delay time.Duration, err error) {
		log.WithFields(logrus.Fields{
			"component": component,
			"attempt":   attempt,
			"delay":     delay.String(),
		}).WithError(err).Warn("attempt failed, retrying")
	}
}
