package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/DalintonC/lomigg-news/internal/bot"
	"github.com/DalintonC/lomigg-news/internal/bot/middleware"
	"github.com/DalintonC/lomigg-news/internal/botkit"
	"github.com/DalintonC/lomigg-news/internal/config"
	"github.com/DalintonC/lomigg-news/internal/logger"
	"github.com/DalintonC/lomigg-news/internal/storage"
)

// sourcebot manages the sources table over Telegram. Admins of telegram_chat_id
// may change sources, anyone may list them.
func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx)
	cancel()

	os.Exit(code)
}

func run(ctx context.Context) int {
	cfg, err := config.Load(config.DefaultFiles...)
	if err != nil {
		logrus.WithError(err).Error("failed to load config")
		return 1
	}

	log := logger.New(cfg.Environment, cfg.LogLevel, cfg.Debug)

	if cfg.TelegramBotToken == "" || cfg.TelegramChatID == 0 {
		log.Error("telegram_bot_token and telegram_chat_id are required")
		return 1
	}

	botAPI, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		log.WithError(err).Error("failed to create bot")
		return 1
	}

	db, err := storage.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		log.WithError(err).Error("failed to connect to database")
		return 1
	}
	defer db.Close()

	if _, err := storage.Migrate(db); err != nil {
		log.WithError(err).Error("failed to migrate database")
		return 1
	}

	sourceStorage := storage.NewSourceStorage(db)
	if err := seedSources(ctx, sourceStorage, cfg.SourcesFile, log); err != nil {
		log.WithError(err).Warn("failed to seed sources")
	}

	newsBot := botkit.New(botAPI, log)
	newsBot.RegisterCmdView("start", bot.ViewCmdStart())
	newsBot.RegisterCmdView("listsources", bot.ViewCmdListSources(sourceStorage))
	newsBot.RegisterCmdView("addsource", middleware.AdminOnly(cfg.TelegramChatID, bot.ViewCmdAddSource(sourceStorage)))
	newsBot.RegisterCmdView("deletesource", middleware.AdminOnly(cfg.TelegramChatID, bot.ViewCmdDeleteSource(sourceStorage)))

	log.WithField("bot", botAPI.Self.UserName).Info("source bot started")

	if err := newsBot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Error("bot stopped")
		return 1
	}

	return 0
}

// seedSources copies the sources file into an empty table.
func seedSources(ctx context.Context, store *storage.SourceStorage, path string, log logrus.FieldLogger) error {
	existing, err := store.Sources(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	sources, err := config.LoadSources(path)
	if err != nil {
		return err
	}

	for _, src := range sources {
		if err := store.Add(ctx, src); err != nil {
			return err
		}
	}

	log.WithField("count", len(sources)).Info("seeded sources table")

	return nil
}
