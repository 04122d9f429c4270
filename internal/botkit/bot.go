package botkit

import (
	"context"
	"runtime/debug"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

const updateTimeout = 5 * time.Second

// API is the part of tgbotapi.BotAPI the bot and its views use.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetChatAdministrators(config tgbotapi.ChatAdministratorsConfig) ([]tgbotapi.ChatMember, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
}

// ViewFunc handles one command.
type ViewFunc func(ctx context.Context, api API, update tgbotapi.Update) error

type Bot struct {
	api      API
	cmdViews map[string]ViewFunc
	log      logrus.FieldLogger
}

func New(api API, log logrus.FieldLogger) *Bot {
	return &Bot{
		api:      api,
		cmdViews: make(map[string]ViewFunc),
		log:      log,
	}
}

func (b *Bot) RegisterCmdView(cmd string, view ViewFunc) {
	b.cmdViews[cmd] = view
}

// Run long-polls updates until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case update, ok := <-updates:
			if !ok {
				return ctx.Err()
			}

			updateCtx, cancel := context.WithTimeout(ctx, updateTimeout)
			b.HandleUpdate(updateCtx, update)
			cancel()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// HandleUpdate routes a command to its view. Panics in views are recovered.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if p := recover(); p != nil {
			b.log.WithField("panic", p).WithField("stack", string(debug.Stack())).Error("panic recovered in view")
		}
	}()

	if update.Message == nil || !update.Message.IsCommand() {
		return
	}

	cmd := update.Message.Command()

	view, ok := b.cmdViews[cmd]
	if !ok {
		return
	}

	if err := view(ctx, b.api, update); err != nil {
		b.log.WithError(err).WithField("command", cmd).Error("failed to handle update")

		if _, err := b.api.Send(tgbotapi.NewMessage(update.Message.Chat.ID, "internal error")); err != nil {
			b.log.WithError(err).Error("failed to send message")
		}
	}
}
