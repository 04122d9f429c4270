package report

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/DalintonC/lomigg-news/internal/botkit/markup"
)

const (
	// Telegram rejects longer messages.
	maxMessageLen = 4000
	maxErrorRunes = 1000
)

type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramReporter buffers reports and posts them to a chat on Flush.
type TelegramReporter struct {
	bot    Sender
	chatID int64
	log    logrus.FieldLogger

	mu      sync.Mutex
	pending []string
}

func NewTelegramReporter(token string, chatID int64, log logrus.FieldLogger) (*TelegramReporter, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	return NewTelegramReporterWithSender(api, chatID, log), nil
}

func NewTelegramReporterWithSender(bot Sender, chatID int64, log logrus.FieldLogger) *TelegramReporter {
	return &TelegramReporter{bot: bot, chatID: chatID, log: log}
}

func (r *TelegramReporter) Report(err error, tags map[string]string) {
	if Ignorable(err) {
		return
	}

	r.mu.Lock()
	r.pending = append(r.pending, formatReport(err, tags))
	r.mu.Unlock()
}

// Flush posts buffered reports, packing as many as fit into each message.
func (r *TelegramReporter) Flush(ctx context.Context) error {
	r.mu.Lock()
	pending := r.pending
	r.pending = nil
	r.mu.Unlock()

	var errs []error
	for _, text := range pack(pending, maxMessageLen) {
		if err := ctx.Err(); err != nil {
			return err
		}

		msg := tgbotapi.NewMessage(r.chatID, text)
		msg.ParseMode = tgbotapi.ModeMarkdownV2
		msg.DisableWebPagePreview = true

		if _, err := r.bot.Send(msg); err != nil {
			r.log.WithError(err).Warn("failed to send error report to telegram")
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func formatReport(err error, tags map[string]string) string {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	text := []rune(err.Error())
	if len(text) > maxErrorRunes {
		text = text[:maxErrorRunes]
	}

	var b strings.Builder
	b.WriteString(markup.Bold(string(text)))
	for _, k := range keys {
		fmt.Fprintf(&b, "\n%s: %s", markup.EscapeForMarkdown(k), markup.Code(tags[k]))
	}

	return b.String()
}

func pack(reports []string, limit int) []string {
	var (
		messages []string
		current  strings.Builder
	)

	for _, report := range reports {
		if current.Len() > 0 && current.Len()+2+len(report) > limit {
			messages = append(messages, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(report)
	}

	if current.Len() > 0 {
		messages = append(messages, current.String())
	}

	return messages
}
