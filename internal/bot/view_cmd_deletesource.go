package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/DalintonC/lomigg-news/internal/botkit"
	"github.com/DalintonC/lomigg-news/internal/botkit/markup"
)

type SourceDeleter interface {
	Delete(ctx context.Context, id string) error
}

func ViewCmdDeleteSource(storage SourceDeleter) botkit.ViewFunc {
	return func(ctx context.Context, api botkit.API, update tgbotapi.Update) error {
		id := strings.TrimSpace(update.Message.CommandArguments())
		if id == "" {
			return reply(api, update, "Usage: /deletesource source\\-id")
		}

		if err := storage.Delete(ctx, id); err != nil {
			return err
		}

		return reply(api, update, fmt.Sprintf("Source %s deleted\\.", markup.Code(id)))
	}
}
