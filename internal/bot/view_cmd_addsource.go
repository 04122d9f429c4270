package bot

import (
	"context"
	"fmt"
	"net/url"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/DalintonC/lomigg-news/internal/botkit"
	"github.com/DalintonC/lomigg-news/internal/botkit/markup"
	"github.com/DalintonC/lomigg-news/internal/model"
)

type SourceStorage interface {
	Add(ctx context.Context, source model.Source) error
}

func ViewCmdAddSource(storage SourceStorage) botkit.ViewFunc {
	type addSourceArgs struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		URL      string `json:"url"`
		Category string `json:"category"`
		Priority int    `json:"priority"`
		Language string `json:"language"`
		Disabled bool   `json:"disabled"`
	}

	return func(ctx context.Context, api botkit.API, update tgbotapi.Update) error {
		args, err := botkit.ParseJSON[addSourceArgs](update.Message.CommandArguments())
		if err != nil {
			return reply(api, update, "Arguments must be a JSON object, see /start\\.")
		}

		if args.ID == "" || !validFeedURL(args.URL) {
			return reply(api, update, "Both id and an absolute http\\(s\\) url are required\\.")
		}

		source := model.Source{
			ID:       args.ID,
			Name:     args.Name,
			FeedURL:  args.URL,
			Category: args.Category,
			Priority: args.Priority,
			Language: args.Language,
			Enabled:  !args.Disabled,
		}
		if source.Name == "" {
			source.Name = source.ID
		}
		if source.Language == "" {
			source.Language = "en"
		}

		if err := storage.Add(ctx, source); err != nil {
			return err
		}

		return reply(api, update, fmt.Sprintf("Source saved as %s\\.", markup.Code(source.ID)))
	}
}

func validFeedURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}

	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func reply(api botkit.API, update tgbotapi.Update, text string) error {
	msg := tgbotapi.NewMessage(update.Message.Chat.ID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2

	_, err := api.Send(msg)
	return err
}
