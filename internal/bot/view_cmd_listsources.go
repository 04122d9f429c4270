package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/samber/lo"

	"github.com/DalintonC/lomigg-news/internal/botkit"
	"github.com/DalintonC/lomigg-news/internal/botkit/markup"
	"github.com/DalintonC/lomigg-news/internal/model"
)

type SourceLister interface {
	Sources(ctx context.Context) ([]model.Source, error)
}

func ViewCmdListSources(lister SourceLister) botkit.ViewFunc {
	return func(ctx context.Context, api botkit.API, update tgbotapi.Update) error {
		sources, err := lister.Sources(ctx)
		if err != nil {
			return err
		}

		if len(sources) == 0 {
			return reply(api, update, "No sources yet, add one with /addsource\\.")
		}

		sourceInfos := lo.Map(sources, func(source model.Source, _ int) string {
			return formatSource(source)
		})

		return reply(api, update, fmt.Sprintf(
			"Sources \\(%d total\\):\n\n%s",
			len(sources),
			strings.Join(sourceInfos, "\n\n"),
		))
	}
}

func formatSource(source model.Source) string {
	status := "enabled"
	if !source.Enabled {
		status = "disabled"
	}

	return fmt.Sprintf(
		"🌐 %s\nID: %s\nFeed: %s\nCategory: %s, priority %d, %s",
		markup.Bold(source.Name),
		markup.Code(source.ID),
		markup.EscapeForMarkdown(source.FeedURL),
		markup.EscapeForMarkdown(source.Category),
		source.Priority,
		status,
	)
}
