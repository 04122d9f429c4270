package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/DalintonC/lomigg-news/internal/botkit"
)

const helpText = `Source admin commands:
/listsources - configured feeds
/addsource {"id":"leaguefeed","name":"LeagueFeed","url":"https://leaguefeed.net/feed","category":"news","priority":2}
/deletesource leaguefeed`

func ViewCmdStart() botkit.ViewFunc {
	return func(_ context.Context, api botkit.API, update tgbotapi.Update) error {
		if _, err := api.Send(tgbotapi.NewMessage(update.Message.Chat.ID, helpText)); err != nil {
			return err
		}

		return nil
	}
}
