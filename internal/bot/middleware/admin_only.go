package middleware

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/DalintonC/lomigg-news/internal/botkit"
)

// AdminOnly lets the command through only for administrators of chatID.
func AdminOnly(chatID int64, next botkit.ViewFunc) botkit.ViewFunc {
	return func(ctx context.Context, api botkit.API, update tgbotapi.Update) error {
		if update.Message.From == nil {
			return nil
		}

		admins, err := api.GetChatAdministrators(
			tgbotapi.ChatAdministratorsConfig{
				ChatConfig: tgbotapi.ChatConfig{
					ChatID: chatID,
				},
			},
		)
		if err != nil {
			return fmt.Errorf("get chat administrators: %w", err)
		}

		for _, admin := range admins {
			if admin.User != nil && admin.User.ID == update.Message.From.ID {
				return next(ctx, api, update)
			}
		}

		if _, err := api.Send(tgbotapi.NewMessage(update.Message.Chat.ID, "You are not allowed to run this command")); err != nil {
			return err
		}

		return nil
	}
}
