package botkit_test

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/DalintonC/lomigg-news/internal/botkit"
)

type fakeAPI struct {
	sent    []tgbotapi.MessageConfig
	updates chan tgbotapi.Update
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) GetChatAdministrators(tgbotapi.ChatAdministratorsConfig) ([]tgbotapi.ChatMember, error) {
	return nil, nil
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func command(text string, length int) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Text:     text,
		Chat:     &tgbotapi.Chat{ID: 100},
		From:     &tgbotapi.User{ID: 7},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: length}},
	}}
}

func TestHandleUpdateRoutesCommands(t *testing.T) {
	log, _ := test.NewNullLogger()
	api := &fakeAPI{}
	b := botkit.New(api, log)

	var got string
	b.RegisterCmdView("deletesource", func(_ context.Context, _ botkit.API, u tgbotapi.Update) error {
		got = u.Message.CommandArguments()
		return nil
	})

	b.HandleUpdate(context.Background(), command("/deletesource leaguefeed", len("/deletesource")))
	b.HandleUpdate(context.Background(), command("/unknown", len("/unknown")))
	b.HandleUpdate(context.Background(), tgbotapi.Update{Message: &tgbotapi.Message{Text: "hello", Chat: &tgbotapi.Chat{ID: 1}}})

	require.Equal(t, "leaguefeed", got)
	require.Empty(t, api.sent)
}

func TestHandleUpdateRepliesOnError(t *testing.T) {
	log, hook := test.NewNullLogger()
	api := &fakeAPI{}
	b := botkit.New(api, log)

	b.RegisterCmdView("listsources", func(context.Context, botkit.API, tgbotapi.Update) error {
		return errors.New("db down")
	})

	b.HandleUpdate(context.Background(), command("/listsources", len("/listsources")))

	require.Len(t, api.sent, 1)
	require.Equal(t, "internal error", api.sent[0].Text)
	require.Equal(t, int64(100), api.sent[0].ChatID)
	require.Equal(t, "listsources", hook.LastEntry().Data["command"])
}

func TestHandleUpdateRecoversPanics(t *testing.T) {
	log, hook := test.NewNullLogger()
	b := botkit.New(&fakeAPI{}, log)

	b.RegisterCmdView("start", func(context.Context, botkit.API, tgbotapi.Update) error {
		panic("boom")
	})

	require.NotPanics(t, func() {
		b.HandleUpdate(context.Background(), command("/start", len("/start")))
	})
	require.Equal(t, "panic recovered in view", hook.LastEntry().Message)
}

func TestRunStopsOnCancel(t *testing.T) {
	log, _ := test.NewNullLogger()
	api := &fakeAPI{updates: make(chan tgbotapi.Update, 1)}
	b := botkit.New(api, log)

	handled := make(chan struct{})
	b.RegisterCmdView("start", func(context.Context, botkit.API, tgbotapi.Update) error {
		close(handled)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- b.Run(ctx) }()

	api.updates <- command("/start", len("/start"))
	<-handled
	cancel()

	require.ErrorIs(t, <-done, context.Canceled)
}

func TestParseJSON(t *testing.T) {
	type args struct {
		ID string `json:"id"`
	}

	got, err := botkit.ParseJSON[args](` {"id":"leaguefeed"} `)
	require.NoError(t, err)
	require.Equal(t, "leaguefeed", got.ID)

	_, err = botkit.ParseJSON[args]("leaguefeed")
	require.Error(t, err)
}
