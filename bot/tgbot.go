package bot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ChatBot/bot/chat"
	"ChatBot/bot/chat/telegram"
	"ChatBot/entity"
	"ChatBot/internal/lib/sl"

	tgbotapi "github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"
	"github.com/PaulSonOfLars/gotgbot/v2/ext/handlers"
	"github.com/PaulSonOfLars/gotgbot/v2/ext/handlers/filters/message"
)

// TurnHandler processes one inbound activity.
type TurnHandler interface {
	OnTurn(ctx context.Context, activity *entity.Activity, connector chat.Connector) ([]*entity.Activity, error)
}

// TgBot polls Telegram for updates and hands them to the turn handler.
type TgBot struct {
	log         *slog.Logger
	api         *tgbotapi.Bot
	botUsername string
	handler     TurnHandler
	connector   *telegram.Connector
	updater     *ext.Updater
	turnTimeout time.Duration
}

func NewTgBot(botName, apiKey string, handler TurnHandler, log *slog.Logger) (*TgBot, error) {
	tgBot := &TgBot{
		log:         log.With(sl.Module("tgbot")),
		botUsername: botName,
		handler:     handler,
		turnTimeout: 30 * time.Second,
	}

	api, err := tgbotapi.NewBot(apiKey, nil)
	if err != nil {
		return nil, fmt.Errorf("creating api instance: %v", err)
	}
	tgBot.api = api
	tgBot.connector = telegram.NewConnector(api)

	return tgBot, nil
}

// Connector returns the connector that delivers activities to Telegram chats.
func (t *TgBot) Connector() chat.Connector {
	return t.connector
}

// Start begins polling for updates and blocks until the updater stops.
func (t *TgBot) Start() error {
	dispatcher := ext.NewDispatcher(&ext.DispatcherOpts{
		// If an error is returned by a handler, log it and continue going.
		Error: func(b *tgbotapi.Bot, ctx *ext.Context, err error) ext.DispatcherAction {
			t.log.Error("handling update", sl.Err(err))
			return ext.DispatcherActionNoop
		},
		MaxRoutines: ext.DefaultMaxRoutines,
	})
	t.updater = ext.NewUpdater(dispatcher, nil)

	dispatcher.AddHandler(handlers.NewCommand("start", t.handleStart))
	dispatcher.AddHandler(handlers.NewCallback(anyCallback, t.handleCallback))
	dispatcher.AddHandler(handlers.NewMessage(hasNewMembers, t.handleUpdate))
	dispatcher.AddHandler(handlers.NewMessage(message.Text, t.handleUpdate))

	err := t.updater.StartPolling(t.api, &ext.PollingOpts{
		DropPendingUpdates: true,
		GetUpdatesOpts: &tgbotapi.GetUpdatesOpts{
			Timeout: 9,
			RequestOpts: &tgbotapi.RequestOpts{
				Timeout: time.Second * 10,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to start polling: %w", err)
	}

	t.log.Info("telegram bot started", slog.String("username", t.botUsername))

	// Idle, to keep updates coming in, and avoid bot stopping.
	t.updater.Idle()

	return nil
}

func (t *TgBot) Stop() {
	if t.updater == nil {
		return
	}
	if err := t.updater.Stop(); err != nil {
		t.log.Warn("stopping updater", sl.Err(err))
	}
}

func anyCallback(_ *tgbotapi.CallbackQuery) bool { return true }

func hasNewMembers(msg *tgbotapi.Message) bool { return len(msg.NewChatMembers) > 0 }

func (t *TgBot) handleStart(b *tgbotapi.Bot, c *ext.Context) error {
	return t.turn(telegram.NewStartActivity(c, b.User))
}

func (t *TgBot) handleCallback(b *tgbotapi.Bot, c *ext.Context) error {
	if _, err := c.CallbackQuery.Answer(b, nil); err != nil {
		t.log.Warn("answering callback", sl.Err(err))
	}
	return t.turn(telegram.NewActivity(c, b.User))
}

func (t *TgBot) handleUpdate(b *tgbotapi.Bot, c *ext.Context) error {
	return t.turn(telegram.NewActivity(c, b.User))
}

func (t *TgBot) turn(activity *entity.Activity) error {
	if activity == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), t.turnTimeout)
	defer cancel()

	_, err := t.handler.OnTurn(ctx, activity, t.connector)
	return err
}
