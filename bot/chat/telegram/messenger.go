package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"ChatBot/entity"

	tgbotapi "github.com/PaulSonOfLars/gotgbot/v2"
)

// TelegramAPI defines the Telegram bot methods needed by the connector.
// This avoids importing the concrete bot type and prevents circular imports.
type TelegramAPI interface {
	SendMessage(chatId int64, text string, opts *tgbotapi.SendMessageOpts) (*tgbotapi.Message, error)
}

// Connector implements chat.Connector for Telegram using inline keyboards.
type Connector struct {
	api TelegramAPI
}

// NewConnector creates a new Telegram Connector.
func NewConnector(api TelegramAPI) *Connector {
	return &Connector{api: api}
}

func (c *Connector) Send(ctx context.Context, activity *entity.Activity) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if activity.Type != entity.ActivityMessage {
		return nil
	}

	id, err := strconv.ParseInt(activity.Conversation.ID, 10, 64)
	if err != nil {
		return fmt.Errorf("telegram chat id %q: %w", activity.Conversation.ID, err)
	}

	text := activity.Text
	keyboard := inlineKeyboard(activity.Attachments)
	if text == "" {
		text = cardText(activity.Attachments)
	}
	if text == "" {
		return nil
	}

	opts := &tgbotapi.SendMessageOpts{}
	if len(keyboard) > 0 {
		opts.ReplyMarkup = tgbotapi.InlineKeyboardMarkup{InlineKeyboard: keyboard}
	}

	_, err = c.api.SendMessage(id, text, opts)
	return err
}

// inlineKeyboard renders card actions one per row: open-url actions as link
// buttons, the rest as callback buttons carrying the action value.
func inlineKeyboard(attachments []entity.Attachment) [][]tgbotapi.InlineKeyboardButton {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, att := range attachments {
		if att.Content == nil {
			continue
		}
		for _, action := range att.Content.Buttons {
			btn := tgbotapi.InlineKeyboardButton{Text: action.Title}
			if action.Type == entity.ActionOpenURL {
				btn.Url = action.Value
			} else {
				btn.CallbackData = action.Value
			}
			rows = append(rows, []tgbotapi.InlineKeyboardButton{btn})
		}
	}
	return rows
}

// cardText is the message body for an activity that only carries cards.
func cardText(attachments []entity.Attachment) string {
	var parts []string
	for _, att := range attachments {
		if att.Content == nil {
			continue
		}
		if att.Content.Title != "" {
			parts = append(parts, att.Content.Title)
		}
		if att.Content.Text != "" {
			parts = append(parts, att.Content.Text)
		}
		if len(parts) == 0 && len(att.Content.Buttons) > 0 {
			parts = append(parts, att.Content.Buttons[0].Title)
		}
	}
	return strings.Join(parts, "\n")
}
