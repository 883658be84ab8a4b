package telegram

import (
	"strconv"
	"time"

	"ChatBot/entity"

	tgbotapi "github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"
)

const ChannelID = "telegram"

// NewActivity converts a Telegram update into an activity addressed to botUser.
// It returns nil for updates the bot does not handle.
func NewActivity(c *ext.Context, botUser tgbotapi.User) *entity.Activity {
	if c.EffectiveChat == nil {
		return nil
	}

	activity := &entity.Activity{
		ChannelID:    ChannelID,
		Timestamp:    time.Now().UTC(),
		Recipient:    account(botUser),
		Conversation: conversation(c.EffectiveChat),
	}
	if c.EffectiveUser != nil {
		activity.From = account(*c.EffectiveUser)
		activity.Locale = c.EffectiveUser.LanguageCode
	}

	switch {
	case c.CallbackQuery != nil:
		activity.Type = entity.ActivityMessage
		activity.ID = c.CallbackQuery.Id
		activity.Value = c.CallbackQuery.Data
		activity.Text = c.CallbackQuery.Data
	case c.EffectiveMessage != nil && len(c.EffectiveMessage.NewChatMembers) > 0:
		activity.Type = entity.ActivityConversationUpdate
		activity.ID = strconv.FormatInt(c.EffectiveMessage.MessageId, 10)
		for _, member := range c.EffectiveMessage.NewChatMembers {
			activity.MembersAdded = append(activity.MembersAdded, account(member))
		}
	case c.EffectiveMessage != nil && c.EffectiveMessage.LeftChatMember != nil:
		activity.Type = entity.ActivityConversationUpdate
		activity.ID = strconv.FormatInt(c.EffectiveMessage.MessageId, 10)
		activity.MembersRemoved = []entity.ChannelAccount{account(*c.EffectiveMessage.LeftChatMember)}
	case c.EffectiveMessage != nil && c.EffectiveMessage.Text != "":
		activity.Type = entity.ActivityMessage
		activity.ID = strconv.FormatInt(c.EffectiveMessage.MessageId, 10)
		activity.Text = c.EffectiveMessage.Text
	default:
		return nil
	}

	return activity
}

func account(u tgbotapi.User) entity.ChannelAccount {
	name := u.FirstName
	if u.LastName != "" {
		name += " " + u.LastName
	}
	role := "user"
	if u.IsBot {
		role = "bot"
	}
	return entity.ChannelAccount{
		ID:   strconv.FormatInt(u.Id, 10),
		Name: name,
		Role: role,
	}
}

func conversation(chat *tgbotapi.Chat) entity.ConversationAccount {
	return entity.ConversationAccount{
		ID:      strconv.FormatInt(chat.Id, 10),
		Name:    chat.Title,
		IsGroup: chat.Type == "group" || chat.Type == "supergroup",
	}
}

// NewStartActivity treats a /start command as the user joining the conversation,
// since private chats never report new members.
func NewStartActivity(c *ext.Context, botUser tgbotapi.User) *entity.Activity {
	if c.EffectiveChat == nil || c.EffectiveUser == nil {
		return nil
	}
	activity := &entity.Activity{
		Type:         entity.ActivityConversationUpdate,
		ChannelID:    ChannelID,
		Timestamp:    time.Now().UTC(),
		From:         account(*c.EffectiveUser),
		Recipient:    account(botUser),
		Conversation: conversation(c.EffectiveChat),
		Locale:       c.EffectiveUser.LanguageCode,
		MembersAdded: []entity.ChannelAccount{account(*c.EffectiveUser)},
	}
	if c.EffectiveMessage != nil {
		activity.ID = strconv.FormatInt(c.EffectiveMessage.MessageId, 10)
	}
	return activity
}
