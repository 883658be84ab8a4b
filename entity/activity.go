package entity

import (
	"net/http"
	"time"

	"ChatBot/internal/lib/validate"

	"github.com/google/uuid"
)

// Activity types understood by the bot.
const (
	ActivityMessage            = "message"
	ActivityConversationUpdate = "conversationUpdate"
	ActivityTyping             = "typing"
)

const (
	ActionOpenURL = "openUrl"
	ActionImBack  = "imBack"

	ContentTypeHeroCard = "application/vnd.microsoft.card.hero"
)

// ChannelAccount identifies a participant of a conversation.
type ChannelAccount struct {
	ID   string `json:"id" bson:"id" validate:"required"`
	Name string `json:"name,omitempty" bson:"name,omitempty"`
	Role string `json:"role,omitempty" bson:"role,omitempty"`
}

type ConversationAccount struct {
	ID       string `json:"id" bson:"id" validate:"required"`
	Name     string `json:"name,omitempty" bson:"name,omitempty"`
	IsGroup  bool   `json:"isGroup,omitempty" bson:"is_group,omitempty"`
	TenantID string `json:"tenantId,omitempty" bson:"tenant_id,omitempty"`
}

// CardAction is a clickable action on a card.
type CardAction struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	Value string `json:"value"`
}

type HeroCard struct {
	Title   string       `json:"title,omitempty"`
	Text    string       `json:"text,omitempty"`
	Buttons []CardAction `json:"buttons,omitempty"`
}

type Attachment struct {
	ContentType string    `json:"contentType"`
	Content     *HeroCard `json:"content,omitempty"`
}

// Activity is a single inbound or outbound conversation event.
type Activity struct {
	Type           string              `json:"type" validate:"required"`
	ID             string              `json:"id,omitempty"`
	Timestamp      time.Time           `json:"timestamp,omitempty"`
	ChannelID      string              `json:"channelId" validate:"required"`
	ServiceURL     string              `json:"serviceUrl,omitempty" validate:"omitempty,url"`
	From           ChannelAccount      `json:"from"`
	Recipient      ChannelAccount      `json:"recipient"`
	Conversation   ConversationAccount `json:"conversation"`
	Text           string              `json:"text,omitempty"`
	Value          any                 `json:"value,omitempty"`
	Locale         string              `json:"locale,omitempty"`
	MembersAdded   []ChannelAccount    `json:"membersAdded,omitempty" validate:"dive"`
	MembersRemoved []ChannelAccount    `json:"membersRemoved,omitempty" validate:"dive"`
	Attachments    []Attachment        `json:"attachments,omitempty"`
	ReplyToID      string              `json:"replyToId,omitempty"`
}

func (a *Activity) Bind(_ *http.Request) error {
	return validate.Struct(a)
}

// ValueString returns the structured value as a string, or "" when it is absent or not a string.
func (a *Activity) ValueString() string {
	if a == nil || a.Value == nil {
		return ""
	}
	if s, ok := a.Value.(string); ok {
		return s
	}
	return ""
}

// Reply creates an outbound activity addressed back to the sender of a.
func (a *Activity) Reply(text string) *Activity {
	return &Activity{
		Type:         ActivityMessage,
		ID:           uuid.NewString(),
		Timestamp:    time.Now().UTC(),
		ChannelID:    a.ChannelID,
		ServiceURL:   a.ServiceURL,
		From:         a.Recipient,
		Recipient:    a.From,
		Conversation: a.Conversation,
		Text:         text,
		Locale:       a.Locale,
		ReplyToID:    a.ID,
	}
}

// NewHeroCard wraps a hero card in an attachment.
func NewHeroCard(card HeroCard) Attachment {
	return Attachment{
		ContentType: ContentTypeHeroCard,
		Content:     &card,
	}
}
