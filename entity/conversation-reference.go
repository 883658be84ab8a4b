package entity

// ConversationReference holds what is needed to message a user outside of a live turn.
type ConversationReference struct {
	ActivityID   string              `json:"activityId,omitempty" bson:"activity_id"`
	User         ChannelAccount      `json:"user" bson:"user"`
	Bot          ChannelAccount      `json:"bot" bson:"bot"`
	Conversation ConversationAccount `json:"conversation" bson:"conversation"`
	ChannelID    string              `json:"channelId" bson:"channel_id"`
	ServiceURL   string              `json:"serviceUrl,omitempty" bson:"service_url"`
	Locale       string              `json:"locale,omitempty" bson:"locale"`
	TenantID     string              `json:"tenantId,omitempty" bson:"tenant_id,omitempty"`
}

// ConversationReference extracts the addressing data of an inbound activity.
func (a *Activity) ConversationReference() ConversationReference {
	return ConversationReference{
		ActivityID:   a.ID,
		User:         a.From,
		Bot:          a.Recipient,
		Conversation: a.Conversation,
		ChannelID:    a.ChannelID,
		ServiceURL:   a.ServiceURL,
		Locale:       a.Locale,
		TenantID:     a.Conversation.TenantID,
	}
}

// Activity builds an outbound message activity for the referenced conversation.
func (r ConversationReference) Activity(text string) *Activity {
	return &Activity{
		Type:         ActivityMessage,
		ChannelID:    r.ChannelID,
		ServiceURL:   r.ServiceURL,
		From:         r.Bot,
		Recipient:    r.User,
		Conversation: r.Conversation,
		Text:         text,
		Locale:       r.Locale,
	}
}
