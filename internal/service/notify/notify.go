package notify

import (
	"context"
	"log/slog"

	"ChatBot/bot/chat"
	"ChatBot/entity"
	"ChatBot/internal/lib/sl"
)

// ReferenceSource lists the conversations that can be messaged proactively.
type ReferenceSource interface {
	All() []entity.ConversationReference
}

// Result reports how many users a proactive message reached.
type Result struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

// Service sends a message to every known conversation outside of a turn.
type Service struct {
	references ReferenceSource
	connector  chat.Connector
	message    string
	log        *slog.Logger
}

func NewService(references ReferenceSource, connector chat.Connector, message string, log *slog.Logger) *Service {
	return &Service{
		references: references,
		connector:  connector,
		message:    message,
		log:        log.With(sl.Module("service.notify")),
	}
}

// Notify sends text, or the configured message when text is empty, to each stored reference.
// A failed delivery is logged and does not stop the others.
func (s *Service) Notify(ctx context.Context, text string) (Result, error) {
	if text == "" {
		text = s.message
	}

	var result Result
	for _, ref := range s.references.All() {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := s.connector.Send(ctx, ref.Activity(text)); err != nil {
			result.Failed++
			s.log.With(
				slog.String("channel_id", ref.ChannelID),
				slog.String("conversation_id", ref.Conversation.ID),
				slog.String("user_id", ref.User.ID),
				sl.Err(err),
			).Warn("proactive message failed")
			continue
		}
		result.Sent++
	}

	s.log.Info("proactive message sent",
		slog.Int("sent", result.Sent),
		slog.Int("failed", result.Failed),
	)
	return result, nil
}
