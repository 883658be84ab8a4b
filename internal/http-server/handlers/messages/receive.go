package messages

import (
	"log/slog"
	"net/http"

	"ChatBot/bot/chat"
	"ChatBot/entity"
	"ChatBot/internal/lib/api/response"
	"ChatBot/internal/lib/sl"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

// Receive runs one turn for a posted activity and returns the activities sent in reply.
func Receive(log *slog.Logger, handler Core, connector chat.Connector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.messages")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		if handler == nil {
			logger.Error("bot not available")
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error("Bot not available"))
			return
		}

		var activity entity.Activity
		if err := render.Bind(r, &activity); err != nil {
			logger.Error("bind request", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid activity"))
			return
		}

		logger = logger.With(
			slog.String("type", activity.Type),
			slog.String("channel_id", activity.ChannelID),
			slog.String("conversation_id", activity.Conversation.ID),
		)

		sent, err := handler.OnTurn(r.Context(), &activity, connector)
		if err != nil {
			logger.Error("turn failed", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Turn failed"))
			return
		}
		logger.Debug("turn completed", slog.Int("sent", len(sent)))

		render.JSON(w, r, response.Ok(sent))
	}
}
