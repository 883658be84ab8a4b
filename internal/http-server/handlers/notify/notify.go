package notify

import (
	"context"
	"log/slog"
	"net/http"

	"ChatBot/internal/lib/api/response"
	"ChatBot/internal/lib/sl"
	"ChatBot/internal/service/notify"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

type Core interface {
	Notify(ctx context.Context, text string) (notify.Result, error)
}

// Notify sends a proactive message to every known conversation.
// An optional "text" query parameter overrides the configured message.
func Notify(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(
			sl.Module("http.handlers.notify"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		if handler == nil {
			logger.Error("notify not available")
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error("Notify not available"))
			return
		}

		result, err := handler.Notify(r.Context(), r.URL.Query().Get("text"))
		if err != nil {
			logger.Error("notify", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Notify failed"))
			return
		}

		logger.With(
			slog.Int("sent", result.Sent),
			slog.Int("failed", result.Failed),
		).Debug("proactive messages have been sent")

		render.JSON(w, r, response.Ok(result))
	}
}
