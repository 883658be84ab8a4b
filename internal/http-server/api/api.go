package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"ChatBot/bot/chat"
	"ChatBot/internal/config"
	handlerErrors "ChatBot/internal/http-server/handlers/errors"
	"ChatBot/internal/http-server/handlers/messages"
	"ChatBot/internal/http-server/handlers/notify"
	"ChatBot/internal/http-server/middleware/authenticate"
	"ChatBot/internal/lib/sl"
	"ChatBot/internal/ws"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

type Server struct {
	conf       *config.Config
	httpServer *http.Server
	log        *slog.Logger
}

// Handler groups what the routes need from the application.
type Handler struct {
	Bot       messages.Core
	Connector chat.Connector
	Notifier  notify.Core
	Hub       *ws.Hub
}

// NewRouter builds the HTTP routes of the bot.
func NewRouter(conf *config.Config, log *slog.Logger, handler Handler) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)

	router.NotFound(handlerErrors.NotFound(log))
	router.MethodNotAllowed(handlerErrors.NotAllowed(log))

	router.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(30 * time.Second))
			r.Use(render.SetContentType(render.ContentTypeJSON))
			r.Post("/messages", messages.Receive(log, handler.Bot, handler.Connector))
		})
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))
			r.Use(render.SetContentType(render.ContentTypeJSON))
			r.Use(authenticate.New(log, conf.Listen.ApiKey))
			r.Get("/notify", notify.Notify(log, handler.Notifier))
		})
		if handler.Hub != nil {
			r.Get("/ws", func(w http.ResponseWriter, req *http.Request) {
				ws.ServeWs(handler.Hub, log, w, req)
			})
		}
	})

	return router
}

// New serves the API until ctx is done.
func New(ctx context.Context, conf *config.Config, log *slog.Logger, handler Handler) error {

	server := Server{
		conf: conf,
		log:  log.With(sl.Module("api.server")),
	}

	httpLog := slog.NewLogLogger(log.Handler(), slog.LevelError)
	server.httpServer = &http.Server{
		Handler:           NewRouter(conf, log, handler),
		ErrorLog:          httpLog,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverAddress := fmt.Sprintf("%s:%s", conf.Listen.BindIP, conf.Listen.Port)
	listener, err := net.Listen("tcp", serverAddress)
	if err != nil {
		return err
	}

	server.log.Info("starting api server", slog.String("address", serverAddress))

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.httpServer.Shutdown(shutdownCtx); err != nil {
			server.log.Error("server shutdown", sl.Err(err))
		}
	}()

	err = server.httpServer.Serve(listener)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
