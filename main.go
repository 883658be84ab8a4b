package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ChatBot/bot"
	"ChatBot/bot/chat"
	"ChatBot/bot/chat/reservation"
	"ChatBot/bot/chat/telegram"
	"ChatBot/entity"
	"ChatBot/internal/config"
	repository "ChatBot/internal/database"
	"ChatBot/internal/http-server/api"
	"ChatBot/internal/lib/logger"
	"ChatBot/internal/lib/sl"
	"ChatBot/internal/service/answer"
	"ChatBot/internal/service/notify"
	"ChatBot/internal/ws"
)

func main() {

	configPath := flag.String("conf", "config.yml", "path to config file")
	logPath := flag.String("log", "/var/log/", "path to log file directory")
	flag.Parse()

	conf := config.MustLoad(*configPath)
	lg := logger.SetupLogger(conf.Env, *logPath)

	lg.Info("starting chatbot", slog.String("config", *configPath), slog.String("env", conf.Env))
	lg.Debug("debug messages enabled")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	states, profiles := openStorage(conf, lg)

	workflow := reservation.NewWorkflow(states, profiles, conf.Reservation.LinkURL, lg)
	if conf.Reservation.MaxAttempts > 0 {
		workflow.SetMaxAttempts(conf.Reservation.MaxAttempts)
	}

	var answerer bot.Answerer = answer.Static{Text: conf.OpenAI.Fallback}
	if conf.OpenAI.ApiKey != "" {
		answerer = answer.NewOpenAI(conf.OpenAI.ApiKey, conf.OpenAI.Model, conf.OpenAI.Prompt, conf.OpenAI.Fallback, lg)
		lg.With(
			sl.Secret("openai_key", conf.OpenAI.ApiKey),
			slog.String("model", conf.OpenAI.Model),
		).Info("openai answerer initialized")
	}

	references := chat.NewReferenceStore()
	chatBot := bot.NewChatBot(workflow, references, answerer, lg)
	chatBot.SetGreeting(bot.Greeting{
		Welcome:  conf.Greeting.Welcome,
		Question: conf.Greeting.Question,
	})

	hub := ws.NewHub(lg)
	hub.SetHandler(chatBot)
	chatBot.SetActivityListener(hub)
	go hub.Run(ctx)

	connectors := chat.NewConnectors()
	connectors.Register(ws.ChannelID, hub)
	// replies to other channels are returned in the HTTP response body
	connectors.SetFallback(chat.ConnectorFunc(func(context.Context, *entity.Activity) error { return nil }))

	if conf.Telegram.Enabled {
		tgBot, err := bot.NewTgBot(conf.Telegram.BotName, conf.Telegram.ApiKey, chatBot, lg)
		if err != nil {
			lg.Error("failed to initialize telegram bot", sl.Err(err))
		} else {
			connectors.Register(telegram.ChannelID, tgBot.Connector())
			lg.With(
				slog.String("bot_name", conf.Telegram.BotName),
			).Info("telegram bot initialized")

			go func() {
				if err := tgBot.Start(); err != nil {
					lg.Error("telegram bot error", sl.Err(err))
				}
			}()
			go func() {
				<-ctx.Done()
				tgBot.Stop()
			}()
		}
	}

	if conf.References.TTL > 0 {
		go pruneReferences(ctx, references, conf.References.TTL, lg)
	}

	notifier := notify.NewService(references, connectors, conf.Notify.Message, lg)

	// *** blocking start with http server ***
	err := api.New(ctx, conf, lg, api.Handler{
		Bot:       chatBot,
		Connector: connectors,
		Notifier:  notifier,
		Hub:       hub,
	})
	if err != nil {
		lg.Error("server start", sl.Err(err))
		return
	}
	lg.Info("service stopped")
}

func openStorage(conf *config.Config, lg *slog.Logger) (chat.Storage[chat.DialogState[reservation.Values]], chat.Storage[entity.UserProfile]) {
	var repo chat.DocumentRepository

	switch conf.Storage.Driver {
	case config.StorageMongo:
		db, err := repository.NewMongoClient(conf, lg)
		if err != nil {
			lg.Error("mongo client", sl.Err(err))
			break
		}
		repo = db
		lg.With(
			slog.String("host", conf.Mongo.Host),
			slog.String("port", conf.Mongo.Port),
			slog.String("user", conf.Mongo.User),
			slog.String("database", conf.Mongo.Database),
		).Info("mongo client initialized")
	case config.StorageSQLite:
		db, err := repository.NewSQLiteDB(conf.Storage.SQLitePath, lg)
		if err != nil {
			lg.Error("sqlite store", sl.Err(err))
			break
		}
		repo = db
	}

	if repo == nil {
		lg.Info("using in-memory state storage")
		return chat.NewMemoryStorage[chat.DialogState[reservation.Values]](), chat.NewMemoryStorage[entity.UserProfile]()
	}
	return chat.NewDocumentStorage[chat.DialogState[reservation.Values]](repo, repository.DialogStatesCollection),
		chat.NewDocumentStorage[entity.UserProfile](repo, repository.UserProfilesCollection)
}

func pruneReferences(ctx context.Context, references *chat.ReferenceStore, ttl time.Duration, lg *slog.Logger) {
	ticker := time.NewTicker(max(ttl/2, time.Second))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := references.Prune(ttl); n > 0 {
				lg.Debug("conversation references pruned", slog.Int("removed", n))
			}
		}
	}
}
