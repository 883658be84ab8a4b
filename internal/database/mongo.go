package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"ChatBot/internal/config"
	"ChatBot/internal/lib/sl"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoDB struct {
	ctx           context.Context
	clientOptions *options.ClientOptions
	database      string
	log           *slog.Logger
}

func NewMongoClient(conf *config.Config, logger *slog.Logger) (*MongoDB, error) {
	if conf.Mongo.Host == "" {
		return nil, fmt.Errorf("mongo host not configured")
	}
	connectionUri := fmt.Sprintf("mongodb://%s:%s", conf.Mongo.Host, conf.Mongo.Port)
	return NewMongoClientURI(connectionUri, conf.Mongo.User, conf.Mongo.Password, conf.Mongo.Database, logger), nil
}

// NewMongoClientURI creates a client for an explicit connection string.
func NewMongoClientURI(uri, user, password, database string, logger *slog.Logger) *MongoDB {
	clientOptions := options.Client().ApplyURI(uri)
	if user != "" {
		clientOptions.SetAuth(options.Credential{
			Username:   user,
			Password:   password,
			AuthSource: database,
		})
	}
	return &MongoDB{
		ctx:           context.Background(),
		clientOptions: clientOptions,
		database:      database,
		log:           logger.With(sl.Module("mongodb")),
	}
}

func (m *MongoDB) connect() (*mongo.Client, error) {
	connection, err := mongo.Connect(m.ctx, m.clientOptions)
	if err != nil {
		return nil, fmt.Errorf("mongodb connect error: %w", err)
	}
	return connection, nil
}

func (m *MongoDB) disconnect(connection *mongo.Client) {
	_ = connection.Disconnect(m.ctx)
}

func (m *MongoDB) findError(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil
	}
	return fmt.Errorf("mongodb find error: %w", err)
}

// Ping checks that the server is reachable.
func (m *MongoDB) Ping(ctx context.Context) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)
	return connection.Ping(ctx, nil)
}
