package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collections used for bot state.
const (
	DialogStatesCollection = "dialog_states"
	UserProfilesCollection = "user_profiles"
)

type document struct {
	Key       string    `bson:"_id"`
	Data      bson.Raw  `bson:"data"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// SaveDocument upserts doc under key.
func (m *MongoDB) SaveDocument(ctx context.Context, collectionName, key string, doc any) error {
	data, err := bson.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding %s/%s: %w", collectionName, key, err)
	}

	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionName)

	filter := bson.D{{Key: "_id", Value: key}}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "data", Value: bson.Raw(data)},
		{Key: "updated_at", Value: time.Now()},
	}}}
	opts := options.Update().SetUpsert(true)

	_, err = collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("mongodb upsert error: %w", err)
	}
	return nil
}

// LoadDocument decodes the document stored under key into out.
func (m *MongoDB) LoadDocument(ctx context.Context, collectionName, key string, out any) (bool, error) {
	connection, err := m.connect()
	if err != nil {
		return false, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionName)

	var doc document
	err = collection.FindOne(ctx, bson.D{{Key: "_id", Value: key}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, m.findError(err)
	}

	if err = bson.Unmarshal(doc.Data, out); err != nil {
		return false, fmt.Errorf("decoding %s/%s: %w", collectionName, key, err)
	}
	return true, nil
}

// DeleteDocument removes the document stored under key.
func (m *MongoDB) DeleteDocument(ctx context.Context, collectionName, key string) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionName)

	_, err = collection.DeleteOne(ctx, bson.D{{Key: "_id", Value: key}})
	return err
}
