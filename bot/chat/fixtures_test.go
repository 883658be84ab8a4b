package chat

import (
	"context"
	"errors"
	"sync"

	"ChatBot/entity"
)

// countingStorage wraps a memory storage and records write calls.
type countingStorage[T any] struct {
	*MemoryStorage[T]
	mu      sync.Mutex
	saves   int
	deletes int
	failAll error
}

func newCountingStorage[T any]() *countingStorage[T] {
	return &countingStorage[T]{MemoryStorage: NewMemoryStorage[T]()}
}

func (s *countingStorage[T]) Load(ctx context.Context, key string) (*T, error) {
	if s.failAll != nil {
		return nil, s.failAll
	}
	return s.MemoryStorage.Load(ctx, key)
}

func (s *countingStorage[T]) Save(ctx context.Context, key string, value *T) error {
	s.mu.Lock()
	s.saves++
	s.mu.Unlock()
	if s.failAll != nil {
		return s.failAll
	}
	return s.MemoryStorage.Save(ctx, key, value)
}

func (s *countingStorage[T]) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	s.deletes++
	s.mu.Unlock()
	return s.MemoryStorage.Delete(ctx, key)
}

var errStorageDown = errors.New("storage down")

// recordingConnector collects delivered activities.
type recordingConnector struct {
	mu   sync.Mutex
	sent []*entity.Activity
	err  error
}

func (c *recordingConnector) Send(_ context.Context, activity *entity.Activity) error {
	if c.err != nil {
		return c.err
	}
	c.mu.Lock()
	c.sent = append(c.sent, activity)
	c.mu.Unlock()
	return nil
}

func userMessage(text string) *entity.Activity {
	return &entity.Activity{
		Type:         entity.ActivityMessage,
		ID:           "in-1",
		ChannelID:    "test",
		From:         entity.ChannelAccount{ID: "user-1", Name: "User"},
		Recipient:    entity.ChannelAccount{ID: "bot-1", Name: "Bot"},
		Conversation: entity.ConversationAccount{ID: "conv-1"},
		Text:         text,
	}
}

func texts(activities []*entity.Activity) []string {
	out := make([]string, len(activities))
	for i, a := range activities {
		out[i] = a.Text
	}
	return out
}
