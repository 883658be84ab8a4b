package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// DocumentRepository defines the database operations for keyed state documents.
// LoadDocument decodes into out and reports whether a document was found.
type DocumentRepository interface {
	SaveDocument(ctx context.Context, collection, key string, doc any) error
	LoadDocument(ctx context.Context, collection, key string, out any) (bool, error)
	DeleteDocument(ctx context.Context, collection, key string) error
}

// DocumentStorage adapts a database repository to the Storage interface.
type DocumentStorage[T any] struct {
	repo       DocumentRepository
	collection string
}

// NewDocumentStorage creates a storage of T documents kept in collection.
func NewDocumentStorage[T any](repo DocumentRepository, collection string) *DocumentStorage[T] {
	return &DocumentStorage[T]{repo: repo, collection: collection}
}

func (s *DocumentStorage[T]) Save(ctx context.Context, key string, value *T) error {
	return s.repo.SaveDocument(ctx, s.collection, key, value)
}

func (s *DocumentStorage[T]) Load(ctx context.Context, key string) (*T, error) {
	var value T
	found, err := s.repo.LoadDocument(ctx, s.collection, key, &value)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &value, nil
}

func (s *DocumentStorage[T]) Delete(ctx context.Context, key string) error {
	return s.repo.DeleteDocument(ctx, s.collection, key)
}

// MemoryStorage keeps encoded documents in process memory.
// Values are copied on the way in and out, so callers never share state with the store.
type MemoryStorage[T any] struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

func NewMemoryStorage[T any]() *MemoryStorage[T] {
	return &MemoryStorage[T]{docs: make(map[string][]byte)}
}

func (s *MemoryStorage[T]) Save(ctx context.Context, key string, value *T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	s.mu.Lock()
	s.docs[key] = data
	s.mu.Unlock()
	return nil
}

func (s *MemoryStorage[T]) Load(ctx context.Context, key string) (*T, error) {
	s.mu.RLock()
	data, ok := s.docs[key]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", key, err)
	}
	return &value, nil
}

func (s *MemoryStorage[T]) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	delete(s.docs, key)
	s.mu.Unlock()
	return nil
}

// Len returns the number of stored documents.
func (s *MemoryStorage[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}
