package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

type cached[T any] struct {
	value    *T
	snapshot []byte
	loaded   bool
	deleted  bool
}

// TurnState caches documents of one storage for the duration of a turn.
// Reads go to storage once per key; writes are held until the turn is flushed,
// so a failed turn leaves storage untouched.
type TurnState[T any] struct {
	storage Storage[T]
	entries map[string]*cached[T]
	keys    []string
}

// Bind returns the turn's cache for storage, creating it on first use.
func Bind[T any](tc *TurnContext, storage Storage[T]) *TurnState[T] {
	f := tc.bind(storage, func() flusher {
		return &TurnState[T]{
			storage: storage,
			entries: make(map[string]*cached[T]),
		}
	})
	return f.(*TurnState[T])
}

// Get returns the document stored under key, or nil if there is none.
// The returned pointer may be modified in place; changes are saved on flush.
func (s *TurnState[T]) Get(ctx context.Context, key string) (*T, error) {
	if e, ok := s.entries[key]; ok {
		if e.deleted {
			return nil, nil
		}
		return e.value, nil
	}

	value, err := s.storage.Load(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", key, err)
	}
	e := &cached[T]{value: value, loaded: true}
	if value != nil {
		if e.snapshot, err = json.Marshal(value); err != nil {
			return nil, fmt.Errorf("snapshot %s: %w", key, err)
		}
	}
	s.track(key, e)
	return value, nil
}

// GetOrCreate returns the document under key, creating it with create when absent.
func (s *TurnState[T]) GetOrCreate(ctx context.Context, key string, create func() *T) (*T, error) {
	value, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if value == nil {
		value = create()
		s.Set(key, value)
	}
	return value, nil
}

// Set replaces the document under key.
func (s *TurnState[T]) Set(key string, value *T) {
	e, ok := s.entries[key]
	if !ok {
		e = &cached[T]{}
		s.track(key, e)
	}
	e.value = value
	e.deleted = false
}

// Delete removes the document under key when the turn is flushed.
func (s *TurnState[T]) Delete(key string) {
	e, ok := s.entries[key]
	if !ok {
		e = &cached[T]{}
		s.track(key, e)
	}
	e.value = nil
	e.deleted = true
}

func (s *TurnState[T]) track(key string, e *cached[T]) {
	s.entries[key] = e
	s.keys = append(s.keys, key)
}

func (s *TurnState[T]) flush(ctx context.Context) error {
	for _, key := range s.keys {
		e := s.entries[key]
		if e.deleted {
			if e.loaded && e.snapshot == nil {
				// never stored, nothing to remove
				continue
			}
			if err := s.storage.Delete(ctx, key); err != nil {
				return fmt.Errorf("deleting %s: %w", key, err)
			}
			continue
		}
		if e.value == nil {
			continue
		}
		data, err := json.Marshal(e.value)
		if err != nil {
			return fmt.Errorf("encoding %s: %w", key, err)
		}
		if bytes.Equal(data, e.snapshot) {
			continue
		}
		if err := s.storage.Save(ctx, key, e.value); err != nil {
			return fmt.Errorf("saving %s: %w", key, err)
		}
	}
	return nil
}
