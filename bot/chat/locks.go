package chat

import (
	"context"
	"sync"
)

// ConversationLocks serializes turns that share a key, so one conversation
// never has two turns loading and saving its state at the same time.
type ConversationLocks struct {
	mutex sync.Mutex
	locks map[string]*conversationLock
}

type conversationLock struct {
	held    chan struct{}
	waiters int
}

func NewConversationLocks() *ConversationLocks {
	return &ConversationLocks{locks: make(map[string]*conversationLock)}
}

// Lock blocks until key is free or ctx is done.
func (l *ConversationLocks) Lock(ctx context.Context, key string) error {
	l.mutex.Lock()
	lock, exists := l.locks[key]
	if !exists {
		lock = &conversationLock{held: make(chan struct{}, 1)}
		l.locks[key] = lock
	}
	lock.waiters++
	l.mutex.Unlock()

	select {
	case lock.held <- struct{}{}:
		return nil
	case <-ctx.Done():
		l.mutex.Lock()
		l.release(key, lock)
		l.mutex.Unlock()
		return ctx.Err()
	}
}

// Unlock frees key for the next waiting turn.
func (l *ConversationLocks) Unlock(key string) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	lock, exists := l.locks[key]
	if !exists {
		return
	}
	<-lock.held
	l.release(key, lock)
}

// release drops one waiter and forgets the key once nobody uses it; the caller holds the mutex.
func (l *ConversationLocks) release(key string, lock *conversationLock) {
	lock.waiters--
	if lock.waiters == 0 {
		delete(l.locks, key)
	}
}

func (l *ConversationLocks) len() int {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return len(l.locks)
}
