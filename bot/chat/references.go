package chat

import (
	"sync"
	"time"

	"ChatBot/entity"
)

// ReferenceStore maps a user id to the latest conversation reference seen for that user.
// It is safe for concurrent use.
type ReferenceStore struct {
	mu   sync.RWMutex
	refs map[string]entity.ConversationReference
	seen map[string]time.Time
	now  func() time.Time
}

func NewReferenceStore() *ReferenceStore {
	return &ReferenceStore{
		refs: make(map[string]entity.ConversationReference),
		seen: make(map[string]time.Time),
		now:  time.Now,
	}
}

// Upsert replaces the reference stored for userID. The last write wins and the
// stored value is exactly ref; the time of the write is kept apart for Prune.
func (s *ReferenceStore) Upsert(userID string, ref entity.ConversationReference) {
	now := s.now()
	s.mu.Lock()
	s.refs[userID] = ref
	s.seen[userID] = now
	s.mu.Unlock()
}

// Get returns the reference stored for userID.
func (s *ReferenceStore) Get(userID string) (entity.ConversationReference, bool) {
	s.mu.RLock()
	ref, ok := s.refs[userID]
	s.mu.RUnlock()
	return ref, ok
}

// All returns a snapshot of every stored reference.
func (s *ReferenceStore) All() []entity.ConversationReference {
	s.mu.RLock()
	defer s.mu.RUnlock()
	refs := make([]entity.ConversationReference, 0, len(s.refs))
	for _, ref := range s.refs {
		refs = append(refs, ref)
	}
	return refs
}

func (s *ReferenceStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.refs)
}

// Prune removes references not refreshed within maxAge and returns how many were removed.
func (s *ReferenceStore) Prune(maxAge time.Duration) int {
	cutoff := s.now().Add(-maxAge)
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for userID, seen := range s.seen {
		if seen.Before(cutoff) {
			delete(s.refs, userID)
			delete(s.seen, userID)
			removed++
		}
	}
	return removed
}
