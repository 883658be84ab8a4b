package chat

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"ChatBot/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testReference(userID, conversationID string) entity.ConversationReference {
	return entity.ConversationReference{
		ActivityID:   "act-" + userID,
		User:         entity.ChannelAccount{ID: userID},
		Bot:          entity.ChannelAccount{ID: "bot"},
		Conversation: entity.ConversationAccount{ID: conversationID},
		ChannelID:    "test",
		ServiceURL:   "https://example.org",
	}
}

func TestReferenceStore_UpsertIsIdempotent(t *testing.T) {
	store := NewReferenceStore()
	ref := testReference("u1", "c1")

	store.Upsert("u1", ref)
	store.Upsert("u1", ref)

	require.Equal(t, 1, store.Len())
	got, ok := store.Get("u1")
	require.True(t, ok)
	assert.Equal(t, ref, got)
	assert.Equal(t, []entity.ConversationReference{ref}, store.All())
}

func TestReferenceStore_UpsertRefreshesPruneTime(t *testing.T) {
	store := NewReferenceStore()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	ref := testReference("u1", "c1")

	store.now = func() time.Time { return now.Add(-2 * time.Hour) }
	store.Upsert("u1", ref)
	store.now = func() time.Time { return now }
	store.Upsert("u1", ref)

	assert.Equal(t, 0, store.Prune(time.Hour))
	got, ok := store.Get("u1")
	require.True(t, ok)
	assert.Equal(t, ref, got)
}

func TestReferenceStore_UpsertReplaces(t *testing.T) {
	store := NewReferenceStore()
	store.Upsert("u1", testReference("u1", "c1"))
	store.Upsert("u1", testReference("u1", "c2"))

	got, ok := store.Get("u1")
	require.True(t, ok)
	assert.Equal(t, "c2", got.Conversation.ID)
	assert.Equal(t, 1, store.Len())
}

func TestReferenceStore_GetMissing(t *testing.T) {
	store := NewReferenceStore()
	_, ok := store.Get("nobody")
	assert.False(t, ok)
	assert.Empty(t, store.All())
}

func TestReferenceStore_ConcurrentUpserts(t *testing.T) {
	store := NewReferenceStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			userID := fmt.Sprintf("u%d", i%10)
			store.Upsert(userID, testReference(userID, fmt.Sprintf("c%d", i)))
			_ = store.All()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, store.Len())
	assert.Len(t, store.All(), 10)
}

func TestReferenceStore_Prune(t *testing.T) {
	store := NewReferenceStore()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	store.now = func() time.Time { return now.Add(-2 * time.Hour) }
	store.Upsert("old", testReference("old", "c1"))
	store.now = func() time.Time { return now }
	store.Upsert("fresh", testReference("fresh", "c2"))

	removed := store.Prune(time.Hour)

	assert.Equal(t, 1, removed)
	_, ok := store.Get("old")
	assert.False(t, ok)
	_, ok = store.Get("fresh")
	assert.True(t, ok)
}
