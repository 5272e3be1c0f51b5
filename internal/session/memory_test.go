// internal/session/memory_test.go
package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopping-agent/internal/models"
)

func TestMemoryStore_PutGet(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	defer store.Close()

	state := models.NewConversationState("s-1")
	state.Append(models.RoleUser, "hello")

	require.NoError(t, store.Put(context.Background(), state))

	got, found, err := store.Get(context.Background(), "s-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "s-1", got.SessionID)
	assert.Len(t, got.Transcript, 1)
}

func TestMemoryStore_MissingSession(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	defer store.Close()

	_, found, err := store.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryStore_ExpiredSessionBehavesLikeAbsent(t *testing.T) {
	store := NewMemoryStore(30 * time.Minute)
	defer store.Close()

	current := time.Now()
	store.now = func() time.Time { return current }

	require.NoError(t, store.Put(context.Background(), models.NewConversationState("s-1")))

	current = current.Add(31 * time.Minute)

	_, found, err := store.Get(context.Background(), "s-1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryStore_PutRefreshesTTL(t *testing.T) {
	store := NewMemoryStore(30 * time.Minute)
	defer store.Close()

	current := time.Now()
	store.now = func() time.Time { return current }

	require.NoError(t, store.Put(context.Background(), models.NewConversationState("s-1")))

	current = current.Add(20 * time.Minute)
	require.NoError(t, store.Put(context.Background(), models.NewConversationState("s-1")))

	current = current.Add(20 * time.Minute)

	_, found, err := store.Get(context.Background(), "s-1")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestMemoryStore_Delete(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	defer store.Close()

	require.NoError(t, store.Put(context.Background(), models.NewConversationState("s-1")))
	require.NoError(t, store.Delete(context.Background(), "s-1"))

	_, found, err := store.Get(context.Background(), "s-1")
	require.NoError(t, err)
	assert.False(t, found)
}
