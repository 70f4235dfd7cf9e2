package auth

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStore_CreateAndGet(t *testing.T) {
	clock := clockwork.NewFakeClock()
	store := NewSessionStore(10, time.Hour, clock)

	session := store.Create("student", "Mozilla/5.0")
	require.NotEmpty(t, session.ID)
	assert.Equal(t, clock.Now().UTC().Add(time.Hour), session.ExpiresAt)

	got, ok := store.Get(session.ID)
	require.True(t, ok)
	assert.Equal(t, "student", got.Identity)
	assert.Equal(t, "Mozilla/5.0", got.UserAgent)
	assert.Equal(t, 1, store.Count())

	_, ok = store.Get("")
	assert.False(t, ok)
	_, ok = store.Get("missing")
	assert.False(t, ok)
}

func TestSessionStore_ExpiredIsAbsent(t *testing.T) {
	clock := clockwork.NewFakeClock()
	store := NewSessionStore(10, time.Hour, clock)
	session := store.Create("student", "")

	clock.Advance(59 * time.Minute)
	_, ok := store.Get(session.ID)
	assert.True(t, ok)

	clock.Advance(2 * time.Minute)
	assert.Equal(t, 0, store.Count())
	_, ok = store.Get(session.ID)
	assert.False(t, ok)
}

func TestSessionStore_Delete(t *testing.T) {
	store := NewSessionStore(0, time.Hour, nil)
	a := store.Create("student", "")
	b := store.Create("student", "")
	assert.NotEqual(t, a.ID, b.ID)

	assert.True(t, store.Delete(a.ID))
	assert.False(t, store.Delete(a.ID))
	_, ok := store.Get(b.ID)
	assert.True(t, ok)
	assert.Equal(t, 1, store.Count())
}
