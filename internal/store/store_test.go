package store

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/kalitiri-backend/internal/engine"
)

func sampleSnapshot(t *testing.T, id string) Snapshot {
	t.Helper()
	cfg, err := engine.ConfigFor(4, 0)
	require.NoError(t, err)
	s, err := engine.NewSession(id, cfg, []engine.PlayerID{"a", "b", "c", "d"}, map[engine.PlayerID]string{"a": "Asha"})
	require.NoError(t, err)
	return Snapshot{SessionID: id, Phase: s.Phase, Version: 3, State: s, SavedAt: time.Now().UTC().Truncate(time.Millisecond)}
}

// exerciseStore is shared by every backend.
func exerciseStore(t *testing.T, s Store) {
	ctx := context.Background()
	id := "store-test-" + strconv.FormatInt(time.Now().UnixNano(), 36)
	t.Cleanup(func() { _ = s.Delete(ctx, id) })

	_, err := s.Get(ctx, id)
	require.ErrorIs(t, err, ErrNotFound)

	snap := sampleSnapshot(t, id)
	require.NoError(t, s.Put(ctx, snap))

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, snap.SessionID, got.SessionID)
	assert.Equal(t, engine.PhaseBidding, got.Phase)
	assert.Equal(t, 3, got.Version)
	assert.Equal(t, snap.State.Hands, got.State.Hands)
	assert.Equal(t, snap.State.Config, got.State.Config)
	assert.Equal(t, "Asha", got.State.Names["a"])

	snap.Version = 4
	require.NoError(t, s.Put(ctx, snap))
	got, err = s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Version)

	require.NoError(t, s.Delete(ctx, id))
	_, err = s.Get(ctx, id)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStore_CopiesOnPut(t *testing.T) {
	m := NewMemoryStore()
	snap := sampleSnapshot(t, "g1")
	require.NoError(t, m.Put(context.Background(), snap))

	snap.State.Hands["a"][0] = engine.Card{Suit: engine.Clubs, Rank: "A", DeckIndex: 1}
	got, err := m.Get(context.Background(), "g1")
	require.NoError(t, err)
	assert.NotEqual(t, snap.State.Hands["a"][0], got.State.Hands["a"][0])
	assert.Equal(t, 1, m.Len())
}

// Integration-style test: runs only if REDIS_ADDR is set.
func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set; skipping integration test")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: os.Getenv("REDIS_PASSWORD")})
	t.Cleanup(func() { _ = rdb.Close() })
	exerciseStore(t, NewRedisStore(rdb, time.Minute))
}

// Integration-style test: runs only if DATABASE_URL is set.
func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set; skipping integration test")
	}
	s, err := OpenPostgres(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	exerciseStore(t, s)
}
