package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, ttl time.Duration) (*SelectionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSelectionStore(client, ttl), mr
}

func TestSelectionStore_PutGet(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t, 5*time.Minute)

	require.NoError(t, store.Put(ctx, "1234", 7))

	raw, err := mr.Get("session:1234")
	require.NoError(t, err)
	assert.Equal(t, "7", raw)
	assert.Equal(t, 5*time.Minute, mr.TTL("session:1234"))

	adID, err := store.Get(ctx, "1234")
	require.NoError(t, err)
	assert.Equal(t, int64(7), adID)
}

func TestSelectionStore_Expires(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t, 5*time.Minute)

	require.NoError(t, store.Put(ctx, "s1", 3))
	mr.FastForward(5*time.Minute + time.Second)

	_, err := store.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestSelectionStore_Overwrite(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t, time.Minute)

	require.NoError(t, store.Put(ctx, "s1", 3))
	require.NoError(t, store.Put(ctx, "s1", 4))

	adID, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, int64(4), adID)
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := Connect(context.Background(), mr.Addr(), time.Second)
	require.NoError(t, err)
	defer client.Close()

	client2, err := Connect(context.Background(), "redis://"+mr.Addr()+"/0", time.Second)
	require.NoError(t, err)
	defer client2.Close()

	_, err = Connect(context.Background(), "127.0.0.1:1", 100*time.Millisecond)
	assert.Error(t, err)
}
