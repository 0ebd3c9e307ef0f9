package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/everafterhq/everafter/internal/database/testutil"
)

func newTestStore(t *testing.T) (*DatabaseStore, *time.Time) {
	db := testutil.MustOpenTestDB(t)
	store := NewDatabaseStore(db)

	current := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }
	return store, &current
}

func TestDatabaseStoreIncrement(t *testing.T) {
	store, current := newTestStore(t)
	ctx := context.Background()

	count, _, err := store.IncrementWithTTL(ctx, "rate:1.2.3.4", time.Minute)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)

	count, _, err = store.IncrementWithTTL(ctx, "rate:1.2.3.4", time.Minute)
	require.NoError(t, err)
	require.EqualValues(t, 2, count)

	// A new window starts once the previous one expires.
	*current = current.Add(2 * time.Minute)
	count, _, err = store.IncrementWithTTL(ctx, "rate:1.2.3.4", time.Minute)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}

func TestDatabaseStoreSetGetDelete(t *testing.T) {
	store, current := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Minute))

	value, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("v"), value)

	*current = current.Add(2 * time.Minute)
	_, found, err = store.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, store.Delete(ctx, "k"))
	require.NoError(t, store.Delete(ctx))
}

func TestDatabaseStoreCleanupExpired(t *testing.T) {
	store, current := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "stale", []byte("v"), time.Minute))
	require.NoError(t, store.Set(ctx, "fresh", []byte("v"), time.Hour))

	*current = current.Add(30 * time.Minute)
	removed, err := store.CleanupExpired(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)

	_, found, err := store.Get(ctx, "fresh")
	require.NoError(t, err)
	require.True(t, found)
}

func TestCounterCodec(t *testing.T) {
	require.Equal(t, int64(0), decodeCounter(encodeCounter(0)))
	require.Equal(t, int64(42), decodeCounter(encodeCounter(42)))
	require.Equal(t, int64(0), decodeCounter([]byte("junk")))
}
