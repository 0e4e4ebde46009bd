package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	st, err := NewStore(StoreTypeMemory)
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()

	_, err = st.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, st.Set(ctx, "k", []byte("v1")))
	val, err := st.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("v1"), val)

	// Total overwrite, no merge.
	require.NoError(t, st.Set(ctx, "k", []byte("v2")))
	val, err = st.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("v2"), val)

	require.NoError(t, st.Delete(ctx, "k"))
	_, err = st.Get(ctx, "k")
	require.ErrorIs(t, err, ErrNotFound)

	// Deleting an absent key is fine.
	require.NoError(t, st.Delete(ctx, "k"))
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	st, err := NewStore(StoreTypeMemory)
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	original := []byte("value")
	require.NoError(t, st.Set(ctx, "k", original))
	original[0] = 'X'

	val, err := st.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("value"), val)
}

func TestFactoryRejectsUnknownType(t *testing.T) {
	_, err := NewStore(StoreType("bogus"))
	require.ErrorIs(t, err, ErrInvalidStoreType)
}

func TestFactoryRequiresRedisClient(t *testing.T) {
	_, err := NewStore(StoreTypeRedis)
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestDuckDBStoreRoundTrip(t *testing.T) {
	st, err := NewStore(StoreTypeDuckDB, WithDuckDBPath(filepath.Join(t.TempDir(), "kv.db")))
	if err != nil {
		t.Skipf("Skipping test, DuckDB unavailable: %v", err)
	}
	defer st.Close()

	ctx := context.Background()

	_, err = st.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, st.Set(ctx, "k", []byte("v1")))
	require.NoError(t, st.Set(ctx, "k", []byte("v2")))
	val, err := st.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("v2"), val)

	require.NoError(t, st.Delete(ctx, "k"))
	_, err = st.Get(ctx, "k")
	require.ErrorIs(t, err, ErrNotFound)
}
