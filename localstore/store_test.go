package localstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()

	_, ok, err := store.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set("k", []byte("v1")))
	got, ok, err := store.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v1"), got)

	// Overwrite.
	require.NoError(t, store.Set("k", []byte("v2")))
	got, _, err = store.Get("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	store := NewMemoryStore()

	value := []byte("original")
	require.NoError(t, store.Set("k", value))
	value[0] = 'X'

	got, _, err := store.Get("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), got)

	// Mutating a returned value must not bleed into the store either.
	got[0] = 'Y'
	again, _, err := store.Get("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), again)
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.db")

	store, err := OpenSQLiteStore(path)
	require.NoError(t, err)
	defer store.Close()

	_, ok, err := store.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set("k", []byte(`[{"minute":12}]`)))
	require.NoError(t, store.Set("k", []byte(`[{"minute":12},{"minute":45}]`)))

	got, ok, err := store.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte(`[{"minute":12},{"minute":45}]`), got)
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.db")

	store, err := OpenSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Set("k", []byte("durable")))
	require.NoError(t, store.Close())

	reopened, err := OpenSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, ok, err := reopened.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("durable"), got)
}

func TestOpenSQLiteStore_EmptyPath(t *testing.T) {
	_, err := OpenSQLiteStore("")
	assert.Error(t, err)
}
