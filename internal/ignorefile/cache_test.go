package ignorefile

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_ReusesLoadedSet(t *testing.T) {
	// Given: an ignore file
	path := filepath.Join(t.TempDir(), DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte("node_modules\n"), 0o644))

	cache, err := NewCache(4, nil)
	require.NoError(t, err)

	// When: loading twice
	first, _, err := cache.Get(path)
	require.NoError(t, err)
	second, _, err := cache.Get(path)
	require.NoError(t, err)

	// Then: the same compiled set is returned
	assert.Same(t, first, second)
	assert.Equal(t, 1, cache.Len())
}

func TestCache_ReloadsChangedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte("a\n"), 0o644))

	cache, err := NewCache(4, nil)
	require.NoError(t, err)

	first, _, err := cache.Get(path)
	require.NoError(t, err)
	require.Equal(t, 1, first.Len())

	// When: the file changes size and modification time
	require.NoError(t, os.WriteFile(path, []byte("a\nb\n"), 0o644))
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))

	second, _, err := cache.Get(path)
	require.NoError(t, err)

	// Then: the new rules are compiled
	assert.NotSame(t, first, second)
	assert.Equal(t, 2, second.Len())
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	dir := t.TempDir()
	cache, err := NewCache(2, nil)
	require.NoError(t, err)

	for _, name := range []string{"a", "b", "c"} {
		sub := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(sub, 0o755))
		path := filepath.Join(sub, DefaultFileName)
		require.NoError(t, os.WriteFile(path, []byte(name+"\n"), 0o644))
		_, _, err := cache.Get(path)
		require.NoError(t, err)
	}

	assert.Equal(t, 2, cache.Len())
}

func TestCache_MissingFile(t *testing.T) {
	cache, err := NewCache(0, nil)
	require.NoError(t, err)

	_, _, err = cache.Get(filepath.Join(t.TempDir(), DefaultFileName))
	assert.Error(t, err)
	assert.Equal(t, 0, cache.Len())
}

func TestCache_Purge(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte("a\n"), 0o644))

	cache, err := NewCache(4, nil)
	require.NoError(t, err)
	_, _, err = cache.Get(path)
	require.NoError(t, err)

	cache.Purge()
	assert.Equal(t, 0, cache.Len())
}
