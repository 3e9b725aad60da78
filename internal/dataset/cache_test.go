package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheHitOnUnchangedBytes(t *testing.T) {
	cache := NewCache()

	first, hit, err := cache.Load([]byte(sampleCSV), "test.csv")
	require.NoError(t, err)
	assert.False(t, hit)

	second, hit, err := cache.Load([]byte(sampleCSV), "test.csv")
	require.NoError(t, err)
	assert.True(t, hit)

	// Hit returns the same normalized table, not a re-parse.
	assert.Same(t, first, second)
}

func TestCacheMissOnChangedBytes(t *testing.T) {
	cache := NewCache()

	_, _, err := cache.Load([]byte(sampleCSV), "test.csv")
	require.NoError(t, err)

	changed := sampleCSV + "New post,news,70,10,1\n"

	table, hit, err := cache.Load([]byte(changed), "test.csv")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 4, table.Len())
}

func TestCacheDoesNotStoreFailedLoads(t *testing.T) {
	cache := NewCache()

	_, _, err := cache.Load([]byte("title,subreddit\n"), "broken.csv")
	require.Error(t, err)

	// Same bytes fail the same way on retry.
	_, hit, err := cache.Load([]byte("title,subreddit\n"), "broken.csv")
	require.Error(t, err)
	assert.False(t, hit)
}

func TestCacheInvalidate(t *testing.T) {
	cache := NewCache()

	_, _, err := cache.Load([]byte(sampleCSV), "test.csv")
	require.NoError(t, err)

	cache.Invalidate()

	_, hit, err := cache.Load([]byte(sampleCSV), "test.csv")
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestCacheLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trending_analysis.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o600))

	cache := NewCache()

	table, hit, err := cache.LoadFile(path)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 3, table.Len())
	assert.Equal(t, path, table.SourceLabel)

	_, hit, err = cache.LoadFile(path)
	require.NoError(t, err)
	assert.True(t, hit)
}

func TestCacheLoadFileMissing(t *testing.T) {
	cache := NewCache()

	_, _, err := cache.LoadFile(filepath.Join(t.TempDir(), "absent.csv"))
	assert.Error(t, err)
}
