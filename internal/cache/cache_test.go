package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageCacheBasic(t *testing.T) {
	c := New(0)
	defer c.Stop()

	_, found := c.Get("guide.md")
	assert.False(t, found, "expected cache miss for non-existent key")

	c.Put("guide.md", NewEntry([]byte("<html></html>"), nil))

	entry, found := c.Get("guide.md")
	require.True(t, found)
	assert.Equal(t, "<html></html>", string(entry.Body))
	assert.True(t, entry.ExpiresAt.IsZero())

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestPageCacheTTL(t *testing.T) {
	c := New(50 * time.Millisecond)
	defer c.Stop()

	c.Put("short", NewEntry([]byte("x"), nil))

	_, found := c.Get("short")
	assert.True(t, found, "expected cache hit immediately after put")

	time.Sleep(100 * time.Millisecond)

	_, found = c.Get("short")
	assert.False(t, found, "expected cache miss after TTL expired")
	assert.Equal(t, 0, c.Len())
}

func TestPageCacheInvalidate(t *testing.T) {
	c := New(time.Minute)
	defer c.Stop()

	c.Put("a.md", NewEntry([]byte("a"), nil))
	c.Put("b.md", NewEntry([]byte("b"), nil))
	c.Put("c.md", NewEntry([]byte("c"), nil))
	assert.Equal(t, 3, c.Len())

	c.Invalidate("a.md")
	_, found := c.Get("a.md")
	assert.False(t, found)
	_, found = c.Get("b.md")
	assert.True(t, found)

	c.InvalidateAll()
	assert.Equal(t, 0, c.Len())
}

func TestEntryETag(t *testing.T) {
	a := NewEntry([]byte("one"), nil)
	b := NewEntry([]byte("one"), nil)
	c := NewEntry([]byte("two"), nil)

	assert.Equal(t, a.ETag, b.ETag)
	assert.NotEqual(t, a.ETag, c.ETag)
	assert.Len(t, a.ETag, 18) // 16 hex digits plus quotes
}

func TestEntryFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.md")
	require.NoError(t, os.WriteFile(path, []byte("# One\n"), 0644))
	info, err := os.Stat(path)
	require.NoError(t, err)

	entry := NewEntry([]byte("page"), info)
	assert.True(t, entry.Fresh(info))
	assert.False(t, entry.Fresh(nil))

	require.NoError(t, os.WriteFile(path, []byte("# One, edited\n"), 0644))
	changed, err := os.Stat(path)
	require.NoError(t, err)
	assert.False(t, entry.Fresh(changed))
}

func TestEntryIsExpired(t *testing.T) {
	entry := &Entry{}
	assert.False(t, entry.IsExpired(), "zero expiry never expires")

	entry.ExpiresAt = time.Now().Add(time.Minute)
	assert.False(t, entry.IsExpired())

	entry.ExpiresAt = time.Now().Add(-time.Minute)
	assert.True(t, entry.IsExpired())
}

func TestPageCacheStopIdempotent(t *testing.T) {
	c := New(0)
	c.Stop()
	c.Stop()
	c.Stop()
}
