package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "storage.json")
	c := NewFileCache(path)

	_, ok, err := c.Get(TokenKey)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(TokenKey, "tok-1"))
	require.NoError(t, c.Set("theme", "dark"))

	reopened := NewFileCache(path)
	v, ok, err := reopened.Get(TokenKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok-1", v)

	require.NoError(t, reopened.Remove(TokenKey))
	require.NoError(t, reopened.Remove(TokenKey))
	_, ok, err = c.Get(TokenKey)
	require.NoError(t, err)
	assert.False(t, ok)

	v, _, err = c.Get("theme")
	require.NoError(t, err)
	assert.Equal(t, "dark", v)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFileCache_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, _, err := NewFileCache(path).Get(TokenKey)
	assert.Error(t, err)
}
