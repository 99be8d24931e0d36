//go:build linux || darwin

package flagstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestXattrStore_WritesDropboxAttribute(t *testing.T) {
	xs, ok := xattrIfSupported(t)
	if !ok {
		t.Skip("filesystem does not support user extended attributes")
	}

	// Given: a file flagged through the store
	path := filepath.Join(t.TempDir(), "build")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	require.NoError(t, xs.Set(context.Background(), path))

	// Then: the raw attribute holds "1"
	buf := make([]byte, 8)
	n, err := unix.Getxattr(path, DefaultAttribute, buf)
	require.NoError(t, err)
	assert.Equal(t, "1", string(buf[:n]))
}

func TestXattrStore_QueryIgnoresValue(t *testing.T) {
	xs, ok := xattrIfSupported(t)
	if !ok {
		t.Skip("filesystem does not support user extended attributes")
	}

	// Given: the attribute set by another tool with a different value
	path := filepath.Join(t.TempDir(), "f")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	require.NoError(t, unix.Setxattr(path, DefaultAttribute, []byte("true"), 0))

	// Then: presence alone counts as flagged
	flagged, err := xs.Query(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, flagged)
}

func TestNewXattrStore_CustomAttribute(t *testing.T) {
	xs, err := NewXattrStore("user.example.flag")
	require.NoError(t, err)
	assert.Equal(t, "user.example.flag", xs.Attribute())

	xs, err = NewXattrStore("")
	require.NoError(t, err)
	assert.Equal(t, DefaultAttribute, xs.Attribute())
}
