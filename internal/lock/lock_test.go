package lock

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	derrors "github.com/Aman-CERP/dropignore/internal/errors"
)

func TestNew_PathIsStablePerRoot(t *testing.T) {
	dir := t.TempDir()
	root := t.TempDir()

	a, err := New(dir, root)
	require.NoError(t, err)
	b, err := New(dir, root+string(filepath.Separator))
	require.NoError(t, err)
	other, err := New(dir, t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, a.Path(), b.Path(), "trailing separator must not change the lock")
	assert.NotEqual(t, a.Path(), other.Path())
	assert.Equal(t, dir, filepath.Dir(a.Path()))
	assert.Equal(t, root, a.Root())
}

func TestSessionLock_TryLockUnlock(t *testing.T) {
	// Given: a fresh lock in a directory that does not exist yet
	dir := filepath.Join(t.TempDir(), "locks")
	l, err := New(dir, t.TempDir())
	require.NoError(t, err)

	// When: acquiring it
	require.NoError(t, l.TryLock())

	// Then: it is held and records our PID
	assert.True(t, l.IsLocked())
	pid, err := l.Holder()
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)

	// And: locking again is a no-op, unlocking twice is fine
	require.NoError(t, l.TryLock())
	require.NoError(t, l.Unlock())
	assert.False(t, l.IsLocked())
	require.NoError(t, l.Unlock())
}

func TestSessionLock_SecondHolderRejected(t *testing.T) {
	// Given: a root already locked
	dir := t.TempDir()
	root := t.TempDir()
	first, err := New(dir, root)
	require.NoError(t, err)
	require.NoError(t, first.TryLock())
	defer func() { _ = first.Unlock() }()

	// When: a second session tries the same root
	second, err := New(dir, root)
	require.NoError(t, err)
	err = second.TryLock()

	// Then: it gets a coded error naming the holder
	require.Error(t, err)
	assert.Equal(t, derrors.ErrCodeSessionLocked, derrors.GetCode(err))
	assert.True(t, derrors.IsFatal(err))
	var e *derrors.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, strconv.Itoa(os.Getpid()), e.Details["pid"])
	assert.False(t, second.IsLocked())

	// And: once released, the second session can take over
	require.NoError(t, first.Unlock())
	require.NoError(t, second.TryLock())
	require.NoError(t, second.Unlock())
}

func TestSessionLock_HolderMissingFile(t *testing.T) {
	l, err := New(t.TempDir(), t.TempDir())
	require.NoError(t, err)

	_, err = l.Holder()
	assert.Error(t, err)
}

func TestDefaultDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	assert.Equal(t, filepath.Join(home, ".dropignore", "locks"), DefaultDir())
}
