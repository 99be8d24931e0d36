// Package lock keeps two watch sessions from driving the same directory.
package lock

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofrs/flock"

	derrors "github.com/Aman-CERP/dropignore/internal/errors"
)

// DefaultDir returns ~/.dropignore/locks.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".dropignore", "locks")
	}
	return filepath.Join(home, ".dropignore", "locks")
}

// SessionLock is a cross-process lock keyed by watched root.
// The lock file holds the owning PID for error messages.
type SessionLock struct {
	root   string
	path   string
	flock  *flock.Flock
	locked bool
}

// New returns the lock for root inside dir. Nothing is acquired yet.
func New(dir, root string) (*SessionLock, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, derrors.New(derrors.ErrCodeInvalidPath, "cannot resolve watch root", err).
			WithDetail("path", root)
	}
	sum := sha256.Sum256([]byte(filepath.Clean(abs)))
	path := filepath.Join(dir, hex.EncodeToString(sum[:8])+".lock")
	return &SessionLock{
		root:  abs,
		path:  path,
		flock: flock.New(path),
	}, nil
}

// TryLock acquires the lock without blocking. A lock held by another
// process yields ErrCodeSessionLocked naming the holder when known.
func (l *SessionLock) TryLock() error {
	if l.locked {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return derrors.IOError("failed to create lock directory", err)
	}

	acquired, err := l.flock.TryLock()
	if err != nil {
		return derrors.IOError("failed to acquire session lock", err)
	}
	if !acquired {
		e := derrors.New(derrors.ErrCodeSessionLocked,
			fmt.Sprintf("%s is already being watched", l.root), nil).
			WithDetail("lock", l.path).
			WithSuggestion("Stop the other dropignore watch for this directory first")
		if pid, err := l.Holder(); err == nil {
			e = e.WithDetail("pid", strconv.Itoa(pid))
		}
		return e
	}

	l.locked = true
	// Best-effort: the lock is held even if the PID cannot be recorded.
	_ = os.WriteFile(l.path, []byte(strconv.Itoa(os.Getpid())), 0o644)
	return nil
}

// Unlock releases the lock. Safe to call when not locked.
func (l *SessionLock) Unlock() error {
	if !l.locked {
		return nil
	}
	l.locked = false
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}

// Holder returns the PID recorded by the current owner.
func (l *SessionLock) Holder() (int, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid PID in lock file: %w", err)
	}
	return pid, nil
}

// Path returns the path to the lock file.
func (l *SessionLock) Path() string {
	return l.path
}

// Root returns the absolute watched root.
func (l *SessionLock) Root() string {
	return l.root
}

// IsLocked returns true if the lock is currently held.
func (l *SessionLock) IsLocked() bool {
	return l.locked
}
