// Package flagstore persists the per-path "ignored" flag that tells the sync
// client to skip a file or directory.
//
// The production backend writes the extended attribute the Dropbox client
// reads. The sqlite and bolt backends keep the same flag in a local database
// for filesystems without user extended attributes, and for dry runs.
package flagstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	derrors "github.com/Aman-CERP/dropignore/internal/errors"
)

// flagValue is the attribute value written when a path is flagged.
const flagValue = "1"

// Store sets, clears and queries the ignored flag of a path.
type Store interface {
	// Set flags path. Setting an already flagged path succeeds.
	Set(ctx context.Context, path string) error

	// Clear removes the flag. Clearing an unflagged path succeeds.
	Clear(ctx context.Context, path string) error

	// Query reports whether path is flagged.
	Query(ctx context.Context, path string) (bool, error)

	// Close releases resources held by the store.
	Close() error
}

// Backend names a Store implementation.
type Backend string

const (
	// BackendXattr writes the extended attribute read by the sync client (default).
	BackendXattr Backend = "xattr"

	// BackendSQLite keeps flags in a SQLite database.
	BackendSQLite Backend = "sqlite"

	// BackendBolt keeps flags in a bbolt database.
	BackendBolt Backend = "bolt"

	// BackendMemory keeps flags in process memory only.
	BackendMemory Backend = "memory"
)

// Options selects and configures a backend.
type Options struct {
	// Backend is one of xattr, sqlite, bolt or memory. Empty means xattr.
	Backend Backend

	// Path is the database file for sqlite and bolt.
	// Empty means DefaultPath(Backend).
	Path string

	// Attribute overrides the extended attribute name for xattr.
	Attribute string
}

// Open creates the store described by opts.
func Open(opts Options) (Store, error) {
	switch opts.Backend {
	case BackendXattr, "":
		s, err := NewXattrStore(opts.Attribute)
		if err != nil {
			return nil, err
		}
		return s, nil

	case BackendSQLite:
		path, err := resolvePath(opts)
		if err != nil {
			return nil, err
		}
		s, err := NewSQLiteStore(path)
		if err != nil {
			return nil, err
		}
		return s, nil

	case BackendBolt:
		path, err := resolvePath(opts)
		if err != nil {
			return nil, err
		}
		s, err := NewBoltStore(path)
		if err != nil {
			return nil, err
		}
		return s, nil

	case BackendMemory:
		return NewMemoryStore(), nil

	default:
		return nil, derrors.New(derrors.ErrCodeConfigInvalid,
			fmt.Sprintf("unknown flag store backend: %s", opts.Backend), nil).
			WithSuggestion("Valid options: xattr, sqlite, bolt, memory")
	}
}

func resolvePath(opts Options) (string, error) {
	if opts.Path != "" {
		return opts.Path, nil
	}
	return DefaultPath(opts.Backend)
}

// DefaultPath returns the database file used by a backend when none is
// configured: ~/.dropignore/flags.db for sqlite, ~/.dropignore/flags.bolt
// for bolt.
func DefaultPath(backend Backend) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", derrors.New(derrors.ErrCodeStoreOpen, "cannot locate home directory", err)
	}
	name := "flags.db"
	if backend == BackendBolt {
		name = "flags.bolt"
	}
	return filepath.Join(home, ".dropignore", name), nil
}

// key normalizes a path for the database backends.
func key(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.Clean(abs), nil
}

// requireExists mirrors the attribute backend, which can only flag paths
// that exist.
func requireExists(op, path string) error {
	if _, err := os.Stat(path); err != nil {
		return derrors.FlagStoreError(op, path, err)
	}
	return nil
}

// ensureDir creates the parent directory of a database file.
func ensureDir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return derrors.New(derrors.ErrCodeStoreOpen, "cannot create store directory", err).
			WithDetail("path", filepath.Dir(path))
	}
	return nil
}
