package flagstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	// Pure Go driver, no CGO
	_ "modernc.org/sqlite"

	derrors "github.com/Aman-CERP/dropignore/internal/errors"
)

// SQLiteStore keeps flags in a SQLite table keyed by absolute path.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// Ensure SQLiteStore implements Store interface.
var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens or creates the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, derrors.New(derrors.ErrCodeStoreOpen, "failed to open flag database", err).
			WithDetail("path", path)
	}

	// Single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, derrors.New(derrors.ErrCodeStoreOpen, "failed to set pragma", err).
				WithDetail("path", path)
		}
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS flags (
	path TEXT PRIMARY KEY,
	flagged_at INTEGER NOT NULL
);`); err != nil {
		_ = db.Close()
		return nil, derrors.New(derrors.ErrCodeStoreOpen, "failed to initialize schema", err).
			WithDetail("path", path)
	}

	return &SQLiteStore{db: db, path: path}, nil
}

// Set records the flag for path.
func (s *SQLiteStore) Set(ctx context.Context, path string) error {
	if err := requireExists("set", path); err != nil {
		return err
	}
	k, err := key(path)
	if err != nil {
		return derrors.FlagStoreError("set", path, err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO flags (path, flagged_at) VALUES (?, ?)
		 ON CONFLICT(path) DO UPDATE SET flagged_at = excluded.flagged_at`,
		k, time.Now().Unix())
	if err != nil {
		return derrors.FlagStoreError("set", path, err)
	}
	return nil
}

// Clear deletes the flag for path.
func (s *SQLiteStore) Clear(ctx context.Context, path string) error {
	k, err := key(path)
	if err != nil {
		return derrors.FlagStoreError("clear", path, err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM flags WHERE path = ?`, k); err != nil {
		return derrors.FlagStoreError("clear", path, err)
	}
	return nil
}

// Query reports whether path has a flag row.
func (s *SQLiteStore) Query(ctx context.Context, path string) (bool, error) {
	k, err := key(path)
	if err != nil {
		return false, derrors.FlagStoreError("query", path, err)
	}

	var one int
	err = s.db.QueryRowContext(ctx, `SELECT 1 FROM flags WHERE path = ?`, k).Scan(&one)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	default:
		return false, derrors.FlagStoreError("query", path, err)
	}
}

// Count returns the number of flagged paths.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM flags`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count flags: %w", err)
	}
	return n, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
