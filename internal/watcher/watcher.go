package watcher

import (
	"context"
	"fmt"
	"time"
)

// Operation represents a file system operation type.
type Operation int

const (
	// OpCreate indicates a new file or directory was created.
	OpCreate Operation = iota
	// OpModify indicates an existing file was modified.
	OpModify
	// OpDelete indicates a file or directory was deleted or moved out of
	// the watched tree.
	OpDelete
	// OpRename indicates a move inside the watched tree with both
	// endpoints known.
	OpRename
)

// String returns a human-readable representation of the operation.
func (op Operation) String() string {
	switch op {
	case OpCreate:
		return "CREATE"
	case OpModify:
		return "MODIFY"
	case OpDelete:
		return "DELETE"
	case OpRename:
		return "RENAME"
	default:
		return "UNKNOWN"
	}
}

// FileEvent represents a file system event.
type FileEvent struct {
	// Path is the absolute path of the file or directory. For renames it is
	// the destination.
	Path string

	// OldPath is the absolute source path for rename events.
	// Empty for non-rename events.
	OldPath string

	// Operation is the type of file system operation.
	Operation Operation

	// IsDir indicates if the event is for a directory.
	IsDir bool

	// Timestamp is when the event was detected.
	Timestamp time.Time
}

// Source produces an ordered stream of file events for one directory tree.
type Source interface {
	// Start begins watching the given directory recursively.
	// Returns an error if watching fails to initialize.
	// The source runs until Stop is called or context is cancelled.
	Start(ctx context.Context, path string) error

	// Stop stops the source and releases resources.
	// Safe to call multiple times.
	Stop() error

	// Events returns the channel of file events in arrival order.
	// The channel is closed when the source stops.
	Events() <-chan FileEvent

	// Errors returns the channel of source failures.
	// A value here means the event stream can no longer be trusted.
	Errors() <-chan error
}

// Backend names accepted in Options.
const (
	BackendFsnotify = "fsnotify"
	BackendPolling  = "polling"
)

// Options configures the watcher behavior.
type Options struct {
	// Backend selects fsnotify or polling. fsnotify falls back to polling
	// when it cannot be initialized.
	// Default: fsnotify
	Backend string

	// PollInterval is the interval for polling mode.
	// Default: 2s
	PollInterval time.Duration

	// RenameWindow is how long a rename-from notification waits for its
	// matching create before it is reported as a delete.
	// Default: 50ms
	RenameWindow time.Duration

	// EventBufferSize is the size of the event channel buffer.
	// Default: 1000
	EventBufferSize int
}

// DefaultOptions returns the default watcher options.
func DefaultOptions() Options {
	return Options{
		Backend:         BackendFsnotify,
		PollInterval:    2 * time.Second,
		RenameWindow:    50 * time.Millisecond,
		EventBufferSize: 1000,
	}
}

// Validate validates the options and returns an error if invalid.
func (o Options) Validate() error {
	switch o.Backend {
	case "", BackendFsnotify, BackendPolling:
	default:
		return fmt.Errorf("unknown watch backend %q (want %s or %s)", o.Backend, BackendFsnotify, BackendPolling)
	}
	if o.PollInterval < 0 {
		return fmt.Errorf("poll interval must not be negative: %s", o.PollInterval)
	}
	if o.RenameWindow < 0 {
		return fmt.Errorf("rename window must not be negative: %s", o.RenameWindow)
	}
	if o.EventBufferSize < 0 {
		return fmt.Errorf("event buffer size must not be negative: %d", o.EventBufferSize)
	}
	return nil
}

// WithDefaults returns options with defaults applied for zero values.
func (o Options) WithDefaults() Options {
	defaults := DefaultOptions()
	if o.Backend == "" {
		o.Backend = defaults.Backend
	}
	if o.PollInterval == 0 {
		o.PollInterval = defaults.PollInterval
	}
	if o.RenameWindow == 0 {
		o.RenameWindow = defaults.RenameWindow
	}
	if o.EventBufferSize == 0 {
		o.EventBufferSize = defaults.EventBufferSize
	}
	return o
}
