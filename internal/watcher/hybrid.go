package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// HybridWatcher implements the Source interface using fsnotify as the primary
// watching mechanism with polling as a fallback.
type HybridWatcher struct {
	fsWatcher     *fsnotify.Watcher
	pollWatcher   *PollingWatcher
	useFsnotify   bool
	events        chan FileEvent
	errors        chan error
	stopCh        chan struct{}
	rootPath      string
	opts          Options
	mu            sync.RWMutex
	stopped       bool
	droppedEvents atomic.Uint64

	// pending is a rename-from waiting for its create. Owned by the
	// fsnotify loop, as is lastRenamedFrom.
	pending *pendingRename

	// lastRenamedFrom is the source of the last paired rename. A moved
	// directory reports its own move after the pair; that echo is dropped.
	lastRenamedFrom string
}

type pendingRename struct {
	path  string
	isDir bool
	timer *time.Timer
}

// Ensure HybridWatcher implements Source interface.
var _ Source = (*HybridWatcher)(nil)

// NewHybridWatcher creates a new hybrid watcher with the given options.
// Attempts to use fsnotify first, falls back to polling if it fails or
// polling was requested.
func NewHybridWatcher(opts Options) (*HybridWatcher, error) {
	opts = opts.WithDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	h := &HybridWatcher{
		events: make(chan FileEvent, opts.EventBufferSize),
		errors: make(chan error, 10),
		stopCh: make(chan struct{}),
		opts:   opts,
	}

	if opts.Backend == BackendFsnotify {
		fsw, err := fsnotify.NewWatcher()
		if err == nil {
			h.fsWatcher = fsw
			h.useFsnotify = true
			return h, nil
		}
		slog.Warn("fsnotify unavailable, falling back to polling",
			slog.String("error", err.Error()))
	}

	h.pollWatcher = NewPollingWatcher(opts.PollInterval)
	return h, nil
}

// Start begins watching the given directory.
func (h *HybridWatcher) Start(ctx context.Context, path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve absolute path: %w", err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return fmt.Errorf("stat watch root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch root is not a directory: %s", absPath)
	}

	h.mu.Lock()
	h.rootPath = absPath
	h.mu.Unlock()

	if h.useFsnotify {
		return h.startFsnotify(ctx)
	}
	return h.startPolling(ctx)
}

// startFsnotify starts the fsnotify-based watcher.
func (h *HybridWatcher) startFsnotify(ctx context.Context) error {
	// Recursively add all directories to watch
	if err := h.addRecursive(h.rootPath); err != nil {
		return fmt.Errorf("add directories to watcher: %w", err)
	}

	slog.Debug("watching", slog.String("root", h.rootPath), slog.String("backend", BackendFsnotify))

	for {
		var expired <-chan time.Time
		if h.pending != nil {
			expired = h.pending.timer.C
		}

		select {
		case <-ctx.Done():
			_ = h.Stop()
			return ctx.Err()
		case <-h.stopCh:
			return nil
		case <-expired:
			h.flushPending()
		case event, ok := <-h.fsWatcher.Events:
			if !ok {
				return nil
			}
			h.handleFsnotifyEvent(event)
		case err, ok := <-h.fsWatcher.Errors:
			if !ok {
				return nil
			}
			h.emitError(err)
		}
	}
}

// startPolling starts the polling-based watcher.
func (h *HybridWatcher) startPolling(ctx context.Context) error {
	slog.Debug("watching", slog.String("root", h.rootPath), slog.String("backend", BackendPolling))

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-h.stopCh:
				return
			case event, ok := <-h.pollWatcher.Events():
				if !ok {
					return
				}
				h.emitEvent(event)
			case err, ok := <-h.pollWatcher.Errors():
				if !ok {
					return
				}
				h.emitError(err)
			}
		}
	}()

	return h.pollWatcher.Start(ctx, h.rootPath)
}

// handleFsnotifyEvent converts fsnotify events, pairing rename-from with
// the create that follows it.
func (h *HybridWatcher) handleFsnotifyEvent(event fsnotify.Event) {
	if event.Name == h.rootPath {
		return
	}

	// Check if this is a directory
	isDir := false
	if info, err := os.Lstat(event.Name); err == nil {
		isDir = info.IsDir()
	}

	now := time.Now()

	switch {
	case event.Op&fsnotify.Create != 0:
		// The old and new names of a moved directory share one inotify
		// watch, so the old name must be dropped before the new one is added.
		p := h.takePending()
		if p != nil && p.isDir {
			h.removeTree(p.path)
		}
		if isDir {
			if err := h.addRecursive(event.Name); err != nil {
				slog.Warn("failed to watch new directory",
					slog.String("path", event.Name),
					slog.String("error", err.Error()))
			}
		}
		if p != nil {
			h.lastRenamedFrom = p.path
			h.emitEvent(FileEvent{
				Path:      event.Name,
				OldPath:   p.path,
				Operation: OpRename,
				IsDir:     isDir,
				Timestamp: now,
			})
			return
		}
		h.emitEvent(FileEvent{Path: event.Name, Operation: OpCreate, IsDir: isDir, Timestamp: now})

	case event.Op&fsnotify.Rename != 0:
		if event.Name == h.lastRenamedFrom {
			h.lastRenamedFrom = ""
			return
		}
		// A second rename-from before any create means the first one left
		// the tree.
		h.flushPending()
		h.pending = &pendingRename{
			path:  event.Name,
			isDir: h.wasWatchedDir(event.Name),
			timer: time.NewTimer(h.opts.RenameWindow),
		}

	case event.Op&fsnotify.Write != 0:
		h.flushPending()
		h.emitEvent(FileEvent{Path: event.Name, Operation: OpModify, IsDir: isDir, Timestamp: now})

	case event.Op&fsnotify.Remove != 0:
		h.flushPending()
		h.emitEvent(FileEvent{Path: event.Name, Operation: OpDelete, IsDir: isDir, Timestamp: now})

	default:
		// Chmod, including the attribute writes this tool makes itself.
	}
}

// takePending returns and clears the pending rename, if any.
func (h *HybridWatcher) takePending() *pendingRename {
	p := h.pending
	if p == nil {
		return nil
	}
	p.timer.Stop()
	h.pending = nil
	return p
}

// flushPending reports an unpaired rename as a delete of its old path.
func (h *HybridWatcher) flushPending() {
	p := h.takePending()
	if p == nil {
		return
	}
	if p.isDir {
		h.removeTree(p.path)
	}
	h.emitEvent(FileEvent{Path: p.path, Operation: OpDelete, IsDir: p.isDir, Timestamp: time.Now()})
}

// wasWatchedDir reports whether path is a directory registered with fsnotify.
func (h *HybridWatcher) wasWatchedDir(path string) bool {
	for _, w := range h.fsWatcher.WatchList() {
		if w == path {
			return true
		}
	}
	return false
}

// removeTree drops the watches on root and every directory below it.
func (h *HybridWatcher) removeTree(root string) {
	prefix := root + string(filepath.Separator)
	for _, w := range h.fsWatcher.WatchList() {
		if w == root || strings.HasPrefix(w, prefix) {
			_ = h.fsWatcher.Remove(w)
		}
	}
}

// addRecursive adds all directories under root to the fsnotify watcher.
func (h *HybridWatcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			slog.Warn("skipping unreadable directory",
				slog.String("path", path),
				slog.String("error", err.Error()))
			return nil
		}

		if !d.IsDir() {
			return nil
		}

		return h.fsWatcher.Add(path)
	})
}

// emitEvent sends an event to the output channel.
func (h *HybridWatcher) emitEvent(event FileEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.stopped {
		return
	}

	select {
	case h.events <- event:
	default:
		count := h.droppedEvents.Add(1)
		slog.Warn("event buffer full, dropping event",
			slog.String("path", event.Path),
			slog.String("op", event.Operation.String()),
			slog.Uint64("total_dropped", count),
		)
	}
}

// DroppedEvents returns the number of events dropped due to buffer overflow.
func (h *HybridWatcher) DroppedEvents() uint64 {
	return h.droppedEvents.Load()
}

// emitError sends an error to the error channel.
func (h *HybridWatcher) emitError(err error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.stopped {
		return
	}

	select {
	case h.errors <- err:
	default:
	}
}

// Stop stops the watcher and releases resources.
func (h *HybridWatcher) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.stopped {
		return nil
	}

	h.stopped = true
	close(h.stopCh)

	// Stop underlying watcher
	if h.useFsnotify && h.fsWatcher != nil {
		_ = h.fsWatcher.Close()
	}
	if h.pollWatcher != nil {
		_ = h.pollWatcher.Stop()
	}

	close(h.events)
	close(h.errors)
	return nil
}

// Events returns the channel of file events.
func (h *HybridWatcher) Events() <-chan FileEvent {
	return h.events
}

// Errors returns the channel of errors.
func (h *HybridWatcher) Errors() <-chan error {
	return h.errors
}

// IsHealthy returns true if the watcher is running and hasn't stopped.
func (h *HybridWatcher) IsHealthy() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return !h.stopped
}

// WatcherType returns the type of watcher being used ("fsnotify" or "polling").
func (h *HybridWatcher) WatcherType() string {
	if h.useFsnotify {
		return BackendFsnotify
	}
	return BackendPolling
}

// RootPath returns the root path being watched.
func (h *HybridWatcher) RootPath() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.rootPath
}
