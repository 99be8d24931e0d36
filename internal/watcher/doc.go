// Package watcher provides the change source for watch sessions: an ordered
// stream of create, rename, modify and delete events for a directory tree.
//
// The package implements a hybrid watching strategy:
//   - Primary: fsnotify for efficient event-based watching
//   - Fallback: Polling for environments where fsnotify fails (network mounts, Docker volumes)
//
// fsnotify reports a move as a rename of the old name followed by a create of
// the new one. The hybrid watcher pairs the two into a single OpRename event
// carrying both endpoints; an unpaired rename becomes OpDelete. Events are
// never coalesced or reordered. Paths are absolute.
//
// Usage:
//
//	w, err := watcher.NewHybridWatcher(watcher.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	defer w.Stop()
//
//	go func() { _ = w.Start(ctx, "/data/Dropbox") }()
//
//	for event := range w.Events() {
//	    switch event.Operation {
//	    case watcher.OpCreate:
//	        // New path appeared
//	    case watcher.OpRename:
//	        // event.OldPath moved to event.Path
//	    }
//	}
package watcher
