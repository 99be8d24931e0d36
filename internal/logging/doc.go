// Package logging configures slog for dropignore.
//
// Without --debug, records go to stderr as text at the configured level.
// With --debug, JSON records are also written to a size-rotated file under
// ~/.dropignore/logs/ so long-running watch sessions can be inspected with
// `dropignore logs`.
package logging
