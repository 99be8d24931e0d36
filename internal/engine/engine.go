// Package engine turns file events into flag updates.
//
// Created paths get the decision of the evaluator. A move inside the watched
// tree is only acted on when source and destination decide differently; the
// destination then gets its decision and the source is left alone.
package engine

import (
	"context"
	"log/slog"
	"sync/atomic"

	derrors "github.com/Aman-CERP/dropignore/internal/errors"
	"github.com/Aman-CERP/dropignore/internal/flagstore"
	"github.com/Aman-CERP/dropignore/internal/watcher"
)

// EventSource is the part of a watcher.Source the engine consumes.
type EventSource interface {
	Events() <-chan watcher.FileEvent
	Errors() <-chan error
}

// Stats counts what the engine did.
type Stats struct {
	// Events is every event received.
	Events uint64
	// Selected and Deselected count successful flag updates.
	Selected   uint64
	Deselected uint64
	// Untouched counts None decisions and renames with equal decisions.
	Untouched uint64
	// Skipped counts events of kinds the engine does not act on.
	Skipped uint64
	// Failures counts flag updates the store rejected.
	Failures uint64
}

// Engine applies evaluator decisions to a flag store. Events are handled
// one at a time in arrival order.
type Engine struct {
	evaluator Evaluator
	store     flagstore.Store
	logger    *slog.Logger

	events     atomic.Uint64
	selected   atomic.Uint64
	deselected atomic.Uint64
	untouched  atomic.Uint64
	skipped    atomic.Uint64
	failures   atomic.Uint64
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an engine.
func New(evaluator Evaluator, store flagstore.Store, opts ...Option) *Engine {
	e := &Engine{
		evaluator: evaluator,
		store:     store,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run handles events until the source's event channel closes or ctx is
// done, both of which return nil. A value on the source's error channel
// ends the run with a fatal watch error. Store failures are logged and
// the next event is processed.
func (e *Engine) Run(ctx context.Context, src EventSource) error {
	events := src.Events()
	errs := src.Errors()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			_ = e.Handle(ctx, ev)
		case err, ok := <-errs:
			if !ok {
				// Closed alongside events on shutdown
				errs = nil
				continue
			}
			werr := derrors.WatchError("change source failed", err)
			e.logger.Error("change source failed", derrors.LogAttrs(werr)...)
			return werr
		}
	}
}

// Handle processes one event and returns the store error, if any.
func (e *Engine) Handle(ctx context.Context, ev watcher.FileEvent) error {
	e.events.Add(1)

	switch ev.Operation {
	case watcher.OpCreate:
		return e.Dispatch(ctx, ev.Path, e.evaluator.Evaluate(ev.Path))

	case watcher.OpRename:
		if ev.OldPath == "" {
			e.skipped.Add(1)
			return nil
		}
		from := e.evaluator.Evaluate(ev.OldPath)
		to := e.evaluator.Evaluate(ev.Path)
		if from == to {
			e.untouched.Add(1)
			e.logger.Debug("not touching",
				slog.String("path", ev.Path),
				slog.String("from", ev.OldPath),
				slog.String("decision", to.String()))
			return nil
		}
		return e.Dispatch(ctx, ev.Path, to)

	default:
		e.skipped.Add(1)
		return nil
	}
}

// Dispatch applies decision to path.
func (e *Engine) Dispatch(ctx context.Context, path string, decision Decision) error {
	var err error

	switch decision {
	case Select:
		e.logger.Info("ignoring", slog.String("path", path))
		if err = e.store.Set(ctx, path); err == nil {
			e.selected.Add(1)
		}
	case Deselect:
		e.logger.Info("unignoring", slog.String("path", path))
		if err = e.store.Clear(ctx, path); err == nil {
			e.deselected.Add(1)
		}
	default:
		e.untouched.Add(1)
		e.logger.Debug("not touching", slog.String("path", path))
		return nil
	}

	if err != nil {
		e.failures.Add(1)
		e.logger.Error("flag update failed", derrors.LogAttrs(err)...)
	}
	return err
}

// Stats returns a snapshot of the counters.
func (e *Engine) Stats() Stats {
	return Stats{
		Events:     e.events.Load(),
		Selected:   e.selected.Load(),
		Deselected: e.deselected.Load(),
		Untouched:  e.untouched.Load(),
		Skipped:    e.skipped.Load(),
		Failures:   e.failures.Load(),
	}
}
