package ui

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Action is what a sweep did, or would do, to one path.
type Action int

const (
	ActionNone Action = iota
	ActionIgnore
	ActionUnignore
)

func (a Action) verb() string {
	switch a {
	case ActionIgnore:
		return "ignore"
	case ActionUnignore:
		return "unignore"
	default:
		return "keep"
	}
}

// Summary totals a sweep.
type Summary struct {
	Visited   int
	Ignored   int
	Unignored int
	Untouched int
	Failed    int
	DryRun    bool
	Duration  time.Duration
}

// Reporter prints sweep progress line by line. Safe for concurrent use.
type Reporter struct {
	mu      sync.Mutex
	out     io.Writer
	styles  Styles
	verbose bool
}

// NewReporter creates a reporter writing to cfg.Output.
func NewReporter(cfg Config) *Reporter {
	return &Reporter{
		out:     cfg.Output,
		styles:  GetStyles(cfg.NoColor),
		verbose: cfg.Verbose,
	}
}

// Action reports one path. ActionNone is only printed in verbose mode.
func (r *Reporter) Action(path string, action Action, dryRun bool) {
	if action == ActionNone && !r.verbose {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	verb := action.verb()
	if dryRun && action != ActionNone {
		verb = "would " + verb
	}
	var styled string
	switch action {
	case ActionIgnore:
		styled = r.styles.Success.Render(verb)
	case ActionUnignore:
		styled = r.styles.Warning.Render(verb)
	default:
		styled = r.styles.Dim.Render(verb)
	}
	_, _ = fmt.Fprintf(r.out, "%s %s\n", styled, r.styles.Path.Render(path))
}

// Failure reports a path whose flag could not be changed.
func (r *Reporter) Failure(path string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = fmt.Fprintf(r.out, "%s %s: %v\n", r.styles.Error.Render("ERROR"), path, err)
}

// Complete prints the final totals.
func (r *Reporter) Complete(s Summary) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prefix := "Swept"
	if s.DryRun {
		prefix = "Dry run:"
	}
	_, _ = fmt.Fprintf(r.out, "%s %d paths in %s: %d ignored, %d unignored, %d untouched",
		r.styles.Header.Render(prefix), s.Visited, s.Duration.Round(time.Millisecond),
		s.Ignored, s.Unignored, s.Untouched)
	if s.Failed > 0 {
		_, _ = fmt.Fprint(r.out, r.styles.Error.Render(fmt.Sprintf(" (%d failed)", s.Failed)))
	}
	_, _ = fmt.Fprintln(r.out)
}
