package engine

import (
	"fmt"

	"github.com/Aman-CERP/dropignore/internal/ignorefile"
)

// Decision is the outcome of evaluating one path.
type Decision int

const (
	// None leaves the path's flag untouched.
	None Decision = iota
	// Select sets the ignored flag.
	Select
	// Deselect clears the ignored flag.
	Deselect
)

// String returns a human-readable representation of the decision.
func (d Decision) String() string {
	switch d {
	case None:
		return "none"
	case Select:
		return "select"
	case Deselect:
		return "deselect"
	default:
		return "unknown"
	}
}

// ParseDecision parses "none", "select" or "deselect".
func ParseDecision(s string) (Decision, error) {
	switch s {
	case "none", "":
		return None, nil
	case "select":
		return Select, nil
	case "deselect":
		return Deselect, nil
	default:
		return None, fmt.Errorf("unknown decision %q (want none, select or deselect)", s)
	}
}

// Evaluator decides what should happen to a path.
type Evaluator interface {
	Evaluate(path string) Decision
}

// EvaluatorFunc adapts a plain function to the Evaluator interface.
type EvaluatorFunc func(path string) Decision

// Evaluate calls f(path).
func (f EvaluatorFunc) Evaluate(path string) Decision {
	return f(path)
}

// RuleEvaluator selects every path matched by Rules and returns Unmatched
// for the rest.
type RuleEvaluator struct {
	Rules     *ignorefile.Set
	Unmatched Decision
}

// Evaluate implements Evaluator.
func (r RuleEvaluator) Evaluate(path string) Decision {
	if r.Rules.Matches(path) {
		return Select
	}
	return r.Unmatched
}
