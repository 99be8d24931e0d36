package ignorefile

import (
	"github.com/Aman-CERP/dropignore/internal/pathinfo"
)

// Set is an ordered, immutable collection of compiled matchers evaluated
// with OR semantics. Order has no effect on the result.
type Set struct {
	matchers  []*Matcher
	inspector pathinfo.Inspector
}

// NewSet creates a set over the given matchers. A nil inspector queries the
// real filesystem for directory-only rules.
func NewSet(insp pathinfo.Inspector, matchers ...*Matcher) *Set {
	if insp == nil {
		insp = pathinfo.OS{}
	}
	ms := make([]*Matcher, 0, len(matchers))
	for _, m := range matchers {
		if m != nil {
			ms = append(ms, m)
		}
	}
	return &Set{
		matchers:  ms,
		inspector: insp,
	}
}

// Matches reports whether any matcher in the set accepts candidate.
func (s *Set) Matches(candidate string) bool {
	_, ok := s.Explain(candidate)
	return ok
}

// Explain returns the first matcher that accepts candidate.
func (s *Set) Explain(candidate string) (*Matcher, bool) {
	if s == nil {
		return nil, false
	}
	for _, m := range s.matchers {
		if m.Match(candidate, s.inspector) {
			return m, true
		}
	}
	return nil, false
}

// Len returns the number of compiled matchers.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.matchers)
}

// Matchers returns the compiled matchers in source order.
func (s *Set) Matchers() []*Matcher {
	if s == nil {
		return nil
	}
	out := make([]*Matcher, len(s.matchers))
	copy(out, s.matchers)
	return out
}
