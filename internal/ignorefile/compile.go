package ignorefile

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Aman-CERP/dropignore/internal/pathinfo"
)

var (
	// sep is the platform delimiter, escaped for use in a regexp.
	sep = regexp.QuoteMeta(string(filepath.Separator))

	// segmentClass is the character set wildcards may consume within one segment.
	segmentClass = `[\p{L}\p{N}_.\-\[\]]`

	// spanClass is segmentClass plus the delimiter.
	spanClass = `[\p{L}\p{N}_.\-\[\]` + sep + `]`

	// relativePrefix matches zero or more whole directory names of any
	// characters. It is what a leaf rule's implicit "/**/" compiles to.
	relativePrefix = `(?:[^` + sep + `]+` + sep + `)*`
)

// CompileError reports why a rule line could not be compiled.
// It carries no line number; the loader attaches one.
type CompileError struct {
	// Rule is the offending rule text.
	Rule string
	// Cause is the underlying tokenizer or regexp error.
	Cause error
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	return fmt.Sprintf("invalid rule %q: %v", e.Rule, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *CompileError) Unwrap() error {
	return e.Cause
}

// Matcher is a compiled rule line: an anchored predicate over absolute paths.
type Matcher struct {
	rule     string
	base     string
	tokens   []Token
	pattern  *regexp.Regexp
	dirOnly  bool
	relative bool
}

// Compile parses line and compiles it into a matcher anchored at baseDir.
//
// A rule with no separator other than an optional trailing one is relative:
// it is read as "/**/<rule>" and matches its leaf at any depth below baseDir.
// Every other rule is rooted directly below baseDir.
func Compile(baseDir, line string) (*Matcher, error) {
	tokens, err := Tokenize(line)
	if err != nil {
		return nil, &CompileError{Rule: line, Cause: err}
	}

	if !utf8.ValidString(baseDir) {
		return nil, &CompileError{Rule: line, Cause: fmt.Errorf("base directory %q is not valid UTF-8", baseDir)}
	}

	m := &Matcher{
		rule:     line,
		base:     baseDir,
		tokens:   tokens,
		dirOnly:  len(tokens) > 0 && tokens[len(tokens)-1].Kind == TokenSeparator,
		relative: isRelative(tokens),
	}

	re, err := regexp.Compile(assemble(baseDir, tokens, m.relative))
	if err != nil {
		return nil, &CompileError{Rule: line, Cause: err}
	}
	m.pattern = re

	return m, nil
}

// isRelative reports whether tokens contain no separator except possibly
// as the final token.
func isRelative(tokens []Token) bool {
	for i, t := range tokens {
		if t.Kind == TokenSeparator && i != len(tokens)-1 {
			return false
		}
	}
	return true
}

// assemble builds the anchored regexp source for a token sequence.
func assemble(baseDir string, tokens []Token, relative bool) string {
	var b strings.Builder

	b.WriteString("^")
	b.WriteString(regexp.QuoteMeta(baseLiteral(baseDir)))

	switch {
	case relative:
		// Synthetic "/**/" prefix: one delimiter, then any directories.
		b.WriteString(sep)
		b.WriteString(relativePrefix)
	case tokens[0].Kind != TokenSeparator:
		// "a/b" is rooted just like "/a/b".
		b.WriteString(sep)
	}

	for i := 0; i < len(tokens); i++ {
		t := tokens[i]
		last := i == len(tokens)-1

		switch t.Kind {
		case TokenText:
			b.WriteString(regexp.QuoteMeta(t.Text))
		case TokenSingleStar:
			b.WriteString(segmentClass + "*")
		case TokenQuestionMark:
			b.WriteString(segmentClass + "?")
		case TokenDoubleStar:
			wholeSegment := i == 0 || tokens[i-1].Kind == TokenSeparator
			if wholeSegment && i+1 < len(tokens)-1 && tokens[i+1].Kind == TokenSeparator {
				// "/**/" spans zero or more whole directories. Glued to
				// text ("a**/b") it keeps its delimiter.
				b.WriteString("(?:" + spanClass + "*" + sep + ")?")
				i++
				continue
			}
			b.WriteString(spanClass + "*")
		case TokenSeparator:
			b.WriteString(sep)
			if last {
				// Directory paths usually arrive without a trailing delimiter.
				b.WriteString("?")
			}
		}
	}

	b.WriteString("$")
	return b.String()
}

// baseLiteral returns baseDir cleaned and without a trailing delimiter,
// so the filesystem root becomes the empty string.
func baseLiteral(baseDir string) string {
	if baseDir == "" {
		return ""
	}
	return strings.TrimSuffix(filepath.Clean(baseDir), string(filepath.Separator))
}

// Match reports whether candidate is accepted by the rule.
//
// Candidates that are not valid UTF-8 never match. For directory-only rules
// the candidate must currently be a directory according to insp; a nil insp
// queries the real filesystem.
func (m *Matcher) Match(candidate string, insp pathinfo.Inspector) bool {
	if len(m.tokens) == 0 {
		return false
	}
	if !utf8.ValidString(candidate) {
		return false
	}
	if !m.pattern.MatchString(candidate) {
		return false
	}
	if m.dirOnly {
		if insp == nil {
			insp = pathinfo.OS{}
		}
		return insp.IsDir(candidate)
	}
	return true
}

// Rule returns the source rule line.
func (m *Matcher) Rule() string {
	return m.rule
}

// Base returns the base directory the rule is anchored at.
func (m *Matcher) Base() string {
	return m.base
}

// Tokens returns a copy of the parsed token sequence.
func (m *Matcher) Tokens() []Token {
	out := make([]Token, len(m.tokens))
	copy(out, m.tokens)
	return out
}

// Pattern returns the assembled regexp source.
func (m *Matcher) Pattern() string {
	return m.pattern.String()
}

// DirOnly reports whether the rule ends with a separator.
func (m *Matcher) DirOnly() bool {
	return m.dirOnly
}

// Relative reports whether the rule matches its leaf at any depth.
func (m *Matcher) Relative() bool {
	return m.relative
}
