package ignorefile

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	derrors "github.com/Aman-CERP/dropignore/internal/errors"
	"github.com/Aman-CERP/dropignore/internal/pathinfo"
)

// DefaultFileName is the ignore file looked up in a watched directory.
const DefaultFileName = ".dropignore"

// LineError is a compile failure attached to its 1-based source line.
type LineError struct {
	Line int
	Rule string
	Err  error
}

// Error implements the error interface.
func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// Unwrap returns the compile error.
func (e *LineError) Unwrap() error {
	return e.Err
}

// Parse compiles every non-blank line of r against base.
//
// Lines are trimmed before compiling. A line that fails to compile is
// reported in the returned slice and left out of the set; the remaining
// lines still compile. The error return is reserved for read failures.
func Parse(r io.Reader, base string, insp pathinfo.Inspector) (*Set, []*LineError, error) {
	var (
		matchers []*Matcher
		lineErrs []*LineError
	)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		m, err := Compile(base, line)
		if err != nil {
			lineErrs = append(lineErrs, &LineError{Line: lineNo, Rule: line, Err: err})
			continue
		}

		slog.Debug("compiled rule",
			slog.Int("line", lineNo),
			slog.String("rule", line),
			slog.String("pattern", m.Pattern()))
		matchers = append(matchers, m)
	}
	if err := scanner.Err(); err != nil {
		return nil, lineErrs, fmt.Errorf("read rules: %w", err)
	}

	return NewSet(insp, matchers...), lineErrs, nil
}

// Load reads the ignore file at path and compiles it against base.
// An empty base uses the directory containing path.
func Load(path, base string, insp pathinfo.Inspector) (*Set, []*LineError, error) {
	if base == "" {
		base = filepath.Dir(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, openError(path, err)
	}
	defer func() { _ = f.Close() }()

	set, lineErrs, err := Parse(f, base, insp)
	if err != nil {
		return nil, lineErrs, derrors.New(derrors.ErrCodeFileNotFound, "failed to read ignore file", err).
			WithDetail("path", path)
	}
	return set, lineErrs, nil
}

// LoadRequired is Load for callers that cannot run without rules. A file
// that yields no usable line is a configuration error.
func LoadRequired(path, base string, insp pathinfo.Inspector) (*Set, []*LineError, error) {
	set, lineErrs, err := Load(path, base, insp)
	if err != nil {
		return nil, lineErrs, err
	}
	if set.Len() == 0 {
		return nil, lineErrs, derrors.New(derrors.ErrCodeNoUsableRules,
			fmt.Sprintf("no usable rules in %s", path), nil).
			WithDetail("path", path).
			WithDetail("line_errors", fmt.Sprintf("%d", len(lineErrs))).
			WithSuggestion("Add at least one valid rule, e.g. node_modules")
	}
	return set, lineErrs, nil
}

func openError(path string, err error) error {
	if os.IsPermission(err) {
		return derrors.New(derrors.ErrCodeFilePermission, "cannot open ignore file", err).
			WithDetail("path", path)
	}
	return derrors.New(derrors.ErrCodeFileNotFound, "ignore file not found", err).
		WithDetail("path", path).
		WithSuggestion(fmt.Sprintf("Create %s or pass --ignore-file", path))
}

// FindNearest walks upward from path looking for a file named name.
// It returns the file path and the directory it was found in.
func FindNearest(path, name string) (file, dir string, ok bool) {
	dir = filepath.Clean(path)
	if !(pathinfo.OS{}).IsDir(dir) {
		dir = filepath.Dir(dir)
	}

	for {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", "", false
		}
		dir = parent
	}
}
