package ignorefile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/dropignore/internal/pathinfo"
)

// p converts a slash path to the platform form.
func p(s string) string {
	return filepath.FromSlash(s)
}

func mustCompile(t *testing.T, base, line string) *Matcher {
	t.Helper()
	m, err := Compile(p(base), line)
	require.NoError(t, err, "compile %q", line)
	return m
}

// ===== Leaf rules match at any depth =====

func TestCompile_LeafMatchesAtAnyDepth(t *testing.T) {
	m := mustCompile(t, "/base", "node_modules")
	files := pathinfo.Dirs{}

	tests := []struct {
		candidate string
		expected  bool
	}{
		{"/base/node_modules", true},
		{"/base/a/node_modules", true},
		{"/base/a/b/c/node_modules", true},
		{"/base/dir with space/node_modules", true},
		{"/base/a/xnode_modules", false},
		{"/base/a/node_modulesx", false},
		{"/base/node_modules/pkg", false},
		{"/base_other/node_modules", false},
		{"/other/node_modules", false},
		{"/base", false},
	}

	for _, tt := range tests {
		t.Run(tt.candidate, func(t *testing.T) {
			assert.Equal(t, tt.expected, m.Match(p(tt.candidate), files))
		})
	}
	assert.True(t, m.Relative())
	assert.False(t, m.DirOnly())
}

// ===== Rooted rules anchor directly under the base =====

func TestCompile_RootedRule(t *testing.T) {
	m := mustCompile(t, "/base", "/a/b")
	files := pathinfo.Dirs{}

	assert.True(t, m.Match(p("/base/a/b"), files))
	assert.False(t, m.Match(p("/base/x/a/b"), files))
	assert.False(t, m.Match(p("/base/a/b/c"), files))
	assert.False(t, m.Match(p("/base/a/bb"), files))
	assert.False(t, m.Relative())
}

func TestCompile_RuleWithInnerSeparatorIsRooted(t *testing.T) {
	m := mustCompile(t, "/base", "build/out")
	files := pathinfo.Dirs{}

	assert.True(t, m.Match(p("/base/build/out"), files))
	assert.False(t, m.Match(p("/base/x/build/out"), files))
	assert.False(t, m.Relative())
}

func TestCompile_TrailingSeparatorInBase(t *testing.T) {
	m := mustCompile(t, "/base/", "/a")
	assert.True(t, m.Match(p("/base/a"), pathinfo.Dirs{}))
}

func TestCompile_FilesystemRootBase(t *testing.T) {
	if filepath.Separator != '/' {
		t.Skip("root base is a unix path")
	}
	m := mustCompile(t, "/", "tmp")
	assert.True(t, m.Match("/tmp", pathinfo.Dirs{}))
	assert.True(t, m.Match("/var/tmp", pathinfo.Dirs{}))
	assert.False(t, m.Match("/tmpx", pathinfo.Dirs{}))
}

// ===== Directory-only rules consult the inspector =====

func TestCompile_DirectoryOnly(t *testing.T) {
	m := mustCompile(t, "/base", "cache/")
	require.True(t, m.DirOnly())
	require.True(t, m.Relative())

	dirs := pathinfo.Dirs{p("/base/x/cache"): true}

	// Given: the same path string as a directory and as a file
	// Then: only the directory is accepted
	assert.True(t, m.Match(p("/base/x/cache"), dirs))
	assert.False(t, m.Match(p("/base/x/cache"), pathinfo.Dirs{}))
	assert.False(t, m.Match(p("/base/x/cachex"), dirs))
}

func TestCompile_DirectoryOnlyOnDisk(t *testing.T) {
	// Given: a directory and a file with the rule's leaf name
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "a", "cache"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "b"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b", "cache"), []byte("x"), 0o644))

	m, err := Compile(root, "cache/")
	require.NoError(t, err)

	// When/Then: nil inspector uses the real filesystem
	assert.True(t, m.Match(filepath.Join(root, "a", "cache"), nil))
	assert.False(t, m.Match(filepath.Join(root, "b", "cache"), nil))
	assert.False(t, m.Match(filepath.Join(root, "missing", "cache"), nil))
}

// ===== Wildcards =====

func TestCompile_Wildcards(t *testing.T) {
	tests := []struct {
		name      string
		rule      string
		candidate string
		expected  bool
	}{
		{"double star crosses separators", "/**/node_modules", "/base/a/b/node_modules", true},
		{"double star matches zero directories", "/**/node_modules", "/base/node_modules", true},
		{"double star in the middle", "a/**/b", "/base/a/x/y/b", true},
		{"double star in the middle, zero dirs", "a/**/b", "/base/a/b", true},
		{"trailing double star", "/logs/**", "/base/logs/2024/01/app", true},
		{"leading double star, zero dirs", "**/cache", "/base/cache", true},
		{"double star glued to text keeps delimiter", "a**/b", "/base/ab", false},
		{"double star glued to text spans", "a**/b", "/base/ax/y/b", true},
		{"double star glued to text, empty span", "a**/b", "/base/a/b", true},
		{"single star within a segment", "/a*b", "/base/axyzb", true},
		{"single star matches empty", "/a*b", "/base/ab", true},
		{"single star stops at separator", "/a*b", "/base/a/xb", false},
		{"single star leaf", "tmp*", "/base/x/tmp_1", true},
		{"question mark one char", "/v?", "/base/v2", true},
		{"question mark zero chars", "/v?", "/base/v", true},
		{"question mark not two chars", "/v?", "/base/v22", false},
		{"question mark not separator", "/a?b", "/base/a/b", false},
		{"star does not match space", "/a*b", "/base/a b", false},
		{"star matches dots and dashes", "/a*b", "/base/a.x-yb", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mustCompile(t, "/base", tt.rule)
			assert.Equal(t, tt.expected, m.Match(p(tt.candidate), pathinfo.Dirs{}), "pattern %s", m.Pattern())
		})
	}
}

// ===== Base directory is a literal =====

func TestCompile_BaseIsEscaped(t *testing.T) {
	m := mustCompile(t, "/data/my.box+1", "x")

	assert.True(t, m.Match(p("/data/my.box+1/x"), pathinfo.Dirs{}))
	assert.False(t, m.Match(p("/data/myXbox+1/x"), pathinfo.Dirs{}))
	assert.False(t, m.Match(p("/data/my.boxx1/x"), pathinfo.Dirs{}))
}

// ===== Failures =====

func TestCompile_DoubleSeparatorFails(t *testing.T) {
	m, err := Compile(p("/base"), "//")
	require.Error(t, err)
	assert.Nil(t, m)

	var ce *CompileError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "//", ce.Rule)
	assert.Contains(t, err.Error(), "ambiguous repeated separator")
}

func TestCompile_InvalidBaseFails(t *testing.T) {
	_, err := Compile("/base\xff", "x")
	require.Error(t, err)

	var ce *CompileError
	assert.True(t, errors.As(err, &ce))
	assert.Contains(t, err.Error(), "not valid UTF-8")
}

func TestMatch_InvalidUTF8CandidateNeverMatches(t *testing.T) {
	m := mustCompile(t, "/base", "**")
	assert.False(t, m.Match(p("/base/\xff\xfe"), pathinfo.Dirs{}))
}

func TestMatch_EmptyRuleNeverMatches(t *testing.T) {
	m := mustCompile(t, "/base", "")
	assert.Empty(t, m.Tokens())
	assert.False(t, m.Match(p("/base"), pathinfo.Dirs{}))
	assert.False(t, m.Match(p("/base/x"), pathinfo.Dirs{}))
}

// ===== Compilation is deterministic =====

func TestCompile_Idempotent(t *testing.T) {
	samples := []string{
		"/base/node_modules",
		"/base/a/node_modules",
		"/base/a/b",
		"/base/x/a/b",
		"/base/axb",
		"/base/a/xb",
		"/other/node_modules",
	}

	for _, rule := range []string{"node_modules", "/a/b", "/a*b", "/**/node_modules", "a?/"} {
		t.Run(rule, func(t *testing.T) {
			first := mustCompile(t, "/base", rule)
			second := mustCompile(t, "/base", rule)

			assert.Equal(t, first.Pattern(), second.Pattern())
			assert.Equal(t, first.Tokens(), second.Tokens())
			for _, s := range samples {
				assert.Equal(t, first.Match(p(s), pathinfo.Dirs{}), second.Match(p(s), pathinfo.Dirs{}), s)
			}
		})
	}
}

func TestMatcher_Accessors(t *testing.T) {
	m := mustCompile(t, "/base", "/a/b/")

	assert.Equal(t, "/a/b/", m.Rule())
	assert.Equal(t, p("/base"), m.Base())
	assert.True(t, m.DirOnly())
	assert.False(t, m.Relative())
	assert.NotEmpty(t, m.Pattern())

	// Tokens returns a copy
	tokens := m.Tokens()
	tokens[0] = Text("mutated")
	assert.Equal(t, Separator, m.Tokens()[0])
}
