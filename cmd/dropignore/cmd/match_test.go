package cmd

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	derrors "github.com/Aman-CERP/dropignore/internal/errors"
)

func TestMatch_ReportsDecisionAndRule(t *testing.T) {
	// Given: a rule file at the root and a nested directory
	isolate(t)
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".dropignore":       "node_modules\ndist/\n",
		"web/node_modules/": "",
		"web/src/app.ts":    "x",
		"web/dist":          "a file, not a directory",
		"other/dist/":       "",
	})
	rules := filepath.Join(root, ".dropignore")

	// When: matching several paths
	out, _, err := runCLI(t, "match",
		filepath.Join(root, "web", "node_modules"),
		filepath.Join(root, "web", "src", "app.ts"),
		filepath.Join(root, "web", "dist"),
		filepath.Join(root, "other", "dist"),
	)

	// Then: one line per path, in order
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, fmt.Sprintf("select\t%s\tnode_modules (%s)", filepath.Join(root, "web", "node_modules"), rules), lines[0])
	assert.Equal(t, fmt.Sprintf("none\t%s\t-", filepath.Join(root, "web", "src", "app.ts")), lines[1])
	assert.Equal(t, fmt.Sprintf("none\t%s\t-", filepath.Join(root, "web", "dist")), lines[2])
	assert.Equal(t, fmt.Sprintf("select\t%s\tdist/ (%s)", filepath.Join(root, "other", "dist"), rules), lines[3])
}

func TestMatch_NearestRuleFileWins(t *testing.T) {
	isolate(t)
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".dropignore":     "cache\n",
		"sub/.dropignore": "tmp\n",
		"sub/cache/":      "",
	})

	out, _, err := runCLI(t, "match", "--unmatched", "deselect", filepath.Join(root, "sub", "cache"))

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "deselect\t"), "sub/.dropignore has no cache rule: %q", out)
}

func TestMatch_NoRuleFile(t *testing.T) {
	isolate(t)
	dir := t.TempDir()

	_, _, err := runCLI(t, "match", filepath.Join(dir, "x"))

	require.Error(t, err)
	assert.Equal(t, derrors.ErrCodeConfigNotFound, derrors.GetCode(err))
}
