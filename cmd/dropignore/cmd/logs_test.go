package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleLog = `{"time":"2026-10-17T10:00:00.000Z","level":"INFO","msg":"watch started","session":"3f2a9c","root":"/d"}
{"time":"2026-10-17T10:00:01.000Z","level":"INFO","msg":"ignoring","session":"3f2a9c","path":"/d/node_modules"}
{"time":"2026-10-17T10:00:02.000Z","level":"ERROR","msg":"flag update failed","session":"77b1e0","path":"/d/x"}
not json at all
`

func writeLog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dropignore.log")
	require.NoError(t, os.WriteFile(path, []byte(sampleLog), 0o644))
	return path
}

func TestLogsCmd_Filters(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    []string
		notWant []string
	}{
		{
			name: "all",
			args: nil,
			want: []string{"watch started", "ignoring", "flag update failed", "not json at all"},
		},
		{
			name:    "level",
			args:    []string{"--level", "error"},
			want:    []string{"flag update failed"},
			notWant: []string{"watch started", "ignoring"},
		},
		{
			name:    "session prefix",
			args:    []string{"--session", "3f2a"},
			want:    []string{"watch started", "ignoring"},
			notWant: []string{"flag update failed"},
		},
		{
			name:    "grep",
			args:    []string{"--grep", "node_modules"},
			want:    []string{"ignoring"},
			notWant: []string{"watch started", "flag update failed"},
		},
		{
			name:    "last lines",
			args:    []string{"-n", "2"},
			want:    []string{"flag update failed"},
			notWant: []string{"watch started", "ignoring"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			path := writeLog(t)

			args := append([]string{"logs", "--no-color", "--file", path}, tt.args...)
			out, stderr, err := runCLI(t, args...)

			require.NoError(t, err)
			assert.Contains(t, stderr, "Log file: "+path)
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
			for _, nw := range tt.notWant {
				assert.NotContains(t, out, nw)
			}
		})
	}
}

func TestLogsCmd_FormatsAttributes(t *testing.T) {
	isolate(t)
	path := writeLog(t)

	out, _, err := runCLI(t, "logs", "--no-color", "--file", path, "--grep", "node_modules")

	require.NoError(t, err)
	line := strings.TrimSpace(out)
	assert.Contains(t, line, "INFO")
	assert.Contains(t, line, "path=/d/node_modules")
}

func TestLogsCmd_Errors(t *testing.T) {
	isolate(t)

	_, _, err := runCLI(t, "logs")
	assert.ErrorContains(t, err, "no log file found")

	_, _, err = runCLI(t, "logs", "--file", filepath.Join(t.TempDir(), "missing.log"))
	assert.ErrorContains(t, err, "log file not found")

	_, _, err = runCLI(t, "logs", "--file", writeLog(t), "--grep", "(")
	assert.ErrorContains(t, err, "invalid --grep pattern")
}
