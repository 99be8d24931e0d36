package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/dropignore/internal/flagstore"
	"github.com/Aman-CERP/dropignore/internal/watcher"
)

// isolate points the user config at an empty directory so the developer's
// own config never leaks into a test.
func isolate(t *testing.T) string {
	t.Helper()
	configDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configDir)
	for _, name := range []string{
		"IGNORE_FILE", "WATCH_BACKEND", "POLL_INTERVAL", "RENAME_WINDOW", "EVENT_BUFFER",
		"STORE", "STORE_PATH", "ATTRIBUTE", "UNMATCHED", "LOG_LEVEL", "LOG_FILE",
	} {
		t.Setenv(EnvPrefix+name, "")
	}
	return configDir
}

func writeUserConfig(t *testing.T, configDir, content string) {
	t.Helper()
	dir := filepath.Join(configDir, "dropignore")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))
}

// =============================================================================
// Defaults
// =============================================================================

func TestNewConfig_ReturnsDefaults(t *testing.T) {
	// Given: no configuration file exists
	cfg := NewConfig()

	// Then: all defaults should be applied
	require.NotNil(t, cfg)
	assert.Equal(t, 1, cfg.Version)

	assert.Equal(t, ".dropignore", cfg.Watch.IgnoreFile)
	assert.Equal(t, watcher.BackendFsnotify, cfg.Watch.Backend)
	assert.Equal(t, "2s", cfg.Watch.PollInterval)
	assert.Equal(t, "50ms", cfg.Watch.RenameWindow)
	assert.Equal(t, 1000, cfg.Watch.EventBuffer)

	assert.Equal(t, string(flagstore.BackendXattr), cfg.Store.Backend)
	assert.Empty(t, cfg.Store.Path)

	assert.Equal(t, "none", cfg.Rules.Unmatched)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 10, cfg.Logging.MaxSizeMB)
	assert.Equal(t, 5, cfg.Logging.MaxFiles)

	assert.NoError(t, cfg.Validate())
}

func TestConfig_WatchOptions_MatchesWatcherDefaults(t *testing.T) {
	// When: converting the default config
	opts := NewConfig().WatchOptions()

	// Then: it agrees with the watcher package defaults
	assert.Equal(t, watcher.DefaultOptions(), opts)
}

func TestConfig_WatchOptions_ParsesDurations(t *testing.T) {
	cfg := NewConfig()
	cfg.Watch.Backend = watcher.BackendPolling
	cfg.Watch.PollInterval = "750ms"
	cfg.Watch.RenameWindow = "1s"
	cfg.Watch.EventBuffer = 16

	opts := cfg.WatchOptions()

	assert.Equal(t, watcher.BackendPolling, opts.Backend)
	assert.Equal(t, 750*time.Millisecond, opts.PollInterval)
	assert.Equal(t, time.Second, opts.RenameWindow)
	assert.Equal(t, 16, opts.EventBufferSize)
}

func TestConfig_StoreOptions(t *testing.T) {
	cfg := NewConfig()
	cfg.Store.Backend = "bolt"
	cfg.Store.Path = "/tmp/flags.bolt"
	cfg.Store.Attribute = "user.test"

	opts := cfg.StoreOptions()

	assert.Equal(t, flagstore.BackendBolt, opts.Backend)
	assert.Equal(t, "/tmp/flags.bolt", opts.Path)
	assert.Equal(t, "user.test", opts.Attribute)
}

func TestConfig_IgnoreFilePath(t *testing.T) {
	root := t.TempDir()
	cfg := NewConfig()

	// Relative names resolve against the root
	assert.Equal(t, filepath.Join(root, ".dropignore"), cfg.IgnoreFilePath(root))

	// Absolute names are kept
	abs := filepath.Join(t.TempDir(), "rules")
	cfg.Watch.IgnoreFile = abs
	assert.Equal(t, abs, cfg.IgnoreFilePath(root))
}

// =============================================================================
// Validation
// =============================================================================

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"polling backend", func(c *Config) { c.Watch.Backend = "polling" }, ""},
		{"unknown watch backend", func(c *Config) { c.Watch.Backend = "inotify" }, "watch.backend"},
		{"bad poll interval", func(c *Config) { c.Watch.PollInterval = "soon" }, "watch.poll_interval"},
		{"negative rename window", func(c *Config) { c.Watch.RenameWindow = "-1s" }, "watch.rename_window"},
		{"negative buffer", func(c *Config) { c.Watch.EventBuffer = -1 }, "watch.event_buffer"},
		{"empty ignore file", func(c *Config) { c.Watch.IgnoreFile = "" }, "watch.ignore_file"},
		{"sqlite store", func(c *Config) { c.Store.Backend = "sqlite" }, ""},
		{"unknown store", func(c *Config) { c.Store.Backend = "redis" }, "store.backend"},
		{"deselect unmatched", func(c *Config) { c.Rules.Unmatched = "deselect" }, ""},
		{"select unmatched", func(c *Config) { c.Rules.Unmatched = "select" }, "rules.unmatched"},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, "logging.level"},
		{"negative max files", func(c *Config) { c.Logging.MaxFiles = -2 }, "logging.max_files"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Given: a default config with one field changed
			cfg := NewConfig()
			tt.mutate(cfg)

			// When: validating
			err := cfg.Validate()

			// Then: only the broken field is reported
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// =============================================================================
// Loading and precedence
// =============================================================================

func TestLoad_NoConfigFile_ReturnsDefaults(t *testing.T) {
	// Given: a directory with no .dropignore.yaml
	isolate(t)
	root := t.TempDir()

	// When: loading configuration
	cfg, err := Load(root, "")

	// Then: defaults are returned without error
	require.NoError(t, err)
	assert.Equal(t, NewConfig(), cfg)
}

func TestLoad_ProjectFile_OverridesDefaults(t *testing.T) {
	// Given: a root with .dropignore.yaml
	isolate(t)
	root := t.TempDir()
	content := `
watch:
  backend: polling
  poll_interval: 5s
store:
  backend: sqlite
  path: /var/tmp/flags.db
rules:
  unmatched: deselect
`
	require.NoError(t, os.WriteFile(filepath.Join(root, ProjectFileName), []byte(content), 0o644))

	// When: loading configuration
	cfg, err := Load(root, "")

	// Then: overrides are applied and untouched fields keep defaults
	require.NoError(t, err)
	assert.Equal(t, "polling", cfg.Watch.Backend)
	assert.Equal(t, "5s", cfg.Watch.PollInterval)
	assert.Equal(t, "50ms", cfg.Watch.RenameWindow)
	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.Equal(t, "/var/tmp/flags.db", cfg.Store.Path)
	assert.Equal(t, "deselect", cfg.Rules.Unmatched)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_YamlPreferredOverYml(t *testing.T) {
	isolate(t)
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ProjectFileName), []byte("store:\n  backend: bolt\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, ProjectFileNameAlt), []byte("store:\n  backend: sqlite\n"), 0o644))

	cfg, err := Load(root, "")

	require.NoError(t, err)
	assert.Equal(t, "bolt", cfg.Store.Backend)
}

func TestLoad_YmlExtension_IsRecognized(t *testing.T) {
	isolate(t)
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ProjectFileNameAlt), []byte("store:\n  backend: sqlite\n"), 0o644))

	cfg, err := Load(root, "")

	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Store.Backend)
}

func TestLoad_Precedence(t *testing.T) {
	// Given: user, project and explicit configs all set the same fields
	configDir := isolate(t)
	root := t.TempDir()

	writeUserConfig(t, configDir, `
store:
  backend: sqlite
  path: /user/flags.db
logging:
  level: warn
rules:
  unmatched: deselect
`)
	require.NoError(t, os.WriteFile(filepath.Join(root, ProjectFileName), []byte(`
store:
  backend: bolt
logging:
  level: error
`), 0o644))
	explicit := filepath.Join(t.TempDir(), "explicit.yaml")
	require.NoError(t, os.WriteFile(explicit, []byte("logging:\n  level: debug\n"), 0o644))
	t.Setenv(EnvPrefix+"STORE", "MEMORY")

	// When: loading configuration
	cfg, err := Load(root, explicit)

	// Then: each layer wins over the ones below it
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Store.Backend, "env beats project")
	assert.Equal(t, "/user/flags.db", cfg.Store.Path, "user value survives when nobody overrides it")
	assert.Equal(t, "debug", cfg.Logging.Level, "explicit file beats project")
	assert.Equal(t, "deselect", cfg.Rules.Unmatched, "user beats defaults")
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	root := t.TempDir()
	t.Setenv(EnvPrefix+"IGNORE_FILE", "rules.txt")
	t.Setenv(EnvPrefix+"WATCH_BACKEND", "Polling")
	t.Setenv(EnvPrefix+"POLL_INTERVAL", "3s")
	t.Setenv(EnvPrefix+"RENAME_WINDOW", "10ms")
	t.Setenv(EnvPrefix+"EVENT_BUFFER", "42")
	t.Setenv(EnvPrefix+"ATTRIBUTE", "user.custom")
	t.Setenv(EnvPrefix+"UNMATCHED", "deselect")
	t.Setenv(EnvPrefix+"LOG_LEVEL", "WARN")

	cfg, err := Load(root, "")

	require.NoError(t, err)
	assert.Equal(t, "rules.txt", cfg.Watch.IgnoreFile)
	assert.Equal(t, "polling", cfg.Watch.Backend)
	assert.Equal(t, "3s", cfg.Watch.PollInterval)
	assert.Equal(t, "10ms", cfg.Watch.RenameWindow)
	assert.Equal(t, 42, cfg.Watch.EventBuffer)
	assert.Equal(t, "user.custom", cfg.Store.Attribute)
	assert.Equal(t, "deselect", cfg.Rules.Unmatched)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_EnvBadNumber_ReturnsError(t *testing.T) {
	isolate(t)
	t.Setenv(EnvPrefix+"EVENT_BUFFER", "lots")

	cfg, err := Load(t.TempDir(), "")

	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "EVENT_BUFFER")
}

func TestLoad_InvalidYaml_ReturnsError(t *testing.T) {
	isolate(t)
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ProjectFileName), []byte("watch: [broken\n"), 0o644))

	cfg, err := Load(root, "")

	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse")
}

func TestLoad_InvalidValue_ReturnsError(t *testing.T) {
	isolate(t)
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ProjectFileName), []byte("watch:\n  backend: kqueue\n"), 0o644))

	cfg, err := Load(root, "")

	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestLoad_MissingExplicitFile_ReturnsError(t *testing.T) {
	isolate(t)

	cfg, err := Load(t.TempDir(), filepath.Join(t.TempDir(), "nope.yaml"))

	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_InvalidUserConfig_ReturnsError(t *testing.T) {
	configDir := isolate(t)
	writeUserConfig(t, configDir, "store:\n  backend: [oops\n")

	cfg, err := Load(t.TempDir(), "")

	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "user config")
}

// =============================================================================
// User config location
// =============================================================================

func TestGetUserConfigPath_RespectsXDGConfigHome(t *testing.T) {
	configDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configDir)

	assert.Equal(t, filepath.Join(configDir, "dropignore", "config.yaml"), GetUserConfigPath())
	assert.Equal(t, filepath.Join(configDir, "dropignore"), GetUserConfigDir())
}

func TestGetUserConfigPath_DefaultsToHomeConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".config", "dropignore", "config.yaml"), GetUserConfigPath())
}

func TestUserConfigExists(t *testing.T) {
	configDir := isolate(t)
	assert.False(t, UserConfigExists())

	writeUserConfig(t, configDir, "version: 1\n")
	assert.True(t, UserConfigExists())
}

func TestLoadUserConfig_MissingReturnsNil(t *testing.T) {
	isolate(t)

	cfg, err := LoadUserConfig()

	require.NoError(t, err)
	assert.Nil(t, cfg)
}
