package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/dropignore/internal/flagstore"
	"github.com/Aman-CERP/dropignore/internal/watcher"
)

const (
	// ProjectFileName is the per-directory config file read from the watched root.
	ProjectFileName = ".dropignore.yaml"

	// ProjectFileNameAlt is accepted when ProjectFileName is absent.
	ProjectFileNameAlt = ".dropignore.yml"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "DROPIGNORE_"
)

// Config represents the complete dropignore configuration.
type Config struct {
	Version int           `yaml:"version" json:"version"`
	Watch   WatchConfig   `yaml:"watch" json:"watch"`
	Store   StoreConfig   `yaml:"store" json:"store"`
	Rules   RulesConfig   `yaml:"rules" json:"rules"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// WatchConfig configures the change source used by `watch`.
type WatchConfig struct {
	// IgnoreFile is the rule file name, resolved against the watched root
	// when relative.
	IgnoreFile string `yaml:"ignore_file" json:"ignore_file"`

	// Backend is "fsnotify" or "polling".
	Backend string `yaml:"backend" json:"backend"`

	// PollInterval is a duration string such as "2s".
	PollInterval string `yaml:"poll_interval" json:"poll_interval"`

	// RenameWindow is how long a rename waits for its create half.
	RenameWindow string `yaml:"rename_window" json:"rename_window"`

	EventBuffer int `yaml:"event_buffer" json:"event_buffer"`
}

// StoreConfig selects where ignore flags are persisted.
type StoreConfig struct {
	// Backend is one of xattr, sqlite, bolt or memory.
	Backend string `yaml:"backend" json:"backend"`

	// Path is the database file for sqlite and bolt. Empty uses ~/.dropignore.
	Path string `yaml:"path" json:"path"`

	// Attribute overrides the extended attribute name.
	Attribute string `yaml:"attribute" json:"attribute"`
}

// RulesConfig tunes rule evaluation.
type RulesConfig struct {
	// Unmatched is the decision for paths no rule matches: "none" or "deselect".
	Unmatched string `yaml:"unmatched" json:"unmatched"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level     string `yaml:"level" json:"level"`
	File      string `yaml:"file" json:"file"`
	MaxSizeMB int    `yaml:"max_size_mb" json:"max_size_mb"`
	MaxFiles  int    `yaml:"max_files" json:"max_files"`
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Watch: WatchConfig{
			IgnoreFile:   ".dropignore",
			Backend:      watcher.BackendFsnotify,
			PollInterval: "2s",
			RenameWindow: "50ms",
			EventBuffer:  1000,
		},
		Store: StoreConfig{
			Backend: string(flagstore.BackendXattr),
		},
		Rules: RulesConfig{
			Unmatched: "none",
		},
		Logging: LoggingConfig{
			Level:     "info",
			MaxSizeMB: 10,
			MaxFiles:  5,
		},
	}
}

// GetUserConfigPath returns the path to the user/global configuration file.
// It follows XDG Base Directory specification:
//   - $XDG_CONFIG_HOME/dropignore/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/dropignore/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "dropignore", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "dropignore", "config.yaml")
	}
	return filepath.Join(home, ".config", "dropignore", "config.yaml")
}

// GetUserConfigDir returns the directory containing the user configuration.
func GetUserConfigDir() string {
	return filepath.Dir(GetUserConfigPath())
}

// UserConfigExists returns true if the user configuration file exists.
func UserConfigExists() bool {
	return fileExists(GetUserConfigPath())
}

// loadUserConfig returns nil config and nil error if the file doesn't exist.
func loadUserConfig() (*Config, error) {
	configPath := GetUserConfigPath()
	if !fileExists(configPath) {
		return nil, nil
	}

	cfg := &Config{}
	if err := cfg.loadYAML(configPath); err != nil {
		return nil, fmt.Errorf("failed to load user config from %s: %w", configPath, err)
	}
	return cfg, nil
}

// Load resolves the configuration for a watched root directory.
// It applies configuration in order of increasing precedence:
//  1. Hardcoded defaults
//  2. User/global config (~/.config/dropignore/config.yaml)
//  3. Project config (.dropignore.yaml in root)
//  4. Explicit file (the --config flag), when explicit is non-empty
//  5. Environment variables (DROPIGNORE_*)
func Load(root, explicit string) (*Config, error) {
	cfg := NewConfig()

	if userCfg, err := loadUserConfig(); err != nil {
		return nil, err
	} else if userCfg != nil {
		cfg.mergeWith(userCfg)
	}

	if root != "" {
		if err := cfg.loadFromFile(root); err != nil {
			return nil, err
		}
	}

	if explicit != "" {
		if err := cfg.loadYAML(explicit); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads .dropignore.yaml or .dropignore.yml from dir.
func (c *Config) loadFromFile(dir string) error {
	for _, name := range []string{ProjectFileName, ProjectFileNameAlt} {
		path := filepath.Join(dir, name)
		if fileExists(path) {
			return c.loadYAML(path)
		}
	}
	return nil
}

// loadYAML parses path and merges its non-zero values into c.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	c.mergeWith(&parsed)
	return nil
}

// mergeWith merges non-zero values from other into c.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}

	// Watch
	if other.Watch.IgnoreFile != "" {
		c.Watch.IgnoreFile = other.Watch.IgnoreFile
	}
	if other.Watch.Backend != "" {
		c.Watch.Backend = other.Watch.Backend
	}
	if other.Watch.PollInterval != "" {
		c.Watch.PollInterval = other.Watch.PollInterval
	}
	if other.Watch.RenameWindow != "" {
		c.Watch.RenameWindow = other.Watch.RenameWindow
	}
	if other.Watch.EventBuffer != 0 {
		c.Watch.EventBuffer = other.Watch.EventBuffer
	}

	// Store
	if other.Store.Backend != "" {
		c.Store.Backend = other.Store.Backend
	}
	if other.Store.Path != "" {
		c.Store.Path = other.Store.Path
	}
	if other.Store.Attribute != "" {
		c.Store.Attribute = other.Store.Attribute
	}

	// Rules
	if other.Rules.Unmatched != "" {
		c.Rules.Unmatched = other.Rules.Unmatched
	}

	// Logging
	if other.Logging.Level != "" {
		c.Logging.Level = other.Logging.Level
	}
	if other.Logging.File != "" {
		c.Logging.File = other.Logging.File
	}
	if other.Logging.MaxSizeMB != 0 {
		c.Logging.MaxSizeMB = other.Logging.MaxSizeMB
	}
	if other.Logging.MaxFiles != 0 {
		c.Logging.MaxFiles = other.Logging.MaxFiles
	}
}

// applyEnvOverrides applies DROPIGNORE_* environment variable overrides.
// Malformed numbers are reported rather than silently ignored.
func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv(EnvPrefix + "IGNORE_FILE"); v != "" {
		c.Watch.IgnoreFile = v
	}
	if v := os.Getenv(EnvPrefix + "WATCH_BACKEND"); v != "" {
		c.Watch.Backend = strings.ToLower(v)
	}
	if v := os.Getenv(EnvPrefix + "POLL_INTERVAL"); v != "" {
		c.Watch.PollInterval = v
	}
	if v := os.Getenv(EnvPrefix + "RENAME_WINDOW"); v != "" {
		c.Watch.RenameWindow = v
	}
	if v := os.Getenv(EnvPrefix + "EVENT_BUFFER"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sEVENT_BUFFER: %w", EnvPrefix, err)
		}
		c.Watch.EventBuffer = n
	}

	if v := os.Getenv(EnvPrefix + "STORE"); v != "" {
		c.Store.Backend = strings.ToLower(v)
	}
	if v := os.Getenv(EnvPrefix + "STORE_PATH"); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv(EnvPrefix + "ATTRIBUTE"); v != "" {
		c.Store.Attribute = v
	}

	if v := os.Getenv(EnvPrefix + "UNMATCHED"); v != "" {
		c.Rules.Unmatched = strings.ToLower(v)
	}

	if v := os.Getenv(EnvPrefix + "LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv(EnvPrefix + "LOG_FILE"); v != "" {
		c.Logging.File = v
	}
	return nil
}

// Validate checks enums, durations and sizes.
func (c *Config) Validate() error {
	switch c.Watch.Backend {
	case watcher.BackendFsnotify, watcher.BackendPolling:
	default:
		return fmt.Errorf("watch.backend must be '%s' or '%s', got %q",
			watcher.BackendFsnotify, watcher.BackendPolling, c.Watch.Backend)
	}
	if _, err := parseDuration("watch.poll_interval", c.Watch.PollInterval); err != nil {
		return err
	}
	if _, err := parseDuration("watch.rename_window", c.Watch.RenameWindow); err != nil {
		return err
	}
	if c.Watch.EventBuffer < 0 {
		return fmt.Errorf("watch.event_buffer must be non-negative, got %d", c.Watch.EventBuffer)
	}
	if c.Watch.IgnoreFile == "" {
		return fmt.Errorf("watch.ignore_file must not be empty")
	}

	switch flagstore.Backend(c.Store.Backend) {
	case flagstore.BackendXattr, flagstore.BackendSQLite, flagstore.BackendBolt, flagstore.BackendMemory:
	default:
		return fmt.Errorf("store.backend must be 'xattr', 'sqlite', 'bolt', or 'memory', got %q", c.Store.Backend)
	}

	switch strings.ToLower(c.Rules.Unmatched) {
	case "none", "deselect":
	default:
		return fmt.Errorf("rules.unmatched must be 'none' or 'deselect', got %q", c.Rules.Unmatched)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("logging.level must be 'debug', 'info', 'warn', or 'error', got %s", c.Logging.Level)
	}
	if c.Logging.MaxSizeMB < 0 {
		return fmt.Errorf("logging.max_size_mb must be non-negative, got %d", c.Logging.MaxSizeMB)
	}
	if c.Logging.MaxFiles < 0 {
		return fmt.Errorf("logging.max_files must be non-negative, got %d", c.Logging.MaxFiles)
	}

	return nil
}

func parseDuration(field, s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration like \"2s\", got %q", field, s)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must be non-negative, got %s", field, s)
	}
	return d, nil
}

// WatchOptions converts the watch section into watcher options.
// Call Validate first; unparsable durations fall back to defaults.
func (c *Config) WatchOptions() watcher.Options {
	opts := watcher.Options{
		Backend:         c.Watch.Backend,
		EventBufferSize: c.Watch.EventBuffer,
	}
	if d, err := time.ParseDuration(c.Watch.PollInterval); err == nil {
		opts.PollInterval = d
	}
	if d, err := time.ParseDuration(c.Watch.RenameWindow); err == nil {
		opts.RenameWindow = d
	}
	return opts.WithDefaults()
}

// StoreOptions converts the store section into flag store options.
func (c *Config) StoreOptions() flagstore.Options {
	return flagstore.Options{
		Backend:   flagstore.Backend(c.Store.Backend),
		Path:      c.Store.Path,
		Attribute: c.Store.Attribute,
	}
}

// IgnoreFilePath resolves the rule file against root.
func (c *Config) IgnoreFilePath(root string) string {
	if filepath.IsAbs(c.Watch.IgnoreFile) {
		return c.Watch.IgnoreFile
	}
	return filepath.Join(root, c.Watch.IgnoreFile)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// JSON renders the configuration as indented JSON.
func (c *Config) JSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// LoadUserConfig loads the user configuration file.
// Returns nil config and nil error if the file doesn't exist.
func LoadUserConfig() (*Config, error) {
	return loadUserConfig()
}

// MergeNewDefaults adds new default fields while preserving existing values.
// Returns a list of field names that were added with their default values.
func (c *Config) MergeNewDefaults() []string {
	defaults := NewConfig()
	var added []string

	if c.Version == 0 {
		c.Version = defaults.Version
		added = append(added, "version")
	}
	if c.Watch.IgnoreFile == "" {
		c.Watch.IgnoreFile = defaults.Watch.IgnoreFile
		added = append(added, "watch.ignore_file")
	}
	if c.Watch.Backend == "" {
		c.Watch.Backend = defaults.Watch.Backend
		added = append(added, "watch.backend")
	}
	if c.Watch.PollInterval == "" {
		c.Watch.PollInterval = defaults.Watch.PollInterval
		added = append(added, "watch.poll_interval")
	}
	if c.Watch.RenameWindow == "" {
		c.Watch.RenameWindow = defaults.Watch.RenameWindow
		added = append(added, "watch.rename_window")
	}
	if c.Watch.EventBuffer == 0 {
		c.Watch.EventBuffer = defaults.Watch.EventBuffer
		added = append(added, "watch.event_buffer")
	}
	if c.Store.Backend == "" {
		c.Store.Backend = defaults.Store.Backend
		added = append(added, "store.backend")
	}
	if c.Rules.Unmatched == "" {
		c.Rules.Unmatched = defaults.Rules.Unmatched
		added = append(added, "rules.unmatched")
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaults.Logging.Level
		added = append(added, "logging.level")
	}
	if c.Logging.MaxSizeMB == 0 {
		c.Logging.MaxSizeMB = defaults.Logging.MaxSizeMB
		added = append(added, "logging.max_size_mb")
	}
	if c.Logging.MaxFiles == 0 {
		c.Logging.MaxFiles = defaults.Logging.MaxFiles
		added = append(added, "logging.max_files")
	}

	return added
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
