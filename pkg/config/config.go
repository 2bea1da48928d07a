// Package config handles loading and saving tsc-err-dirs configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config: ~/.config/tsc-err-dirs/config.yaml
//   - Cache:  ~/.cache/tsc-err-dirs/ (incremental build info)
//   - State:  ~/.local/state/tsc-err-dirs/ (debug log)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const appName = "tsc-err-dirs"

// WatchConfig controls the source watcher.
type WatchConfig struct {
	DebounceMS     int  `yaml:"debounce_ms,omitempty"`
	ForcePoll      bool `yaml:"force_poll,omitempty"`
	PollIntervalMS int  `yaml:"poll_interval_ms,omitempty"`
}

// PromptConfig holds file tree prompt preferences.
type PromptConfig struct {
	OnlyShowDir bool `yaml:"only_show_dir,omitempty"`
	HideRoot    bool `yaml:"hide_root,omitempty"`
	// EnableGoUpperDirectory defaults to true when unset.
	EnableGoUpperDirectory *bool `yaml:"enable_go_upper_directory,omitempty"`
}

// Config is the top-level configuration.
type Config struct {
	// Engine is "tsc", "vue-tsc", or empty for auto-detection.
	Engine   string       `yaml:"engine,omitempty"`
	PageSize int          `yaml:"page_size,omitempty"`
	CacheDir string       `yaml:"cache_dir,omitempty"`
	Watch    WatchConfig  `yaml:"watch,omitempty"`
	Prompt   PromptConfig `yaml:"prompt,omitempty"`
	// Engines remembers the engine picked per project root.
	Engines map[string]string `yaml:"engines,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		PageSize: 20,
		Watch: WatchConfig{
			DebounceMS:     300,
			PollIntervalMS: 2000,
		},
		Engines: make(map[string]string),
	}
}

func xdgDir(env string, fallback ...string) string {
	if dir := os.Getenv(env); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(append(append([]string{home}, fallback...), appName)...)
}

// ConfigDir returns the XDG config directory.
func ConfigDir() string { return xdgDir("XDG_CONFIG_HOME", ".config") }

// CacheDir returns the XDG cache directory.
func CacheDir() string { return xdgDir("XDG_CACHE_HOME", ".cache") }

// StateDir returns the XDG state directory.
func StateDir() string { return xdgDir("XDG_STATE_HOME", ".local", "state") }

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.Engines == nil {
		cfg.Engines = make(map[string]string)
	}
	cfg.CacheDir = expandHome(cfg.CacheDir)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports values the program cannot work with.
func (c Config) Validate() error {
	switch c.Engine {
	case "", "tsc", "vue-tsc":
	default:
		return fmt.Errorf("engine %q: want tsc or vue-tsc", c.Engine)
	}
	if c.PageSize < 0 {
		return fmt.Errorf("page_size must be positive, got %d", c.PageSize)
	}
	if c.Watch.DebounceMS < 0 || c.Watch.PollIntervalMS < 0 {
		return fmt.Errorf("watch durations must not be negative")
	}
	return nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// GoUpperDirectory reports whether the ".." entry is offered.
func (c Config) GoUpperDirectory() bool {
	return c.Prompt.EnableGoUpperDirectory == nil || *c.Prompt.EnableGoUpperDirectory
}

// DebounceDuration returns the watcher quiet period.
func (c Config) DebounceDuration() time.Duration {
	return time.Duration(c.Watch.DebounceMS) * time.Millisecond
}

// PollInterval returns the polling fallback interval.
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.Watch.PollIntervalMS) * time.Millisecond
}

// EngineFor returns the engine configured globally, else the one remembered
// for root.
func (c Config) EngineFor(root string) string {
	if c.Engine != "" {
		return c.Engine
	}
	return c.Engines[filepath.Clean(root)]
}

// RememberEngine records the engine picked for root.
func (c *Config) RememberEngine(root, engine string) {
	if c.Engines == nil {
		c.Engines = make(map[string]string)
	}
	c.Engines[filepath.Clean(root)] = engine
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
