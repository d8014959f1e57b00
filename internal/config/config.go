// Package config handles configuration loading for vtagent. It
// supports XDG config paths, project-level overrides, and environment
// variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config holds all configuration for vtagent.
type Config struct {
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Workers   WorkersConfig   `mapstructure:"workers"`
	Session   SessionConfig   `mapstructure:"session"`
	Shutdown  ShutdownConfig  `mapstructure:"shutdown"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	TUI       TUIConfig       `mapstructure:"tui"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	APIKey string `mapstructure:"api_key"`
	// Model is the model identifier used for task execution.
	Model string `mapstructure:"model"`
	// VerifierModel is the model used for verification. Empty means
	// reuse Model.
	VerifierModel string `mapstructure:"verifier_model"`
	// UseBedrock routes requests through AWS Bedrock instead of the
	// Anthropic API.
	UseBedrock bool `mapstructure:"use_bedrock"`
	// Region is the AWS region for Bedrock.
	Region string `mapstructure:"region"`
}

// WorkersConfig holds worker pool sizing. Explorers default lower
// than coders: exploration is a smaller share of a session's work.
type WorkersConfig struct {
	Coders    int `mapstructure:"coders"`
	Explorers int `mapstructure:"explorers"`
}

// SessionConfig holds per-session settings.
type SessionConfig struct {
	// HistoryLimit bounds the in-memory completed-task history.
	HistoryLimit int `mapstructure:"history_limit"`
}

// ShutdownConfig holds drain settings.
type ShutdownConfig struct {
	// Grace is how long Shutdown waits for active tasks.
	Grace time.Duration `mapstructure:"grace"`
	// PollInterval is how often the drain checks for active tasks.
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// TelemetryConfig holds execution-journal settings.
type TelemetryConfig struct {
	// Enabled toggles the SQLite execution journal.
	Enabled bool `mapstructure:"enabled"`
	// DBPath is the journal path. Empty means .vtagent/telemetry.db
	// under the working directory.
	DBPath string `mapstructure:"db_path"`
}

// TUIConfig holds TUI display settings.
type TUIConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	RefreshRate time.Duration `mapstructure:"refresh_rate"`
}

// Load loads configuration from XDG paths, project overrides, and
// environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (ANTHROPIC_API_KEY, VTAGENT_*)
// 2. Project config (.vtagent.yaml in current directory or parent)
// 3. User config (~/.config/vtagent/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	// Project config takes precedence over the user config.
	projectConfig := findProjectConfig()
	if projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	v.SetEnvPrefix("VTAGENT")
	v.AutomaticEnv()
	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")
	v.BindEnv("anthropic.region", "AWS_REGION")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = os.ExpandEnv(cfg.Anthropic.APIKey)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific path.
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = os.ExpandEnv(cfg.Anthropic.APIKey)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the engine cannot run with.
func (c *Config) Validate() error {
	if c.Workers.Coders < 0 || c.Workers.Explorers < 0 {
		return fmt.Errorf("worker counts must be non-negative (coders=%d explorers=%d)", c.Workers.Coders, c.Workers.Explorers)
	}
	if c.Workers.Coders == 0 && c.Workers.Explorers == 0 {
		return fmt.Errorf("at least one worker is required")
	}
	if c.Session.HistoryLimit < 0 {
		return fmt.Errorf("session.history_limit must be non-negative, got %d", c.Session.HistoryLimit)
	}
	if c.Shutdown.Grace <= 0 {
		return fmt.Errorf("shutdown.grace must be positive, got %s", c.Shutdown.Grace)
	}
	if c.Shutdown.PollInterval <= 0 {
		return fmt.Errorf("shutdown.poll_interval must be positive, got %s", c.Shutdown.PollInterval)
	}
	return nil
}

// Watch re-reads the project config on file change and invokes fn with
// the fresh Config. Invalid edits are reported to fn as an error and
// the previous config stays in effect.
func Watch(path string, fn func(*Config, error)) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	v.OnConfigChange(func(_ fsnotify.Event) {
		cfg := &Config{}
		if err := v.Unmarshal(cfg); err != nil {
			fn(nil, fmt.Errorf("unmarshaling config: %w", err))
			return
		}
		cfg.Anthropic.APIKey = os.ExpandEnv(cfg.Anthropic.APIKey)
		if err := cfg.Validate(); err != nil {
			fn(nil, err)
			return
		}
		fn(cfg, nil)
	})
	v.WatchConfig()
	return v, nil
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if
// it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.model", "claude-sonnet-4-20250514")
	v.SetDefault("anthropic.verifier_model", "")
	v.SetDefault("anthropic.use_bedrock", false)
	v.SetDefault("anthropic.region", "us-east-1")

	v.SetDefault("workers.coders", 3)
	v.SetDefault("workers.explorers", 2)

	v.SetDefault("session.history_limit", 1000)

	v.SetDefault("shutdown.grace", "30s")
	v.SetDefault("shutdown.poll_interval", "50ms")

	v.SetDefault("telemetry.enabled", true)
	v.SetDefault("telemetry.db_path", "")

	v.SetDefault("tui.enabled", false)
	v.SetDefault("tui.refresh_rate", "100ms")
}

// getUserConfigDir returns the XDG config directory for vtagent.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "vtagent")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "vtagent")
	}
	return filepath.Join(home, ".config", "vtagent")
}

// findProjectConfig searches for .vtagent.yaml in the current
// directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".vtagent.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Anthropic: AnthropicConfig{
			Model:  "claude-sonnet-4-20250514",
			Region: "us-east-1",
		},
		Workers: WorkersConfig{
			Coders:    3,
			Explorers: 2,
		},
		Session: SessionConfig{
			HistoryLimit: 1000,
		},
		Shutdown: ShutdownConfig{
			Grace:        30 * time.Second,
			PollInterval: 50 * time.Millisecond,
		},
		Telemetry: TelemetryConfig{
			Enabled: true,
		},
		TUI: TUIConfig{
			RefreshRate: 100 * time.Millisecond,
		},
	}
}
