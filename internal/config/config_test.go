package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Workers.Coders != 3 {
		t.Errorf("expected 3 default coders, got %d", cfg.Workers.Coders)
	}

	if cfg.Workers.Explorers != 2 {
		t.Errorf("expected 2 default explorers, got %d", cfg.Workers.Explorers)
	}

	if cfg.Session.HistoryLimit != 1000 {
		t.Errorf("expected history limit 1000, got %d", cfg.Session.HistoryLimit)
	}

	if cfg.Shutdown.Grace != 30*time.Second {
		t.Errorf("expected shutdown grace 30s, got %v", cfg.Shutdown.Grace)
	}

	if cfg.Shutdown.PollInterval != 50*time.Millisecond {
		t.Errorf("expected poll interval 50ms, got %v", cfg.Shutdown.PollInterval)
	}

	if !cfg.Telemetry.Enabled {
		t.Error("expected telemetry enabled by default")
	}

	if cfg.TUI.RefreshRate != 100*time.Millisecond {
		t.Errorf("expected refresh rate 100ms, got %v", cfg.TUI.RefreshRate)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromPath(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
anthropic:
  api_key: test-key
  model: claude-opus-4-20250514
  use_bedrock: true
  region: eu-west-1
workers:
  coders: 5
  explorers: 1
session:
  history_limit: 200
shutdown:
  grace: 10s
  poll_interval: 25ms
telemetry:
  enabled: false
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}

	if cfg.Anthropic.APIKey != "test-key" {
		t.Errorf("api key = %q", cfg.Anthropic.APIKey)
	}
	if cfg.Anthropic.Model != "claude-opus-4-20250514" {
		t.Errorf("model = %q", cfg.Anthropic.Model)
	}
	if !cfg.Anthropic.UseBedrock || cfg.Anthropic.Region != "eu-west-1" {
		t.Errorf("bedrock = %v region = %q", cfg.Anthropic.UseBedrock, cfg.Anthropic.Region)
	}
	if cfg.Workers.Coders != 5 || cfg.Workers.Explorers != 1 {
		t.Errorf("workers = %+v", cfg.Workers)
	}
	if cfg.Session.HistoryLimit != 200 {
		t.Errorf("history limit = %d", cfg.Session.HistoryLimit)
	}
	if cfg.Shutdown.Grace != 10*time.Second {
		t.Errorf("grace = %v", cfg.Shutdown.Grace)
	}
	if cfg.Shutdown.PollInterval != 25*time.Millisecond {
		t.Errorf("poll interval = %v", cfg.Shutdown.PollInterval)
	}
	if cfg.Telemetry.Enabled {
		t.Error("telemetry should be disabled")
	}
}

func TestLoadFromPath_PartialOverridesKeepDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
workers:
  coders: 1
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}

	if cfg.Workers.Coders != 1 {
		t.Errorf("coders = %d, want 1", cfg.Workers.Coders)
	}
	if cfg.Workers.Explorers != 2 {
		t.Errorf("explorers = %d, want default 2", cfg.Workers.Explorers)
	}
	if cfg.Shutdown.Grace != 30*time.Second {
		t.Errorf("grace = %v, want default 30s", cfg.Shutdown.Grace)
	}
}

func TestLoadFromPath_ExpandsEnvInAPIKey(t *testing.T) {
	t.Setenv("VT_TEST_KEY", "sk-ant-expanded")

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
anthropic:
  api_key: ${VT_TEST_KEY}
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.Anthropic.APIKey != "sk-ant-expanded" {
		t.Errorf("api key = %q, want expanded value", cfg.Anthropic.APIKey)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default is valid", func(c *Config) {}, false},
		{"negative coders", func(c *Config) { c.Workers.Coders = -1 }, true},
		{"no workers at all", func(c *Config) { c.Workers.Coders = 0; c.Workers.Explorers = 0 }, true},
		{"zero grace", func(c *Config) { c.Shutdown.Grace = 0 }, true},
		{"zero poll interval", func(c *Config) { c.Shutdown.PollInterval = 0 }, true},
		{"negative history limit", func(c *Config) { c.Session.HistoryLimit = -5 }, true},
		{"explorers only", func(c *Config) { c.Workers.Coders = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromPath_InvalidConfigRejected(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
workers:
  coders: 0
  explorers: 0
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	if _, err := LoadFromPath(configPath); err == nil {
		t.Error("expected validation error for zero workers")
	}
}

func TestLoadFromPath_MissingFile(t *testing.T) {
	if _, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestWatch_DeliversFreshConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".vtagent.yaml")
	if err := os.WriteFile(path, []byte("shutdown:\n  grace: 30s\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	got := make(chan *Config, 1)
	errs := make(chan error, 1)
	_, err := Watch(path, func(cfg *Config, err error) {
		if err != nil {
			select {
			case errs <- err:
			default:
			}
			return
		}
		select {
		case got <- cfg:
		default:
		}
	})
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}

	if err := os.WriteFile(path, []byte("shutdown:\n  grace: 5s\n"), 0644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	select {
	case cfg := <-got:
		if cfg.Shutdown.Grace != 5*time.Second {
			t.Errorf("reloaded grace = %v, want 5s", cfg.Shutdown.Grace)
		}
		// Unset fields keep their defaults on reload.
		if cfg.Workers.Coders != 3 {
			t.Errorf("reloaded coders = %d, want default 3", cfg.Workers.Coders)
		}
	case err := <-errs:
		t.Fatalf("unexpected reload error: %v", err)
	case <-time.After(3 * time.Second):
		t.Fatal("no reload observed")
	}
}

func TestWatch_ReportsInvalidEdit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".vtagent.yaml")
	if err := os.WriteFile(path, []byte("workers:\n  coders: 2\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	errs := make(chan error, 1)
	_, err := Watch(path, func(cfg *Config, err error) {
		if err != nil {
			select {
			case errs <- err:
			default:
			}
		}
	})
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}

	if err := os.WriteFile(path, []byte("workers:\n  coders: -1\n"), 0644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	select {
	case <-errs:
	case <-time.After(3 * time.Second):
		t.Fatal("invalid edit was not reported")
	}
}

func TestWatch_MissingFile(t *testing.T) {
	if _, err := Watch(filepath.Join(t.TempDir(), "absent.yaml"), func(*Config, error) {}); err == nil {
		t.Fatal("expected error watching a missing file")
	}
}
