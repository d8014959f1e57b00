package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRoster(t *testing.T) {
	tmpDir := t.TempDir()
	rosterPath := filepath.Join(tmpDir, "agents.yaml")

	rosterContent := `
workers:
  - role: coder
    count: 4
    model: claude-opus-4-20250514
  - role: explorer
    count: 2
`
	if err := os.WriteFile(rosterPath, []byte(rosterContent), 0644); err != nil {
		t.Fatalf("failed to write roster: %v", err)
	}

	roster, err := LoadRoster(rosterPath)
	if err != nil {
		t.Fatalf("LoadRoster: %v", err)
	}

	if len(roster.Workers) != 2 {
		t.Fatalf("entries = %d, want 2", len(roster.Workers))
	}
	if roster.Workers[0].Role != "coder" || roster.Workers[0].Count != 4 {
		t.Errorf("first entry = %+v", roster.Workers[0])
	}
	if roster.Workers[0].Model != "claude-opus-4-20250514" {
		t.Errorf("model override = %q", roster.Workers[0].Model)
	}
	if roster.Workers[1].Role != "explorer" || roster.Workers[1].Count != 2 {
		t.Errorf("second entry = %+v", roster.Workers[1])
	}
}

func TestLoadRoster_RejectsUnknownRole(t *testing.T) {
	tmpDir := t.TempDir()
	rosterPath := filepath.Join(tmpDir, "agents.yaml")

	rosterContent := `
workers:
  - role: architect
    count: 1
`
	if err := os.WriteFile(rosterPath, []byte(rosterContent), 0644); err != nil {
		t.Fatalf("failed to write roster: %v", err)
	}

	if _, err := LoadRoster(rosterPath); err == nil {
		t.Error("expected error for unknown role")
	}
}

func TestLoadRoster_RejectsZeroCount(t *testing.T) {
	tmpDir := t.TempDir()
	rosterPath := filepath.Join(tmpDir, "agents.yaml")

	rosterContent := `
workers:
  - role: coder
    count: 0
`
	if err := os.WriteFile(rosterPath, []byte(rosterContent), 0644); err != nil {
		t.Fatalf("failed to write roster: %v", err)
	}

	if _, err := LoadRoster(rosterPath); err == nil {
		t.Error("expected error for zero count")
	}
}

func TestRosterFromWorkers(t *testing.T) {
	roster := RosterFromWorkers(WorkersConfig{Coders: 3, Explorers: 2})
	if err := roster.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(roster.Workers) != 2 {
		t.Fatalf("entries = %d, want 2", len(roster.Workers))
	}

	codersOnly := RosterFromWorkers(WorkersConfig{Coders: 1})
	if len(codersOnly.Workers) != 1 || codersOnly.Workers[0].Role != "coder" {
		t.Errorf("coders-only roster = %+v", codersOnly.Workers)
	}
}
