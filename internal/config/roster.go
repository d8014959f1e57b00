package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vinhnx/vtagent-sub002/pkg/models"
)

// RosterEntry describes one group of workers in an agents.yaml roster.
type RosterEntry struct {
	// Role is the worker role, "coder" or "explorer".
	Role string `yaml:"role"`
	// Count is the number of workers to create for this entry.
	Count int `yaml:"count"`
	// Model optionally overrides the configured model for this group.
	Model string `yaml:"model,omitempty"`
}

// Roster is the parsed agents.yaml worker roster.
type Roster struct {
	Workers []RosterEntry `yaml:"workers"`
}

// LoadRoster reads a worker roster from a YAML file.
func LoadRoster(path string) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading roster %s: %w", path, err)
	}

	roster := &Roster{}
	if err := yaml.Unmarshal(data, roster); err != nil {
		return nil, fmt.Errorf("parsing roster %s: %w", path, err)
	}

	if err := roster.Validate(); err != nil {
		return nil, fmt.Errorf("roster %s: %w", path, err)
	}
	return roster, nil
}

// Validate checks every entry names a known role with a positive count.
func (r *Roster) Validate() error {
	if len(r.Workers) == 0 {
		return fmt.Errorf("roster defines no workers")
	}
	for i, entry := range r.Workers {
		if _, err := models.ParseRole(entry.Role); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
		if entry.Count <= 0 {
			return fmt.Errorf("entry %d (%s): count must be positive, got %d", i, entry.Role, entry.Count)
		}
	}
	return nil
}

// RosterFromWorkers builds a roster from configured worker counts.
// Used when no agents.yaml is present.
func RosterFromWorkers(w WorkersConfig) *Roster {
	roster := &Roster{}
	if w.Coders > 0 {
		roster.Workers = append(roster.Workers, RosterEntry{Role: string(models.RoleCoder), Count: w.Coders})
	}
	if w.Explorers > 0 {
		roster.Workers = append(roster.Workers, RosterEntry{Role: string(models.RoleExplorer), Count: w.Explorers})
	}
	return roster
}
