package orchestrator

import (
	"time"

	"github.com/vinhnx/vtagent-sub002/internal/perf"
	"github.com/vinhnx/vtagent-sub002/internal/pool"
	"github.com/vinhnx/vtagent-sub002/internal/session"
	"github.com/vinhnx/vtagent-sub002/pkg/models"
)

// SystemStatusReport is a point-in-time view of the whole engine,
// assembled from the pool, the registry, and the performance monitor.
type SystemStatusReport struct {
	// SessionID identifies the session.
	SessionID string
	// Uptime is how long the session has been running.
	Uptime time.Duration
	// ActiveTasks is the current in-flight attempt count.
	ActiveTasks int
	// CompletedTasks is the count of archived attempts still in history.
	CompletedTasks int
	// Workers holds per-role worker snapshots.
	Workers map[models.Role][]pool.Snapshot
	// SessionStats are the registry's lifetime counters.
	SessionStats session.Statistics
	// Performance is the monitor's aggregate view.
	Performance perf.Snapshot
	// Recommendations are the monitor's current suggestions.
	Recommendations []perf.Recommendation
}

// StatusReport assembles a status report. The three sources are read
// under their own locks, so the report is consistent per source but
// not across sources.
func (e *Engine) StatusReport() *SystemStatusReport {
	return &SystemStatusReport{
		SessionID:       e.sessionID,
		Uptime:          time.Since(e.registry.StartedAt()),
		ActiveTasks:     e.registry.ActiveCount(),
		CompletedTasks:  len(e.registry.History(0)),
		Workers:         e.pool.Snapshot(),
		SessionStats:    e.registry.Stats(),
		Performance:     e.recorder.Metrics(),
		Recommendations: e.recorder.Recommendations(),
	}
}
