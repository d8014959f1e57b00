// Package perf collects task-execution telemetry and derives the
// aggregate metrics the orchestration engine reports. Recording is
// best-effort from the engine's point of view: a failure here never
// fails a task.
package perf

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/vinhnx/vtagent-sub002/internal/state"
	"github.com/vinhnx/vtagent-sub002/pkg/models"
)

// Record is the raw data point supplied by the engine for one finished
// attempt.
type Record struct {
	SessionID    string
	TaskID       string
	Role         models.Role
	Start        time.Time
	Duration     time.Duration
	Success      bool
	Model        string
	InputTokens  int64
	OutputTokens int64
	Confidence   float64
}

// RoleMetrics are blended metrics for one worker role.
type RoleMetrics struct {
	Tasks             int
	SuccessRate       float64
	AvgCompletionTime time.Duration
}

// ModelMetrics are blended metrics for one model.
type ModelMetrics struct {
	Model           string
	Tasks           int
	SuccessRate     float64
	AvgResponseTime time.Duration
	TotalTokens     int64
	AvgConfidence   float64
}

// Snapshot is a point-in-time copy of the monitor's aggregate state.
type Snapshot struct {
	TotalTasks      int
	SuccessfulTasks int
	Roles           map[models.Role]RoleMetrics
	Models          map[string]ModelMetrics
	Uptime          time.Duration
}

// Recommendation suggests an operational improvement derived from the
// observed metrics.
type Recommendation struct {
	ID           string
	Description  string
	ExpectedGain float64
}

// Summary condenses the monitor's view of a whole session.
type Summary struct {
	TotalTasks         int
	SuccessfulTasks    int
	OverallSuccessRate float64
	AvgDuration        time.Duration
}

// Report is the final aggregate emitted at shutdown.
type Report struct {
	GeneratedAt     time.Time
	Uptime          time.Duration
	Summary         Summary
	Recommendations []Recommendation
}

// Recorder is the performance collaborator contract the engine
// consumes. Monitor is the in-process implementation.
type Recorder interface {
	Record(ctx context.Context, rec Record) error
	Metrics() Snapshot
	Recommendations() []Recommendation
	Report() *Report
}

// Config tunes the monitor.
type Config struct {
	// MaxHistory bounds the in-memory record buffer.
	MaxHistory int
	// SlowTaskThreshold marks a role as slow when its blended
	// completion time exceeds it.
	SlowTaskThreshold time.Duration
	// MinSuccessRate marks a role as unreliable below it.
	MinSuccessRate float64
}

// DefaultConfig returns the default monitor tuning.
func DefaultConfig() Config {
	return Config{
		MaxHistory:        10000,
		SlowTaskThreshold: 30 * time.Second,
		MinSuccessRate:    0.9,
	}
}

// Monitor aggregates execution records in memory and optionally
// journals them to an SQLite store.
type Monitor struct {
	mu sync.RWMutex

	cfg     Config
	start   time.Time
	history []Record

	total      int
	successful int
	roles      map[models.Role]RoleMetrics
	models     map[string]ModelMetrics

	store *state.Store
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithStore journals every record to the given telemetry store.
func WithStore(s *state.Store) Option {
	return func(m *Monitor) { m.store = s }
}

// NewMonitor creates a Monitor with the given tuning.
func NewMonitor(cfg Config, opts ...Option) *Monitor {
	if cfg.MaxHistory <= 0 {
		cfg.MaxHistory = DefaultConfig().MaxHistory
	}
	if cfg.SlowTaskThreshold <= 0 {
		cfg.SlowTaskThreshold = DefaultConfig().SlowTaskThreshold
	}
	if cfg.MinSuccessRate <= 0 {
		cfg.MinSuccessRate = DefaultConfig().MinSuccessRate
	}
	m := &Monitor{
		cfg:    cfg,
		start:  time.Now(),
		roles:  make(map[models.Role]RoleMetrics),
		models: make(map[string]ModelMetrics),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Record folds one execution into the aggregates. The store write is
// best-effort: a journal failure is logged, never returned as a task
// failure.
func (m *Monitor) Record(ctx context.Context, rec Record) error {
	m.mu.Lock()

	m.history = append(m.history, rec)
	if len(m.history) > m.cfg.MaxHistory {
		m.history = m.history[len(m.history)-m.cfg.MaxHistory:]
	}

	m.total++
	if rec.Success {
		m.successful++
	}

	outcome := 0.0
	if rec.Success {
		outcome = 1.0
	}

	// Success rates blend against an optimistic 1.0 prior; durations
	// seed from the first sample.
	rm := m.roles[rec.Role]
	if rm.Tasks == 0 {
		rm.SuccessRate = 1.0
		rm.AvgCompletionTime = rec.Duration
	} else {
		rm.AvgCompletionTime = time.Duration(float64(rm.AvgCompletionTime)*0.9 + float64(rec.Duration)*0.1)
	}
	rm.SuccessRate = rm.SuccessRate*0.9 + outcome*0.1
	rm.Tasks++
	m.roles[rec.Role] = rm

	mm := m.models[rec.Model]
	mm.Model = rec.Model
	if mm.Tasks == 0 {
		mm.SuccessRate = 1.0
		mm.AvgResponseTime = rec.Duration
		mm.AvgConfidence = rec.Confidence
	} else {
		mm.AvgResponseTime = time.Duration(float64(mm.AvgResponseTime)*0.9 + float64(rec.Duration)*0.1)
		mm.AvgConfidence = mm.AvgConfidence*0.9 + rec.Confidence*0.1
	}
	mm.SuccessRate = mm.SuccessRate*0.9 + outcome*0.1
	mm.Tasks++
	mm.TotalTokens += rec.InputTokens + rec.OutputTokens
	m.models[rec.Model] = mm

	store := m.store
	m.mu.Unlock()

	if store != nil {
		err := store.RecordExecution(state.Execution{
			SessionID:    rec.SessionID,
			TaskID:       rec.TaskID,
			Role:         rec.Role,
			StartedAt:    rec.Start,
			Duration:     rec.Duration,
			Success:      rec.Success,
			Model:        rec.Model,
			InputTokens:  rec.InputTokens,
			OutputTokens: rec.OutputTokens,
			Confidence:   rec.Confidence,
		})
		if err != nil {
			log.Printf("[perf] telemetry journal write failed for task %s: %v", rec.TaskID, err)
		}
	}
	return nil
}

// Metrics returns a copy of the current aggregates.
func (m *Monitor) Metrics() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	roles := make(map[models.Role]RoleMetrics, len(m.roles))
	for k, v := range m.roles {
		roles[k] = v
	}
	mdl := make(map[string]ModelMetrics, len(m.models))
	for k, v := range m.models {
		mdl[k] = v
	}
	return Snapshot{
		TotalTasks:      m.total,
		SuccessfulTasks: m.successful,
		Roles:           roles,
		Models:          mdl,
		Uptime:          time.Since(m.start),
	}
}

// Recommendations derives improvement suggestions from the blended
// metrics: unreliable roles and slow roles each get one.
func (m *Monitor) Recommendations() []Recommendation {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var recs []Recommendation
	for role, rm := range m.roles {
		if rm.SuccessRate < m.cfg.MinSuccessRate {
			recs = append(recs, Recommendation{
				ID:           "improve_" + string(role) + "_reliability",
				Description:  formatRateRec(role, rm.SuccessRate),
				ExpectedGain: 0.1,
			})
		}
		if rm.AvgCompletionTime > m.cfg.SlowTaskThreshold {
			recs = append(recs, Recommendation{
				ID:           "optimize_" + string(role) + "_speed",
				Description:  formatSpeedRec(role, rm.AvgCompletionTime),
				ExpectedGain: 0.3,
			})
		}
	}
	return recs
}

// Report builds the final aggregate for shutdown output.
func (m *Monitor) Report() *Report {
	recs := m.Recommendations()

	m.mu.RLock()
	defer m.mu.RUnlock()

	var avg time.Duration
	if len(m.history) > 0 {
		var sum time.Duration
		for _, r := range m.history {
			sum += r.Duration
		}
		avg = sum / time.Duration(len(m.history))
	}

	rate := 0.0
	if m.total > 0 {
		rate = float64(m.successful) / float64(m.total)
	}

	return &Report{
		GeneratedAt: time.Now(),
		Uptime:      time.Since(m.start),
		Summary: Summary{
			TotalTasks:         m.total,
			SuccessfulTasks:    m.successful,
			OverallSuccessRate: rate,
			AvgDuration:        avg,
		},
		Recommendations: recs,
	}
}
