package orchestrator

import (
	"time"

	"github.com/vinhnx/vtagent-sub002/internal/perf"
)

// Option configures optional engine dependencies.
type Option func(*Engine)

// WithRecorder sets the performance recorder. Defaults to an in-memory
// perf.Monitor with default limits.
func WithRecorder(r perf.Recorder) Option {
	return func(e *Engine) {
		if r != nil {
			e.recorder = r
		}
	}
}

// WithLogger sets the debug logger. Defaults to a no-op logger.
func WithLogger(l *DebugLogger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithSessionID overrides the generated session identifier.
func WithSessionID(id string) Option {
	return func(e *Engine) {
		if id != "" {
			e.sessionID = id
		}
	}
}

// WithHistoryLimit bounds the registry's completed-task history.
func WithHistoryLimit(limit int) Option {
	return func(e *Engine) {
		if limit > 0 {
			e.historyLimit = limit
		}
	}
}

// WithModel records the model identifier attached to performance
// samples.
func WithModel(model string) Option {
	return func(e *Engine) {
		e.model = model
	}
}

// WithDrainInterval sets how often shutdown polls for active tasks.
func WithDrainInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.drainInterval = d
		}
	}
}

// WithEventBuffer sizes the event channel. Events are dropped when the
// buffer is full, so interactive consumers may want more headroom.
func WithEventBuffer(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.eventBuffer = n
		}
	}
}
