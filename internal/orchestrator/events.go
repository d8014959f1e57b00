// Package orchestrator coordinates task assignment across the worker
// pool, sequences execution and verification, and drains outstanding
// work on shutdown.
package orchestrator

import (
	"time"

	"github.com/vinhnx/vtagent-sub002/pkg/models"
)

// EventType represents the type of engine event.
type EventType string

const (
	// EventTaskQueued indicates a task was accepted into the registry.
	EventTaskQueued EventType = "task_queued"
	// EventTaskStarted indicates a worker began executing a task.
	EventTaskStarted EventType = "task_started"
	// EventTaskVerifying indicates execution finished and verification began.
	EventTaskVerifying EventType = "task_verifying"
	// EventTaskCompleted indicates a task completed and passed verification.
	EventTaskCompleted EventType = "task_completed"
	// EventTaskFailed indicates a task failed.
	EventTaskFailed EventType = "task_failed"
	// EventNoCapacity indicates a task was rejected for lack of workers.
	EventNoCapacity EventType = "no_capacity"
	// EventDrainStarted indicates shutdown began waiting on active tasks.
	EventDrainStarted EventType = "drain_started"
	// EventTaskAbandoned indicates a task was force-finalized at shutdown.
	EventTaskAbandoned EventType = "task_abandoned"
	// EventSessionDone indicates the engine has stopped.
	EventSessionDone EventType = "session_done"
)

// Event is emitted by the engine as tasks move through their
// lifecycle. Consumers (the TUI, the CLI) receive these on a buffered
// channel; emission never blocks the engine.
type Event struct {
	// Type is the kind of event.
	Type EventType
	// TaskID is the ID of the related task, if applicable.
	TaskID string
	// TaskTitle is the title of the related task, if applicable.
	TaskTitle string
	// WorkerID is the ID of the related worker, if applicable.
	WorkerID string
	// Role is the role of the related task or worker, if applicable.
	Role models.Role
	// Message provides additional context about the event.
	Message string
	// Err contains error details for failure events.
	Err error
	// Timestamp is when the event occurred.
	Timestamp time.Time
	// Duration is the elapsed attempt time for terminal events.
	Duration time.Duration
}

// Events returns the engine's event stream.
func (e *Engine) Events() <-chan Event {
	return e.events
}

// emit delivers an event without blocking. When the buffer is full the
// event is dropped; the registry remains the source of truth.
func (e *Engine) emit(ev Event) {
	ev.Timestamp = time.Now()
	select {
	case e.events <- ev:
	default:
		e.logf("[engine] event buffer full, dropped %s for task %s", ev.Type, ev.TaskID)
	}
}
