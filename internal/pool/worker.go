package pool

import (
	"time"

	"github.com/vinhnx/vtagent-sub002/internal/agent"
	"github.com/vinhnx/vtagent-sub002/pkg/models"
)

// StatusKind is the discriminant of a worker Status.
type StatusKind string

const (
	// StatusAvailable means the worker may be assigned a task.
	StatusAvailable StatusKind = "available"
	// StatusBusy means the worker is executing the task in Status.TaskID.
	StatusBusy StatusKind = "busy"
	// StatusUnavailable means the worker was administratively withdrawn.
	StatusUnavailable StatusKind = "unavailable"
	// StatusError means the worker is out of service with Status.Reason.
	StatusError StatusKind = "error"
)

// Status is the tagged worker state. Busy always carries the task ID it
// is busy with and Error always carries a reason, so a Busy worker
// without a task is unrepresentable.
type Status struct {
	Kind   StatusKind
	TaskID string
	Reason string
}

// Available returns the available status.
func Available() Status { return Status{Kind: StatusAvailable} }

// Busy returns a busy status bound to the given task.
func Busy(taskID string) Status { return Status{Kind: StatusBusy, TaskID: taskID} }

// Unavailable returns the administratively-withdrawn status.
func Unavailable() Status { return Status{Kind: StatusUnavailable} }

// Errored returns an error status with the given reason.
func Errored(reason string) Status { return Status{Kind: StatusError, Reason: reason} }

// Stats holds rolling performance statistics for one worker.
// Mutated only by the orchestration engine after a task finishes.
type Stats struct {
	// TasksCompleted counts finished attempts, successful or not.
	TasksCompleted int
	// SuccessRate is the blended success rate over completed attempts.
	SuccessRate float64
	// AvgCompletionTime is an exponentially-weighted moving average of
	// attempt duration (0.8 old / 0.2 new).
	AvgCompletionTime time.Duration
	// LastActivity is when the worker last finished an attempt.
	LastActivity time.Time
}

// Worker is one pooled subagent instance. The executor handle is
// exclusively owned by this worker and never shared.
type Worker struct {
	// ID is the unique worker identifier.
	ID string
	// Role is the capability class this worker serves.
	Role models.Role
	// Status is the current tagged worker state.
	Status Status
	// Stats are the worker's rolling statistics.
	Stats Stats
	// CreatedAt is when the worker joined the pool.
	CreatedAt time.Time
	// Executor performs this worker's task executions.
	Executor agent.Executor
}

// Snapshot is a point-in-time copy of a worker's observable state,
// safe to hold after the pool has moved on.
type Snapshot struct {
	ID     string
	Role   models.Role
	Status Status
	Stats  Stats
}
