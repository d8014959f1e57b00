// Package session owns the in-flight task registry and the bounded
// history of finished tasks for one orchestration session.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/vinhnx/vtagent-sub002/pkg/models"
)

// ExecState is the discriminant of an attempt's execution status.
type ExecState string

const (
	// ExecQueued means the task is accepted but not yet assigned.
	ExecQueued ExecState = "queued"
	// ExecExecuting means a worker is running the task.
	ExecExecuting ExecState = "executing"
	// ExecVerifying means the executor finished and verification is running.
	ExecVerifying ExecState = "verifying"
	// ExecCompleted means the attempt finished and passed verification.
	ExecCompleted ExecState = "completed"
	// ExecFailed means the attempt failed; Execution.Reason says why.
	ExecFailed ExecState = "failed"
)

// Execution is the tagged in-flight status of one attempt. It is
// distinct from the task's own status: it tracks this attempt's
// progress while the task is active.
type Execution struct {
	State  ExecState
	Reason string
}

// Failed returns a failed execution status with the given reason.
func Failed(reason string) Execution {
	return Execution{State: ExecFailed, Reason: reason}
}

// ActiveTask is one in-flight attempt: the task, the worker it was
// assigned to, and the attempt's progress.
type ActiveTask struct {
	// Task is a copy of the task under execution.
	Task models.Task
	// WorkerID is the assigned worker, empty while still queued.
	WorkerID string
	// StartedAt is the monotonic start instant of the attempt.
	StartedAt time.Time
	// Execution is the attempt's current progress.
	Execution Execution
}

// CompletedTask is the archival record of a finished attempt. Never
// mutated after insertion into the history.
type CompletedTask struct {
	// Task is the finished task.
	Task models.Task
	// Results holds the executor output, nil if execution failed.
	Results *models.TaskResults
	// Verification is the verifier's judgement, nil if verification
	// never ran.
	Verification *models.VerificationResult
	// CompletedAt is when the attempt reached a terminal state.
	CompletedAt time.Time
	// TotalTime is the attempt's wall-clock duration.
	TotalTime time.Duration
}

// Statistics are aggregate session counters, maintained incrementally
// as attempts complete rather than recomputed from the history.
type Statistics struct {
	TotalTasks      int
	SuccessfulTasks int
	FailedTasks     int
	TotalDuration   time.Duration
	AvgDuration     time.Duration
}

// TaskNotFoundError reports an operation against a task ID that is not
// in the active registry. It indicates either a caller bug or a task
// that was force-finalized during shutdown.
type TaskNotFoundError struct {
	TaskID string
}

func (e *TaskNotFoundError) Error() string {
	return fmt.Sprintf("task %q not in active registry", e.TaskID)
}

// Registry tracks in-flight tasks and keeps a bounded, append-only
// history of finished ones. All methods are safe for concurrent use;
// snapshots are point-in-time copies and never expose live entries.
type Registry struct {
	mu sync.RWMutex

	sessionID string
	startedAt time.Time

	active  map[string]*ActiveTask
	history []*CompletedTask
	// historyLimit caps the history; oldest entries are evicted first.
	historyLimit int

	stats Statistics
}

// DefaultHistoryLimit bounds the in-memory history when no limit is
// configured.
const DefaultHistoryLimit = 1000

// NewRegistry creates a Registry for the given session. A historyLimit
// of zero or less uses DefaultHistoryLimit.
func NewRegistry(sessionID string, historyLimit int) *Registry {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &Registry{
		sessionID:    sessionID,
		startedAt:    time.Now(),
		active:       make(map[string]*ActiveTask),
		historyLimit: historyLimit,
	}
}

// SessionID returns the session identifier.
func (r *Registry) SessionID() string { return r.sessionID }

// StartedAt returns when the session began.
func (r *Registry) StartedAt() time.Time { return r.startedAt }

// Register adds a task to the active registry in the queued state.
// The task ID must not already be active.
func (r *Registry) Register(task *models.Task, start time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.active[task.ID]; ok {
		return fmt.Errorf("task %q already active", task.ID)
	}
	r.active[task.ID] = &ActiveTask{
		Task:      *task,
		StartedAt: start,
		Execution: Execution{State: ExecQueued},
	}
	return nil
}

// Assign binds an active task to a worker and moves it to executing.
func (r *Registry) Assign(taskID, workerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	at, ok := r.active[taskID]
	if !ok {
		return &TaskNotFoundError{TaskID: taskID}
	}
	at.WorkerID = workerID
	at.Execution = Execution{State: ExecExecuting}
	return nil
}

// UpdateStatus sets the execution status of an active task.
func (r *Registry) UpdateStatus(taskID string, ex Execution) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	at, ok := r.active[taskID]
	if !ok {
		return &TaskNotFoundError{TaskID: taskID}
	}
	at.Execution = ex
	return nil
}

// Discard removes an active task without recording history. Used when
// a task is rejected before any work started (no available worker).
func (r *Registry) Discard(taskID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.active[taskID]; !ok {
		return &TaskNotFoundError{TaskID: taskID}
	}
	delete(r.active, taskID)
	return nil
}

// Complete removes a task from the active registry and folds it into
// the history. terminal is the attempt's final execution status and
// drives the archived task's status; success drives the session
// counters (verification may pass while warnings still count the
// attempt as unsuccessful).
func (r *Registry) Complete(taskID string, results *models.TaskResults, verification *models.VerificationResult, finish time.Time, terminal Execution, success bool) (*CompletedTask, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	at, ok := r.active[taskID]
	if !ok {
		return nil, &TaskNotFoundError{TaskID: taskID}
	}
	delete(r.active, taskID)

	total := finish.Sub(at.StartedAt)
	if total < 0 {
		total = 0
	}

	task := at.Task
	task.CompletedAt = &finish
	task.Results = results
	if terminal.State == ExecCompleted {
		task.Status = models.TaskStatusCompleted
	} else {
		task.Status = models.TaskStatusFailed
		task.Error = terminal.Reason
	}

	done := &CompletedTask{
		Task:         task,
		Results:      results,
		Verification: verification,
		CompletedAt:  finish,
		TotalTime:    total,
	}
	r.appendHistoryLocked(done)

	r.stats.TotalTasks++
	if success {
		r.stats.SuccessfulTasks++
	} else {
		r.stats.FailedTasks++
	}
	r.stats.TotalDuration += total
	r.stats.AvgDuration = r.stats.TotalDuration / time.Duration(r.stats.TotalTasks)

	return done, nil
}

// SnapshotActive returns a point-in-time copy of every in-flight task.
func (r *Registry) SnapshotActive() []ActiveTask {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ActiveTask, 0, len(r.active))
	for _, at := range r.active {
		out = append(out, *at)
	}
	return out
}

// ActiveCount returns the number of in-flight tasks.
func (r *Registry) ActiveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.active)
}

// History returns up to limit of the most recent finished tasks,
// oldest first. A limit of zero or less returns the full history.
func (r *Registry) History(limit int) []*CompletedTask {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := len(r.history)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]*CompletedTask, n)
	copy(out, r.history[len(r.history)-n:])
	return out
}

// Stats returns the session counters.
func (r *Registry) Stats() Statistics {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.stats
}

// appendHistoryLocked appends to the bounded history, evicting the
// oldest entry once the cap is reached. Caller must hold r.mu.
func (r *Registry) appendHistoryLocked(done *CompletedTask) {
	if len(r.history) >= r.historyLimit {
		// Shift rather than reslice so the backing array does not
		// pin evicted entries.
		copy(r.history, r.history[1:])
		r.history[len(r.history)-1] = done
		return
	}
	r.history = append(r.history, done)
}
