package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vinhnx/vtagent-sub002/internal/agent"
	"github.com/vinhnx/vtagent-sub002/internal/perf"
	"github.com/vinhnx/vtagent-sub002/internal/pool"
	"github.com/vinhnx/vtagent-sub002/internal/session"
	"github.com/vinhnx/vtagent-sub002/pkg/models"
)

type engineState int

const (
	stateRunning engineState = iota
	stateDraining
	stateStopped
)

const (
	defaultDrainInterval = 50 * time.Millisecond
	defaultEventBuffer   = 256
)

// RequiredConfig holds the dependencies the engine cannot run without.
type RequiredConfig struct {
	// Pool is the worker pool tasks are assigned from.
	Pool *pool.Pool
	// Verifier judges every executor result before a task completes.
	Verifier agent.Verifier
}

// Engine coordinates the full lifecycle of a task: registration,
// worker assignment, execution, verification, and archival. One engine
// owns one session; callers may invoke Execute from any number of
// goroutines.
type Engine struct {
	sessionID    string
	model        string
	historyLimit int

	pool     *pool.Pool
	registry *session.Registry
	verifier agent.Verifier
	recorder perf.Recorder
	logger   *DebugLogger

	events      chan Event
	eventBuffer int

	drainInterval time.Duration

	mu    sync.Mutex
	state engineState
}

// TaskRequest describes one unit of work to execute.
type TaskRequest struct {
	// Role selects the worker partition the task needs.
	Role models.Role
	// Title is the short description of the task.
	Title string
	// Description provides detailed instructions.
	Description string
	// ContextRefs are opaque references handed to the executor.
	ContextRefs []string
	// Priority is recorded on the task; it does not affect scheduling.
	Priority models.TaskPriority
	// DependsOn lists prerequisite task IDs, recorded and passed
	// through to the executor without resolution.
	DependsOn []string
}

// TaskResult is the outcome of one Execute call.
type TaskResult struct {
	// TaskID identifies the executed task.
	TaskID string
	// Results is the executor output.
	Results *models.TaskResults
	// Verification is the gate's verdict on the output.
	Verification *models.VerificationResult
	// Duration is the wall-clock time of the whole attempt.
	Duration time.Duration
	// WorkerID is the worker that ran the task.
	WorkerID string
	// Performance is the monitor's aggregate state after this task.
	Performance perf.Snapshot
}

// New creates an engine around the given pool and verifier. Optional
// collaborators default to in-process implementations.
func New(cfg RequiredConfig, opts ...Option) (*Engine, error) {
	if cfg.Pool == nil {
		return nil, fmt.Errorf("orchestrator: pool is required")
	}
	if cfg.Verifier == nil {
		return nil, fmt.Errorf("orchestrator: verifier is required")
	}

	e := &Engine{
		sessionID:     "session-" + uuid.NewString()[:8],
		historyLimit:  session.DefaultHistoryLimit,
		pool:          cfg.Pool,
		verifier:      cfg.Verifier,
		logger:        NopLogger(),
		eventBuffer:   defaultEventBuffer,
		drainInterval: defaultDrainInterval,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.recorder == nil {
		e.recorder = perf.NewMonitor(perf.DefaultConfig())
	}
	e.registry = session.NewRegistry(e.sessionID, e.historyLimit)
	e.events = make(chan Event, e.eventBuffer)

	e.logf("[engine] session %s initialized, %d workers", e.sessionID, e.pool.Size())
	return e, nil
}

// SessionID returns the engine's session identifier.
func (e *Engine) SessionID() string { return e.sessionID }

// Registry exposes the session registry for read-side consumers.
func (e *Engine) Registry() *session.Registry { return e.registry }

// Pool exposes the worker pool for read-side consumers.
func (e *Engine) Pool() *pool.Pool { return e.pool }

// Execute runs one task end to end: register it, acquire a worker of
// the requested role, execute, verify, record stats, and archive the
// outcome. It blocks until the task reaches a terminal state.
//
// A non-nil error means the attempt broke down (no capacity, executor
// failure, verifier failure). A nil error with a failed Verification
// means the work ran but the gate rejected it; the task is archived as
// failed either way.
func (e *Engine) Execute(ctx context.Context, req TaskRequest) (*TaskResult, error) {
	e.mu.Lock()
	if e.state != stateRunning {
		e.mu.Unlock()
		return nil, ErrShuttingDown
	}
	e.mu.Unlock()

	start := time.Now()
	task := &models.Task{
		ID:          "task-" + uuid.NewString()[:8],
		Role:        req.Role,
		Title:       req.Title,
		Description: req.Description,
		ContextRefs: req.ContextRefs,
		Priority:    req.Priority,
		Status:      models.TaskStatusQueued,
		CreatedAt:   start,
		StartedAt:   &start,
		CreatedBy:   e.sessionID,
		DependsOn:   req.DependsOn,
	}
	if task.Priority == 0 {
		task.Priority = models.PriorityNormal
	}

	if err := e.registry.Register(task, start); err != nil {
		return nil, &OrchestrationError{Stage: StageRegistry, TaskID: task.ID, Role: task.Role, Err: err}
	}
	e.emit(Event{Type: EventTaskQueued, TaskID: task.ID, TaskTitle: task.Title, Role: task.Role})
	e.logf("[engine] task %s queued (%s): %s", task.ID, task.Role, task.Title)

	w, err := e.pool.Acquire(task.Role, task.ID)
	if err != nil {
		// Leave no trace of a task that never ran.
		if derr := e.registry.Discard(task.ID); derr != nil {
			e.logf("[engine] discard after acquire failure: %v", derr)
		}
		e.emit(Event{Type: EventNoCapacity, TaskID: task.ID, TaskTitle: task.Title, Role: task.Role, Err: err})
		e.logf("[engine] task %s rejected: %v", task.ID, err)
		return nil, &OrchestrationError{Stage: StageAssign, TaskID: task.ID, Role: task.Role, Err: err}
	}
	// Release only if this attempt still owns the worker; a shutdown
	// may have marked it unavailable in the meantime.
	defer func() {
		if rerr := e.pool.ReleaseTask(w.ID, task.ID); rerr != nil {
			e.logf("[engine] release worker %s: %v", w.ID, rerr)
		}
	}()

	if err := e.registry.Assign(task.ID, w.ID); err != nil {
		if derr := e.registry.Discard(task.ID); derr != nil {
			e.logf("[engine] discard after assign failure: %v", derr)
		}
		return nil, &OrchestrationError{Stage: StageRegistry, TaskID: task.ID, WorkerID: w.ID, Role: task.Role, Err: err}
	}
	task.Status = models.TaskStatusInProgress
	e.emit(Event{Type: EventTaskStarted, TaskID: task.ID, TaskTitle: task.Title, WorkerID: w.ID, Role: task.Role})
	e.logf("[engine] task %s assigned to worker %s", task.ID, w.ID)

	results, execErr := w.Executor.Run(ctx, task, task.DependsOn)
	if execErr != nil {
		elapsed := time.Since(start)
		reason := fmt.Sprintf("execution failed: %v", execErr)
		e.recordOutcome(ctx, task, elapsed, false, nil, 0)
		e.finalize(task, w, nil, nil, session.Failed(reason), false, elapsed)
		return nil, &OrchestrationError{Stage: StageExecute, TaskID: task.ID, WorkerID: w.ID, Role: task.Role, Err: execErr}
	}

	if err := e.registry.UpdateStatus(task.ID, session.Execution{State: session.ExecVerifying}); err != nil {
		e.logf("[engine] mark verifying %s: %v", task.ID, err)
	}
	e.emit(Event{Type: EventTaskVerifying, TaskID: task.ID, TaskTitle: task.Title, WorkerID: w.ID, Role: task.Role})

	verification, verErr := e.verifier.Verify(ctx, task, results, task.Role)
	if verErr != nil {
		elapsed := time.Since(start)
		reason := fmt.Sprintf("verification error: %v", verErr)
		e.recordOutcome(ctx, task, elapsed, false, results, 0)
		e.finalize(task, w, results, nil, session.Failed(reason), false, elapsed)
		return nil, &OrchestrationError{Stage: StageVerify, TaskID: task.ID, WorkerID: w.ID, Role: task.Role, Err: verErr}
	}

	elapsed := time.Since(start)
	successful := verification.Passed && len(results.Warnings) == 0
	e.recordOutcome(ctx, task, elapsed, successful, results, verification.Confidence)

	terminal := session.Execution{State: session.ExecCompleted}
	if !verification.Passed {
		terminal = session.Failed("verification failed")
	}
	e.finalize(task, w, results, verification, terminal, successful, elapsed)

	return &TaskResult{
		TaskID:       task.ID,
		Results:      results,
		Verification: verification,
		Duration:     elapsed,
		WorkerID:     w.ID,
		Performance:  e.recorder.Metrics(),
	}, nil
}

// recordOutcome feeds the performance monitor. Recording is
// best-effort; a monitor failure never fails the task.
func (e *Engine) recordOutcome(ctx context.Context, task *models.Task, elapsed time.Duration, success bool, results *models.TaskResults, confidence float64) {
	rec := perf.Record{
		SessionID:  e.sessionID,
		TaskID:     task.ID,
		Role:       task.Role,
		Start:      *task.StartedAt,
		Duration:   elapsed,
		Success:    success,
		Model:      e.model,
		Confidence: confidence,
	}
	if results != nil {
		rec.InputTokens = results.InputTokens
		rec.OutputTokens = results.OutputTokens
	}
	if err := e.recorder.Record(ctx, rec); err != nil {
		e.logf("[engine] record perf for %s: %v", task.ID, err)
	}
}

// finalize updates the worker's stats, archives the attempt, and emits
// the terminal event. Stats land before the deferred release frees the
// worker, so a snapshot taken right after Execute returns reflects
// this attempt.
func (e *Engine) finalize(task *models.Task, w *pool.Worker, results *models.TaskResults, verification *models.VerificationResult, terminal session.Execution, success bool, elapsed time.Duration) {
	if err := e.pool.RecordStats(w.ID, elapsed, success); err != nil {
		e.logf("[engine] record stats for worker %s: %v", w.ID, err)
	}

	if _, err := e.registry.Complete(task.ID, results, verification, time.Now(), terminal, success); err != nil {
		e.logf("[engine] archive task %s: %v", task.ID, err)
	}

	ev := Event{
		TaskID:    task.ID,
		TaskTitle: task.Title,
		WorkerID:  w.ID,
		Role:      task.Role,
		Duration:  elapsed,
	}
	if terminal.State == session.ExecCompleted {
		ev.Type = EventTaskCompleted
		e.logf("[engine] task %s completed in %s", task.ID, elapsed.Round(time.Millisecond))
	} else {
		ev.Type = EventTaskFailed
		ev.Message = terminal.Reason
		e.logf("[engine] task %s failed in %s: %s", task.ID, elapsed.Round(time.Millisecond), terminal.Reason)
	}
	e.emit(ev)
}
