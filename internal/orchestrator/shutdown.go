package orchestrator

import (
	"context"
	"time"

	"github.com/vinhnx/vtagent-sub002/internal/pool"
	"github.com/vinhnx/vtagent-sub002/internal/session"
)

// ShutdownReport summarizes the drain and the session it ended.
type ShutdownReport struct {
	// Drained is true if every active task finished within the grace
	// period.
	Drained bool
	// Forced lists the task IDs that were force-finalized.
	Forced []string
	// TotalTasks is the number of attempts this session recorded.
	TotalTasks int
	// SuccessRate is the session's overall success rate.
	SuccessRate float64
	// AvgDuration is the session's average attempt duration.
	AvgDuration time.Duration
	// Elapsed is how long the shutdown itself took.
	Elapsed time.Duration
}

// Shutdown drains the engine. New Execute calls are rejected
// immediately; active tasks get the grace period to finish on their
// own, polled at the drain interval. Whatever is still active when the
// grace period (or ctx) expires is force-finalized as failed and its
// worker marked unavailable. Safe to call once; later calls return
// ErrShuttingDown.
func (e *Engine) Shutdown(ctx context.Context, grace time.Duration) (*ShutdownReport, error) {
	e.mu.Lock()
	if e.state != stateRunning {
		e.mu.Unlock()
		return nil, ErrShuttingDown
	}
	e.state = stateDraining
	e.mu.Unlock()

	start := time.Now()
	e.emit(Event{Type: EventDrainStarted, Message: "waiting for active tasks"})
	e.logf("[engine] shutdown: draining %d active tasks, grace %s", e.registry.ActiveCount(), grace)

	deadline := time.NewTimer(grace)
	defer deadline.Stop()
	ticker := time.NewTicker(e.drainInterval)
	defer ticker.Stop()

	drained := e.registry.ActiveCount() == 0
wait:
	for !drained {
		select {
		case <-ticker.C:
			drained = e.registry.ActiveCount() == 0
		case <-deadline.C:
			drained = e.registry.ActiveCount() == 0
			break wait
		case <-ctx.Done():
			drained = e.registry.ActiveCount() == 0
			break wait
		}
	}

	var forced []string
	if !drained {
		forced = e.forceFinalize()
	}

	e.mu.Lock()
	e.state = stateStopped
	e.mu.Unlock()

	report := e.recorder.Report()
	out := &ShutdownReport{
		Drained:     drained,
		Forced:      forced,
		TotalTasks:  report.Summary.TotalTasks,
		SuccessRate: report.Summary.OverallSuccessRate,
		AvgDuration: report.Summary.AvgDuration,
		Elapsed:     time.Since(start),
	}

	// The channel stays open: abandoned Execute goroutines may still
	// emit when they eventually return. Consumers stop on this event.
	e.emit(Event{Type: EventSessionDone, Message: "session stopped"})
	e.logf("[engine] shutdown complete in %s, drained=%v forced=%d", out.Elapsed.Round(time.Millisecond), drained, len(forced))
	return out, nil
}

// forceFinalize archives every still-active task as failed and takes
// its worker out of rotation. The abandoned Execute goroutines are
// left to return on their own; ReleaseTask refuses their late release
// because the worker no longer carries their task.
func (e *Engine) forceFinalize() []string {
	active := e.registry.SnapshotActive()
	forced := make([]string, 0, len(active))
	for i := range active {
		at := &active[i]
		if _, err := e.registry.Complete(at.Task.ID, nil, nil, time.Now(), session.Failed("shutdown"), false); err != nil {
			e.logf("[engine] force-finalize %s: %v", at.Task.ID, err)
			continue
		}
		forced = append(forced, at.Task.ID)
		if at.WorkerID != "" {
			if err := e.pool.SetStatus(at.WorkerID, pool.Unavailable()); err != nil {
				e.logf("[engine] mark worker %s unavailable: %v", at.WorkerID, err)
			}
		}
		e.emit(Event{Type: EventTaskAbandoned, TaskID: at.Task.ID, TaskTitle: at.Task.Title, WorkerID: at.WorkerID, Role: at.Task.Role, Message: "shutdown"})
		e.logf("[engine] task %s abandoned at shutdown (worker %s)", at.Task.ID, at.WorkerID)
	}
	return forced
}
