// Package pool maintains the roster of subagent workers, partitioned
// by role, and hands them out one task at a time.
package pool

import (
	"fmt"
	"sync"
	"time"

	"github.com/vinhnx/vtagent-sub002/pkg/models"
)

// NoCapacityError reports that every worker of a role was busy,
// unavailable, or errored. Callers treat it as backpressure, not as a
// fault.
type NoCapacityError struct {
	Role models.Role
}

func (e *NoCapacityError) Error() string {
	return fmt.Sprintf("no available worker for role %q", e.Role)
}

// WorkerNotFoundError reports an operation against an unknown worker ID.
type WorkerNotFoundError struct {
	WorkerID string
}

func (e *WorkerNotFoundError) Error() string {
	return fmt.Sprintf("worker %q not found", e.WorkerID)
}

// Pool is a concurrent-safe collection of workers partitioned by role.
// A single mutex guards the read-then-mark sequence of Acquire so two
// concurrent callers can never claim the same worker.
type Pool struct {
	mu sync.Mutex
	// partitions holds workers per role in insertion order.
	partitions map[models.Role][]*Worker
	// byID indexes every worker for status and stats updates.
	byID map[string]*Worker
}

// New creates an empty Pool.
func New() *Pool {
	return &Pool{
		partitions: make(map[models.Role][]*Worker),
		byID:       make(map[string]*Worker),
	}
}

// Add registers a worker with the pool. The worker starts Available.
func (p *Pool) Add(w *Worker) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.byID[w.ID]; ok {
		return fmt.Errorf("worker %q already registered", w.ID)
	}
	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now()
	}
	w.Status = Available()
	p.partitions[w.Role] = append(p.partitions[w.Role], w)
	p.byID[w.ID] = w
	return nil
}

// Acquire finds an available worker of the given role and atomically
// marks it busy with taskID. Selection is a first-fit scan over the
// role's partition in insertion order. Returns a *NoCapacityError when
// no worker of the role is available.
func (p *Pool) Acquire(role models.Role, taskID string) (*Worker, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, w := range p.partitions[role] {
		if w.Status.Kind == StatusAvailable {
			w.Status = Busy(taskID)
			return w, nil
		}
	}
	return nil, &NoCapacityError{Role: role}
}

// Release returns a worker to the available state.
func (p *Pool) Release(workerID string) error {
	return p.SetStatus(workerID, Available())
}

// ReleaseTask returns a worker to the available state only if it is
// still busy with the given task. A worker that was administratively
// withdrawn (for example during shutdown) keeps its status, so a late
// release from an abandoned attempt cannot resurrect it.
func (p *Pool) ReleaseTask(workerID, taskID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	w, ok := p.byID[workerID]
	if !ok {
		return &WorkerNotFoundError{WorkerID: workerID}
	}
	if w.Status.Kind == StatusBusy && w.Status.TaskID == taskID {
		w.Status = Available()
	}
	return nil
}

// SetStatus transitions a worker to the given status.
func (p *Pool) SetStatus(workerID string, st Status) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	w, ok := p.byID[workerID]
	if !ok {
		return &WorkerNotFoundError{WorkerID: workerID}
	}
	w.Status = st
	return nil
}

// RecordStats folds one finished attempt into the worker's rolling
// statistics: the completed count increments by one, the success rate
// is blended over the new count, and the average completion time is an
// EMA weighted 0.8 old / 0.2 new.
func (p *Pool) RecordStats(workerID string, elapsed time.Duration, success bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	w, ok := p.byID[workerID]
	if !ok {
		return &WorkerNotFoundError{WorkerID: workerID}
	}

	outcome := 0.0
	if success {
		outcome = 1.0
	}

	s := &w.Stats
	s.TasksCompleted++
	s.SuccessRate = (s.SuccessRate*float64(s.TasksCompleted-1) + outcome) / float64(s.TasksCompleted)
	s.AvgCompletionTime = time.Duration(float64(s.AvgCompletionTime)*0.8 + float64(elapsed)*0.2)
	s.LastActivity = time.Now()
	return nil
}

// Get returns a snapshot of one worker.
func (p *Pool) Get(workerID string) (Snapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	w, ok := p.byID[workerID]
	if !ok {
		return Snapshot{}, &WorkerNotFoundError{WorkerID: workerID}
	}
	return snapshotOf(w), nil
}

// Snapshot returns a point-in-time copy of every worker, keyed by role.
func (p *Pool) Snapshot() map[models.Role][]Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make(map[models.Role][]Snapshot, len(p.partitions))
	for role, workers := range p.partitions {
		snaps := make([]Snapshot, 0, len(workers))
		for _, w := range workers {
			snaps = append(snaps, snapshotOf(w))
		}
		out[role] = snaps
	}
	return out
}

// Size returns the total number of registered workers.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.byID)
}

func snapshotOf(w *Worker) Snapshot {
	return Snapshot{
		ID:     w.ID,
		Role:   w.Role,
		Status: w.Status,
		Stats:  w.Stats,
	}
}
