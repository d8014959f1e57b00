// Package agent defines the collaborator contracts consumed by the
// orchestration core: the executor that performs a task's work and the
// verifier that judges its output. Implementations live elsewhere
// (internal/api provides the Claude-backed ones); the core only ever
// sees these interfaces.
package agent

import (
	"context"

	"github.com/vinhnx/vtagent-sub002/pkg/models"
)

// Executor performs the actual work for a task. Calls may be
// long-running and network-bound; implementations are expected to
// honor ctx cancellation but the core never cancels a task mid-flight.
type Executor interface {
	// Run executes the task. deps is the task's declared dependency
	// list, passed through unresolved; an empty list is valid.
	Run(ctx context.Context, task *models.Task, deps []string) (*models.TaskResults, error)
}

// Verifier judges whether a completed task's output is acceptable.
// An error return means the verifier itself failed, which is distinct
// from a successful verification that did not pass.
type Verifier interface {
	Verify(ctx context.Context, task *models.Task, results *models.TaskResults, role models.Role) (*models.VerificationResult, error)
}

// ExecutorFactory creates executor instances. Each pooled worker owns
// the executor it was created with; executors are never shared between
// workers.
type ExecutorFactory interface {
	NewExecutor(role models.Role) Executor
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, task *models.Task, deps []string) (*models.TaskResults, error)

// Run implements Executor.
func (f ExecutorFunc) Run(ctx context.Context, task *models.Task, deps []string) (*models.TaskResults, error) {
	return f(ctx, task, deps)
}

// VerifierFunc adapts a function to the Verifier interface.
type VerifierFunc func(ctx context.Context, task *models.Task, results *models.TaskResults, role models.Role) (*models.VerificationResult, error)

// Verify implements Verifier.
func (f VerifierFunc) Verify(ctx context.Context, task *models.Task, results *models.TaskResults, role models.Role) (*models.VerificationResult, error) {
	return f(ctx, task, results, role)
}
