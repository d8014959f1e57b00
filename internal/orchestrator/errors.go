package orchestrator

import (
	"errors"
	"fmt"

	"github.com/vinhnx/vtagent-sub002/pkg/models"
)

// Stage identifies where in the execution sequence a failure occurred.
type Stage string

const (
	// StageAssign covers task registration and worker selection.
	StageAssign Stage = "assign"
	// StageExecute covers the executor collaborator call.
	StageExecute Stage = "execute"
	// StageVerify covers the verifier collaborator call.
	StageVerify Stage = "verify"
	// StageRegistry covers bookkeeping against the task registry.
	StageRegistry Stage = "registry"
)

// ErrShuttingDown is returned by Execute once shutdown has begun.
var ErrShuttingDown = errors.New("orchestrator is shutting down")

// OrchestrationError wraps a collaborator or bookkeeping failure with
// enough context to reconstruct the failure site. The Stage
// distinguishes the error classes: an assign-stage error wraps the
// pool's no-capacity condition, an execute-stage error wraps the
// executor's failure, a verify-stage error means the verifier itself
// errored (not that it verified and rejected), and a registry-stage
// error indicates a bookkeeping bug.
type OrchestrationError struct {
	Stage    Stage
	TaskID   string
	WorkerID string
	Role     models.Role
	Err      error
}

func (e *OrchestrationError) Error() string {
	if e.WorkerID == "" {
		return fmt.Sprintf("%s: task %s (role %s): %v", e.Stage, e.TaskID, e.Role, e.Err)
	}
	return fmt.Sprintf("%s: task %s (role %s, worker %s): %v", e.Stage, e.TaskID, e.Role, e.WorkerID, e.Err)
}

func (e *OrchestrationError) Unwrap() error { return e.Err }
