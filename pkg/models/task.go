package models

import "time"

// TaskStatus represents the current state of a task.
type TaskStatus string

const (
	// TaskStatusQueued indicates the task has been accepted but not started.
	TaskStatusQueued TaskStatus = "queued"
	// TaskStatusInProgress indicates the task is being worked on.
	TaskStatusInProgress TaskStatus = "in_progress"
	// TaskStatusCompleted indicates the task completed and passed verification.
	TaskStatusCompleted TaskStatus = "completed"
	// TaskStatusFailed indicates the task failed.
	TaskStatusFailed TaskStatus = "failed"
)

// Valid returns true if the status is a known value.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusQueued, TaskStatusInProgress, TaskStatusCompleted, TaskStatusFailed:
		return true
	default:
		return false
	}
}

// TaskPriority is the priority level of a task.
// Priority is recorded for reporting; it does not reorder assignment.
type TaskPriority int

const (
	PriorityLow      TaskPriority = 1
	PriorityNormal   TaskPriority = 2
	PriorityHigh     TaskPriority = 3
	PriorityCritical TaskPriority = 4
)

// Task represents a unit of work routed to a subagent.
type Task struct {
	// ID is the unique identifier for this task.
	ID string `json:"id"`
	// Role is the worker capability class required to execute this task.
	Role Role `json:"role"`
	// Title is the short description of the task.
	Title string `json:"title"`
	// Description provides detailed instructions for the task.
	Description string `json:"description,omitempty"`
	// ContextRefs are opaque references handed to the executor untouched.
	ContextRefs []string `json:"context_refs,omitempty"`
	// Priority is the recorded priority level.
	Priority TaskPriority `json:"priority"`
	// Status is the current state of the task.
	Status TaskStatus `json:"status"`
	// Error contains the failure reason if the task failed.
	Error string `json:"error,omitempty"`
	// CreatedAt is when the task was created.
	CreatedAt time.Time `json:"created_at"`
	// StartedAt is when execution began, if it did.
	StartedAt *time.Time `json:"started_at,omitempty"`
	// CompletedAt is when the task reached a terminal state, if it did.
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	// Results holds the executor output once available.
	Results *TaskResults `json:"results,omitempty"`
	// CreatedBy is the session that created this task.
	CreatedBy string `json:"created_by,omitempty"`
	// DependsOn lists task IDs this task declares as prerequisites.
	// Dependencies are recorded and passed through to the executor;
	// they are not resolved before assignment.
	DependsOn []string `json:"depends_on,omitempty"`
}

// TaskResults is the output produced by an executor for one task.
type TaskResults struct {
	// CreatedContexts are new context references produced during the task.
	CreatedContexts []string `json:"created_contexts,omitempty"`
	// ModifiedFiles are files changed during the task.
	ModifiedFiles []string `json:"modified_files,omitempty"`
	// ExecutedCommands are commands run during the task.
	ExecutedCommands []string `json:"executed_commands,omitempty"`
	// Summary describes the work performed.
	Summary string `json:"summary"`
	// Warnings are issues encountered that did not abort execution.
	// A task with warnings is not counted as a success even when
	// verification passes.
	Warnings []string `json:"warnings,omitempty"`
	// InputTokens is the prompt token count, zero if unavailable.
	InputTokens int64 `json:"input_tokens,omitempty"`
	// OutputTokens is the completion token count, zero if unavailable.
	OutputTokens int64 `json:"output_tokens,omitempty"`
}
