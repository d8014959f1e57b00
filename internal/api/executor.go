package api

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/vinhnx/vtagent-sub002/internal/agent"
	"github.com/vinhnx/vtagent-sub002/pkg/models"
)

const coderSystemPrompt = `You are a coding specialist working on one task inside a larger session.
You have full authority to create and modify files and run commands.
Work the task to completion, then report what you did.`

const explorerSystemPrompt = `You are a read-only investigation specialist working on one task inside a larger session.
Do not propose file modifications; gather information and report findings.`

// reportFormat tells the model how to structure its final report so
// the executor can parse it back into task results.
const reportFormat = `When the task is done, end your response with a report in exactly this format:

SUMMARY: <one paragraph describing what was accomplished>
MODIFIED_FILES: <comma-separated file paths, or "none">
EXECUTED_COMMANDS: <comma-separated commands, or "none">
CREATED_CONTEXTS: <comma-separated context identifiers produced for later tasks, or "none">
WARNINGS: <comma-separated caveats the reviewer should know about, or "none">`

// Executor runs tasks against the Anthropic API. It implements the
// engine's executor contract for one role.
type Executor struct {
	client    *Client
	role      models.Role
	maxTokens int64
}

// NewExecutor creates an executor for the given role.
func NewExecutor(client *Client, role models.Role) *Executor {
	return &Executor{
		client:    client,
		role:      role,
		maxTokens: 8192,
	}
}

// Run executes the task with a single model call and parses the
// model's report into task results.
func (e *Executor) Run(ctx context.Context, task *models.Task, deps []string) (*models.TaskResults, error) {
	prompt := BuildTaskPrompt(task, deps)

	system := coderSystemPrompt
	if e.role == models.RoleExplorer {
		system = explorerSystemPrompt
	}

	resp, err := e.client.sdk().Messages.New(ctx, anthropic.MessageNewParams{
		Model:     e.client.Model(),
		MaxTokens: e.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: system + "\n\n" + reportFormat},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("task execution request: %w", err)
	}

	e.client.Tracker().Add(resp.Usage.InputTokens, resp.Usage.OutputTokens)

	results := ParseTaskReport(extractText(resp))
	results.InputTokens = resp.Usage.InputTokens
	results.OutputTokens = resp.Usage.OutputTokens
	return results, nil
}

// BuildTaskPrompt renders the task, its dependency list, and its
// context references into the user prompt.
func BuildTaskPrompt(task *models.Task, deps []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## Task: %s\n\n", task.Title)
	if task.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", task.Description)
	}

	if len(task.ContextRefs) > 0 {
		b.WriteString("## Context References\n")
		for _, ref := range task.ContextRefs {
			fmt.Fprintf(&b, "- %s\n", ref)
		}
		b.WriteString("\n")
	}

	if len(deps) > 0 {
		b.WriteString("## Depends On\n")
		b.WriteString("The following tasks are prerequisites; their outputs may be referenced above:\n")
		for _, dep := range deps {
			fmt.Fprintf(&b, "- %s\n", dep)
		}
		b.WriteString("\n")
	}

	b.WriteString("Complete the task and finish with the report.")
	return b.String()
}

// ParseTaskReport extracts the structured report from a model
// response. Missing fields degrade gracefully: an unparseable
// response becomes a results struct whose summary is the whole text.
func ParseTaskReport(text string) *models.TaskResults {
	results := &models.TaskResults{}

	summary := reportField(text, "SUMMARY")
	if summary == "" {
		results.Summary = text
		return results
	}
	results.Summary = summary
	results.ModifiedFiles = reportList(text, "MODIFIED_FILES")
	results.ExecutedCommands = reportList(text, "EXECUTED_COMMANDS")
	results.CreatedContexts = reportList(text, "CREATED_CONTEXTS")
	results.Warnings = reportList(text, "WARNINGS")
	return results
}

// reportField returns the value of a "FIELD:" line, empty if absent.
func reportField(text, field string) string {
	marker := field + ":"
	idx := strings.Index(text, marker)
	if idx < 0 {
		return ""
	}
	rest := text[idx+len(marker):]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[:nl]
	}
	return strings.TrimSpace(rest)
}

// reportList splits a comma-separated field value, treating "none" as
// empty.
func reportList(text, field string) []string {
	value := reportField(text, field)
	if value == "" || strings.EqualFold(value, "none") {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Factory creates per-role executors sharing one client.
type Factory struct {
	client *Client
}

// NewFactory creates an executor factory around a shared client.
func NewFactory(client *Client) *Factory {
	return &Factory{client: client}
}

// NewExecutor implements the engine's executor factory contract.
func (f *Factory) NewExecutor(role models.Role) agent.Executor {
	return NewExecutor(f.client, role)
}
