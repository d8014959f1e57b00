package api

import (
	"strings"
	"testing"

	"github.com/vinhnx/vtagent-sub002/pkg/models"
)

func TestBuildTaskPrompt(t *testing.T) {
	task := &models.Task{
		Title:       "Add retry to fetcher",
		Description: "Wrap the HTTP fetch in an exponential backoff retry.",
		ContextRefs: []string{"ctx-fetcher-design", "ctx-error-survey"},
	}

	prompt := BuildTaskPrompt(task, []string{"task-1234"})

	if !strings.Contains(prompt, "Add retry to fetcher") {
		t.Error("prompt missing task title")
	}
	if !strings.Contains(prompt, "exponential backoff") {
		t.Error("prompt missing description")
	}
	if !strings.Contains(prompt, "ctx-fetcher-design") || !strings.Contains(prompt, "ctx-error-survey") {
		t.Error("prompt missing context references")
	}
	if !strings.Contains(prompt, "task-1234") {
		t.Error("prompt missing dependency list")
	}
}

func TestBuildTaskPrompt_OmitsEmptySections(t *testing.T) {
	task := &models.Task{Title: "Quick survey"}

	prompt := BuildTaskPrompt(task, nil)

	if strings.Contains(prompt, "Context References") {
		t.Error("prompt should omit empty context section")
	}
	if strings.Contains(prompt, "Depends On") {
		t.Error("prompt should omit empty dependency section")
	}
}

func TestParseTaskReport(t *testing.T) {
	text := `I refactored the fetcher as requested.

SUMMARY: Added exponential backoff retry around the fetch call.
MODIFIED_FILES: internal/fetch/fetcher.go, internal/fetch/fetcher_test.go
EXECUTED_COMMANDS: go test ./internal/fetch
CREATED_CONTEXTS: ctx-retry-notes
WARNINGS: none`

	results := ParseTaskReport(text)

	if results.Summary != "Added exponential backoff retry around the fetch call." {
		t.Errorf("summary = %q", results.Summary)
	}
	if len(results.ModifiedFiles) != 2 || results.ModifiedFiles[0] != "internal/fetch/fetcher.go" {
		t.Errorf("modified files = %v", results.ModifiedFiles)
	}
	if len(results.ExecutedCommands) != 1 {
		t.Errorf("executed commands = %v", results.ExecutedCommands)
	}
	if len(results.CreatedContexts) != 1 || results.CreatedContexts[0] != "ctx-retry-notes" {
		t.Errorf("created contexts = %v", results.CreatedContexts)
	}
	if len(results.Warnings) != 0 {
		t.Errorf("warnings = %v, want none", results.Warnings)
	}
}

func TestParseTaskReport_Warnings(t *testing.T) {
	text := `SUMMARY: Done with caveats.
MODIFIED_FILES: none
EXECUTED_COMMANDS: none
CREATED_CONTEXTS: none
WARNINGS: flaky test skipped, coverage dropped`

	results := ParseTaskReport(text)

	if len(results.Warnings) != 2 {
		t.Fatalf("warnings = %v, want 2", results.Warnings)
	}
	if results.Warnings[0] != "flaky test skipped" || results.Warnings[1] != "coverage dropped" {
		t.Errorf("warnings = %v", results.Warnings)
	}
	if len(results.ModifiedFiles) != 0 {
		t.Errorf("modified files = %v, want none", results.ModifiedFiles)
	}
}

func TestParseTaskReport_UnstructuredResponse(t *testing.T) {
	text := "I did the thing but forgot the report format."

	results := ParseTaskReport(text)

	if results.Summary != text {
		t.Errorf("summary should fall back to full text, got %q", results.Summary)
	}
	if len(results.Warnings) != 0 || len(results.ModifiedFiles) != 0 {
		t.Errorf("unstructured response should have empty lists: %+v", results)
	}
}
