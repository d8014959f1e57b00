package api

import (
	"strings"
	"testing"

	"github.com/vinhnx/vtagent-sub002/pkg/models"
)

func TestParseVerdict_Pass(t *testing.T) {
	text := `VERDICT: PASS
CONFIDENCE: 0.92
FEEDBACK: The reported changes match the task scope.`

	result := ParseVerdict(text)

	if !result.Passed {
		t.Error("expected passing verdict")
	}
	if result.Confidence != 0.92 {
		t.Errorf("confidence = %v, want 0.92", result.Confidence)
	}
	if result.Feedback != "The reported changes match the task scope." {
		t.Errorf("feedback = %q", result.Feedback)
	}
}

func TestParseVerdict_Fail(t *testing.T) {
	text := `VERDICT: FAIL
CONFIDENCE: 0.8
FEEDBACK: Tests were not run.`

	result := ParseVerdict(text)

	if result.Passed {
		t.Error("expected failing verdict")
	}
	if result.Confidence != 0.8 {
		t.Errorf("confidence = %v, want 0.8", result.Confidence)
	}
}

func TestParseVerdict_Unparseable_FailsClosed(t *testing.T) {
	text := "Looks good I guess?"

	result := ParseVerdict(text)

	if result.Passed {
		t.Error("unparseable verdict must fail closed")
	}
	if result.Confidence != 0 {
		t.Errorf("confidence = %v, want 0", result.Confidence)
	}
	if result.Feedback != text {
		t.Errorf("feedback should carry the raw text, got %q", result.Feedback)
	}
}

func TestParseVerdict_IgnoresOutOfRangeConfidence(t *testing.T) {
	text := `VERDICT: PASS
CONFIDENCE: 42
FEEDBACK: fine`

	result := ParseVerdict(text)

	if !result.Passed {
		t.Error("expected passing verdict")
	}
	if result.Confidence != 0.5 {
		t.Errorf("confidence = %v, want default 0.5", result.Confidence)
	}
}

func TestBuildVerificationPrompt(t *testing.T) {
	task := &models.Task{Title: "Harden parser", Description: "Reject oversized inputs."}
	results := &models.TaskResults{
		Summary:          "Added a size cap to the parser.",
		ModifiedFiles:    []string{"internal/parse/parse.go"},
		ExecutedCommands: []string{"go test ./internal/parse"},
		Warnings:         []string{"cap is configurable but undocumented"},
	}

	prompt := BuildVerificationPrompt(task, results, models.RoleCoder)

	for _, want := range []string{
		"Harden parser",
		"Reject oversized inputs.",
		"Added a size cap to the parser.",
		"internal/parse/parse.go",
		"cap is configurable but undocumented",
		"VERDICT: PASS or FAIL",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
