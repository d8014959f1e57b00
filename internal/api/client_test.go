package api

import (
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
)

func TestTranslateModelForBedrock(t *testing.T) {
	tests := []struct {
		name     string
		model    anthropic.Model
		expected anthropic.Model
	}{
		{
			"sonnet 4",
			anthropic.ModelClaudeSonnet4_20250514,
			"us.anthropic.claude-sonnet-4-20250514-v1:0",
		},
		{
			"haiku 3.5",
			anthropic.ModelClaude3_5Haiku20241022,
			"us.anthropic.claude-3-5-haiku-20241022-v1:0",
		},
		{
			"already bedrock format",
			"us.anthropic.claude-sonnet-4-20250514-v1:0",
			"us.anthropic.claude-sonnet-4-20250514-v1:0",
		},
		{
			"unknown model passes through",
			"custom-model",
			"custom-model",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translateModelForBedrock(tt.model)
			if got != tt.expected {
				t.Errorf("translateModelForBedrock(%q) = %q, want %q", tt.model, got, tt.expected)
			}
		})
	}
}

func TestTokenTracker(t *testing.T) {
	tracker := NewTokenTracker()

	tracker.Add(100, 50)
	tracker.Add(200, 75)

	input, output := tracker.Total()
	if input != 300 || output != 125 {
		t.Errorf("Total() = (%d, %d), want (300, 125)", input, output)
	}
	if tracker.Calls() != 2 {
		t.Errorf("Calls() = %d, want 2", tracker.Calls())
	}

	tracker.Reset()
	input, output = tracker.Total()
	if input != 0 || output != 0 || tracker.Calls() != 0 {
		t.Errorf("after Reset: (%d, %d, %d calls)", input, output, tracker.Calls())
	}
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")

	if _, err := NewClient(ClientConfig{}); err == nil {
		t.Error("expected error without API key")
	}
}

func TestNewClient_WithAPIKey(t *testing.T) {
	client, err := NewClient(ClientConfig{APIKey: "sk-ant-test"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if client.Model() != anthropic.ModelClaudeSonnet4_20250514 {
		t.Errorf("default model = %q", client.Model())
	}
}
