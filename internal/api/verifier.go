package api

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/vinhnx/vtagent-sub002/pkg/models"
)

// Verifier judges executor output with an LLM review pass. It
// implements the engine's verifier contract.
type Verifier struct {
	client    *Client
	model     anthropic.Model
	maxTokens int64
}

// NewVerifier creates a verifier. An empty model reuses the client's
// configured model.
func NewVerifier(client *Client, model anthropic.Model) *Verifier {
	if model == "" {
		model = client.Model()
	} else {
		model = client.TranslateModel(model)
	}
	return &Verifier{
		client:    client,
		model:     model,
		maxTokens: 1024,
	}
}

// Verify reviews the task's results and returns a verdict. An error
// return means the review itself failed, not that the work was
// rejected.
func (v *Verifier) Verify(ctx context.Context, task *models.Task, results *models.TaskResults, role models.Role) (*models.VerificationResult, error) {
	prompt := BuildVerificationPrompt(task, results, role)

	resp, err := v.client.sdk().Messages.New(ctx, anthropic.MessageNewParams{
		Model:     v.model,
		MaxTokens: v.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("verification request: %w", err)
	}

	v.client.Tracker().Add(resp.Usage.InputTokens, resp.Usage.OutputTokens)

	return ParseVerdict(extractText(resp)), nil
}

// BuildVerificationPrompt renders the review prompt for a finished
// task.
func BuildVerificationPrompt(task *models.Task, results *models.TaskResults, role models.Role) string {
	var b strings.Builder

	b.WriteString(`You are a Senior Staff Engineer reviewing completed work. Be strict: you are the last line of defense.

## Review Criteria
1. Does the reported work accomplish the stated task?
2. Are the reported changes consistent with the task's scope?
3. Do any reported warnings invalidate the result?

`)
	fmt.Fprintf(&b, "## Task (%s)\n%s\n", role, task.Title)
	if task.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", task.Description)
	}

	fmt.Fprintf(&b, "\n## Reported Summary\n%s\n", results.Summary)
	if len(results.ModifiedFiles) > 0 {
		fmt.Fprintf(&b, "\n## Modified Files\n%s\n", strings.Join(results.ModifiedFiles, "\n"))
	}
	if len(results.ExecutedCommands) > 0 {
		fmt.Fprintf(&b, "\n## Executed Commands\n%s\n", strings.Join(results.ExecutedCommands, "\n"))
	}
	if len(results.Warnings) > 0 {
		fmt.Fprintf(&b, "\n## Reported Warnings\n%s\n", strings.Join(results.Warnings, "\n"))
	}

	b.WriteString(`
## Response Format

Respond with EXACTLY this structure:
VERDICT: PASS or FAIL
CONFIDENCE: a number between 0.0 and 1.0
FEEDBACK: one or two sentences explaining the verdict`)

	return b.String()
}

// ParseVerdict extracts the structured verdict from a review
// response. An unparseable response fails closed with the full text
// as feedback.
func ParseVerdict(text string) *models.VerificationResult {
	result := &models.VerificationResult{
		Confidence: 0.5,
		Feedback:   text,
	}

	verdict := reportField(text, "VERDICT")
	switch {
	case strings.EqualFold(verdict, "PASS"):
		result.Passed = true
	case strings.EqualFold(verdict, "FAIL"):
		result.Passed = false
	default:
		// No recognizable verdict: fail closed.
		result.Passed = false
		result.Confidence = 0
		return result
	}

	if conf := reportField(text, "CONFIDENCE"); conf != "" {
		if f, err := strconv.ParseFloat(conf, 64); err == nil && f >= 0 && f <= 1 {
			result.Confidence = f
		}
	}
	if feedback := reportField(text, "FEEDBACK"); feedback != "" {
		result.Feedback = feedback
	}
	return result
}
