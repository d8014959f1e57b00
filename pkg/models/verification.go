package models

// VerificationResult is the judgement returned by a verifier for a
// completed task.
type VerificationResult struct {
	// Passed indicates whether the results were judged acceptable.
	Passed bool `json:"passed"`
	// Confidence is the verifier's confidence in its judgement, 0.0 to 1.0.
	Confidence float64 `json:"confidence"`
	// Feedback carries the verifier's findings, if any.
	Feedback string `json:"feedback,omitempty"`
}
