package domain

import "time"

// GenerationResult is the outcome of exactly one generation request.
// On success Output holds the text; on failure Succeeded is false and
// Error describes what went wrong.
type GenerationResult struct {
	Model     string        `json:"model,omitempty"`
	Prompt    string        `json:"prompt"`
	Output    string        `json:"output"`
	Succeeded bool          `json:"succeeded"`
	Error     string        `json:"error,omitempty"`
	Attempts  int           `json:"attempts"`
	Duration  time.Duration `json:"duration"`
}

// Failed builds an unsuccessful result for the given prompt.
func Failed(model, prompt, reason string) GenerationResult {
	return GenerationResult{
		Model:     model,
		Prompt:    prompt,
		Succeeded: false,
		Error:     reason,
	}
}

// IsEmpty reports whether no generation was attempted at all.
func (r GenerationResult) IsEmpty() bool {
	return r.Prompt == "" && r.Output == "" && r.Error == "" && r.Attempts == 0
}
