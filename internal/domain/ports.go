package domain

import "context"

// TextGenerator performs one outbound call to a generation provider.
// Implementations must not retry; they wrap faults in *GenerationError.
type TextGenerator interface {
	GenerateText(ctx context.Context, modelID, prompt string) (string, error)
	Provider() string
}

// ModelInfo describes the configured generation backend.
type ModelInfo struct {
	Provider         string `json:"provider"`
	APIStatus        string `json:"api_status"`
	TranslationModel string `json:"translation_model"`
	TravelModel      string `json:"travel_model"`
	APIKeyPrefix     string `json:"api_key_prefix"`
}
