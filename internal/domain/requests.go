package domain

import "strings"

// TranslationRequest asks for Text to be translated from Source to Target.
// Context is optional extra guidance for the model.
type TranslationRequest struct {
	Text    string
	Source  Language
	Target  Language
	Context string
}

// IsBlank reports whether there is nothing to translate.
func (r TranslationRequest) IsBlank() bool {
	return strings.TrimSpace(r.Text) == ""
}

// TravelGuideRequest describes the trip a guide should be generated for.
// Budget is optional; the other fields are required.
type TravelGuideRequest struct {
	Destination string
	Duration    string
	Interests   string
	Budget      string
}

// Validate reports every missing required field at once.
func (r TravelGuideRequest) Validate() error {
	var missing []string
	if strings.TrimSpace(r.Destination) == "" {
		missing = append(missing, "destination")
	}
	if strings.TrimSpace(r.Duration) == "" {
		missing = append(missing, "duration")
	}
	if strings.TrimSpace(r.Interests) == "" {
		missing = append(missing, "interests")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

// RefinementRequest asks the model to improve an existing translation.
type RefinementRequest struct {
	OriginalText       string
	CurrentTranslation string
	Feedback           string
}

func (r RefinementRequest) Validate() error {
	var missing []string
	if strings.TrimSpace(r.OriginalText) == "" {
		missing = append(missing, "original_text")
	}
	if strings.TrimSpace(r.CurrentTranslation) == "" {
		missing = append(missing, "current_translation")
	}
	if strings.TrimSpace(r.Feedback) == "" {
		missing = append(missing, "feedback")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}
