package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrUnsupportedLanguage  = errors.New("unsupported language")
)

// ValidationError lists the request fields that were missing or invalid.
// Err, when set, is the underlying reason (e.g. ErrUnsupportedLanguage).
type ValidationError struct {
	Fields []string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid fields %s: %v", strings.Join(e.Fields, ", "), e.Err)
	}
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// GenerationError is returned by text generators so callers can tell
// transient faults (worth retrying) from permanent ones.
type GenerationError struct {
	Provider   string
	StatusCode int
	Transient  bool
	Err        error
}

func (e *GenerationError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err is a GenerationError marked transient.
func IsTransient(err error) bool {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr.Transient
	}
	return false
}

// TransientStatus reports whether an HTTP status code usually clears on retry.
func TransientStatus(code int) bool {
	return code == 408 || code == 429 || code >= 500
}
