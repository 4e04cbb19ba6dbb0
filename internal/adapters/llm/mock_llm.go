package llm

import (
	"context"
	"fmt"
	"strings"
)

// MockLLM answers without any network call. Useful for local development
// and tests. If Err is set every call fails with it.
type MockLLM struct {
	Err error
}

func NewMockLLM() *MockLLM {
	return &MockLLM{}
}

func (m *MockLLM) Provider() string {
	return "mock"
}

func (m *MockLLM) GenerateText(ctx context.Context, modelID, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.Err != nil {
		return "", m.Err
	}

	first, _, _ := strings.Cut(strings.TrimSpace(prompt), "\n")
	return fmt.Sprintf("[%s] %s", modelID, first), nil
}
