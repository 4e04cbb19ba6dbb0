package llm

import (
	"context"
	"errors"
	"net"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/genai"

	"github.com/PabloGalante/translingua/internal/domain"
)

func TestMockLLM(t *testing.T) {
	m := NewMockLLM()

	out, err := m.GenerateText(context.Background(), "gemini-2.5-flash", "Translate the following text from English to Spanish.\nmore")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(out, "[gemini-2.5-flash] Translate the following text") {
		t.Fatalf("unexpected mock output: %q", out)
	}

	m.Err = errors.New("boom")
	if _, err := m.GenerateText(context.Background(), "m", "p"); err == nil {
		t.Fatalf("expected configured error")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewMockLLM().GenerateText(ctx, "m", "p"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestGeminiErrorClassification(t *testing.T) {
	g := &GeminiClient{provider: "gemini"}

	err := g.wrapError(genai.APIError{Code: 429, Message: "quota exceeded"})
	var genErr *domain.GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected GenerationError, got %T", err)
	}
	if genErr.StatusCode != 429 || !genErr.Transient {
		t.Fatalf("429 should be transient, got %+v", genErr)
	}

	err = g.wrapError(genai.APIError{Code: 400, Message: "bad request"})
	if domain.IsTransient(err) {
		t.Fatalf("400 should not be transient")
	}

	err = g.wrapError(&net.OpError{Op: "dial", Err: errors.New("connection refused")})
	if !domain.IsTransient(err) {
		t.Fatalf("network errors should be transient")
	}
}

func TestOpenAIErrorClassification(t *testing.T) {
	o := NewOpenAIClient("sk-test", "http://localhost:1", 0.7, 256)

	err := o.wrapError(&openai.APIError{HTTPStatusCode: 503, Message: "overloaded"})
	if !domain.IsTransient(err) {
		t.Fatalf("503 should be transient")
	}

	err = o.wrapError(&openai.APIError{HTTPStatusCode: 401, Message: "invalid key"})
	if domain.IsTransient(err) {
		t.Fatalf("401 should not be transient")
	}

	var genErr *domain.GenerationError
	if !errors.As(err, &genErr) || genErr.Provider != "openai" {
		t.Fatalf("expected openai GenerationError, got %v", err)
	}
}
