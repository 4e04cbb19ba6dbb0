package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/PabloGalante/translingua/internal/domain"
)

// OpenAIClient implements domain.TextGenerator against any
// OpenAI-compatible chat completions endpoint.
type OpenAIClient struct {
	c           *openai.Client
	temperature float32
	maxTokens   int
}

// NewOpenAIClient returns a client for apiKey. baseURL may be left empty for
// the default OpenAI URL.
func NewOpenAIClient(apiKey, baseURL string, temperature float32, maxTokens int) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL // works for LocalAI, vLLM, Groq, etc.
	}
	return &OpenAIClient{
		c:           openai.NewClientWithConfig(cfg),
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

func (o *OpenAIClient) Provider() string {
	return "openai"
}

func (o *OpenAIClient) GenerateText(ctx context.Context, modelID, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: modelID,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: o.temperature,
		MaxTokens:   o.maxTokens,
	}

	resp, err := o.c.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", o.wrapError(err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", &domain.GenerationError{Provider: o.Provider(), Err: errors.New("empty model response")}
	}

	return resp.Choices[0].Message.Content, nil
}

func (o *OpenAIClient) wrapError(err error) error {
	code := 0

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		code = reqErr.HTTPStatusCode
	}

	return &domain.GenerationError{
		Provider:   o.Provider(),
		StatusCode: code,
		Transient:  transient(code, err),
		Err:        fmt.Errorf("chat completion: %w", err),
	}
}
