package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"google.golang.org/genai"

	"github.com/PabloGalante/translingua/internal/domain"
)

// GeminiOptions selects between the Gemini API (API key) and Vertex AI
// (project + location) backends of the genai SDK.
type GeminiOptions struct {
	APIKey   string
	Vertex   bool
	Project  string
	Location string

	Temperature     float32
	MaxOutputTokens int32
}

type GeminiClient struct {
	client          *genai.Client
	provider        string
	temperature     float32
	maxOutputTokens int32
}

// NewGeminiClient creates a TextGenerator backed by Gemini.
func NewGeminiClient(ctx context.Context, opts GeminiOptions) (*GeminiClient, error) {
	cc := &genai.ClientConfig{}
	provider := "gemini"

	if opts.Vertex {
		if opts.Project == "" || opts.Location == "" {
			return nil, fmt.Errorf("project and location must be set for Vertex AI")
		}
		cc.Project = opts.Project
		cc.Location = opts.Location
		cc.Backend = genai.BackendVertexAI
		provider = "vertex"
	} else {
		if opts.APIKey == "" {
			return nil, fmt.Errorf("API key must be set for the Gemini API")
		}
		cc.APIKey = opts.APIKey
		cc.Backend = genai.BackendGeminiAPI
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating %s client: %w", provider, err)
	}

	return &GeminiClient{
		client:          client,
		provider:        provider,
		temperature:     opts.Temperature,
		maxOutputTokens: opts.MaxOutputTokens,
	}, nil
}

func (g *GeminiClient) Provider() string {
	return g.provider
}

// GenerateText implements domain.TextGenerator with a single
// GenerateContent call.
func (g *GeminiClient) GenerateText(ctx context.Context, modelID, prompt string) (string, error) {
	temp := g.temperature

	cfg := &genai.GenerateContentConfig{
		Temperature:     &temp,
		MaxOutputTokens: g.maxOutputTokens,
	}

	res, err := g.client.Models.GenerateContent(ctx, modelID, genai.Text(prompt), cfg)
	if err != nil {
		return "", g.wrapError(err)
	}

	// Only the text, never the raw structs.
	text := res.Text()
	if strings.TrimSpace(text) == "" {
		return "", &domain.GenerationError{Provider: g.provider, Err: errors.New("model returned empty text")}
	}

	return text, nil
}

func (g *GeminiClient) wrapError(err error) error {
	code := 0

	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.Code
	case errors.As(err, &apiErrPtr):
		code = apiErrPtr.Code
	}

	return &domain.GenerationError{
		Provider:   g.provider,
		StatusCode: code,
		Transient:  transient(code, err),
		Err:        fmt.Errorf("generate content: %w", err),
	}
}

// transient classifies a provider fault. Without a status code, only
// network-level failures are worth retrying.
func transient(code int, err error) bool {
	if code != 0 {
		return domain.TransientStatus(code)
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
