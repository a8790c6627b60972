package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"assistant-backend/internal/config"
	"assistant-backend/internal/conversation"
)

// Generator sends one built request to a language model and returns the
// reply text. Implementations report failures as *TransportError or as
// conversation.ErrMalformedResponse.
type Generator interface {
	Generate(ctx context.Context, req conversation.Request) (string, error)
	Close() error
}

// NewGenerator picks the backend named by LLM_PROVIDER.
func NewGenerator(ctx context.Context, cfg *config.Config) (Generator, error) {
	switch cfg.LLMProvider {
	case "gemini":
		return NewGeminiClient(GeminiClientConfig{
			APIKey:         cfg.GeminiAPIKey,
			Model:          cfg.GeminiModel,
			BaseURL:        cfg.GeminiBaseURL,
			ConcurrentReqs: cfg.GeminiConcurrentReqs,
		}, http.DefaultClient), nil
	case "gemini-sdk":
		return NewGeminiService(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiConcurrentReqs)
	case "openai":
		return NewOpenAIService(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, cfg.GeminiConcurrentReqs), nil
	case "mock":
		return &MockGenerator{}, nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", cfg.LLMProvider)
	}
}

// MockGenerator echoes the last input. Used for local development without
// provider credentials.
type MockGenerator struct{}

func (m *MockGenerator) Generate(ctx context.Context, req conversation.Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &TransportError{Provider: "mock", Err: err}
	}
	dialogue := req.Dialogue()
	if len(dialogue) == 0 {
		return "", nil
	}
	return "[mock] " + strings.TrimSpace(dialogue[len(dialogue)-1].Text), nil
}

func (m *MockGenerator) Close() error { return nil }
