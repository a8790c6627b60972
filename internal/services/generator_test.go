package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assistant-backend/internal/config"
	"assistant-backend/internal/conversation"
)

func TestNewGenerator_SelectsProvider(t *testing.T) {
	base := config.Config{
		GeminiAPIKey:         "k",
		GeminiModel:          "m",
		GeminiBaseURL:        "http://localhost",
		GeminiConcurrentReqs: 1,
		OpenAIAPIKey:         "k",
		OpenAIModel:          "gpt",
	}

	tests := []struct {
		provider string
		want     interface{}
	}{
		{"gemini", &GeminiClient{}},
		{"openai", &OpenAIService{}},
		{"mock", &MockGenerator{}},
	}
	for _, tc := range tests {
		t.Run(tc.provider, func(t *testing.T) {
			cfg := base
			cfg.LLMProvider = tc.provider
			gen, err := NewGenerator(context.Background(), &cfg)
			require.NoError(t, err)
			defer gen.Close()
			assert.IsType(t, tc.want, gen)
		})
	}

	cfg := base
	cfg.LLMProvider = "llama"
	_, err := NewGenerator(context.Background(), &cfg)
	assert.Error(t, err)
}

func TestMockGenerator_EchoesLastInput(t *testing.T) {
	text, err := (&MockGenerator{}).Generate(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, "[mock] Q2", text)
}

func TestExtractCandidateText(t *testing.T) {
	text, err := extractCandidateText(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []genai.Part{genai.Text("a"), genai.Text("b")}}},
			{Content: &genai.Content{Parts: []genai.Part{genai.Text("ignored")}}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "a b", text)

	text, err = extractCandidateText(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []genai.Part{
			genai.Text("a"),
			genai.FunctionCall{Name: "lookup"},
			genai.Text("b"),
		}}}},
	})
	require.NoError(t, err)
	assert.Equal(t, "a b", text)

	text, err = extractCandidateText(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []genai.Part{}}}},
	})
	require.NoError(t, err)
	assert.Equal(t, "", text)

	for name, resp := range map[string]*genai.GenerateContentResponse{
		"nil":        nil,
		"empty":      {},
		"no content": {Candidates: []*genai.Candidate{{}}},
		"nil parts":  {Candidates: []*genai.Candidate{{Content: &genai.Content{}}}},
	} {
		_, err := extractCandidateText(resp)
		assert.True(t, errors.Is(err, conversation.ErrMalformedResponse), name)
	}
}

func TestToGenaiHistory(t *testing.T) {
	req := sampleRequest()
	dialogue := req.Dialogue()
	history := toGenaiHistory(dialogue[:len(dialogue)-1])

	require.Len(t, history, 2)
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, genai.Text("Q1"), history[0].Parts[0])
	assert.Equal(t, "model", history[1].Role)
}

func TestToOpenAIMessages(t *testing.T) {
	msgs := toOpenAIMessages(sampleRequest())
	require.Len(t, msgs, 4)
	assert.Equal(t, openai.ChatMessageRoleSystem, msgs[0].Role)
	assert.Equal(t, "P", msgs[0].Content)
	assert.Equal(t, openai.ChatMessageRoleUser, msgs[1].Role)
	assert.Equal(t, openai.ChatMessageRoleAssistant, msgs[2].Role)
	assert.Equal(t, openai.ChatMessageRoleUser, msgs[3].Role)
	assert.Equal(t, "Q2", msgs[3].Content)
}

func newTestOpenAI(t *testing.T, handler http.HandlerFunc) *OpenAIService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewOpenAIService("test-key", srv.URL+"/v1", "gpt-test", 1)
}

func TestOpenAIService_Generate(t *testing.T) {
	var got openai.ChatCompletionRequest
	svc := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		_ = json.NewDecoder(r.Body).Decode(&got)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","choices":[{"index":0,"message":{"role":"assistant","content":"Salut"}}]}`))
	})

	text, err := svc.Generate(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, "Salut", text)
	assert.Equal(t, "gpt-test", got.Model)
	assert.Len(t, got.Messages, 4)
}

func TestOpenAIService_Generate_Failures(t *testing.T) {
	t.Run("no choices", func(t *testing.T) {
		svc := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"x","choices":[]}`))
		})
		_, err := svc.Generate(context.Background(), sampleRequest())
		assert.True(t, errors.Is(err, conversation.ErrMalformedResponse))
	})

	t.Run("error envelope", func(t *testing.T) {
		svc := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"message":"bad request","type":"invalid_request_error"}}`))
		})
		_, err := svc.Generate(context.Background(), sampleRequest())
		assert.True(t, errors.Is(err, conversation.ErrMalformedResponse))
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := srv.URL
		srv.Close()

		svc := NewOpenAIService("k", url, "gpt", 1)
		_, err := svc.Generate(context.Background(), sampleRequest())
		assert.True(t, errors.Is(err, ErrTransport))
	})
}
