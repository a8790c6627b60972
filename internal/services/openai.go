package services

import (
	"context"
	"errors"

	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"

	"assistant-backend/internal/conversation"
)

const openAIProvider = "openai"

// OpenAIService talks to any OpenAI-compatible chat completion endpoint.
type OpenAIService struct {
	client *openai.Client
	model  string
	slots  *requestSlots
}

func NewOpenAIService(apiKey, baseURL, model string, concurrentReqs int) *OpenAIService {
	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}

	return &OpenAIService{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
		slots:  newRequestSlots(concurrentReqs),
	}
}

func toOpenAIMessages(req conversation.Request) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Entries))
	for _, e := range req.Entries {
		role := openai.ChatMessageRoleAssistant
		switch e.Role {
		case conversation.RoleSystem:
			role = openai.ChatMessageRoleSystem
		case conversation.RoleUser:
			role = openai.ChatMessageRoleUser
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: e.Text})
	}
	return messages
}

func (s *OpenAIService) Generate(ctx context.Context, req conversation.Request) (string, error) {
	if err := s.slots.acquire(ctx, openAIProvider); err != nil {
		return "", err
	}
	defer s.slots.release()

	chatReq := openai.ChatCompletionRequest{
		Model:       s.model,
		Messages:    toOpenAIMessages(req),
		Temperature: req.Params.Temperature,
		TopP:        req.Params.TopP,
		MaxTokens:   int(req.Params.MaxOutputTokens),
	}

	resp, err := s.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			logrus.WithFields(logrus.Fields{
				"provider": openAIProvider,
				"status":   apiErr.HTTPStatusCode,
			}).Warn("openai returned an error envelope")
			return "", &conversation.MalformedResponseError{Reason: "provider error", Cause: err}
		}
		return "", &TransportError{Provider: openAIProvider, Err: err}
	}

	if len(resp.Choices) == 0 {
		return "", &conversation.MalformedResponseError{Reason: "no choices"}
	}
	return resp.Choices[0].Message.Content, nil
}

func (s *OpenAIService) Close() error { return nil }
