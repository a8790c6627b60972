package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"assistant-backend/internal/conversation"
	"assistant-backend/internal/models"
	"assistant-backend/internal/repository"
	"assistant-backend/internal/session"
)

// FallbackReply is shown in place of a reply the provider could not deliver.
const FallbackReply = "Error fetching response"

type assistantLookup interface {
	GetByID(ctx context.Context, id int64) (*models.Assistant, error)
}

type ChatService struct {
	generator      Generator
	sessions       session.Store
	assistants     assistantLookup
	transformer    *conversation.Transformer
	defaultPersona string
	timeout        time.Duration
}

func NewChatService(
	generator Generator,
	sessions session.Store,
	assistants assistantLookup,
	transformer *conversation.Transformer,
	defaultPersona string,
	timeout time.Duration,
) *ChatService {
	return &ChatService{
		generator:      generator,
		sessions:       sessions,
		assistants:     assistants,
		transformer:    transformer,
		defaultPersona: defaultPersona,
		timeout:        timeout,
	}
}

// LoadPersona reads the default persona text from path and appends suffix.
// An empty path yields just the suffix.
func LoadPersona(path, suffix string) (string, error) {
	var description string
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read persona file: %w", err)
		}
		description = strings.TrimSpace(string(data))
	}

	suffix = strings.TrimSpace(suffix)
	switch {
	case description == "":
		return suffix, nil
	case suffix == "":
		return description, nil
	default:
		return description + " " + suffix, nil
	}
}

// StartSession opens an empty conversation. With an assistant id the persona
// comes from that assistant, otherwise the default persona is used.
func (s *ChatService) StartSession(ctx context.Context, assistantID *int64) (*models.ChatSession, error) {
	persona := s.defaultPersona
	if assistantID != nil {
		a, err := s.assistants.GetByID(ctx, *assistantID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, &NotFoundError{Message: "Assistant not found"}
			}
			return nil, err
		}
		persona = a.Persona()
	}

	cs := &models.ChatSession{
		ID:          uuid.New(),
		AssistantID: assistantID,
		Persona:     persona,
		CreatedAt:   time.Now().UTC(),
		Turns:       []conversation.Turn{},
	}
	if err := s.sessions.Create(ctx, cs); err != nil {
		return nil, fmt.Errorf("failed to create chat session: %w", err)
	}
	return cs, nil
}

// Send records input as a question and the model's answer as a response.
// Provider failures become FallbackReply rather than an error.
func (s *ChatService) Send(ctx context.Context, sessionID uuid.UUID, input string) (*models.ChatReply, error) {
	if strings.TrimSpace(input) == "" {
		return nil, &ValidationError{Fields: map[string]string{"message": "Message is required"}}
	}

	cs, err := s.History(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	req := s.transformer.Build(cs.Persona, cs.Turns, input)

	genCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	text, err := s.generator.Generate(genCtx, req)
	fallback := false
	if err != nil {
		if !errors.Is(err, conversation.ErrMalformedResponse) && !errors.Is(err, ErrTransport) {
			return nil, fmt.Errorf("failed to generate reply: %w", err)
		}
		logrus.WithFields(logrus.Fields{
			"session_id": sessionID.String(),
			"turns":      len(cs.Turns),
		}).WithError(err).Error("Error fetching response")
		text = FallbackReply
		fallback = true
	}

	reply := conversation.Turn{Kind: conversation.KindResponse, Text: text}
	question := conversation.Turn{Kind: conversation.KindQuestion, Text: input}
	if err := s.sessions.Append(ctx, sessionID, question, reply); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, &NotFoundError{Message: "Chat session not found"}
		}
		return nil, fmt.Errorf("failed to record chat turns: %w", err)
	}

	return &models.ChatReply{Reply: reply, Fallback: fallback}, nil
}

func (s *ChatService) History(ctx context.Context, sessionID uuid.UUID) (*models.ChatSession, error) {
	cs, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, &NotFoundError{Message: "Chat session not found"}
		}
		return nil, fmt.Errorf("failed to load chat session: %w", err)
	}
	return cs, nil
}

// EndSession discards the conversation log.
func (s *ChatService) EndSession(ctx context.Context, sessionID uuid.UUID) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return &NotFoundError{Message: "Chat session not found"}
		}
		return fmt.Errorf("failed to end chat session: %w", err)
	}
	return nil
}
