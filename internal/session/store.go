// Package session keeps the conversation log of each live chat session.
// Logs are ephemeral: ending a session discards them.
package session

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"assistant-backend/internal/conversation"
	"assistant-backend/internal/models"
)

var ErrNotFound = errors.New("chat session not found")

type Store interface {
	Create(ctx context.Context, s *models.ChatSession) error
	// Get returns the session with its turns in append order.
	Get(ctx context.Context, id uuid.UUID) (*models.ChatSession, error)
	Append(ctx context.Context, id uuid.UUID, turns ...conversation.Turn) error
	Delete(ctx context.Context, id uuid.UUID) error
}
