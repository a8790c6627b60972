package models

import (
	"time"

	"github.com/google/uuid"

	"assistant-backend/internal/conversation"
)

// ChatSession is the live conversation log of one chat widget.
type ChatSession struct {
	ID          uuid.UUID           `json:"id"`
	AssistantID *int64              `json:"assistantId"`
	Persona     string              `json:"persona"`
	CreatedAt   time.Time           `json:"createdAt"`
	Turns       []conversation.Turn `json:"turns"`
}

type StartSessionRequest struct {
	AssistantID *int64 `json:"assistantId"`
}

// ChatRequest is the payload sent to the chat endpoint.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatReply is the turn appended for a message. Fallback is set when the
// provider could not be reached or answered with an unusable body.
type ChatReply struct {
	Reply    conversation.Turn `json:"reply"`
	Fallback bool              `json:"fallback"`
}

type SpeechRequest struct {
	Text      string `json:"text"`
	VoiceName string `json:"voiceName"`
}
