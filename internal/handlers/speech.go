package handlers

import (
	"context"
	"net/http"
	"strconv"

	"assistant-backend/internal/models"
	"assistant-backend/internal/services"
)

type speechSynthesizer interface {
	Synthesize(ctx context.Context, text, voiceName string) ([]byte, error)
}

type SpeechHandler struct {
	speech speechSynthesizer
}

// NewSpeechHandler accepts a nil synthesizer when text-to-speech is not
// configured; requests then get 503.
func NewSpeechHandler(speech speechSynthesizer) *SpeechHandler {
	return &SpeechHandler{speech: speech}
}

func (h *SpeechHandler) Synthesize(w http.ResponseWriter, r *http.Request) {
	if h.speech == nil {
		handleServiceError(w, r, &services.UnavailableError{Message: "Text-to-speech is not configured"})
		return
	}

	var req models.SpeechRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	audio, err := h.speech.Synthesize(r.Context(), req.Text, req.VoiceName)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(audio)))
	w.WriteHeader(http.StatusOK)
	w.Write(audio)
}
