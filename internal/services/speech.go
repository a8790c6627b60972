package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/texttospeech/v1"

	"assistant-backend/internal/conversation"
)

const speechProvider = "texttospeech"

type SpeechConfig struct {
	APIKey       string
	LanguageCode string
	VoiceName    string
	Gender       string
}

// SpeechService turns assistant replies into MP3 audio.
type SpeechService struct {
	svc *texttospeech.Service
	cfg SpeechConfig
}

func NewSpeechService(ctx context.Context, cfg SpeechConfig, opts ...option.ClientOption) (*SpeechService, error) {
	if cfg.APIKey != "" {
		opts = append([]option.ClientOption{option.WithAPIKey(cfg.APIKey)}, opts...)
	}
	svc, err := texttospeech.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create text-to-speech client: %w", err)
	}
	return &SpeechService{svc: svc, cfg: cfg}, nil
}

// Synthesize returns MP3 bytes for text. An empty voiceName uses the
// configured voice.
func (s *SpeechService) Synthesize(ctx context.Context, text, voiceName string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &ValidationError{Fields: map[string]string{"text": "Text is required"}}
	}
	if voiceName == "" {
		voiceName = s.cfg.VoiceName
	}

	req := &texttospeech.SynthesizeSpeechRequest{
		Input: &texttospeech.SynthesisInput{Text: text},
		Voice: &texttospeech.VoiceSelectionParams{
			LanguageCode: s.cfg.LanguageCode,
			Name:         voiceName,
			SsmlGender:   s.cfg.Gender,
		},
		AudioConfig: &texttospeech.AudioConfig{
			AudioEncoding:   "MP3",
			SpeakingRate:    1,
			Pitch:           0,
			VolumeGainDb:    0,
			SampleRateHertz: 24000,
		},
	}

	resp, err := s.svc.Text.Synthesize(req).Context(ctx).Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) {
			return nil, &TransportError{Provider: speechProvider, StatusCode: gerr.Code, Err: err}
		}
		return nil, &TransportError{Provider: speechProvider, Err: err}
	}

	if resp.AudioContent == "" {
		return nil, &conversation.MalformedResponseError{Reason: "empty audio content"}
	}
	audio, err := base64.StdEncoding.DecodeString(resp.AudioContent)
	if err != nil {
		return nil, &conversation.MalformedResponseError{Reason: "audio content is not base64", Cause: err}
	}
	return audio, nil
}
