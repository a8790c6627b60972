package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"

	"assistant-backend/internal/conversation"
)

const geminiSDKProvider = "gemini-sdk"

var harmCategories = map[string]genai.HarmCategory{
	"HARM_CATEGORY_HARASSMENT":        genai.HarmCategoryHarassment,
	"HARM_CATEGORY_HATE_SPEECH":       genai.HarmCategoryHateSpeech,
	"HARM_CATEGORY_SEXUALLY_EXPLICIT": genai.HarmCategorySexuallyExplicit,
	"HARM_CATEGORY_DANGEROUS_CONTENT": genai.HarmCategoryDangerousContent,
}

var harmThresholds = map[string]genai.HarmBlockThreshold{
	"BLOCK_NONE":             genai.HarmBlockNone,
	"BLOCK_ONLY_HIGH":        genai.HarmBlockOnlyHigh,
	"BLOCK_MEDIUM_AND_ABOVE": genai.HarmBlockMediumAndAbove,
	"BLOCK_LOW_AND_ABOVE":    genai.HarmBlockLowAndAbove,
}

// GeminiService drives Gemini through the genai SDK chat session API.
type GeminiService struct {
	client    *genai.Client
	modelName string
	slots     *requestSlots
}

func NewGeminiService(ctx context.Context, apiKey, modelName string, concurrentReqs int, opts ...option.ClientOption) (*GeminiService, error) {
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiService{
		client:    client,
		modelName: modelName,
		slots:     newRequestSlots(concurrentReqs),
	}, nil
}

func (s *GeminiService) Close() error {
	return s.client.Close()
}

// configureModel applies the sampling params and the persona to a fresh model
// handle. Handles are per call so concurrent requests never share settings.
func (s *GeminiService) configureModel(req conversation.Request) *genai.GenerativeModel {
	model := s.client.GenerativeModel(s.modelName)
	p := req.Params
	model.SetTemperature(p.Temperature)
	model.SetTopP(p.TopP)
	if p.TopK > 0 {
		model.SetTopK(p.TopK)
	}
	if p.MaxOutputTokens > 0 {
		model.SetMaxOutputTokens(p.MaxOutputTokens)
	}
	model.ResponseMIMEType = p.ResponseMIMEType

	if threshold, ok := harmThresholds[p.SafetyThreshold]; ok {
		for _, name := range conversation.SafetyCategories() {
			model.SafetySettings = append(model.SafetySettings, &genai.SafetySetting{
				Category:  harmCategories[name],
				Threshold: threshold,
			})
		}
	} else if p.SafetyThreshold != "" {
		logrus.WithField("threshold", p.SafetyThreshold).Warn("unknown safety threshold, using provider default")
	}

	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.Persona())}}
	return model
}

func (s *GeminiService) Generate(ctx context.Context, req conversation.Request) (string, error) {
	dialogue := req.Dialogue()
	if len(dialogue) == 0 {
		return "", fmt.Errorf("request has no input entry")
	}

	if err := s.slots.acquire(ctx, geminiSDKProvider); err != nil {
		return "", err
	}
	defer s.slots.release()

	cs := s.configureModel(req).StartChat()
	cs.History = toGenaiHistory(dialogue[:len(dialogue)-1])

	resp, err := cs.SendMessage(ctx, genai.Text(dialogue[len(dialogue)-1].Text))
	if err != nil {
		var blocked *genai.BlockedError
		if errors.As(err, &blocked) {
			return "", &conversation.MalformedResponseError{Reason: "response blocked", Cause: err}
		}
		return "", &TransportError{Provider: geminiSDKProvider, Err: err}
	}

	for i, cand := range resp.Candidates {
		if cand.FinishReason != genai.FinishReasonStop {
			logrus.WithFields(logrus.Fields{
				"candidate":     i,
				"finish_reason": cand.FinishReason.String(),
			}).Warn("Gemini stopped early")
		}
	}

	return extractCandidateText(resp)
}

func toGenaiHistory(entries []conversation.Entry) []*genai.Content {
	history := make([]*genai.Content, 0, len(entries))
	for _, e := range entries {
		history = append(history, &genai.Content{
			Role:  string(e.Role),
			Parts: []genai.Part{genai.Text(e.Text)},
		})
	}
	return history
}

// extractCandidateText joins the text parts of the first candidate, with the
// same failure contract as conversation.ExtractText.
func extractCandidateText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", &conversation.MalformedResponseError{Reason: "no candidates"}
	}

	first := resp.Candidates[0]
	if first == nil || first.Content == nil {
		return "", &conversation.MalformedResponseError{Reason: "candidate has no content"}
	}
	if first.Content.Parts == nil {
		return "", &conversation.MalformedResponseError{Reason: "candidate content has no parts"}
	}

	return conversation.JoinParts(first.Content.Parts, func(p genai.Part) string {
		t, _ := p.(genai.Text)
		return string(t)
	}), nil
}
