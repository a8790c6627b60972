package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	"assistant-backend/internal/conversation"
)

const (
	geminiProvider   = "gemini"
	maxResponseBytes = 8 << 20
)

type GeminiClientConfig struct {
	APIKey         string
	Model          string
	BaseURL        string
	ConcurrentReqs int
}

// GeminiClient calls the generateContent REST endpoint directly.
type GeminiClient struct {
	cfg   GeminiClientConfig
	http  *http.Client
	slots *requestSlots
}

func NewGeminiClient(cfg GeminiClientConfig, httpClient *http.Client) *GeminiClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &GeminiClient{
		cfg:   cfg,
		http:  httpClient,
		slots: newRequestSlots(cfg.ConcurrentReqs),
	}
}

func (c *GeminiClient) endpoint() string {
	return fmt.Sprintf("%s/models/%s:generateContent", c.cfg.BaseURL, url.PathEscape(c.cfg.Model))
}

func (c *GeminiClient) Generate(ctx context.Context, req conversation.Request) (string, error) {
	if err := c.slots.acquire(ctx, geminiProvider); err != nil {
		return "", err
	}
	defer c.slots.release()

	body, err := json.Marshal(req.GeminiPayload())
	if err != nil {
		return "", fmt.Errorf("failed to encode gemini request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(body))
	if err != nil {
		return "", &TransportError{Provider: geminiProvider, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.cfg.APIKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", &TransportError{Provider: geminiProvider, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", &TransportError{Provider: geminiProvider, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logrus.WithFields(logrus.Fields{
			"provider": geminiProvider,
			"status":   resp.StatusCode,
		}).Warn("gemini returned non-success status")

		// A JSON error envelope is a reply we can describe; anything else is
		// a transport failure.
		if json.Valid(data) {
			if _, extractErr := conversation.ExtractText(data); extractErr != nil {
				return "", extractErr
			}
		}
		return "", &TransportError{Provider: geminiProvider, StatusCode: resp.StatusCode}
	}

	return conversation.ExtractText(data)
}

func (c *GeminiClient) Close() error { return nil }
