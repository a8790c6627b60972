package conversation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedResponse matches every *MalformedResponseError.
var ErrMalformedResponse = errors.New("malformed response")

// MalformedResponseError means the provider answered with a body that does
// not carry generated text where it should.
type MalformedResponseError struct {
	Reason string
	Cause  error
}

func (e *MalformedResponseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed response: %s: %v", e.Reason, e.Cause)
	}
	return "malformed response: " + e.Reason
}

func (e *MalformedResponseError) Unwrap() error { return e.Cause }

func (e *MalformedResponseError) Is(target error) bool {
	return target == ErrMalformedResponse
}

func malformed(reason string, cause error) error {
	return &MalformedResponseError{Reason: reason, Cause: cause}
}

type responsePart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content *struct {
			Parts *[]responsePart `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// ExtractText pulls the first candidate's text out of a generateContent
// response body, joining its parts with a single space.
func ExtractText(body []byte) (string, error) {
	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", malformed("body is not JSON", err)
	}

	if resp.Error != nil {
		return "", malformed(fmt.Sprintf("provider error %d %s: %s", resp.Error.Code, resp.Error.Status, resp.Error.Message), nil)
	}
	if len(resp.Candidates) == 0 {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return "", malformed("prompt blocked: "+resp.PromptFeedback.BlockReason, nil)
		}
		return "", malformed("no candidates", nil)
	}

	first := resp.Candidates[0]
	if first.Content == nil {
		if first.FinishReason != "" {
			return "", malformed("candidate has no content, finish reason "+first.FinishReason, nil)
		}
		return "", malformed("candidate has no content", nil)
	}
	if first.Content.Parts == nil {
		return "", malformed("candidate content has no parts", nil)
	}

	return JoinParts(*first.Content.Parts, func(p responsePart) string { return p.Text }), nil
}

// JoinParts concatenates part texts in order with a single space. Parts
// without text, such as function calls, are skipped.
func JoinParts[T any](parts []T, text func(T) string) string {
	texts := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := text(p); t != "" {
			texts = append(texts, t)
		}
	}
	return strings.Join(texts, " ")
}
