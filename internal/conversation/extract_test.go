package conversation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractText_JoinsFirstCandidateParts(t *testing.T) {
	body := []byte(`{
		"candidates": [
			{"content": {"role": "model", "parts": [{"text": "Bonjour"}, {"text": "le monde"}]}, "finishReason": "STOP"},
			{"content": {"parts": [{"text": "ignored"}]}}
		]
	}`)

	text, err := ExtractText(body)
	require.NoError(t, err)
	assert.Equal(t, "Bonjour le monde", text)

	again, err := ExtractText(body)
	require.NoError(t, err)
	assert.Equal(t, text, again)
}

func TestExtractText_EmptyPartsYieldEmptyString(t *testing.T) {
	text, err := ExtractText([]byte(`{"candidates":[{"content":{"parts":[]}}]}`))
	require.NoError(t, err)
	assert.Equal(t, "", text)
}

func TestExtractText_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html>bad gateway</html>`},
		{"error envelope", `{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`},
		{"no candidates", `{}`},
		{"empty candidates", `{"candidates":[]}`},
		{"safety block", `{"promptFeedback":{"blockReason":"SAFETY"}}`},
		{"candidate without content", `{"candidates":[{"finishReason":"SAFETY"}]}`},
		{"content without parts", `{"candidates":[{"content":{"role":"model"}}]}`},
		{"null parts", `{"candidates":[{"content":{"parts":null}}]}`},
		{"different shape", `{"choices":[{"message":{"content":"hi"}}]}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			text, err := ExtractText([]byte(tc.body))
			require.Error(t, err)
			assert.Empty(t, text)
			assert.True(t, errors.Is(err, ErrMalformedResponse))

			var mre *MalformedResponseError
			assert.True(t, errors.As(err, &mre))
			assert.NotEmpty(t, mre.Reason)
		})
	}
}

func TestExtractText_ErrorEnvelopeMessageIsKept(t *testing.T) {
	_, err := ExtractText([]byte(`{"error":{"code":429,"message":"quota exceeded","status":"RESOURCE_EXHAUSTED"}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
	assert.Contains(t, err.Error(), "RESOURCE_EXHAUSTED")
}

func TestJoinParts(t *testing.T) {
	assert.Equal(t, "a b c", JoinParts([]string{"a", "b", "c"}, func(s string) string { return s }))
	assert.Equal(t, "", JoinParts([]string{}, func(s string) string { return s }))
	assert.Equal(t, "a b", JoinParts([]string{"", "a", "", "b"}, func(s string) string { return s }))
}

func TestExtractText_SkipsPartsWithoutText(t *testing.T) {
	text, err := ExtractText([]byte(`{"candidates":[{"content":{"parts":[
		{"text":"a"},
		{"functionCall":{"name":"lookup","args":{"q":"x"}}},
		{"text":"b"}
	]}}]}`))
	require.NoError(t, err)
	assert.Equal(t, "a b", text)
}
