package conversation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRequest_SingleQuestionHistory(t *testing.T) {
	history := []Turn{{Kind: KindQuestion, Text: "hi"}}

	req := BuildRequest("P", history, "how are you", DefaultParams())

	assert.Equal(t, []Entry{
		{Role: RoleSystem, Text: "P"},
		{Role: RoleUser, Text: "hi"},
		{Role: RoleUser, Text: "how are you"},
	}, req.Entries)
}

func TestBuildRequest_LengthAndLastEntry(t *testing.T) {
	histories := [][]Turn{
		nil,
		{{Kind: KindQuestion, Text: "a"}},
		{{Kind: KindQuestion, Text: "a"}, {Kind: KindResponse, Text: "b"}},
		{{Kind: KindResponse, Text: "b"}, {Kind: KindResponse, Text: "c"}, {Kind: KindQuestion, Text: "d"}},
	}

	for _, h := range histories {
		req := BuildRequest("persona", h, "  last input\n", DefaultParams())
		require.Len(t, req.Entries, len(h)+2)
		assert.Equal(t, "  last input\n", req.Entries[len(req.Entries)-1].Text)
		assert.Equal(t, RoleUser, req.Entries[len(req.Entries)-1].Role)
	}
}

func TestBuildRequest_RoleMappingPreservesOrder(t *testing.T) {
	history := []Turn{
		{Kind: KindResponse, Text: "1"},
		{Kind: KindQuestion, Text: "2"},
		{Kind: KindQuestion, Text: "3"},
		{Kind: KindResponse, Text: "4"},
		{Kind: KindResponse, Text: "4"},
	}

	req := BuildRequest("", history, "", DefaultParams())

	for i, turn := range history {
		entry := req.Entries[i+1]
		assert.Equal(t, turn.Text, entry.Text)
		if turn.Kind == KindQuestion {
			assert.Equal(t, RoleUser, entry.Role)
		} else {
			assert.Equal(t, RoleModel, entry.Role)
		}
	}
}

func TestBuildRequest_EmptyPersonaAndInputAccepted(t *testing.T) {
	req := BuildRequest("", nil, "", DefaultParams())

	require.Len(t, req.Entries, 2)
	assert.Equal(t, Entry{Role: RoleSystem}, req.Entries[0])
	assert.Equal(t, Entry{Role: RoleUser}, req.Entries[1])
}

func TestGenerationParams_Validate(t *testing.T) {
	assert.NoError(t, DefaultParams().Validate())

	tests := []GenerationParams{
		{Temperature: 2.5},
		{Temperature: -0.1},
		{TopP: 1.2},
		{TopK: -1},
		{MaxOutputTokens: -5},
	}
	for _, p := range tests {
		assert.Error(t, p.Validate(), "%+v", p)
	}
}

func TestGeminiPayload_Shape(t *testing.T) {
	history := []Turn{
		{Kind: KindQuestion, Text: "hi"},
		{Kind: KindResponse, Text: "hello"},
	}
	req := BuildRequest("Be brief.", history, "bye", DefaultParams())

	raw, err := json.Marshal(req.GeminiPayload())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	system := decoded["systemInstruction"].(map[string]any)
	assert.Equal(t, "Be brief.", system["parts"].([]any)[0].(map[string]any)["text"])
	assert.NotContains(t, system, "role")

	contents := decoded["contents"].([]any)
	require.Len(t, contents, 3)
	roles := []string{}
	for _, c := range contents {
		roles = append(roles, c.(map[string]any)["role"].(string))
	}
	assert.Equal(t, []string{"user", "model", "user"}, roles)

	genCfg := decoded["generationConfig"].(map[string]any)
	assert.EqualValues(t, 64, genCfg["topK"])
	assert.EqualValues(t, 8192, genCfg["maxOutputTokens"])
	assert.Equal(t, "text/plain", genCfg["responseMimeType"])
	assert.NotContains(t, genCfg, "SafetyThreshold")

	safety := decoded["safetySettings"].([]any)
	require.Len(t, safety, len(SafetyCategories()))
	assert.Equal(t, "BLOCK_NONE", safety[0].(map[string]any)["threshold"])
}

func TestGeminiPayload_NoSafetyWhenThresholdUnset(t *testing.T) {
	req := BuildRequest("p", nil, "x", GenerationParams{Temperature: 1})

	payload := req.GeminiPayload()
	assert.Nil(t, payload.SafetySettings)
	require.NotNil(t, payload.SystemInstruction)
	assert.Len(t, payload.Contents, 1)
}
