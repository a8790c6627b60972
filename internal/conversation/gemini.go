package conversation

// Harm categories the widget always attached a threshold to.
var safetyCategories = []string{
	"HARM_CATEGORY_HARASSMENT",
	"HARM_CATEGORY_HATE_SPEECH",
	"HARM_CATEGORY_SEXUALLY_EXPLICIT",
	"HARM_CATEGORY_DANGEROUS_CONTENT",
}

// SafetyCategories lists the harm categories a SafetyThreshold is applied to.
func SafetyCategories() []string {
	out := make([]string, len(safetyCategories))
	copy(out, safetyCategories)
	return out
}

type GeminiPart struct {
	Text string `json:"text"`
}

type GeminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []GeminiPart `json:"parts"`
}

type GeminiSafetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

// GeminiPayload is the generateContent request body.
type GeminiPayload struct {
	SystemInstruction *GeminiContent        `json:"systemInstruction,omitempty"`
	Contents          []GeminiContent       `json:"contents"`
	GenerationConfig  GenerationParams      `json:"generationConfig"`
	SafetySettings    []GeminiSafetySetting `json:"safetySettings,omitempty"`
}

// GeminiPayload renders the request for the Gemini REST API. The persona
// travels as the system instruction, even when it is empty.
func (r Request) GeminiPayload() GeminiPayload {
	payload := GeminiPayload{
		SystemInstruction: &GeminiContent{Parts: []GeminiPart{{Text: r.Persona()}}},
		Contents:          make([]GeminiContent, 0, len(r.Entries)),
		GenerationConfig:  r.Params,
	}

	for _, e := range r.Dialogue() {
		payload.Contents = append(payload.Contents, GeminiContent{
			Role:  string(e.Role),
			Parts: []GeminiPart{{Text: e.Text}},
		})
	}

	if r.Params.SafetyThreshold != "" {
		for _, category := range safetyCategories {
			payload.SafetySettings = append(payload.SafetySettings, GeminiSafetySetting{
				Category:  category,
				Threshold: r.Params.SafetyThreshold,
			})
		}
	}

	return payload
}
