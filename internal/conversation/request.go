// Package conversation turns a chat session into a generative-language request
// and turns the provider's reply back into display text. It performs no I/O.
package conversation

import "fmt"

// TurnKind tags who produced a turn.
type TurnKind string

const (
	KindQuestion TurnKind = "question"
	KindResponse TurnKind = "response"
)

// Turn is one message in a conversation log.
type Turn struct {
	Kind TurnKind `json:"type"`
	Text string   `json:"text"`
}

// Role is the provider-side speaker of an entry.
type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
	RoleModel  Role = "model"
)

// RoleFor maps a turn kind to its provider role. Anything that is not a
// question was produced by the model.
func RoleFor(kind TurnKind) Role {
	if kind == KindQuestion {
		return RoleUser
	}
	return RoleModel
}

// Entry is one role-tagged message part of a Request.
type Entry struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// GenerationParams only affect how the provider samples output.
type GenerationParams struct {
	Temperature      float32 `json:"temperature"`
	TopP             float32 `json:"topP"`
	TopK             int32   `json:"topK,omitempty"`
	MaxOutputTokens  int32   `json:"maxOutputTokens,omitempty"`
	ResponseMIMEType string  `json:"responseMimeType,omitempty"`
	SafetyThreshold  string  `json:"-"`
}

// DefaultParams mirrors the widget's original sampling setup.
func DefaultParams() GenerationParams {
	return GenerationParams{
		Temperature:      0.1,
		TopP:             0.95,
		TopK:             64,
		MaxOutputTokens:  8192,
		ResponseMIMEType: "text/plain",
		SafetyThreshold:  "BLOCK_NONE",
	}
}

func (p GenerationParams) Validate() error {
	if p.Temperature < 0 || p.Temperature > 2 {
		return fmt.Errorf("temperature must be within [0,2], got %v", p.Temperature)
	}
	if p.TopP < 0 || p.TopP > 1 {
		return fmt.Errorf("topP must be within [0,1], got %v", p.TopP)
	}
	if p.TopK < 0 {
		return fmt.Errorf("topK must be positive, got %d", p.TopK)
	}
	if p.MaxOutputTokens < 0 {
		return fmt.Errorf("maxOutputTokens must be positive, got %d", p.MaxOutputTokens)
	}
	return nil
}

// Request is the provider-neutral form of a generation call: the persona
// entry, every history turn in order, then the new input.
type Request struct {
	Entries []Entry
	Params  GenerationParams
}

// BuildRequest assembles a Request. History order is preserved exactly and
// role alternation is not checked; the provider decides what it accepts.
func BuildRequest(persona string, history []Turn, newInput string, params GenerationParams) Request {
	entries := make([]Entry, 0, len(history)+2)
	entries = append(entries, Entry{Role: RoleSystem, Text: persona})
	for _, turn := range history {
		entries = append(entries, Entry{Role: RoleFor(turn.Kind), Text: turn.Text})
	}
	entries = append(entries, Entry{Role: RoleUser, Text: newInput})

	return Request{Entries: entries, Params: params}
}

// Persona returns the system entry text.
func (r Request) Persona() string {
	if len(r.Entries) == 0 {
		return ""
	}
	return r.Entries[0].Text
}

// Dialogue returns every entry after the persona, the new input last.
func (r Request) Dialogue() []Entry {
	if len(r.Entries) < 2 {
		return nil
	}
	return r.Entries[1:]
}
