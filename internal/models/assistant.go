package models

import "strings"

// Assistant is a stored assistant configuration. Only the id is assigned by
// the store; every other field is free-form text.
type Assistant struct {
	ID          int64  `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
	UserRole    string `json:"userRole" db:"user_role"`
	ModelInfo   string `json:"modelInfo" db:"model_info"`
}

type CreateAssistantRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	UserRole    string `json:"userRole"`
	ModelInfo   string `json:"modelInfo"`
}

// Persona is the system preamble a chat with this assistant starts from:
// the description, then the user role, then the model's own stance taken
// from modelInfo. Blank fields are skipped.
func (a *Assistant) Persona() string {
	var parts []string
	for _, p := range []string{a.Description, a.UserRole, a.ModelInfo} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "\n\n")
}
