package prompt

import "time"

// Prompt represents a reusable prompt template with declared variables
type Prompt struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Content     string         `json:"content"`
	Category    string         `json:"category"` // work, personal, shared
	Tags        []string       `json:"tags"`
	Variables   []VariableSpec `json:"variables"`
	Author      string         `json:"author,omitempty"`
	Version     string         `json:"version"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// VariableSpec declares a single template variable
type VariableSpec struct {
	Name         string          `json:"name"`
	Type         string          `json:"type"` // string, number, boolean, array
	Description  string          `json:"description,omitempty"`
	Required     bool            `json:"required"`
	DefaultValue *Value          `json:"defaultValue,omitempty"`
	Validation   *ValidationRule `json:"validation,omitempty"`
}

// ValidationRule carries descriptive constraints for external schema
// generation. The render/validate path only enforces Required and the
// coarse Type; these fields are metadata.
type ValidationRule struct {
	MinLength *int     `json:"minLength,omitempty"`
	MaxLength *int     `json:"maxLength,omitempty"`
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
	Pattern   string   `json:"pattern,omitempty"`
	Options   []string `json:"options,omitempty"`
}

// Category constants
const (
	CategoryWork     = "work"
	CategoryPersonal = "personal"
	CategoryShared   = "shared"
)

// Variable type constants
const (
	TypeString  = "string"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
	TypeArray   = "array"
)

// Categories lists the three fixed categories in display order.
var Categories = []string{CategoryWork, CategoryPersonal, CategoryShared}

// ValidCategory reports whether c is one of the three fixed categories.
func ValidCategory(c string) bool {
	return c == CategoryWork || c == CategoryPersonal || c == CategoryShared
}

// ValidVariableType reports whether t is a supported variable type.
func ValidVariableType(t string) bool {
	return t == TypeString || t == TypeNumber || t == TypeBoolean || t == TypeArray
}

// DefaultVersion is assigned to prompts created without an explicit version.
const DefaultVersion = "1.0.0"

// UsageLog is a read-only snapshot of favorites and recent uses,
// supplied by the usage store. Recents are ordered most-recent-first
// and an id may repeat.
type UsageLog struct {
	Favorites map[string]bool
	Recents   []RecentUse
}

// RecentUse records a single use of a prompt.
type RecentUse struct {
	PromptID string    `json:"prompt_id"`
	UsedAt   time.Time `json:"used_at"`
}
