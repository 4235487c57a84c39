package prompt

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reviewPrompt() Prompt {
	def := StringValue("// empty")
	return Prompt{
		ID:      "p1",
		Name:    "Code Review",
		Content: "Review {{lang}} code: {{code}}",
		Variables: []VariableSpec{
			{Name: "lang", Type: TypeString, Required: true},
			{Name: "code", Type: TypeString, DefaultValue: &def},
		},
		Category: CategoryWork,
		Version:  DefaultVersion,
	}
}

func TestRenderWithDefaults(t *testing.T) {
	p := reviewPrompt()

	result := Render(p, map[string]Value{"lang": StringValue("Go")})
	assert.Equal(t, "Review Go code: // empty", result.Rendered)
	assert.Equal(t, []string{"code"}, result.UsedDefaults)
	assert.Empty(t, result.ValidationErrors)
}

func TestRenderMissingRequired(t *testing.T) {
	p := reviewPrompt()

	result := Render(p, map[string]Value{})
	assert.Contains(t, result.ValidationErrors, "Variable 'lang' is required but not provided")
	// Render is best-effort: the missing variable substitutes as empty.
	assert.Equal(t, "Review  code: // empty", result.Rendered)
	assert.Equal(t, []string{"code"}, result.UsedDefaults)
}

func TestRenderEmptyStringCountsAsMissing(t *testing.T) {
	p := reviewPrompt()

	result := Render(p, map[string]Value{"lang": StringValue("")})
	assert.Contains(t, result.ValidationErrors, "Variable 'lang' is required but not provided")
	assert.Len(t, result.ValidationErrors, 1)
}

func TestRenderUndeclaredPlaceholderKeptVerbatim(t *testing.T) {
	p := Prompt{Content: "Hello {{who}}, today is {{day}}", Variables: []VariableSpec{
		{Name: "day", Type: TypeString},
	}}

	result := Render(p, map[string]Value{"day": StringValue("Monday")})
	assert.Equal(t, "Hello {{who}}, today is Monday", result.Rendered)
}

func TestRenderSuppliedValueOverridesDefault(t *testing.T) {
	p := reviewPrompt()

	result := Render(p, map[string]Value{
		"lang": StringValue("Rust"),
		"code": StringValue("fn main() {}"),
	})
	assert.Equal(t, "Review Rust code: fn main() {}", result.Rendered)
	assert.Empty(t, result.UsedDefaults)
}

func TestValidateVariablesTypeChecks(t *testing.T) {
	p := Prompt{Variables: []VariableSpec{
		{Name: "count", Type: TypeNumber},
		{Name: "verbose", Type: TypeBoolean},
		{Name: "files", Type: TypeArray},
	}}

	violations := p.ValidateVariables(map[string]Value{
		"count":   StringValue("not-a-number"),
		"verbose": StringValue("yes"),
		"files":   BoolValue(true),
	})
	assert.ElementsMatch(t, []string{
		"Variable 'count' must be a number",
		"Variable 'verbose' must be a boolean",
		"Variable 'files' must be a array",
	}, violations)

	// Coercible forms pass.
	violations = p.ValidateVariables(map[string]Value{
		"count":   StringValue("42"),
		"verbose": StringValue("true"),
		"files":   StringValue("main.go"),
	})
	assert.Empty(t, violations)
}

func TestValidateConsistency(t *testing.T) {
	p := Prompt{
		Content: "Use {{x}} and {{y}}",
		Variables: []VariableSpec{
			{Name: "x", Type: TypeString},
			{Name: "z", Type: TypeString},
		},
	}

	report := p.ValidateConsistency()
	assert.Equal(t, []string{
		"Placeholder '{{y}}' found in content but no variable 'y' is declared",
	}, report.Errors)
	assert.Equal(t, []string{
		"Variable 'z' is declared but not used in content",
	}, report.Warnings)
}

func TestValidateConsistencyClean(t *testing.T) {
	p := reviewPrompt()
	report := p.ValidateConsistency()
	assert.Empty(t, report.Errors)
	assert.Empty(t, report.Warnings)
}

func TestWithUpdatedContent(t *testing.T) {
	created := time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)
	now := time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC)
	p := Prompt{
		ID:        "p1",
		Name:      "Old Name",
		Content:   "old",
		Category:  CategoryPersonal,
		Tags:      []string{"a"},
		Version:   "2.0.0",
		CreatedAt: created,
		UpdatedAt: created,
	}

	newName := "New Name"
	updated := p.WithUpdatedContent(UpdateFields{
		Name: &newName,
		Tags: []string{"b", "c"},
	}, now)

	assert.Equal(t, "New Name", updated.Name)
	assert.Equal(t, []string{"b", "c"}, updated.Tags)
	assert.Equal(t, "old", updated.Content)
	assert.Equal(t, now, updated.UpdatedAt)

	// Immutable fields survive any content update.
	assert.Equal(t, CategoryPersonal, updated.Category)
	assert.Equal(t, created, updated.CreatedAt)
	assert.Equal(t, "2.0.0", updated.Version)

	// The original is untouched.
	assert.Equal(t, "Old Name", p.Name)
	assert.Equal(t, []string{"a"}, p.Tags)
}

func TestWithUpdatedContentNilSlicesKeepCurrent(t *testing.T) {
	p := Prompt{
		Tags:      []string{"keep"},
		Variables: []VariableSpec{{Name: "v", Type: TypeString}},
	}

	updated := p.WithUpdatedContent(UpdateFields{}, time.Now())
	assert.Equal(t, []string{"keep"}, updated.Tags)
	require.Len(t, updated.Variables, 1)
	assert.Equal(t, "v", updated.Variables[0].Name)
}

func TestJSONRoundTrip(t *testing.T) {
	p := reviewPrompt()
	p.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	p.UpdatedAt = time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	p.Tags = []string{"review", "quality"}

	data, err := p.ToJSON()
	require.NoError(t, err)

	// Field names are camelCase on the wire.
	assert.Contains(t, string(data), `"createdAt"`)
	assert.Contains(t, string(data), `"updatedAt"`)
	assert.Contains(t, string(data), `"defaultValue"`)

	parsed, err := FromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, p, parsed)
}

func TestFromJSONRejectsGarbage(t *testing.T) {
	_, err := FromJSON([]byte("{not json"))
	assert.Error(t, err)
}

func TestVariableSpecOmitsEmptyOptionalFields(t *testing.T) {
	spec := VariableSpec{Name: "v", Type: TypeString}
	data, err := json.Marshal(spec)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "defaultValue")
	assert.NotContains(t, string(data), "validation")
}
