package prompt

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// UpdateFields carries the optional fields of a partial update.
// Nil pointers (and nil slices) mean "keep the current value".
type UpdateFields struct {
	Name        *string
	Description *string
	Content     *string
	Tags        []string
	Author      *string
	Variables   []VariableSpec
}

// WithUpdatedContent returns a copy of the prompt with the provided
// fields replaced and UpdatedAt set to now. Category, CreatedAt and
// Version are never touched by a content update.
func (p Prompt) WithUpdatedContent(f UpdateFields, now time.Time) Prompt {
	out := p
	out.Tags = append([]string(nil), p.Tags...)
	out.Variables = append([]VariableSpec(nil), p.Variables...)

	if f.Name != nil {
		out.Name = *f.Name
	}
	if f.Description != nil {
		out.Description = *f.Description
	}
	if f.Content != nil {
		out.Content = *f.Content
	}
	if f.Tags != nil {
		out.Tags = append([]string(nil), f.Tags...)
	}
	if f.Author != nil {
		out.Author = *f.Author
	}
	if f.Variables != nil {
		out.Variables = append([]VariableSpec(nil), f.Variables...)
	}
	out.UpdatedAt = now
	return out
}

// RenderWithVariables substitutes declared variables into the template
// content. Each declared variable resolves to the supplied value, then
// the declared default, then the empty string. Placeholders that do not
// correspond to a declared variable stay verbatim; the consistency
// validator reports those separately.
func (p Prompt) RenderWithVariables(values map[string]Value) string {
	resolved := make(map[string]string, len(p.Variables))
	for _, spec := range p.Variables {
		resolved[spec.Name] = resolveValue(spec, values)
	}

	tokens := scanPlaceholders(p.Content)
	if len(tokens) == 0 {
		return p.Content
	}

	var sb strings.Builder
	sb.Grow(len(p.Content))
	pos := 0
	for _, tok := range tokens {
		repl, declared := resolved[tok.name]
		if !declared {
			continue
		}
		sb.WriteString(p.Content[pos:tok.start])
		sb.WriteString(repl)
		pos = tok.end
	}
	sb.WriteString(p.Content[pos:])
	return sb.String()
}

func resolveValue(spec VariableSpec, values map[string]Value) string {
	if v, ok := values[spec.Name]; ok && !v.IsNull() {
		return v.String()
	}
	if spec.DefaultValue != nil {
		return spec.DefaultValue.String()
	}
	return ""
}

// ValidateVariables checks supplied values against the declared
// variable specs. It enforces Required and the coarse Type only and
// never aborts: all violations are accumulated and returned.
func (p Prompt) ValidateVariables(values map[string]Value) []string {
	var violations []string
	for _, spec := range p.Variables {
		v, supplied := values[spec.Name]
		missing := !supplied || v.IsNull() || (v.Kind() == KindString && v.String() == "")
		if missing {
			if spec.Required {
				violations = append(violations,
					fmt.Sprintf("Variable '%s' is required but not provided", spec.Name))
			}
			continue
		}

		switch spec.Type {
		case TypeNumber:
			if _, ok := v.AsNumber(); !ok {
				violations = append(violations, typeViolation(spec))
			}
		case TypeBoolean:
			if _, ok := v.AsBool(); !ok {
				violations = append(violations, typeViolation(spec))
			}
		case TypeArray:
			if _, ok := v.AsList(); !ok {
				violations = append(violations, typeViolation(spec))
			}
		}
	}
	return violations
}

func typeViolation(spec VariableSpec) string {
	return fmt.Sprintf("Variable '%s' must be a %s", spec.Name, spec.Type)
}

// ConsistencyReport is the result of checking content placeholders
// against the declared variable list.
type ConsistencyReport struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// ValidateConsistency cross-checks the placeholders found in content
// against the declared variables. Undeclared placeholders are errors,
// unused declarations are warnings. Both sides are deduped by name.
func (p Prompt) ValidateConsistency() ConsistencyReport {
	var report ConsistencyReport

	found := PlaceholderNames(p.Content)
	declared := make(map[string]bool, len(p.Variables))
	for _, spec := range p.Variables {
		declared[spec.Name] = true
	}

	inContent := make(map[string]bool, len(found))
	for _, name := range found {
		inContent[name] = true
		if !declared[name] {
			report.Errors = append(report.Errors,
				fmt.Sprintf("Placeholder '{{%s}}' found in content but no variable '%s' is declared", name, name))
		}
	}
	for _, spec := range p.Variables {
		if !inContent[spec.Name] {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("Variable '%s' is declared but not used in content", spec.Name))
		}
	}
	return report
}

// ToJSON serializes the prompt. Timestamps encode as RFC3339.
func (p Prompt) ToJSON() ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}

// FromJSON parses a persisted prompt record.
func FromJSON(data []byte) (Prompt, error) {
	var p Prompt
	if err := json.Unmarshal(data, &p); err != nil {
		return Prompt{}, fmt.Errorf("failed to unmarshal prompt: %w", err)
	}
	return p, nil
}
