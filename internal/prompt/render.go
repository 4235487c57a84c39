package prompt

// RenderResult is the outcome of a best-effort render: the substituted
// text plus diagnostic metadata. Validation errors are advisory; a
// rendered string is always produced.
type RenderResult struct {
	Rendered         string   `json:"rendered"`
	UsedDefaults     []string `json:"usedDefaults"`
	ValidationErrors []string `json:"validationErrors"`
}

// Render validates the supplied values and renders the template
// regardless of the outcome. Missing variables without defaults
// substitute as empty strings; callers inspect ValidationErrors to
// decide whether to trust the output.
func Render(p Prompt, values map[string]Value) RenderResult {
	result := RenderResult{
		UsedDefaults:     []string{},
		ValidationErrors: []string{},
	}

	if errs := p.ValidateVariables(values); errs != nil {
		result.ValidationErrors = errs
	}

	for _, spec := range p.Variables {
		if spec.DefaultValue == nil {
			continue
		}
		if v, ok := values[spec.Name]; !ok || v.IsNull() {
			result.UsedDefaults = append(result.UsedDefaults, spec.Name)
		}
	}

	result.Rendered = p.RenderWithVariables(values)
	return result
}
