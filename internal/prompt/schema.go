package prompt

// InputSchema derives a JSON-Schema-like object schema from the
// declared variables, for exposing a prompt as a callable tool.
// string/number/boolean map directly; array gets string items. The
// required list collects the names of required variables.
func InputSchema(variables []VariableSpec) map[string]interface{} {
	properties := make(map[string]interface{}, len(variables))
	required := []string{}

	for _, spec := range variables {
		prop := map[string]interface{}{
			"type": spec.Type,
		}
		if spec.Description != "" {
			prop["description"] = spec.Description
		}
		if spec.Type == TypeArray {
			prop["items"] = map[string]interface{}{"type": "string"}
		}
		if spec.DefaultValue != nil {
			prop["default"] = *spec.DefaultValue
		}
		properties[spec.Name] = prop
		if spec.Required {
			required = append(required, spec.Name)
		}
	}

	return map[string]interface{}{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}
