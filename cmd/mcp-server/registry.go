package main

import (
	"fmt"
)

// ToolRegistry holds the built-in tools. Prompt-backed tools live in
// the library snapshot and are resolved separately, so a stored prompt
// can never shadow a built-in.
type ToolRegistry struct {
	tools map[string]Tool
	order []string
}

// NewToolRegistry returns a registry with no tools registered.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{
		tools: make(map[string]Tool),
	}
}

// Register adds a tool, overwriting any previous tool with the same name.
func (r *ToolRegistry) Register(tool Tool) {
	if _, exists := r.tools[tool.Name()]; !exists {
		r.order = append(r.order, tool.Name())
	}
	r.tools[tool.Name()] = tool
}

// Get looks up a built-in tool by name.
func (r *ToolRegistry) Get(name string) (Tool, error) {
	tool, exists := r.tools[name]
	if !exists {
		return nil, fmt.Errorf("tool '%s' not found", name)
	}
	return tool, nil
}

// List returns built-in tool metadata in registration order, shaped
// for a tools/list response.
func (r *ToolRegistry) List() []map[string]interface{} {
	result := make([]map[string]interface{}, 0, len(r.order))
	for _, name := range r.order {
		tool := r.tools[name]
		result = append(result, map[string]interface{}{
			"name":        tool.Name(),
			"description": tool.Description(),
			"inputSchema": tool.InputSchema(),
		})
	}
	return result
}
