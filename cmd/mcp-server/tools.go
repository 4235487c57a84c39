package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/houzhh15/promptvault/internal/prompt"
)

// Tool is the interface every MCP tool implements. Built-in tools are
// registered at startup; prompt-backed tools are synthesized from the
// current snapshot on each tools/list and tools/call.
type Tool interface {
	Name() string
	Description() string
	InputSchema() map[string]interface{}
	Execute(args map[string]interface{}, library *PromptLibrary) (string, error)
}

// SearchPromptsTool exposes relevance-ranked prompt search.
type SearchPromptsTool struct{}

func (t *SearchPromptsTool) Name() string {
	return "search_prompts"
}

func (t *SearchPromptsTool) Description() string {
	return "Search stored prompt templates by fuzzy query, category, tags, or author. The query matches prompt names, descriptions, tags, and content; results are ranked by relevance and usage."
}

func (t *SearchPromptsTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"query": map[string]interface{}{
				"type":        "string",
				"description": "Fuzzy text query matched against name, description, and tags",
			},
			"category": map[string]interface{}{
				"type":        "string",
				"description": "Exact category filter: work, personal, or shared",
			},
			"tags": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "string"},
				"description": "Match prompts carrying any of these tags",
			},
			"author": map[string]interface{}{
				"type":        "string",
				"description": "Case-insensitive author substring filter",
			},
			"limit": map[string]interface{}{
				"type":        "number",
				"description": "Maximum number of results",
			},
		},
	}
}

func (t *SearchPromptsTool) Execute(args map[string]interface{}, library *PromptLibrary) (string, error) {
	snapshot, err := library.Snapshot()
	if err != nil {
		return "", err
	}

	req := prompt.SearchRequest{}
	if query, ok := args["query"].(string); ok {
		req.Query = query
	}
	if category, ok := args["category"].(string); ok {
		req.Category = category
	}
	if author, ok := args["author"].(string); ok {
		req.Author = author
	}
	if rawTags, ok := args["tags"].([]interface{}); ok {
		for _, raw := range rawTags {
			if tag, ok := raw.(string); ok {
				req.Tags = append(req.Tags, tag)
			}
		}
	}
	if limit, ok := args["limit"].(float64); ok {
		req.Limit = int(limit)
	}

	results := prompt.Search(snapshot, library.UsageSnapshot(), req, time.Now().UTC())

	summaries := make([]map[string]interface{}, 0, len(results))
	for _, p := range results {
		summaries = append(summaries, map[string]interface{}{
			"id":          p.ID,
			"name":        p.Name,
			"description": p.Description,
			"category":    p.Category,
			"tags":        p.Tags,
		})
	}

	out, err := json.MarshalIndent(map[string]interface{}{
		"total":   len(summaries),
		"prompts": summaries,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode search results: %w", err)
	}
	return string(out), nil
}

// ListCategoriesTool reports the prompt count per category.
type ListCategoriesTool struct{}

func (t *ListCategoriesTool) Name() string {
	return "list_categories"
}

func (t *ListCategoriesTool) Description() string {
	return "List prompt categories with the number of stored prompts in each."
}

func (t *ListCategoriesTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}

func (t *ListCategoriesTool) Execute(args map[string]interface{}, library *PromptLibrary) (string, error) {
	snapshot, err := library.Snapshot()
	if err != nil {
		return "", err
	}

	counts := make(map[string]int, len(prompt.Categories))
	for _, category := range prompt.Categories {
		counts[category] = 0
	}
	for _, p := range snapshot {
		counts[p.Category]++
	}

	var sb strings.Builder
	for _, category := range prompt.Categories {
		fmt.Fprintf(&sb, "%s: %d\n", category, counts[category])
	}
	return sb.String(), nil
}

// promptTool adapts a stored prompt into a callable MCP tool whose
// schema is derived from the prompt's variable declarations.
type promptTool struct {
	prompt prompt.Prompt
}

func (t *promptTool) Name() string {
	return prompt.Slug(t.prompt.Name)
}

func (t *promptTool) Description() string {
	if t.prompt.Description != "" {
		return t.prompt.Description
	}
	return fmt.Sprintf("Render the %q prompt template", t.prompt.Name)
}

func (t *promptTool) InputSchema() map[string]interface{} {
	return prompt.InputSchema(t.prompt.Variables)
}

func (t *promptTool) Execute(args map[string]interface{}, library *PromptLibrary) (string, error) {
	values := prompt.ValuesFromInterfaceMap(args)
	result := prompt.Render(t.prompt, values)
	if len(result.ValidationErrors) > 0 {
		return "", fmt.Errorf("invalid arguments: %s", strings.Join(result.ValidationErrors, "; "))
	}
	library.RecordUse(t.prompt.ID)
	return result.Rendered, nil
}

// promptTools builds one tool per stored prompt, sorted by tool name
// so tools/list output is stable.
func promptTools(snapshot []prompt.Prompt) []Tool {
	tools := make([]Tool, 0, len(snapshot))
	for _, p := range snapshot {
		tools = append(tools, &promptTool{prompt: p})
	}
	sort.Slice(tools, func(i, j int) bool {
		return tools[i].Name() < tools[j].Name()
	})
	return tools
}
