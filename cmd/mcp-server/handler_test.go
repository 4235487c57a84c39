package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/houzhh15/promptvault/internal/prompt"
)

func testHandler(t *testing.T) (*MCPHandler, *prompt.Storage, string) {
	t.Helper()
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	storage := prompt.NewStorage(dir, logger)

	library, err := NewPromptLibrary(dir, filepath.Join(dir, ".prompts_changed"), logger)
	require.NoError(t, err)
	return NewMCPHandler(library, logger), storage, dir
}

func seedPrompt(t *testing.T, storage *prompt.Storage, name string) *prompt.Prompt {
	t.Helper()
	def := prompt.StringValue("// empty")
	now := time.Date(2026, 2, 20, 9, 0, 0, 0, time.UTC)
	p := &prompt.Prompt{
		ID:          "id-" + prompt.Slug(name),
		Name:        name,
		Description: "Review code changes",
		Content:     "Review {{lang}} code: {{code}}",
		Category:    prompt.CategoryWork,
		Tags:        []string{"review"},
		Variables: []prompt.VariableSpec{
			{Name: "lang", Type: prompt.TypeString, Required: true},
			{Name: "code", Type: prompt.TypeString, DefaultValue: &def},
		},
		Version:   prompt.DefaultVersion,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, storage.Save(p))
	return p
}

func rpc(t *testing.T, h *MCPHandler, method string, params map[string]interface{}) map[string]interface{} {
	t.Helper()
	payload, err := json.Marshal(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
		"params":  params,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/mcp", bytes.NewReader(payload))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func rpcError(t *testing.T, body map[string]interface{}) (float64, string) {
	t.Helper()
	errObj, ok := body["error"].(map[string]interface{})
	require.True(t, ok, "expected error in response: %v", body)
	return errObj["code"].(float64), errObj["message"].(string)
}

func TestInitialize(t *testing.T) {
	h, _, _ := testHandler(t)

	body := rpc(t, h, "initialize", nil)
	result := body["result"].(map[string]interface{})
	assert.Equal(t, "2025-06-18", result["protocolVersion"])

	info := result["serverInfo"].(map[string]interface{})
	assert.Equal(t, "Prompt Vault MCP Server", info["name"])
}

func TestMethodNotFound(t *testing.T) {
	h, _, _ := testHandler(t)

	code, msg := rpcError(t, rpc(t, h, "no/such", nil))
	assert.Equal(t, float64(-32601), code)
	assert.Equal(t, "Method not found", msg)
}

func TestParseError(t *testing.T) {
	h, _, _ := testHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/mcp", bytes.NewReader([]byte("{broken")))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	code, _ := rpcError(t, body)
	assert.Equal(t, float64(-32700), code)
}

func TestToolsListIncludesBuiltinsAndPromptTools(t *testing.T) {
	h, storage, _ := testHandler(t)
	seedPrompt(t, storage, "Code Review")

	body := rpc(t, h, "tools/list", nil)
	tools := body["result"].(map[string]interface{})["tools"].([]interface{})

	names := make([]string, 0, len(tools))
	for _, raw := range tools {
		tool := raw.(map[string]interface{})
		names = append(names, tool["name"].(string))
		if tool["name"] == "search_prompts" {
			// the advertised description must cover every matched field
			desc := tool["description"].(string)
			for _, field := range []string{"names", "descriptions", "tags", "content"} {
				assert.Contains(t, desc, field)
			}
		}
	}
	assert.Contains(t, names, "search_prompts")
	assert.Contains(t, names, "list_categories")
	assert.Contains(t, names, "code-review")
}

func TestToolsCallPromptTool(t *testing.T) {
	h, storage, _ := testHandler(t)
	seedPrompt(t, storage, "Code Review")

	body := rpc(t, h, "tools/call", map[string]interface{}{
		"name":      "code-review",
		"arguments": map[string]interface{}{"lang": "Go"},
	})
	result := body["result"].(map[string]interface{})
	content := result["content"].([]interface{})
	require.Len(t, content, 1)
	text := content[0].(map[string]interface{})["text"].(string)
	assert.Equal(t, "Review Go code: // empty", text)
}

func TestToolsCallMissingRequiredArgument(t *testing.T) {
	h, storage, _ := testHandler(t)
	seedPrompt(t, storage, "Code Review")

	body := rpc(t, h, "tools/call", map[string]interface{}{
		"name":      "code-review",
		"arguments": map[string]interface{}{},
	})
	code, _ := rpcError(t, body)
	assert.Equal(t, float64(-32603), code)
}

func TestToolsCallUnknownTool(t *testing.T) {
	h, _, _ := testHandler(t)

	body := rpc(t, h, "tools/call", map[string]interface{}{"name": "nope"})
	code, _ := rpcError(t, body)
	assert.Equal(t, float64(-32602), code)
}

func TestToolsCallSearch(t *testing.T) {
	h, storage, _ := testHandler(t)
	seedPrompt(t, storage, "Code Review")
	seedPrompt(t, storage, "Daily Journal")

	body := rpc(t, h, "tools/call", map[string]interface{}{
		"name":      "search_prompts",
		"arguments": map[string]interface{}{"query": "code review"},
	})
	result := body["result"].(map[string]interface{})
	text := result["content"].([]interface{})[0].(map[string]interface{})["text"].(string)

	var parsed struct {
		Total   int `json:"total"`
		Prompts []struct {
			Name string `json:"name"`
		} `json:"prompts"`
	}
	require.NoError(t, json.Unmarshal([]byte(text), &parsed))
	require.Equal(t, 1, parsed.Total)
	assert.Equal(t, "Code Review", parsed.Prompts[0].Name)
}

func TestToolsCallListCategories(t *testing.T) {
	h, storage, _ := testHandler(t)
	seedPrompt(t, storage, "Code Review")

	body := rpc(t, h, "tools/call", map[string]interface{}{"name": "list_categories"})
	text := body["result"].(map[string]interface{})["content"].([]interface{})[0].(map[string]interface{})["text"].(string)
	assert.Contains(t, text, "work: 1")
	assert.Contains(t, text, "personal: 0")
}

func TestPromptsList(t *testing.T) {
	h, storage, _ := testHandler(t)
	seedPrompt(t, storage, "Code Review")

	body := rpc(t, h, "prompts/list", nil)
	prompts := body["result"].(map[string]interface{})["prompts"].([]interface{})
	require.Len(t, prompts, 1)

	entry := prompts[0].(map[string]interface{})
	assert.Equal(t, "Code Review", entry["name"])
	arguments := entry["arguments"].([]interface{})
	require.Len(t, arguments, 2)
	first := arguments[0].(map[string]interface{})
	assert.Equal(t, "lang", first["name"])
	assert.Equal(t, true, first["required"])
}

func TestPromptsGet(t *testing.T) {
	h, storage, _ := testHandler(t)
	seedPrompt(t, storage, "Code Review")

	body := rpc(t, h, "prompts/get", map[string]interface{}{
		"name":      "Code Review",
		"arguments": map[string]interface{}{"lang": "Go", "code": "x := 1"},
	})
	result := body["result"].(map[string]interface{})
	messages := result["messages"].([]interface{})
	require.Len(t, messages, 1)
	msg := messages[0].(map[string]interface{})
	assert.Equal(t, "user", msg["role"])
	content := msg["content"].(map[string]interface{})
	assert.Equal(t, "Review Go code: x := 1", content["text"])
}

func TestPromptsGetMissingName(t *testing.T) {
	h, _, _ := testHandler(t)

	code, _ := rpcError(t, rpc(t, h, "prompts/get", map[string]interface{}{}))
	assert.Equal(t, float64(-32602), code)
}

func TestPromptsGetUnknownPrompt(t *testing.T) {
	h, _, _ := testHandler(t)

	code, _ := rpcError(t, rpc(t, h, "prompts/get", map[string]interface{}{"name": "ghost"}))
	assert.Equal(t, float64(-32602), code)
}

func TestTriggerFileForcesReload(t *testing.T) {
	h, storage, dir := testHandler(t)
	seedPrompt(t, storage, "Code Review")

	body := rpc(t, h, "prompts/list", nil)
	require.Len(t, body["result"].(map[string]interface{})["prompts"].([]interface{}), 1)

	// a second prompt appears only after the trigger file is written
	seedPrompt(t, storage, "Daily Journal")
	body = rpc(t, h, "prompts/list", nil)
	assert.Len(t, body["result"].(map[string]interface{})["prompts"].([]interface{}), 1)

	triggerPath := filepath.Join(dir, ".prompts_changed")
	require.NoError(t, os.WriteFile(triggerPath, []byte(time.Now().Format(time.RFC3339)), 0644))

	body = rpc(t, h, "prompts/list", nil)
	assert.Len(t, body["result"].(map[string]interface{})["prompts"].([]interface{}), 2)

	// the trigger file is consumed
	_, err := os.Stat(triggerPath)
	assert.True(t, os.IsNotExist(err))
}
