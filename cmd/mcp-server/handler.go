package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/houzhh15/promptvault/internal/prompt"
)

// MCPRequest is the JSON-RPC 2.0 request envelope.
type MCPRequest struct {
	Jsonrpc string                 `json:"jsonrpc"`
	ID      interface{}            `json:"id"`
	Method  string                 `json:"method"`
	Params  map[string]interface{} `json:"params"`
}

// MCPHandler serves the MCP protocol over HTTP. Built-in tools come
// from the registry; each stored prompt additionally appears as a
// callable tool and as an MCP prompt.
type MCPHandler struct {
	library  *PromptLibrary
	registry *ToolRegistry
	logger   *slog.Logger
}

// NewMCPHandler creates the handler and registers the built-in tools.
func NewMCPHandler(library *PromptLibrary, logger *slog.Logger) *MCPHandler {
	registry := NewToolRegistry()
	registry.Register(&SearchPromptsTool{})
	registry.Register(&ListCategoriesTool{})

	return &MCPHandler{
		library:  library,
		registry: registry,
		logger:   logger,
	}
}

// ServeHTTP implements http.Handler.
func (h *MCPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	if r.Method == http.MethodGet {
		h.serveSSE(w, r)
		return
	}

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read body", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	var req MCPRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.sendErrorResponse(w, nil, -32700, "Parse error", err.Error())
		return
	}

	h.logger.Debug("mcp request", "method", req.Method)

	switch req.Method {
	case "initialize":
		h.handleInitialize(w, req)
	case "tools/list":
		h.handleToolsList(w, req)
	case "tools/call":
		h.handleToolsCall(w, req)
	case "prompts/list":
		h.handlePromptsList(w, req)
	case "prompts/get":
		h.handlePromptsGet(w, req)
	default:
		h.sendErrorResponse(w, req.ID, -32601, "Method not found", nil)
	}
}

// serveSSE keeps a GET connection open with periodic heartbeats so
// clients that probe the endpoint with an event stream stay connected.
func (h *MCPHandler) serveSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	fmt.Fprintf(w, "data: {\"jsonrpc\":\"2.0\",\"method\":\"notifications/message\",\"params\":{\"message\":\"SSE connection established\"}}\n\n")
	flusher.Flush()

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case t := <-ticker.C:
			if _, err := fmt.Fprintf(w, ": keepalive %s\n\n", t.Format(time.RFC3339)); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func (h *MCPHandler) handleInitialize(w http.ResponseWriter, req MCPRequest) {
	h.sendResult(w, req.ID, map[string]interface{}{
		"protocolVersion": "2025-06-18",
		"capabilities": map[string]interface{}{
			"tools": map[string]interface{}{},
			"prompts": map[string]interface{}{
				"listChanged": true,
			},
		},
		"serverInfo": map[string]interface{}{
			"name":    "Prompt Vault MCP Server",
			"version": "1.0.0",
		},
	})
}

// handleToolsList returns built-ins followed by one tool per stored prompt.
func (h *MCPHandler) handleToolsList(w http.ResponseWriter, req MCPRequest) {
	tools := h.registry.List()

	snapshot, err := h.library.Snapshot()
	if err != nil {
		h.sendErrorResponse(w, req.ID, -32603, "Failed to load prompts", err.Error())
		return
	}
	for _, tool := range promptTools(snapshot) {
		// built-in tools win on a name collision
		if _, err := h.registry.Get(tool.Name()); err == nil {
			continue
		}
		tools = append(tools, map[string]interface{}{
			"name":        tool.Name(),
			"description": tool.Description(),
			"inputSchema": tool.InputSchema(),
		})
	}

	h.sendResult(w, req.ID, map[string]interface{}{
		"tools": tools,
	})
}

func (h *MCPHandler) handleToolsCall(w http.ResponseWriter, req MCPRequest) {
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("tool call panicked", "panic", rec)
			h.sendErrorResponse(w, req.ID, -32603, "Internal server error", fmt.Sprintf("panic: %v", rec))
		}
	}()

	name, ok := req.Params["name"].(string)
	if !ok || name == "" {
		h.sendErrorResponse(w, req.ID, -32602, "Invalid params", "Missing or invalid tool name")
		return
	}

	arguments, ok := req.Params["arguments"].(map[string]interface{})
	if !ok && req.Params["arguments"] != nil {
		h.sendErrorResponse(w, req.ID, -32602, "Invalid params", "Arguments must be an object")
		return
	}
	if arguments == nil {
		arguments = make(map[string]interface{})
	}

	tool, err := h.resolveTool(name)
	if err != nil {
		h.sendErrorResponse(w, req.ID, -32602, "Unknown tool", err.Error())
		return
	}

	result, err := tool.Execute(arguments, h.library)
	if err != nil {
		h.logger.Warn("tool execution failed", "tool", name, "error", err)
		h.sendErrorResponse(w, req.ID, -32603, "Tool execution error", err.Error())
		return
	}

	h.sendTextResult(w, req.ID, result)
}

// resolveTool checks the built-in registry first, then the slug-named
// prompt tools.
func (h *MCPHandler) resolveTool(name string) (Tool, error) {
	if tool, err := h.registry.Get(name); err == nil {
		return tool, nil
	}
	p, err := h.library.FindBySlug(name)
	if err != nil {
		return nil, fmt.Errorf("tool '%s' not found", name)
	}
	return &promptTool{prompt: *p}, nil
}

// handlePromptsList exposes every stored prompt in MCP prompt metadata
// form: name, description, and the declared arguments.
func (h *MCPHandler) handlePromptsList(w http.ResponseWriter, req MCPRequest) {
	snapshot, err := h.library.Snapshot()
	if err != nil {
		h.sendErrorResponse(w, req.ID, -32603, "Failed to load prompts", err.Error())
		return
	}

	prompts := make([]map[string]interface{}, 0, len(snapshot))
	for _, p := range snapshot {
		arguments := make([]map[string]interface{}, 0, len(p.Variables))
		for _, v := range p.Variables {
			arguments = append(arguments, map[string]interface{}{
				"name":        v.Name,
				"description": v.Description,
				"required":    v.Required,
			})
		}
		prompts = append(prompts, map[string]interface{}{
			"name":        p.Name,
			"description": p.Description,
			"arguments":   arguments,
		})
	}

	h.sendResult(w, req.ID, map[string]interface{}{
		"prompts": prompts,
	})
}

// handlePromptsGet renders a prompt with the supplied arguments and
// returns it as a single user message.
func (h *MCPHandler) handlePromptsGet(w http.ResponseWriter, req MCPRequest) {
	name, ok := req.Params["name"].(string)
	if !ok || name == "" {
		h.sendErrorResponse(w, req.ID, -32602, "Missing parameter: name", nil)
		return
	}

	values := make(map[string]prompt.Value)
	if rawArgs, ok := req.Params["arguments"].(map[string]interface{}); ok {
		values = prompt.ValuesFromInterfaceMap(rawArgs)
	}

	p, err := h.library.FindByName(name)
	if err != nil {
		h.sendErrorResponse(w, req.ID, -32602, err.Error(), nil)
		return
	}

	result := prompt.Render(*p, values)
	if len(result.ValidationErrors) > 0 {
		h.sendErrorResponse(w, req.ID, -32602, "Invalid arguments", strings.Join(result.ValidationErrors, "; "))
		return
	}
	h.library.RecordUse(p.ID)

	h.sendResult(w, req.ID, map[string]interface{}{
		"description": p.Description,
		"messages": []map[string]interface{}{
			{
				"role": "user",
				"content": map[string]interface{}{
					"type": "text",
					"text": result.Rendered,
				},
			},
		},
	})
}
