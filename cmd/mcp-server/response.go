package main

import (
	"encoding/json"
	"net/http"
)

// sendErrorResponse writes a JSON-RPC 2.0 error envelope.
func (h *MCPHandler) sendErrorResponse(w http.ResponseWriter, id interface{}, code int, message string, data interface{}) {
	errObj := map[string]interface{}{
		"code":    code,
		"message": message,
	}
	if data != nil {
		errObj["data"] = data
	}
	json.NewEncoder(w).Encode(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      id,
		"error":   errObj,
	})
}

// sendResult writes a JSON-RPC 2.0 success envelope.
func (h *MCPHandler) sendResult(w http.ResponseWriter, id interface{}, result interface{}) {
	json.NewEncoder(w).Encode(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      id,
		"result":  result,
	})
}

// sendTextResult wraps tool output in the MCP content envelope.
func (h *MCPHandler) sendTextResult(w http.ResponseWriter, id interface{}, text string) {
	h.sendResult(w, id, map[string]interface{}{
		"content": []map[string]interface{}{
			{
				"type": "text",
				"text": text,
			},
		},
	})
}
