package api

import "github.com/gin-gonic/gin"

// Error codes returned in the "code" field of error responses.
const (
	ErrPromptNotFound = "PROMPT_NOT_FOUND"
	ErrInvalidInput   = "INVALID_INPUT"
	ErrStorageFailure = "STORAGE_FAILURE"
)

// errorResponse writes the uniform error envelope.
func errorResponse(c *gin.Context, status int, message, code string) {
	c.JSON(status, gin.H{
		"success": false,
		"error":   message,
		"code":    code,
	})
}
