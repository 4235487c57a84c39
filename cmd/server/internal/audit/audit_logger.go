package audit

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// AuditAction identifies the kind of mutation being audited.
type AuditAction string

const (
	ActionCreatePrompt AuditAction = "create_prompt"
	ActionUpdatePrompt AuditAction = "update_prompt"
	ActionDeletePrompt AuditAction = "delete_prompt"
	ActionSetFavorite  AuditAction = "set_favorite"
	ActionRenderPrompt AuditAction = "render_prompt"
)

// AuditEntry is one JSON line in the audit log.
type AuditEntry struct {
	Timestamp time.Time   `json:"timestamp"`
	Operator  string      `json:"operator,omitempty"`
	Action    AuditAction `json:"action"`
	PromptID  string      `json:"prompt_id"`
	Details   string      `json:"details,omitempty"`
}

// AuditLogger records prompt mutations.
type AuditLogger interface {
	LogAction(operator string, action AuditAction, promptID string, details string) error
}

// FileAuditLogger appends JSON lines to a lumberjack-rotated file.
type FileAuditLogger struct {
	logger *log.Logger
}

// NewFileAuditLogger creates an audit logger writing to logPath with
// size/age based rotation.
func NewFileAuditLogger(logPath string) (*FileAuditLogger, error) {
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create audit log directory: %w", err)
	}

	writer := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    50, // MB
		MaxBackups: 10,
		MaxAge:     30, // days
		Compress:   true,
	}

	// No prefix and no flags: each line is a self-contained JSON record.
	return &FileAuditLogger{logger: log.New(writer, "", 0)}, nil
}

// LogAction appends one audit record.
func (f *FileAuditLogger) LogAction(operator string, action AuditAction, promptID string, details string) error {
	entry := AuditEntry{
		Timestamp: time.Now().UTC(),
		Operator:  operator,
		Action:    action,
		PromptID:  promptID,
		Details:   details,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal audit entry: %w", err)
	}
	f.logger.Println(string(data))
	return nil
}

// NopLogger discards audit records; used in tests.
type NopLogger struct{}

func (NopLogger) LogAction(string, AuditAction, string, string) error { return nil }
