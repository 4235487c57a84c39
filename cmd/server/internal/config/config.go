package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config is the unified server configuration, loaded from environment
// variables.
type Config struct {
	Server ServerConfig
	Data   DataConfig
	Log    LogConfig
	Audit  AuditConfig
	MCP    MCPConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Env  string // dev, staging, production
	Port string
}

// DataConfig holds data directory settings. Dir is the root under
// which prompts/ and usage.json live.
type DataConfig struct {
	Dir string
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // console, json
}

// AuditConfig holds mutation audit log settings.
type AuditConfig struct {
	Path string
}

// MCPConfig holds settings shared with the MCP server process.
// TriggerPath is the file the API server touches to make the MCP
// server reload its prompt snapshot.
type MCPConfig struct {
	TriggerPath string
}

// GlobalConfig is the process-wide configuration instance.
var GlobalConfig *Config

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	dataDir := getEnv("DATA_DIR", "./data")
	cfg := &Config{
		Server: ServerConfig{
			Env:  getEnv("ENV", "dev"),
			Port: getEnv("PORT", "8000"),
		},
		Data: DataConfig{
			Dir: dataDir,
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
		Audit: AuditConfig{
			Path: getEnv("AUDIT_LOG_PATH", filepath.Join(dataDir, "audit", "prompts.log")),
		},
		MCP: MCPConfig{
			TriggerPath: getEnv("MCP_TRIGGER_PATH", filepath.Join(dataDir, ".prompts_changed")),
		},
	}

	GlobalConfig = cfg
	return cfg, nil
}

// ValidateConfig checks the loaded configuration for consistency.
func ValidateConfig(cfg *Config) error {
	var errs []string

	if cfg.Data.Dir == "" {
		errs = append(errs, "DATA_DIR must not be empty")
	}
	switch cfg.Server.Env {
	case "dev", "staging", "production":
	default:
		errs = append(errs, fmt.Sprintf("ENV must be dev, staging or production (got %q)", cfg.Server.Env))
	}
	switch strings.ToLower(cfg.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Sprintf("LOG_LEVEL %q is not supported", cfg.Log.Level))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
