// Package config loads MCP server settings from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// MCPConfig is the MCP server configuration.
type MCPConfig struct {
	Server ServerConfig
	Data   DataConfig
}

// ServerConfig holds HTTP settings.
type ServerConfig struct {
	// HTTPPort is the port the JSON-RPC endpoint listens on.
	HTTPPort int
	// Environment is the runtime environment (development, production).
	Environment string
}

// DataConfig points at the prompt store shared with the API server.
type DataConfig struct {
	// Dir is the data root holding prompts/ and usage.json.
	Dir string
	// TriggerPath is the file the API server touches when prompts
	// change; consuming it forces a snapshot reload.
	TriggerPath string
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*MCPConfig, error) {
	dataDir := getEnv("DATA_DIR", "./data")
	cfg := &MCPConfig{
		Server: ServerConfig{
			HTTPPort:    getEnvAsInt("MCP_HTTP_PORT", 8081),
			Environment: getEnv("ENV", "development"),
		},
		Data: DataConfig{
			Dir:         dataDir,
			TriggerPath: getEnv("MCP_TRIGGER_PATH", filepath.Join(dataDir, ".prompts_changed")),
		},
	}
	return cfg, nil
}

// ValidateConfig checks configuration bounds.
func ValidateConfig(cfg *MCPConfig) error {
	if cfg.Server.HTTPPort < 1 || cfg.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d (must be between 1-65535)", cfg.Server.HTTPPort)
	}
	if cfg.Data.Dir == "" {
		return fmt.Errorf("data directory is required (DATA_DIR)")
	}
	return nil
}

// GetServerAddress returns the listen address.
func (c *MCPConfig) GetServerAddress() string {
	return fmt.Sprintf(":%d", c.Server.HTTPPort)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}
