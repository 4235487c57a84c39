package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/houzhh15/promptvault/cmd/mcp-server/config"
	"github.com/houzhh15/promptvault/pkg/logger"
)

var startTime = time.Now()

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := config.ValidateConfig(cfg); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	if _, err := logger.Init(logger.Config{
		Level:       "info",
		Environment: cfg.Server.Environment,
	}); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	library, err := NewPromptLibrary(cfg.Data.Dir, cfg.Data.TriggerPath, logger.L())
	if err != nil {
		log.Fatalf("Failed to open prompt library: %v", err)
	}

	log.Printf("=== Prompt Vault MCP Server ===")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("HTTP Port: %d", cfg.Server.HTTPPort)
	log.Printf("Data Dir: %s", cfg.Data.Dir)
	log.Printf("MCP Endpoint: http://localhost:%d/mcp", cfg.Server.HTTPPort)
	log.Printf("Health Check: http://localhost:%d/health", cfg.Server.HTTPPort)
	log.Printf("===============================")

	mux := http.NewServeMux()
	mux.Handle("/mcp", recoverWrap(NewMCPHandler(library, logger.L())))
	mux.HandleFunc("/health", healthCheckHandler(library))

	srv := &http.Server{
		Addr:    cfg.GetServerAddress(),
		Handler: mux,
	}

	go func() {
		log.Printf("Starting MCP Server on %s...", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown signal received, shutting down MCP server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("MCP Server forced to shutdown: %v", err)
	}
	log.Printf("MCP Server shutdown complete")
}

// HealthCheckResponse is the /health payload.
type HealthCheckResponse struct {
	Status      string    `json:"status"`
	Service     string    `json:"service"`
	Version     string    `json:"version"`
	Uptime      string    `json:"uptime"`
	Timestamp   time.Time `json:"timestamp"`
	PromptCount int       `json:"prompt_count"`
}

func healthCheckHandler(library *PromptLibrary) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "healthy"
		count := 0
		if snapshot, err := library.Snapshot(); err != nil {
			status = "degraded"
		} else {
			count = len(snapshot)
		}

		response := HealthCheckResponse{
			Status:      status,
			Service:     "mcp-server",
			Version:     "1.0.0",
			Uptime:      time.Since(startTime).String(),
			Timestamp:   time.Now(),
			PromptCount: count,
		}

		httpStatus := http.StatusOK
		if status != "healthy" {
			httpStatus = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(httpStatus)
		json.NewEncoder(w).Encode(response)
	}
}

func recoverWrap(h http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("panic: %v", rec)
				http.Error(w, "Internal Server Error", 500)
			}
		}()
		h.ServeHTTP(w, r)
	}
}
