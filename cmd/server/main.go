package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/houzhh15/promptvault/cmd/server/internal/api"
	"github.com/houzhh15/promptvault/cmd/server/internal/audit"
	"github.com/houzhh15/promptvault/cmd/server/internal/config"
	"github.com/houzhh15/promptvault/cmd/server/internal/middleware"
	"github.com/houzhh15/promptvault/internal/prompt"
	"github.com/houzhh15/promptvault/internal/usage"
	"github.com/houzhh15/promptvault/pkg/logger"
)

func main() {
	logInstance, err := logger.Init(logger.Config{
		Level:       os.Getenv("LOG_LEVEL"),
		Environment: os.Getenv("ENV"),
		WithSource:  !strings.EqualFold(os.Getenv("ENV"), "prod"),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	appLogger := logInstance.With("component", "api-server")

	cfg, err := config.LoadConfig()
	if err != nil {
		appLogger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := config.ValidateConfig(cfg); err != nil {
		appLogger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	appLogger.Info("configuration loaded", "env", cfg.Server.Env, "port", cfg.Server.Port, "data_dir", cfg.Data.Dir)

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	storage := prompt.NewStorage(cfg.Data.Dir, appLogger)
	usageStore, err := usage.NewStore(cfg.Data.Dir)
	if err != nil {
		appLogger.Error("failed to open usage store", "error", err)
		os.Exit(1)
	}
	auditLogger, err := audit.NewFileAuditLogger(cfg.Audit.Path)
	if err != nil {
		appLogger.Error("failed to open audit log", "error", err)
		os.Exit(1)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())

	handler := api.NewPromptsHandler(storage, usageStore, auditLogger, appLogger, cfg.MCP.TriggerPath)
	api.RegisterRoutes(r, handler)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "promptvault-api"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		appLogger.Info("starting API server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("forced shutdown", "error", err)
		os.Exit(1)
	}
	appLogger.Info("server shutdown complete")
}
