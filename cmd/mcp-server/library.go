package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/houzhh15/promptvault/internal/prompt"
	"github.com/houzhh15/promptvault/internal/usage"
)

// snapshotTTL bounds how stale the in-memory prompt snapshot may get
// when no trigger file arrives.
const snapshotTTL = 5 * time.Minute

// PromptLibrary owns the prompt snapshot served over MCP. It reloads
// from storage when the API server touches the trigger file, or when
// the TTL expires. Callers receive the snapshot by value; the library
// never mutates a snapshot it has handed out.
type PromptLibrary struct {
	storage     *prompt.Storage
	usageStore  *usage.Store
	triggerPath string
	logger      *slog.Logger

	mu         sync.RWMutex
	snapshot   []prompt.Prompt
	lastLoaded time.Time
}

// NewPromptLibrary creates a library over the shared data directory.
func NewPromptLibrary(dataDir, triggerPath string, logger *slog.Logger) (*PromptLibrary, error) {
	usageStore, err := usage.NewStore(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open usage store: %w", err)
	}
	return &PromptLibrary{
		storage:     prompt.NewStorage(dataDir, logger),
		usageStore:  usageStore,
		triggerPath: triggerPath,
		logger:      logger,
	}, nil
}

// Snapshot returns the current prompt collection, reloading first if
// the cache is stale or a change notification is pending.
func (l *PromptLibrary) Snapshot() ([]prompt.Prompt, error) {
	if err := l.ensureFresh(); err != nil {
		return nil, err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snapshot, nil
}

// UsageSnapshot returns the usage log for ranking.
func (l *PromptLibrary) UsageSnapshot() prompt.UsageLog {
	return l.usageStore.Snapshot()
}

// RecordUse notes that a prompt was rendered via MCP.
func (l *PromptLibrary) RecordUse(promptID string) {
	if err := l.usageStore.RecordUse(promptID, time.Now().UTC()); err != nil {
		l.logger.Warn("failed to record prompt use", "prompt_id", promptID, "error", err)
	}
}

// FindBySlug resolves a tool name (prompt name slug) to a prompt.
func (l *PromptLibrary) FindBySlug(slug string) (*prompt.Prompt, error) {
	snapshot, err := l.Snapshot()
	if err != nil {
		return nil, err
	}
	for i := range snapshot {
		if prompt.Slug(snapshot[i].Name) == slug {
			return &snapshot[i], nil
		}
	}
	return nil, fmt.Errorf("prompt not found: %s", slug)
}

// FindByName resolves a display name (exact, case-insensitive) to a
// prompt; used by prompts/get.
func (l *PromptLibrary) FindByName(name string) (*prompt.Prompt, error) {
	snapshot, err := l.Snapshot()
	if err != nil {
		return nil, err
	}
	for i := range snapshot {
		if strings.EqualFold(snapshot[i].Name, name) {
			return &snapshot[i], nil
		}
	}
	return nil, fmt.Errorf("prompt not found: %s", name)
}

// ensureFresh reloads the snapshot when required, double-checking
// under the write lock so concurrent requests reload once.
func (l *PromptLibrary) ensureFresh() error {
	triggered := l.consumeTriggerFile()

	l.mu.RLock()
	fresh := !triggered && !l.lastLoaded.IsZero() && time.Since(l.lastLoaded) < snapshotTTL
	l.mu.RUnlock()
	if fresh {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if !triggered && !l.lastLoaded.IsZero() && time.Since(l.lastLoaded) < snapshotTTL {
		return nil
	}

	snapshot, err := l.storage.LoadAll()
	if err != nil {
		return fmt.Errorf("failed to load prompts: %w", err)
	}
	l.snapshot = snapshot
	l.lastLoaded = time.Now()
	l.logger.Info("prompt snapshot loaded", "count", len(snapshot), "triggered", triggered)
	return nil
}

// consumeTriggerFile deletes the change-notification file if present,
// returning true when a reload was requested.
func (l *PromptLibrary) consumeTriggerFile() bool {
	if l.triggerPath == "" {
		return false
	}
	if _, err := os.Stat(l.triggerPath); os.IsNotExist(err) {
		return false
	}
	if err := os.Remove(l.triggerPath); err != nil {
		l.logger.Warn("failed to remove trigger file", "path", l.triggerPath, "error", err)
		return false
	}
	return true
}
