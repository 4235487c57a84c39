package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/houzhh15/promptvault/cmd/server/internal/audit"
	"github.com/houzhh15/promptvault/internal/prompt"
	"github.com/houzhh15/promptvault/internal/usage"
	"github.com/houzhh15/promptvault/pkg/metrics"
	"github.com/houzhh15/promptvault/pkg/similarity"
)

// PromptsHandler handles prompt CRUD, search and render operations.
type PromptsHandler struct {
	storage           *prompt.Storage
	usageStore        *usage.Store
	auditLogger       audit.AuditLogger
	logger            *slog.Logger
	notifyTriggerPath string // touched to make the MCP server reload
}

// NewPromptsHandler creates a new handler instance.
func NewPromptsHandler(storage *prompt.Storage, usageStore *usage.Store, auditLogger audit.AuditLogger, logger *slog.Logger, triggerPath string) *PromptsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PromptsHandler{
		storage:           storage,
		usageStore:        usageStore,
		auditLogger:       auditLogger,
		logger:            logger,
		notifyTriggerPath: triggerPath,
	}
}

// recordAudit writes a mutation audit entry. Audit is best-effort:
// a write failure is logged but never fails the request.
func (h *PromptsHandler) recordAudit(operator string, action audit.AuditAction, promptID, details string) {
	if err := h.auditLogger.LogAction(operator, action, promptID, details); err != nil {
		h.logger.Warn("failed to write audit entry", "action", action, "prompt_id", promptID, "error", err)
	}
}

// notifyPromptsChanged signals the MCP server process, which watches
// for this trigger file, to reload its prompt snapshot.
func (h *PromptsHandler) notifyPromptsChanged() {
	if h.notifyTriggerPath == "" {
		return
	}
	if err := os.WriteFile(h.notifyTriggerPath, []byte(time.Now().Format(time.RFC3339)), 0644); err != nil {
		h.logger.Warn("failed to write MCP trigger file", "path", h.notifyTriggerPath, "error", err)
		return
	}
	h.logger.Info("triggered MCP prompt reload", "path", h.notifyTriggerPath)
}

type promptRequest struct {
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Content     string                `json:"content"`
	Category    string                `json:"category"`
	Tags        []string              `json:"tags"`
	Variables   []prompt.VariableSpec `json:"variables"`
	Author      string                `json:"author"`
	Version     string                `json:"version"`
}

// CreatePrompt handles POST /api/v1/prompts
func (h *PromptsHandler) CreatePrompt(c *gin.Context) {
	var req promptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "Invalid request body", ErrInvalidInput)
		return
	}

	if err := validatePromptRequest(req.Name, req.Content, req.Category, req.Variables); err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error(), ErrInvalidInput)
		return
	}

	version := req.Version
	if version == "" {
		version = prompt.DefaultVersion
	}

	now := time.Now().UTC()
	p := &prompt.Prompt{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		Content:     req.Content,
		Category:    req.Category,
		Tags:        req.Tags,
		Variables:   req.Variables,
		Author:      req.Author,
		Version:     version,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	warnings := h.duplicateWarnings(p)
	report := p.ValidateConsistency()

	if err := h.storage.Save(p); err != nil {
		h.logger.Error("CreatePrompt: save failed", "error", err)
		errorResponse(c, http.StatusInternalServerError, fmt.Sprintf("storage operation failed: %v", err), ErrStorageFailure)
		return
	}

	h.recordAudit(c.GetString("request_id"), audit.ActionCreatePrompt, p.ID, p.Name)
	h.notifyPromptsChanged()

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"prompt":      p,
			"consistency": report,
			"warnings":    warnings,
		},
	})
}

// duplicateWarnings flags stored prompts whose simhash fingerprint is
// close to the new prompt's name+content. Advisory only.
func (h *PromptsHandler) duplicateWarnings(p *prompt.Prompt) []string {
	warnings := []string{}
	existing, err := h.storage.LoadAll()
	if err != nil {
		return warnings
	}
	text := p.Name + "\n" + p.Content
	for _, other := range existing {
		if other.ID == p.ID {
			continue
		}
		if similarity.IsNearDuplicate(text, other.Name+"\n"+other.Content) {
			warnings = append(warnings,
				fmt.Sprintf("content is very similar to existing prompt '%s' (%s)", other.Name, other.ID))
		}
	}
	return warnings
}

// GetPrompt handles GET /api/v1/prompts/:id
func (h *PromptsHandler) GetPrompt(c *gin.Context) {
	p, err := h.storage.Load(c.Param("id"))
	if err != nil {
		if errors.Is(err, prompt.ErrPromptNotFound) {
			errorResponse(c, http.StatusNotFound, err.Error(), ErrPromptNotFound)
		} else {
			errorResponse(c, http.StatusInternalServerError, err.Error(), ErrStorageFailure)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": p})
}

// ListPrompts handles GET /api/v1/prompts
func (h *PromptsHandler) ListPrompts(c *gin.Context) {
	snapshot, err := h.storage.LoadAll()
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error(), ErrStorageFailure)
		return
	}
	metrics.SetSnapshotSize(len(snapshot))

	req := prompt.SearchRequest{Category: c.Query("category")}
	results := prompt.Search(snapshot, h.usageStore.Snapshot(), req, time.Now())
	c.JSON(http.StatusOK, gin.H{"success": true, "data": results, "total": len(results)})
}

type updateRequest struct {
	Name        *string               `json:"name"`
	Description *string               `json:"description"`
	Content     *string               `json:"content"`
	Tags        []string              `json:"tags"`
	Author      *string               `json:"author"`
	Variables   []prompt.VariableSpec `json:"variables"`
}

// UpdatePrompt handles PUT /api/v1/prompts/:id
func (h *PromptsHandler) UpdatePrompt(c *gin.Context) {
	existing, err := h.storage.Load(c.Param("id"))
	if err != nil {
		if errors.Is(err, prompt.ErrPromptNotFound) {
			errorResponse(c, http.StatusNotFound, err.Error(), ErrPromptNotFound)
		} else {
			errorResponse(c, http.StatusInternalServerError, err.Error(), ErrStorageFailure)
		}
		return
	}

	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "Invalid request body", ErrInvalidInput)
		return
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		errorResponse(c, http.StatusBadRequest, "name must not be empty", ErrInvalidInput)
		return
	}
	if req.Content != nil && strings.TrimSpace(*req.Content) == "" {
		errorResponse(c, http.StatusBadRequest, "content must not be empty", ErrInvalidInput)
		return
	}
	if req.Variables != nil {
		if err := validateVariableSpecs(req.Variables); err != nil {
			errorResponse(c, http.StatusBadRequest, err.Error(), ErrInvalidInput)
			return
		}
	}

	updated := existing.WithUpdatedContent(prompt.UpdateFields{
		Name:        req.Name,
		Description: req.Description,
		Content:     req.Content,
		Tags:        req.Tags,
		Author:      req.Author,
		Variables:   req.Variables,
	}, time.Now().UTC())

	if err := h.storage.Save(&updated); err != nil {
		h.logger.Error("UpdatePrompt: save failed", "error", err)
		errorResponse(c, http.StatusInternalServerError, fmt.Sprintf("storage operation failed: %v", err), ErrStorageFailure)
		return
	}

	h.recordAudit(c.GetString("request_id"), audit.ActionUpdatePrompt, updated.ID, updated.Name)
	h.notifyPromptsChanged()

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"prompt":      updated,
			"consistency": updated.ValidateConsistency(),
		},
	})
}

// DeletePrompt handles DELETE /api/v1/prompts/:id
func (h *PromptsHandler) DeletePrompt(c *gin.Context) {
	id := c.Param("id")
	if err := h.storage.Delete(id); err != nil {
		if errors.Is(err, prompt.ErrPromptNotFound) {
			errorResponse(c, http.StatusNotFound, err.Error(), ErrPromptNotFound)
		} else {
			errorResponse(c, http.StatusInternalServerError, err.Error(), ErrStorageFailure)
		}
		return
	}
	if err := h.usageStore.Forget(id); err != nil {
		h.logger.Warn("failed to drop deleted prompt from usage log", "prompt_id", id, "error", err)
	}

	h.recordAudit(c.GetString("request_id"), audit.ActionDeletePrompt, id, "")
	h.notifyPromptsChanged()

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// promptSummary is the search result shape: enough to pick a prompt,
// without the full template body.
type promptSummary struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
}

// SearchPrompts handles GET /api/v1/prompts/search
func (h *PromptsHandler) SearchPrompts(c *gin.Context) {
	start := time.Now()

	req := prompt.SearchRequest{
		Query:    c.Query("query"),
		Category: c.Query("category"),
		Author:   c.Query("author"),
	}
	if tags := c.Query("tags"); tags != "" {
		for _, t := range strings.Split(tags, ",") {
			if t = strings.TrimSpace(t); t != "" {
				req.Tags = append(req.Tags, t)
			}
		}
	}
	if limit := c.Query("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 0 {
			errorResponse(c, http.StatusBadRequest, "limit must be a non-negative integer", ErrInvalidInput)
			return
		}
		req.Limit = n
	}
	if req.Category != "" && !prompt.ValidCategory(req.Category) {
		errorResponse(c, http.StatusBadRequest, fmt.Sprintf("invalid category: %s", req.Category), ErrInvalidInput)
		return
	}

	snapshot, err := h.storage.LoadAll()
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error(), ErrStorageFailure)
		return
	}
	metrics.SetSnapshotSize(len(snapshot))

	results := prompt.Search(snapshot, h.usageStore.Snapshot(), req, time.Now())

	mode := "browse"
	if strings.TrimSpace(req.Query) != "" {
		mode = "query"
	}
	metrics.RecordSearch(mode, time.Since(start).Seconds())

	summaries := make([]promptSummary, len(results))
	for i, p := range results {
		summaries[i] = promptSummary{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Category:    p.Category,
			Tags:        p.Tags,
		}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": summaries, "total": len(summaries)})
}

// RenderPrompt handles POST /api/v1/prompts/:id/render
func (h *PromptsHandler) RenderPrompt(c *gin.Context) {
	p, err := h.storage.Load(c.Param("id"))
	if err != nil {
		if errors.Is(err, prompt.ErrPromptNotFound) {
			errorResponse(c, http.StatusNotFound, err.Error(), ErrPromptNotFound)
		} else {
			errorResponse(c, http.StatusInternalServerError, err.Error(), ErrStorageFailure)
		}
		return
	}

	var req struct {
		Values map[string]interface{} `json:"values"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "Invalid request body", ErrInvalidInput)
		return
	}

	result := prompt.Render(*p, prompt.ValuesFromInterfaceMap(req.Values))
	metrics.RecordRender(len(result.ValidationErrors) > 0)

	if err := h.usageStore.RecordUse(p.ID, time.Now().UTC()); err != nil {
		h.logger.Warn("failed to record prompt use", "prompt_id", p.ID, "error", err)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}

// SetFavorite handles POST /api/v1/prompts/:id/favorite
func (h *PromptsHandler) SetFavorite(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.storage.Load(id); err != nil {
		if errors.Is(err, prompt.ErrPromptNotFound) {
			errorResponse(c, http.StatusNotFound, err.Error(), ErrPromptNotFound)
		} else {
			errorResponse(c, http.StatusInternalServerError, err.Error(), ErrStorageFailure)
		}
		return
	}

	var req struct {
		Favorite bool `json:"favorite"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "Invalid request body", ErrInvalidInput)
		return
	}

	if err := h.usageStore.SetFavorite(id, req.Favorite); err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error(), ErrStorageFailure)
		return
	}

	h.recordAudit(c.GetString("request_id"), audit.ActionSetFavorite, id, strconv.FormatBool(req.Favorite))
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ListCategories handles GET /api/v1/categories
func (h *PromptsHandler) ListCategories(c *gin.Context) {
	snapshot, err := h.storage.LoadAll()
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error(), ErrStorageFailure)
		return
	}

	counts := make(map[string]int, len(prompt.Categories))
	for _, p := range snapshot {
		counts[p.Category]++
	}

	type categoryCount struct {
		Category string `json:"category"`
		Count    int    `json:"count"`
	}
	data := make([]categoryCount, len(prompt.Categories))
	for i, cat := range prompt.Categories {
		data[i] = categoryCount{Category: cat, Count: counts[cat]}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

// validatePromptRequest checks the create payload.
func validatePromptRequest(name, content, category string, variables []prompt.VariableSpec) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name must not be empty")
	}
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("content must not be empty")
	}
	if !prompt.ValidCategory(category) {
		return fmt.Errorf("invalid category: %s", category)
	}
	return validateVariableSpecs(variables)
}

// validateVariableSpecs checks variable declarations for valid names,
// supported types and uniqueness.
func validateVariableSpecs(variables []prompt.VariableSpec) error {
	seen := make(map[string]bool, len(variables))
	for _, spec := range variables {
		if !prompt.IsIdentifier(spec.Name) {
			return fmt.Errorf("invalid variable name: %q", spec.Name)
		}
		if !prompt.ValidVariableType(spec.Type) {
			return fmt.Errorf("invalid type %q for variable %q", spec.Type, spec.Name)
		}
		if seen[spec.Name] {
			return fmt.Errorf("duplicate variable name: %q", spec.Name)
		}
		seen[spec.Name] = true
	}
	return nil
}
