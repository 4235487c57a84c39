package api

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the prompt API under /api/v1.
func RegisterRoutes(r *gin.Engine, h *PromptsHandler) {
	v1 := r.Group("/api/v1")
	{
		v1.GET("/categories", h.ListCategories)

		prompts := v1.Group("/prompts")
		{
			prompts.POST("", h.CreatePrompt)
			prompts.GET("", h.ListPrompts)
			prompts.GET("/search", h.SearchPrompts)
			prompts.GET("/:id", h.GetPrompt)
			prompts.PUT("/:id", h.UpdatePrompt)
			prompts.DELETE("/:id", h.DeletePrompt)
			prompts.POST("/:id/render", h.RenderPrompt)
			prompts.POST("/:id/favorite", h.SetFavorite)
		}
	}
}
