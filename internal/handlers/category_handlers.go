package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListCategories handles GET /api/categories
func (h *Handlers) ListCategories(c *gin.Context) {
	categories, err := h.Store.ListCategories(c.Request.Context())
	if err != nil {
		fail(c, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(categories), "data": categories})
}

// GetCategory handles GET /api/categories/:slug
func (h *Handlers) GetCategory(c *gin.Context) {
	category, err := h.Store.GetCategory(c.Request.Context(), c.Param("slug"))
	if err != nil {
		fail(c, err, "Category not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": category})
}
