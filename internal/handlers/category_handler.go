package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wdmmg/internal/models"
)

// CategoryHandler serves the fixed category list.
type CategoryHandler struct{}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler() *CategoryHandler {
	return &CategoryHandler{}
}

// ListCategories returns every category a transaction or budget may use
// @Summary     List categories
// @Description Get the fixed, ordered list of spending categories
// @Tags        categories
// @Produce     json
// @Success     200 {array} string "Categories"
// @Router      /categories [get]
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	c.JSON(http.StatusOK, models.Categories)
}
