package handler

import (
	"net/http"

	"github.com/dafibh/fluxo/fluxo-backend/internal/domain"
	"github.com/dafibh/fluxo/fluxo-backend/internal/middleware"
	"github.com/dafibh/fluxo/fluxo-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// CategoryHandler handles category-related HTTP requests
type CategoryHandler struct {
	categoryService *service.CategoryService
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// GetCategories handles GET /api/v1/categories
func (h *CategoryHandler) GetCategories(c echo.Context) error {
	clientID := middleware.GetClientID(c)
	if clientID == 0 {
		return NewUnauthorizedError(c, "Client required")
	}

	categories, err := h.categoryService.List(c.Request().Context(), clientID)
	if err != nil {
		return respondError(c, err, "Failed to get categories")
	}
	if categories == nil {
		categories = []*domain.Category{}
	}
	return c.JSON(http.StatusOK, categories)
}

// CreateCategory handles POST /api/v1/categories
func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	clientID := middleware.GetClientID(c)
	if clientID == 0 {
		return NewUnauthorizedError(c, "Client required")
	}

	var req service.CategoryInput
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	category, err := h.categoryService.Create(c.Request().Context(), clientID, req)
	if err != nil {
		return respondError(c, err, "Failed to create category")
	}
	return c.JSON(http.StatusCreated, category)
}

// UpdateCategory handles PUT /api/v1/categories/:id
func (h *CategoryHandler) UpdateCategory(c echo.Context) error {
	clientID := middleware.GetClientID(c)
	if clientID == 0 {
		return NewUnauthorizedError(c, "Client required")
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return invalidIDError(c, "id")
	}

	var req service.CategoryInput
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	category, err := h.categoryService.Update(c.Request().Context(), clientID, id, req)
	if err != nil {
		return respondError(c, err, "Failed to update category")
	}
	return c.JSON(http.StatusOK, category)
}

// DeleteCategory handles DELETE /api/v1/categories/:id
func (h *CategoryHandler) DeleteCategory(c echo.Context) error {
	clientID := middleware.GetClientID(c)
	if clientID == 0 {
		return NewUnauthorizedError(c, "Client required")
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return invalidIDError(c, "id")
	}

	if err := h.categoryService.Delete(c.Request().Context(), clientID, id); err != nil {
		return respondError(c, err, "Failed to delete category")
	}
	return c.NoContent(http.StatusNoContent)
}
