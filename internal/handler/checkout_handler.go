package handler

import (
	"net/http"

	"github.com/dafibh/fluxo/fluxo-backend/internal/middleware"
	"github.com/dafibh/fluxo/fluxo-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// CheckoutHandler starts a subscription purchase at the payment gateway
type CheckoutHandler struct {
	checkoutService *service.CheckoutService
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler(checkoutService *service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService}
}

// Checkout handles POST /api/v1/checkout and returns the invoice URL the
// buyer should be sent to
func (h *CheckoutHandler) Checkout(c echo.Context) error {
	auth0ID := middleware.GetAuth0ID(c)
	if auth0ID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}
	if h.checkoutService == nil {
		return NewServiceUnavailableError(c, "Payments are not configured")
	}

	var req service.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	result, err := h.checkoutService.Checkout(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err, "Failed to start checkout")
	}

	return c.JSON(http.StatusCreated, result)
}
