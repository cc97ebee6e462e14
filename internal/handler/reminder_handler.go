package handler

import (
	"net/http"

	"github.com/dafibh/fluxo/fluxo-backend/internal/domain"
	"github.com/dafibh/fluxo/fluxo-backend/internal/middleware"
	"github.com/dafibh/fluxo/fluxo-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// ReminderHandler handles bill reminder HTTP requests
type ReminderHandler struct {
	reminderService *service.ReminderService
}

// NewReminderHandler creates a new ReminderHandler
func NewReminderHandler(reminderService *service.ReminderService) *ReminderHandler {
	return &ReminderHandler{reminderService: reminderService}
}

// GetReminders handles GET /api/v1/reminders
func (h *ReminderHandler) GetReminders(c echo.Context) error {
	clientID := middleware.GetClientID(c)
	if clientID == 0 {
		return NewUnauthorizedError(c, "Client required")
	}

	reminders, err := h.reminderService.List(c.Request().Context(), clientID)
	if err != nil {
		return respondError(c, err, "Failed to get reminders")
	}
	if reminders == nil {
		reminders = []*domain.Reminder{}
	}
	return c.JSON(http.StatusOK, reminders)
}

// CreateReminder handles POST /api/v1/reminders
func (h *ReminderHandler) CreateReminder(c echo.Context) error {
	clientID := middleware.GetClientID(c)
	if clientID == 0 {
		return NewUnauthorizedError(c, "Client required")
	}

	var req service.ReminderInput
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	reminder, err := h.reminderService.Create(c.Request().Context(), clientID, req)
	if err != nil {
		return respondError(c, err, "Failed to create reminder")
	}
	return c.JSON(http.StatusCreated, reminder)
}

// UpdateReminder handles PUT /api/v1/reminders/:id
func (h *ReminderHandler) UpdateReminder(c echo.Context) error {
	clientID := middleware.GetClientID(c)
	if clientID == 0 {
		return NewUnauthorizedError(c, "Client required")
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return invalidIDError(c, "id")
	}

	var req service.ReminderInput
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	reminder, err := h.reminderService.Update(c.Request().Context(), clientID, id, req)
	if err != nil {
		return respondError(c, err, "Failed to update reminder")
	}
	return c.JSON(http.StatusOK, reminder)
}

// DeleteReminder handles DELETE /api/v1/reminders/:id
func (h *ReminderHandler) DeleteReminder(c echo.Context) error {
	clientID := middleware.GetClientID(c)
	if clientID == 0 {
		return NewUnauthorizedError(c, "Client required")
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return invalidIDError(c, "id")
	}

	if err := h.reminderService.Delete(c.Request().Context(), clientID, id); err != nil {
		return respondError(c, err, "Failed to delete reminder")
	}
	return c.NoContent(http.StatusNoContent)
}
