package handler

import (
	"net/http"
	"strconv"

	"github.com/dafibh/fluxo/fluxo-backend/internal/domain"
	"github.com/dafibh/fluxo/fluxo-backend/internal/middleware"
	"github.com/dafibh/fluxo/fluxo-backend/internal/service"
	"github.com/dafibh/fluxo/fluxo-backend/internal/util"
	"github.com/labstack/echo/v4"
)

// GoalHandler handles spending goal HTTP requests
type GoalHandler struct {
	goalService *service.GoalService
}

// NewGoalHandler creates a new GoalHandler
func NewGoalHandler(goalService *service.GoalService) *GoalHandler {
	return &GoalHandler{goalService: goalService}
}

// parseYearMonthQuery reads year and month, defaulting to the current month
// in the reference time zone
func parseYearMonthQuery(c echo.Context) (year, month int, fieldErrors []ValidationError) {
	now := util.Today()
	year, month = now.Year(), int(now.Month())

	if raw := c.QueryParam("year"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			fieldErrors = append(fieldErrors, ValidationError{Field: "year", Message: "Must be a number"})
		}
		year = v
	}
	if raw := c.QueryParam("month"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			fieldErrors = append(fieldErrors, ValidationError{Field: "month", Message: "Must be a number"})
		}
		month = v
	}
	return year, month, fieldErrors
}

// GetGoals handles GET /api/v1/goals?year&month
func (h *GoalHandler) GetGoals(c echo.Context) error {
	clientID := middleware.GetClientID(c)
	if clientID == 0 {
		return NewUnauthorizedError(c, "Client required")
	}

	year, month, fieldErrors := parseYearMonthQuery(c)
	if len(fieldErrors) > 0 {
		return NewValidationError(c, "Invalid period", fieldErrors)
	}

	goals, err := h.goalService.ListByMonth(c.Request().Context(), clientID, year, month)
	if err != nil {
		return respondError(c, err, "Failed to get goals")
	}
	if goals == nil {
		goals = []*domain.Goal{}
	}
	return c.JSON(http.StatusOK, goals)
}

// CreateGoal handles POST /api/v1/goals
func (h *GoalHandler) CreateGoal(c echo.Context) error {
	clientID := middleware.GetClientID(c)
	if clientID == 0 {
		return NewUnauthorizedError(c, "Client required")
	}

	var req service.GoalInput
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	goal, err := h.goalService.Create(c.Request().Context(), clientID, req)
	if err != nil {
		return respondError(c, err, "Failed to create goal")
	}
	return c.JSON(http.StatusCreated, goal)
}

// UpdateGoal handles PUT /api/v1/goals/:id
func (h *GoalHandler) UpdateGoal(c echo.Context) error {
	clientID := middleware.GetClientID(c)
	if clientID == 0 {
		return NewUnauthorizedError(c, "Client required")
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return invalidIDError(c, "id")
	}

	var req service.GoalInput
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	goal, err := h.goalService.Update(c.Request().Context(), clientID, id, req)
	if err != nil {
		return respondError(c, err, "Failed to update goal")
	}
	return c.JSON(http.StatusOK, goal)
}

// DeleteGoal handles DELETE /api/v1/goals/:id
func (h *GoalHandler) DeleteGoal(c echo.Context) error {
	clientID := middleware.GetClientID(c)
	if clientID == 0 {
		return NewUnauthorizedError(c, "Client required")
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return invalidIDError(c, "id")
	}

	if err := h.goalService.Delete(c.Request().Context(), clientID, id); err != nil {
		return respondError(c, err, "Failed to delete goal")
	}
	return c.NoContent(http.StatusNoContent)
}
