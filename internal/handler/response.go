package handler

import (
	"errors"
	"net/http"

	"github.com/dafibh/fluxo/fluxo-backend/internal/domain"
	"github.com/dafibh/fluxo/fluxo-backend/internal/middleware"
	"github.com/dafibh/fluxo/fluxo-backend/internal/payment"
	"github.com/dafibh/fluxo/fluxo-backend/internal/report"
	"github.com/dafibh/fluxo/fluxo-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ProblemDetails represents an RFC 7807 Problem Details response
type ProblemDetails struct {
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Status   int               `json:"status"`
	Detail   string            `json:"detail,omitempty"`
	Instance string            `json:"instance,omitempty"`
	Errors   []ValidationError `json:"errors,omitempty"`
}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error types
const (
	ErrorTypeValidation   = "https://fluxo.app/errors/validation"
	ErrorTypeNotFound     = "https://fluxo.app/errors/not-found"
	ErrorTypeUnauthorized = "https://fluxo.app/errors/unauthorized"
	ErrorTypeForbidden    = "https://fluxo.app/errors/forbidden"
	ErrorTypeConflict     = "https://fluxo.app/errors/conflict"
	ErrorTypeBadGateway   = "https://fluxo.app/errors/bad-gateway"
	ErrorTypeUnavailable  = "https://fluxo.app/errors/unavailable"
	ErrorTypeInternal     = "https://fluxo.app/errors/internal"
)

func newProblem(c echo.Context, status int, errorType, title, detail string) error {
	return c.JSON(status, ProblemDetails{
		Type:     errorType,
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewValidationError creates a validation error response
func NewValidationError(c echo.Context, detail string, errors []ValidationError) error {
	return c.JSON(http.StatusBadRequest, ProblemDetails{
		Type:     ErrorTypeValidation,
		Title:    "Validation Error",
		Status:   http.StatusBadRequest,
		Detail:   detail,
		Instance: c.Request().URL.Path,
		Errors:   errors,
	})
}

// NewNotFoundError creates a not found error response
func NewNotFoundError(c echo.Context, detail string) error {
	return newProblem(c, http.StatusNotFound, ErrorTypeNotFound, "Not Found", detail)
}

// NewUnauthorizedError creates an unauthorized error response
func NewUnauthorizedError(c echo.Context, detail string) error {
	return newProblem(c, http.StatusUnauthorized, ErrorTypeUnauthorized, "Unauthorized", detail)
}

// NewForbiddenError creates a forbidden error response
func NewForbiddenError(c echo.Context, detail string) error {
	return newProblem(c, http.StatusForbidden, ErrorTypeForbidden, "Forbidden", detail)
}

// NewConflictError creates a conflict error response
func NewConflictError(c echo.Context, detail string) error {
	return newProblem(c, http.StatusConflict, ErrorTypeConflict, "Conflict", detail)
}

// NewBadGatewayError creates a bad gateway error response
func NewBadGatewayError(c echo.Context, detail string) error {
	return newProblem(c, http.StatusBadGateway, ErrorTypeBadGateway, "Bad Gateway", detail)
}

// NewServiceUnavailableError creates a service unavailable error response
func NewServiceUnavailableError(c echo.Context, detail string) error {
	return newProblem(c, http.StatusServiceUnavailable, ErrorTypeUnavailable, "Service Unavailable", detail)
}

// NewInternalError creates an internal error response
func NewInternalError(c echo.Context, detail string) error {
	return newProblem(c, http.StatusInternalServerError, ErrorTypeInternal, "Internal Server Error", detail)
}

var notFoundErrors = []error{
	domain.ErrNotFound,
	domain.ErrUserNotFound,
	domain.ErrClientNotFound,
	domain.ErrTransactionNotFound,
	domain.ErrCategoryNotFound,
	domain.ErrGoalNotFound,
	domain.ErrReminderNotFound,
	service.ErrReceiptNotFound,
}

var conflictErrors = []error{
	domain.ErrAlreadyExists,
	domain.ErrCategoryAlreadyExists,
	domain.ErrGoalAlreadyExists,
	domain.ErrCategoryInUse,
}

var forbiddenErrors = []error{
	domain.ErrForbidden,
	domain.ErrNotConsultant,
	domain.ErrDefaultCategoryImmutable,
}

var validationErrors = []error{
	domain.ErrInvalidInput,
	domain.ErrNameRequired,
	domain.ErrNameTooLong,
	domain.ErrInvalidOperation,
	domain.ErrInvalidAmount,
	domain.ErrInvalidDate,
	domain.ErrDescriptionRequired,
	domain.ErrDescriptionTooLong,
	domain.ErrCategoryTypeMismatch,
	domain.ErrEmptyBatch,
	domain.ErrBatchTooLarge,
	domain.ErrInvalidCategoryType,
	domain.ErrInvalidGoalAmount,
	domain.ErrInvalidMonth,
	domain.ErrInvalidYear,
	domain.ErrInvalidPeriod,
	domain.ErrInvalidReminderType,
	domain.ErrInvalidReminderValue,
	service.ErrInvalidEmail,
	service.ErrInvalidPhone,
	service.ErrInvalidCpfCnpj,
	service.ErrInvalidPlan,
	service.ErrReceiptTooLarge,
	service.ErrInvalidReceiptFormat,
	service.ErrReceiptTooSmall,
	service.ErrInvalidReceiptData,
	report.ErrInvalidRange,
	report.ErrCSVHeader,
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// respondError maps a service error to a problem response. Anything it does
// not recognise is logged and reported as an internal error.
func respondError(c echo.Context, err error, action string) error {
	var csvErr *report.CSVError
	if errors.As(err, &csvErr) {
		return NewValidationError(c, "Invalid CSV file", []ValidationError{
			{Field: "file", Message: csvErr.Error()},
		})
	}

	var gwErr *payment.GatewayError
	if errors.As(err, &gwErr) {
		if gwErr.StatusCode >= 400 && gwErr.StatusCode < 500 {
			return NewValidationError(c, gwErr.Error(), nil)
		}
		log.Error().Err(err).Int32("client_id", middleware.GetClientID(c)).Msg(action)
		return NewBadGatewayError(c, "Payment gateway error")
	}

	switch {
	case isAny(err, notFoundErrors):
		return NewNotFoundError(c, err.Error())
	case isAny(err, conflictErrors):
		return NewConflictError(c, err.Error())
	case isAny(err, forbiddenErrors):
		return NewForbiddenError(c, err.Error())
	case isAny(err, validationErrors):
		return NewValidationError(c, err.Error(), nil)
	case errors.Is(err, service.ErrStorageNotConfigured):
		return NewServiceUnavailableError(c, "File storage is not configured")
	case errors.Is(err, payment.ErrUnavailable), errors.Is(err, payment.ErrNoInvoice):
		log.Error().Err(err).Int32("client_id", middleware.GetClientID(c)).Msg(action)
		return NewBadGatewayError(c, "Payment gateway unavailable")
	}

	log.Error().Err(err).Int32("client_id", middleware.GetClientID(c)).Msg(action)
	return NewInternalError(c, action)
}
