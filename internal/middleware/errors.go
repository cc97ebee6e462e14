package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// problemDetails represents an RFC 7807 Problem Details response
type problemDetails struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

// Error types
const (
	errorTypeValidation   = "https://fluxo.app/errors/validation"
	errorTypeUnauthorized = "https://fluxo.app/errors/unauthorized"
	errorTypeForbidden    = "https://fluxo.app/errors/forbidden"
	errorTypeNotFound     = "https://fluxo.app/errors/not-found"
	errorTypeRateLimit    = "https://fluxo.app/errors/rate-limit"
	errorTypeInternal     = "https://fluxo.app/errors/internal"
)

func problem(c echo.Context, status int, errorType, title, detail string) error {
	return c.JSON(status, problemDetails{
		Type:     errorType,
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// unauthorizedError creates an unauthorized error response
func unauthorizedError(c echo.Context, detail string) error {
	return problem(c, http.StatusUnauthorized, errorTypeUnauthorized, "Unauthorized", detail)
}

func forbiddenError(c echo.Context, detail string) error {
	return problem(c, http.StatusForbidden, errorTypeForbidden, "Forbidden", detail)
}

func notFoundError(c echo.Context, detail string) error {
	return problem(c, http.StatusNotFound, errorTypeNotFound, "Not Found", detail)
}

func validationError(c echo.Context, detail string) error {
	return problem(c, http.StatusBadRequest, errorTypeValidation, "Validation Error", detail)
}

func internalError(c echo.Context, detail string) error {
	return problem(c, http.StatusInternalServerError, errorTypeInternal, "Internal Server Error", detail)
}
