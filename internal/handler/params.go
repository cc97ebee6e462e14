package handler

import (
	"strconv"

	"github.com/dafibh/fluxo/fluxo-backend/internal/report"
	"github.com/labstack/echo/v4"
)

// parseIDParam reads a positive int32 path parameter
func parseIDParam(c echo.Context, name string) (int32, bool) {
	v, err := strconv.ParseInt(c.Param(name), 10, 32)
	if err != nil || v <= 0 {
		return 0, false
	}
	return int32(v), true
}

func invalidIDError(c echo.Context, name string) error {
	return NewValidationError(c, "Invalid "+name, []ValidationError{
		{Field: name, Message: "Must be a positive integer"},
	})
}

// parseDateRangeQuery reads the from/to query parameters. A nil range means
// no filtering.
func parseDateRangeQuery(c echo.Context) (*report.DateRange, error) {
	return report.ParseDateRange(c.QueryParam("from"), c.QueryParam("to"))
}
