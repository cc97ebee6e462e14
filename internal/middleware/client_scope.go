package middleware

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/dafibh/fluxo/fluxo-backend/internal/domain"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ClientIDHeader lets a consultant act on one of their clients.
const ClientIDHeader = "X-Client-ID"

// ClientScopeResolver decides which client a user may act on.
type ClientScopeResolver interface {
	ResolveClientScope(ctx context.Context, auth0ID string, requested *int32) (int32, error)
}

// ClientScope resolves the client id for the authenticated user and stores it
// in the request context. It must run after Authenticate.
func ClientScope(resolver ClientScopeResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth0ID := GetAuth0ID(c)
			if auth0ID == "" {
				return unauthorizedError(c, "authentication required")
			}

			var requested *int32
			if raw := strings.TrimSpace(c.Request().Header.Get(ClientIDHeader)); raw != "" {
				id, err := strconv.ParseInt(raw, 10, 32)
				if err != nil || id <= 0 {
					return validationError(c, "invalid "+ClientIDHeader+" header")
				}
				v := int32(id)
				requested = &v
			}

			clientID, err := resolver.ResolveClientScope(c.Request().Context(), auth0ID, requested)
			if err != nil {
				switch {
				case errors.Is(err, domain.ErrNotConsultant):
					log.Warn().Str("auth0_id", auth0ID).Interface("requested", requested).Msg("Client scope denied")
					return forbiddenError(c, "not a consultant for this client")
				case errors.Is(err, domain.ErrClientNotFound), errors.Is(err, domain.ErrUserNotFound):
					return notFoundError(c, "client not found, complete sign-in first")
				default:
					log.Error().Err(err).Str("auth0_id", auth0ID).Msg("Failed to resolve client scope")
					return internalError(c, "failed to resolve client")
				}
			}

			ctx := context.WithValue(c.Request().Context(), ClientIDKey, clientID)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// GetClientID extracts the resolved client ID from the context
func GetClientID(c echo.Context) int32 {
	if id, ok := c.Request().Context().Value(ClientIDKey).(int32); ok {
		return id
	}
	return 0
}
