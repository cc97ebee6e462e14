package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/dafibh/fluxo/fluxo-backend/internal/domain"
	"github.com/dafibh/fluxo/fluxo-backend/internal/middleware"
	"github.com/dafibh/fluxo/fluxo-backend/internal/websocket"
	ws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// TokenValidator turns a raw access token into the Auth0 subject it was
// issued to. *middleware.AuthMiddleware implements it.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (auth0ID string, err error)
}

var _ TokenValidator = (*middleware.AuthMiddleware)(nil)

// WebSocketHandler handles WebSocket connections
type WebSocketHandler struct {
	hub            *websocket.Hub
	validator      TokenValidator
	scope          middleware.ClientScopeResolver
	allowedOrigins map[string]bool
	upgrader       ws.Upgrader
}

// NewWebSocketHandler creates a new WebSocketHandler
func NewWebSocketHandler(hub *websocket.Hub, validator TokenValidator, scope middleware.ClientScopeResolver, allowedOrigins []string) *WebSocketHandler {
	originMap := make(map[string]bool)
	for _, origin := range allowedOrigins {
		originMap[origin] = true
	}

	h := &WebSocketHandler{
		hub:            hub,
		validator:      validator,
		scope:          scope,
		allowedOrigins: originMap,
	}

	h.upgrader = ws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}

	return h
}

// checkOrigin validates the request origin against allowed origins
func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		// same-origin or non-browser clients
		return true
	}

	if h.allowedOrigins[origin] {
		return true
	}

	log.Warn().
		Str("origin", origin).
		Msg("WebSocket connection rejected: origin not allowed")
	return false
}

// HandleWS handles WebSocket connection requests at GET /ws?token=&client=.
// The optional client parameter opens a consultant view of that client.
func (h *WebSocketHandler) HandleWS(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		log.Debug().Msg("WebSocket connection rejected: missing token")
		return NewUnauthorizedError(c, "missing token")
	}

	ctx := c.Request().Context()
	auth0ID, err := h.validator.ValidateToken(ctx, token)
	if err != nil {
		log.Debug().Err(err).Msg("WebSocket connection rejected: invalid token")
		return NewUnauthorizedError(c, "invalid token")
	}

	var requested *int32
	if raw := c.QueryParam("client"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || v <= 0 {
			return NewValidationError(c, "Invalid client", []ValidationError{
				{Field: "client", Message: "Must be a positive integer"},
			})
		}
		id := int32(v)
		requested = &id
	}

	clientID, err := h.scope.ResolveClientScope(ctx, auth0ID, requested)
	if err != nil {
		if errors.Is(err, domain.ErrNotConsultant) {
			log.Warn().Str("auth0_id", auth0ID).Msg("WebSocket connection rejected: not a consultant")
		}
		return respondError(c, err, "Failed to resolve client")
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Error().Err(err).Msg("WebSocket upgrade failed")
		return err
	}

	connection := websocket.NewConnection(conn, clientID, h.hub)
	h.hub.Register(connection)

	log.Info().
		Int32("client_id", clientID).
		Str("connection_id", connection.ID()).
		Msg("WebSocket client connected")

	go connection.WritePump()
	go connection.ReadPump()

	return nil
}
