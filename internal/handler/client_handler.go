package handler

import (
	"net/http"

	"github.com/dafibh/fluxo/fluxo-backend/internal/domain"
	"github.com/dafibh/fluxo/fluxo-backend/internal/middleware"
	"github.com/dafibh/fluxo/fluxo-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ClientHandler handles client profile and consultant links
type ClientHandler struct {
	clientService *service.ClientService
}

// NewClientHandler creates a new ClientHandler
func NewClientHandler(clientService *service.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

// LinkConsultantRequest names the consultant by their account email
type LinkConsultantRequest struct {
	ConsultantEmail string `json:"consultorEmail"`
}

// GetMe handles GET /api/v1/clients/me
func (h *ClientHandler) GetMe(c echo.Context) error {
	auth0ID := middleware.GetAuth0ID(c)
	if auth0ID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	client, err := h.clientService.GetOwnClient(c.Request().Context(), auth0ID)
	if err != nil {
		return respondError(c, err, "Failed to get client")
	}
	return c.JSON(http.StatusOK, client)
}

// UpdateMe handles PUT /api/v1/clients/me
func (h *ClientHandler) UpdateMe(c echo.Context) error {
	auth0ID := middleware.GetAuth0ID(c)
	if auth0ID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req service.UpdateProfileInput
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	client, err := h.clientService.UpdateProfile(c.Request().Context(), auth0ID, req)
	if err != nil {
		return respondError(c, err, "Failed to update client")
	}
	return c.JSON(http.StatusOK, client)
}

// ListConsulted handles GET /api/v1/clients and returns the clients the
// caller is consultant for
func (h *ClientHandler) ListConsulted(c echo.Context) error {
	auth0ID := middleware.GetAuth0ID(c)
	if auth0ID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	clients, err := h.clientService.ListConsultantClients(c.Request().Context(), auth0ID)
	if err != nil {
		return respondError(c, err, "Failed to list clients")
	}
	if clients == nil {
		clients = []*domain.Client{}
	}
	return c.JSON(http.StatusOK, clients)
}

// LinkConsultant handles POST /api/v1/clients/link
func (h *ClientHandler) LinkConsultant(c echo.Context) error {
	auth0ID := middleware.GetAuth0ID(c)
	if auth0ID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req LinkConsultantRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	if req.ConsultantEmail == "" {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "consultorEmail", Message: "Consultant email is required"},
		})
	}

	client, err := h.clientService.LinkConsultant(c.Request().Context(), auth0ID, req.ConsultantEmail)
	if err != nil {
		return respondError(c, err, "Failed to link consultant")
	}

	log.Info().Int32("client_id", client.ID).Msg("Consultant linked")
	return c.JSON(http.StatusOK, client)
}

// UnlinkConsultant handles DELETE /api/v1/clients/link
func (h *ClientHandler) UnlinkConsultant(c echo.Context) error {
	auth0ID := middleware.GetAuth0ID(c)
	if auth0ID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	client, err := h.clientService.UnlinkConsultant(c.Request().Context(), auth0ID)
	if err != nil {
		return respondError(c, err, "Failed to unlink consultant")
	}
	return c.JSON(http.StatusOK, client)
}
