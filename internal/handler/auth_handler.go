package handler

import (
	"net/http"

	"github.com/dafibh/fluxo/fluxo-backend/internal/domain"
	"github.com/dafibh/fluxo/fluxo-backend/internal/middleware"
	"github.com/dafibh/fluxo/fluxo-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService   *service.AuthService
	clientService *service.ClientService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *service.AuthService, clientService *service.ClientService) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		clientService: clientService,
	}
}

// AuthCallbackResponse represents the response from the auth callback
type AuthCallbackResponse struct {
	User      UserResponse   `json:"user"`
	Client    *domain.Client `json:"cliente"`
	IsNewUser bool           `json:"isNewUser"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID         string  `json:"id"`
	Email      string  `json:"email"`
	Name       *string `json:"name"`
	PictureURL *string `json:"pictureUrl"`
}

func newUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:         user.ID.String(),
		Email:      user.Email,
		Name:       user.Name,
		PictureURL: user.PictureURL,
	}
}

// Callback registers the user and their client on first sign-in.
// POST /auth/callback
func (h *AuthHandler) Callback(c echo.Context) error {
	auth0ID := middleware.GetAuth0ID(c)
	if auth0ID == "" {
		log.Error().Msg("No Auth0 ID in context - middleware may not be configured")
		return NewUnauthorizedError(c, "Authentication required")
	}

	customClaims := middleware.GetCustomClaims(c)
	var email, name, picture string
	if customClaims != nil {
		email = customClaims.Email
		name = customClaims.Name
		picture = customClaims.Picture
	}

	if email == "" {
		log.Error().Str("auth0_id", auth0ID).Msg("No email in JWT claims")
		return NewValidationError(c, "Email is required for authentication", []ValidationError{
			{Field: "email", Message: "Email claim is missing from token"},
		})
	}

	var namePtr, picturePtr *string
	if name != "" {
		namePtr = &name
	}
	if picture != "" {
		picturePtr = &picture
	}

	result, err := h.authService.AuthenticateUser(c.Request().Context(), auth0ID, email, namePtr, picturePtr)
	if err != nil {
		log.Error().Err(err).Str("auth0_id", auth0ID).Msg("Failed to authenticate user")
		return NewInternalError(c, "Failed to authenticate user")
	}

	if result.IsNewUser {
		log.Info().Str("auth0_id", auth0ID).Int32("client_id", result.Client.ID).Msg("New user registered")
	}

	return c.JSON(http.StatusOK, AuthCallbackResponse{
		User:      newUserResponse(result.User),
		Client:    result.Client,
		IsNewUser: result.IsNewUser,
	})
}

// Me returns the current authenticated user and their own client.
// GET /auth/me
func (h *AuthHandler) Me(c echo.Context) error {
	auth0ID := middleware.GetAuth0ID(c)
	if auth0ID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	ctx := c.Request().Context()
	user, err := h.authService.GetUserByAuth0ID(ctx, auth0ID)
	if err != nil {
		return respondError(c, err, "Failed to get user")
	}

	client, err := h.clientService.GetOwnClient(ctx, auth0ID)
	if err != nil {
		return respondError(c, err, "Failed to get client")
	}

	return c.JSON(http.StatusOK, AuthCallbackResponse{
		User:   newUserResponse(user),
		Client: client,
	})
}
