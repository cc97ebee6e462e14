package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/dafibh/fluxo/fluxo-backend/internal/domain"
	"github.com/dafibh/fluxo/fluxo-backend/internal/middleware"
	"github.com/dafibh/fluxo/fluxo-backend/internal/service"
	"github.com/dafibh/fluxo/fluxo-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Helper to set up auth context for testing
func setupAuthContext(c echo.Context, auth0ID string, email, name, picture string) {
	setupAuthContextWithClient(c, auth0ID, email, name, picture, 0)
}

// Helper to set up auth context with a resolved client ID
func setupAuthContextWithClient(c echo.Context, auth0ID string, email, name, picture string, clientID int32) {
	customClaims := &middleware.CustomClaims{
		Email:   email,
		Name:    name,
		Picture: picture,
	}
	claims := &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{
			Subject: auth0ID,
		},
		CustomClaims: customClaims,
	}
	ctx := context.WithValue(c.Request().Context(), middleware.ClaimsKey, claims)
	ctx = context.WithValue(ctx, middleware.Auth0IDKey, auth0ID)
	if clientID > 0 {
		ctx = context.WithValue(ctx, middleware.ClientIDKey, clientID)
	}
	c.SetRequest(c.Request().WithContext(ctx))
}

// setupClientContext is the common case: a signed-in owner acting on their client
func setupClientContext(c echo.Context, clientID int32) {
	setupAuthContextWithClient(c, "auth0|test", "test@example.com", "Test User", "", clientID)
}

func newAuthHandler() (*AuthHandler, *testutil.MockUserRepository, *testutil.MockClientRepository, *testutil.MockCategoryRepository) {
	userRepo := testutil.NewMockUserRepository()
	clientRepo := testutil.NewMockClientRepository()
	categoryRepo := testutil.NewMockCategoryRepository()
	categoryService := service.NewCategoryService(categoryRepo)
	authService := service.NewAuthService(userRepo, clientRepo, categoryService)
	clientService := service.NewClientService(clientRepo, userRepo)
	return NewAuthHandler(authService, clientService), userRepo, clientRepo, categoryRepo
}

func TestCallback_NewUser(t *testing.T) {
	e := echo.New()
	handler, _, clientRepo, categoryRepo := newAuthHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/callback", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, "auth0|new", "new@example.com", "New User", "https://example.com/pic.jpg")

	if err := handler.Callback(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var response AuthCallbackResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if !response.IsNewUser {
		t.Error("Expected isNewUser to be true")
	}
	if response.User.Email != "new@example.com" {
		t.Errorf("Expected email 'new@example.com', got %s", response.User.Email)
	}
	if response.Client == nil || response.Client.Nome != "New User" {
		t.Errorf("Expected client named after the user, got %+v", response.Client)
	}
	if len(clientRepo.Clients) != 1 {
		t.Errorf("Expected 1 client, got %d", len(clientRepo.Clients))
	}
	if len(categoryRepo.Categories) != len(domain.DefaultCategories) {
		t.Errorf("Expected %d default categories, got %d", len(domain.DefaultCategories), len(categoryRepo.Categories))
	}
}

func TestCallback_ExistingUser(t *testing.T) {
	e := echo.New()
	handler, userRepo, clientRepo, _ := newAuthHandler()

	user := &domain.User{ID: uuid.New(), Auth0ID: "auth0|existing", Email: "existing@example.com"}
	userRepo.AddUser(user)
	clientRepo.AddClient(&domain.Client{ID: 3, UserID: user.ID, Nome: "Existing"}, user.Auth0ID)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/callback", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, "auth0|existing", "existing@example.com", "", "")

	if err := handler.Callback(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var response AuthCallbackResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.IsNewUser {
		t.Error("Expected isNewUser to be false")
	}
	if response.Client.ID != 3 {
		t.Errorf("Expected client 3, got %d", response.Client.ID)
	}
}

func TestCallback_MissingEmail(t *testing.T) {
	e := echo.New()
	handler, _, _, _ := newAuthHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/callback", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, "auth0|noemail", "", "", "")

	if err := handler.Callback(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}

	var problem ProblemDetails
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if problem.Type != ErrorTypeValidation {
		t.Errorf("Expected type %s, got %s", ErrorTypeValidation, problem.Type)
	}
}

func TestCallback_NoAuth(t *testing.T) {
	e := echo.New()
	handler, _, _, _ := newAuthHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/callback", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Callback(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
}

func TestMe_Success(t *testing.T) {
	e := echo.New()
	handler, userRepo, clientRepo, _ := newAuthHandler()

	user := &domain.User{ID: uuid.New(), Auth0ID: "auth0|me", Email: "me@example.com"}
	userRepo.AddUser(user)
	clientRepo.AddClient(&domain.Client{ID: 5, UserID: user.ID, Nome: "Me"}, user.Auth0ID)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, "auth0|me", "me@example.com", "", "")

	if err := handler.Me(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var response AuthCallbackResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.User.ID != user.ID.String() {
		t.Errorf("Expected user id %s, got %s", user.ID, response.User.ID)
	}
	if response.Client.ID != 5 {
		t.Errorf("Expected client 5, got %d", response.Client.ID)
	}
}

func TestMe_UnknownUser(t *testing.T) {
	e := echo.New()
	handler, _, _, _ := newAuthHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, "auth0|ghost", "ghost@example.com", "", "")

	if err := handler.Me(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}
