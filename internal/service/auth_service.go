package service

import (
	"context"
	"errors"
	"strings"

	"github.com/dafibh/fluxo/fluxo-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// AuthService handles authentication-related business logic
type AuthService struct {
	userRepo        domain.UserRepository
	clientRepo      domain.ClientRepository
	categoryService *CategoryService
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo domain.UserRepository, clientRepo domain.ClientRepository, categoryService *CategoryService) *AuthService {
	return &AuthService{
		userRepo:        userRepo,
		clientRepo:      clientRepo,
		categoryService: categoryService,
	}
}

// AuthResult represents the result of an authentication operation
type AuthResult struct {
	User      *domain.User
	Client    *domain.Client
	IsNewUser bool
}

// AuthenticateUser handles the authentication flow after the Auth0 callback.
// Creates the user and its client if they don't exist and seeds the default categories.
func (s *AuthService) AuthenticateUser(ctx context.Context, auth0ID, email string, name, pictureURL *string) (*AuthResult, error) {
	user, err := s.userRepo.CreateOrGetByAuth0ID(ctx, auth0ID, email, name, pictureURL)
	if err != nil {
		log.Error().Err(err).Str("auth0_id", auth0ID).Msg("Failed to create or get user")
		return nil, err
	}

	client, err := s.clientRepo.GetByUserID(ctx, user.ID)
	if err == nil {
		log.Info().Str("user_id", user.ID.String()).Int32("client_id", client.ID).Msg("Existing user authenticated")
		return &AuthResult{User: user, Client: client}, nil
	}
	if !errors.Is(err, domain.ErrClientNotFound) {
		log.Error().Err(err).Str("user_id", user.ID.String()).Msg("Failed to get client")
		return nil, err
	}

	client, err = s.createOwnClient(ctx, user)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID.String()).Msg("Failed to create client")
		return nil, err
	}
	if err := s.categoryService.SeedDefaults(ctx, client.ID); err != nil {
		log.Error().Err(err).Int32("client_id", client.ID).Msg("Failed to seed default categories")
		return nil, err
	}

	log.Info().Str("user_id", user.ID.String()).Int32("client_id", client.ID).Msg("Created new user with client")
	return &AuthResult{User: user, Client: client, IsNewUser: true}, nil
}

// GetUserByID retrieves a user by their ID
func (s *AuthService) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// GetUserByAuth0ID retrieves a user by their Auth0 ID
func (s *AuthService) GetUserByAuth0ID(ctx context.Context, auth0ID string) (*domain.User, error) {
	return s.userRepo.GetByAuth0ID(ctx, auth0ID)
}

func (s *AuthService) createOwnClient(ctx context.Context, user *domain.User) (*domain.Client, error) {
	nome := user.Email
	if user.Name != nil && strings.TrimSpace(*user.Name) != "" {
		nome = strings.TrimSpace(*user.Name)
	}
	client, err := s.clientRepo.Create(ctx, &domain.Client{
		UserID: user.ID,
		Nome:   nome,
		Email:  user.Email,
	})
	if errors.Is(err, domain.ErrAlreadyExists) {
		// a concurrent callback created it first
		return s.clientRepo.GetByUserID(ctx, user.ID)
	}
	return client, err
}
