package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/dafibh/fluxo/fluxo-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ClientService handles client profiles and the consultant relationship
type ClientService struct {
	clientRepo domain.ClientRepository
	userRepo   domain.UserRepository
}

// NewClientService creates a new ClientService
func NewClientService(clientRepo domain.ClientRepository, userRepo domain.UserRepository) *ClientService {
	return &ClientService{
		clientRepo: clientRepo,
		userRepo:   userRepo,
	}
}

// UpdateProfileInput contains the editable client fields
type UpdateProfileInput struct {
	Nome     string `json:"nome"`
	Telefone string `json:"telefone"`
	CpfCnpj  string `json:"cpfCnpj"`
}

// GetOwnClient returns the client owned by the authenticated user
func (s *ClientService) GetOwnClient(ctx context.Context, auth0ID string) (*domain.Client, error) {
	return s.clientRepo.GetByUserAuth0ID(ctx, auth0ID)
}

// GetByID returns a client by id
func (s *ClientService) GetByID(ctx context.Context, clientID int32) (*domain.Client, error) {
	return s.clientRepo.GetByID(ctx, clientID)
}

// UpdateProfile updates the authenticated user's own client
func (s *ClientService) UpdateProfile(ctx context.Context, auth0ID string, input UpdateProfileInput) (*domain.Client, error) {
	client, err := s.clientRepo.GetByUserAuth0ID(ctx, auth0ID)
	if err != nil {
		return nil, err
	}

	nome := strings.TrimSpace(input.Nome)
	if nome == "" {
		return nil, domain.ErrNameRequired
	}
	if utf8.RuneCountInString(nome) > domain.MaxClientNameLength {
		return nil, domain.ErrNameTooLong
	}
	telefone := strings.TrimSpace(input.Telefone)
	if telefone != "" && !validPhone(telefone) {
		return nil, ErrInvalidPhone
	}
	cpfCnpj := strings.TrimSpace(input.CpfCnpj)
	if cpfCnpj != "" && !validCpfCnpj(cpfCnpj) {
		return nil, ErrInvalidCpfCnpj
	}

	client.Nome = nome
	client.Telefone = telefone
	client.CpfCnpj = cpfCnpj
	return s.clientRepo.Update(ctx, client)
}

// ListConsultantClients lists the clients a consultant operates on
func (s *ClientService) ListConsultantClients(ctx context.Context, auth0ID string) ([]*domain.Client, error) {
	user, err := s.userRepo.GetByAuth0ID(ctx, auth0ID)
	if err != nil {
		return nil, err
	}
	return s.clientRepo.GetByConsultant(ctx, user.ID)
}

// LinkConsultant lets the owner of a client grant the user registered
// under consultantEmail access to the client's data
func (s *ClientService) LinkConsultant(ctx context.Context, auth0ID, consultantEmail string) (*domain.Client, error) {
	consultantEmail = strings.TrimSpace(consultantEmail)
	if !validEmail(consultantEmail) {
		return nil, ErrInvalidEmail
	}
	client, err := s.clientRepo.GetByUserAuth0ID(ctx, auth0ID)
	if err != nil {
		return nil, err
	}
	consultant, err := s.userRepo.GetByEmail(ctx, consultantEmail)
	if err != nil {
		return nil, err
	}
	if consultant.ID == client.UserID {
		return nil, domain.ErrInvalidInput
	}

	linked, err := s.clientRepo.SetConsultant(ctx, client.ID, &consultant.ID)
	if err != nil {
		return nil, err
	}
	log.Info().Int32("client_id", client.ID).Str("consultant_id", consultant.ID.String()).Msg("Linked consultant")
	return linked, nil
}

// UnlinkConsultant removes the consultant of the authenticated user's client
func (s *ClientService) UnlinkConsultant(ctx context.Context, auth0ID string) (*domain.Client, error) {
	client, err := s.clientRepo.GetByUserAuth0ID(ctx, auth0ID)
	if err != nil {
		return nil, err
	}
	return s.clientRepo.SetConsultant(ctx, client.ID, nil)
}

// ResolveClientScope returns the client id a request operates on. With no
// requested id, or the user's own id, it is the user's own client; any other
// client must name the user as its consultant.
func (s *ClientService) ResolveClientScope(ctx context.Context, auth0ID string, requested *int32) (int32, error) {
	own, err := s.clientRepo.GetByUserAuth0ID(ctx, auth0ID)
	if err != nil && !errors.Is(err, domain.ErrClientNotFound) {
		return 0, err
	}
	if requested == nil {
		if own == nil {
			return 0, domain.ErrClientNotFound
		}
		return own.ID, nil
	}
	if own != nil && own.ID == *requested {
		return own.ID, nil
	}

	user, err := s.userRepo.GetByAuth0ID(ctx, auth0ID)
	if err != nil {
		return 0, err
	}
	target, err := s.clientRepo.GetByID(ctx, *requested)
	if errors.Is(err, domain.ErrClientNotFound) {
		return 0, domain.ErrNotConsultant
	}
	if err != nil {
		return 0, err
	}
	if !isConsultant(target, user.ID) {
		return 0, domain.ErrNotConsultant
	}
	return target.ID, nil
}

func isConsultant(c *domain.Client, userID uuid.UUID) bool {
	return c.ConsultorID != nil && *c.ConsultorID == userID
}
