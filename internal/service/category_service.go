package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/dafibh/fluxo/fluxo-backend/internal/domain"
	"github.com/dafibh/fluxo/fluxo-backend/internal/report"
	"github.com/dafibh/fluxo/fluxo-backend/internal/websocket"
	"github.com/rs/zerolog/log"
)

// CategoryService handles category business logic
type CategoryService struct {
	eventPublishing
	categoryRepo domain.CategoryRepository
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categoryRepo domain.CategoryRepository) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo}
}

// CategoryInput is the payload for creating or updating a category
type CategoryInput struct {
	Nome string              `json:"nome"`
	Tipo domain.CategoryType `json:"tipo"`
}

func (in CategoryInput) validate() (string, error) {
	nome := strings.TrimSpace(in.Nome)
	if nome == "" {
		return "", domain.ErrNameRequired
	}
	if utf8.RuneCountInString(nome) > domain.MaxCategoryNameLength {
		return "", domain.ErrNameTooLong
	}
	if !in.Tipo.IsValid() {
		return "", domain.ErrInvalidCategoryType
	}
	return nome, nil
}

// SeedDefaults inserts the default categories a client is missing
func (s *CategoryService) SeedDefaults(ctx context.Context, clientID int32) error {
	return s.categoryRepo.CreateDefaults(ctx, clientID, domain.DefaultCategories)
}

// List returns a client's categories, defaults first
func (s *CategoryService) List(ctx context.Context, clientID int32) ([]*domain.Category, error) {
	return s.categoryRepo.GetAllByClient(ctx, clientID)
}

// Create creates a user-defined category. Categories created here are never defaults.
func (s *CategoryService) Create(ctx context.Context, clientID int32, input CategoryInput) (*domain.Category, error) {
	nome, err := input.validate()
	if err != nil {
		return nil, err
	}

	category, err := s.categoryRepo.Create(ctx, &domain.Category{
		ClientID: clientID,
		Nome:     nome,
		Tipo:     input.Tipo,
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(clientID, websocket.CategoryCreated(category))
	return category, nil
}

// Update changes a category's name and type. A new name goes through Rename
// so transactions and goals follow the category.
func (s *CategoryService) Update(ctx context.Context, clientID, id int32, input CategoryInput) (*domain.Category, error) {
	nome, err := input.validate()
	if err != nil {
		return nil, err
	}

	existing, err := s.categoryRepo.GetByID(ctx, clientID, id)
	if err != nil {
		return nil, err
	}
	if existing.Padrao {
		if nome == existing.Nome && input.Tipo == existing.Tipo {
			return existing, nil
		}
		return nil, domain.ErrDefaultCategoryImmutable
	}
	if input.Tipo != existing.Tipo {
		if err := s.checkOperationsInUse(ctx, clientID, existing.Nome, input.Tipo); err != nil {
			return nil, err
		}
	}

	var updated *domain.Category
	switch {
	case nome != existing.Nome:
		updated, err = s.categoryRepo.Rename(ctx, clientID, id, nome, input.Tipo)
		if err == nil {
			log.Info().
				Int32("client_id", clientID).
				Str("from", existing.Nome).
				Str("to", nome).
				Msg("Renamed category")
			s.publishEvent(clientID, websocket.CategoryDeleted(existing))
			s.publishEvent(clientID, websocket.CategoryCreated(updated))
		}
	case input.Tipo != existing.Tipo:
		updated, err = s.categoryRepo.UpdateType(ctx, clientID, id, input.Tipo)
		if err == nil {
			s.publishEvent(clientID, websocket.CategoryUpdated(updated))
		}
	default:
		return existing, nil
	}
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// checkOperationsInUse rejects a type that transactions already filed under
// the name would violate. Unrecognized operations count as expenses.
func (s *CategoryService) checkOperationsInUse(ctx context.Context, clientID int32, name string, tipo domain.CategoryType) error {
	if tipo == domain.CategoryTypeBoth {
		return nil
	}
	ops, err := s.categoryRepo.OperationsInUse(ctx, clientID, name)
	if err != nil {
		return err
	}
	for _, raw := range ops {
		op, ok := report.NormalizeKind(raw)
		if !ok {
			op = domain.OperationExpense
		}
		if !tipo.Accepts(op) {
			return domain.ErrCategoryInUse
		}
	}
	return nil
}

// Delete removes a user-defined category. Transactions keep its name.
func (s *CategoryService) Delete(ctx context.Context, clientID, id int32) error {
	existing, err := s.categoryRepo.GetByID(ctx, clientID, id)
	if err != nil {
		return err
	}
	if existing.Padrao {
		return domain.ErrDefaultCategoryImmutable
	}
	if err := s.categoryRepo.Delete(ctx, clientID, id); err != nil {
		return err
	}

	s.publishEvent(clientID, websocket.CategoryDeleted(existing))
	return nil
}
