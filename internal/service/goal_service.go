package service

import (
	"context"
	"strings"

	"github.com/dafibh/fluxo/fluxo-backend/internal/domain"
	"github.com/dafibh/fluxo/fluxo-backend/internal/websocket"
	"github.com/shopspring/decimal"
)

// GoalService handles monthly category goals (metas)
type GoalService struct {
	eventPublishing
	goalRepo domain.GoalRepository
}

// NewGoalService creates a new GoalService
func NewGoalService(goalRepo domain.GoalRepository) *GoalService {
	return &GoalService{goalRepo: goalRepo}
}

// GoalInput is the payload for creating or updating a goal
type GoalInput struct {
	Categoria string            `json:"categoria"`
	ValorMeta decimal.Decimal   `json:"valorMeta"`
	Mes       int               `json:"mes"`
	Ano       int               `json:"ano"`
	Periodo   domain.GoalPeriod `json:"periodo"`
}

func buildGoal(input GoalInput) (*domain.Goal, error) {
	categoria := strings.TrimSpace(input.Categoria)
	if categoria == "" {
		return nil, domain.ErrNameRequired
	}
	if input.ValorMeta.IsNegative() {
		return nil, domain.ErrInvalidGoalAmount
	}
	if err := validateMonthYear(input.Mes, input.Ano); err != nil {
		return nil, err
	}
	periodo := input.Periodo
	if periodo == "" {
		periodo = domain.GoalPeriodMonthly
	}
	if periodo != domain.GoalPeriodMonthly {
		return nil, domain.ErrInvalidPeriod
	}

	return &domain.Goal{
		Categoria: categoria,
		ValorMeta: input.ValorMeta,
		Mes:       input.Mes,
		Ano:       input.Ano,
		Periodo:   periodo,
	}, nil
}

func validateMonthYear(month, year int) error {
	if month < 1 || month > 12 {
		return domain.ErrInvalidMonth
	}
	if year < domain.MinGoalYear || year > domain.MaxGoalYear {
		return domain.ErrInvalidYear
	}
	return nil
}

// Create creates a goal. A second goal for the same category and month is a conflict.
func (s *GoalService) Create(ctx context.Context, clientID int32, input GoalInput) (*domain.Goal, error) {
	goal, err := buildGoal(input)
	if err != nil {
		return nil, err
	}
	goal.ClientID = clientID

	created, err := s.goalRepo.Create(ctx, goal)
	if err != nil {
		return nil, err
	}

	s.publishEvent(clientID, websocket.GoalCreated(created))
	return created, nil
}

// ListByMonth returns the client's goals for one month
func (s *GoalService) ListByMonth(ctx context.Context, clientID int32, year, month int) ([]*domain.Goal, error) {
	if err := validateMonthYear(month, year); err != nil {
		return nil, err
	}
	return s.goalRepo.GetByMonth(ctx, clientID, year, month)
}

// Update replaces a goal's fields
func (s *GoalService) Update(ctx context.Context, clientID, id int32, input GoalInput) (*domain.Goal, error) {
	goal, err := buildGoal(input)
	if err != nil {
		return nil, err
	}
	if _, err := s.goalRepo.GetByID(ctx, clientID, id); err != nil {
		return nil, err
	}
	goal.ID = id
	goal.ClientID = clientID

	updated, err := s.goalRepo.Update(ctx, goal)
	if err != nil {
		return nil, err
	}

	s.publishEvent(clientID, websocket.GoalUpdated(updated))
	return updated, nil
}

// Delete removes a goal
func (s *GoalService) Delete(ctx context.Context, clientID, id int32) error {
	existing, err := s.goalRepo.GetByID(ctx, clientID, id)
	if err != nil {
		return err
	}
	if err := s.goalRepo.Delete(ctx, clientID, id); err != nil {
		return err
	}

	s.publishEvent(clientID, websocket.GoalDeleted(existing))
	return nil
}
