package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dafibh/fluxo/fluxo-backend/internal/domain"
	"github.com/dafibh/fluxo/fluxo-backend/internal/util"
	"github.com/dafibh/fluxo/fluxo-backend/internal/websocket"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// ReminderService handles due-date reminders (lembretes).
// Concurrent identical creates or deletes collapse into one execution.
type ReminderService struct {
	eventPublishing
	reminderRepo domain.ReminderRepository
	clientRepo   domain.ClientRepository
	inflight     singleflight.Group
}

// NewReminderService creates a new ReminderService
func NewReminderService(reminderRepo domain.ReminderRepository, clientRepo domain.ClientRepository) *ReminderService {
	return &ReminderService{
		reminderRepo: reminderRepo,
		clientRepo:   clientRepo,
	}
}

// ReminderInput is the payload for creating or updating a reminder.
// Empty Telefone and Nome are filled from the client.
type ReminderInput struct {
	Descricao  string              `json:"descricao"`
	Valor      *decimal.Decimal    `json:"valor,omitempty"`
	Tipo       domain.ReminderType `json:"tipo"`
	Vencimento string              `json:"vencimento"`
	Telefone   string              `json:"telefone"`
	Nome       string              `json:"nome"`
}

func (s *ReminderService) buildReminder(ctx context.Context, clientID int32, input ReminderInput) (*domain.Reminder, error) {
	descricao := strings.TrimSpace(input.Descricao)
	if descricao == "" {
		return nil, domain.ErrDescriptionRequired
	}
	if utf8.RuneCountInString(descricao) > domain.MaxDescriptionLength {
		return nil, domain.ErrDescriptionTooLong
	}
	if !input.Tipo.IsValid() {
		return nil, domain.ErrInvalidReminderType
	}
	vencimento := strings.TrimSpace(input.Vencimento)
	if _, err := util.ParseDate(vencimento); err != nil {
		return nil, domain.ErrInvalidDate
	}
	if input.Valor != nil && input.Valor.IsNegative() {
		return nil, domain.ErrInvalidReminderValue
	}
	telefone := strings.TrimSpace(input.Telefone)
	if telefone != "" && !validPhone(telefone) {
		return nil, ErrInvalidPhone
	}

	nome := strings.TrimSpace(input.Nome)
	if telefone == "" || nome == "" {
		client, err := s.clientRepo.GetByID(ctx, clientID)
		if err != nil {
			return nil, err
		}
		if telefone == "" {
			telefone = client.Telefone
		}
		if nome == "" {
			nome = client.Nome
		}
	}

	return &domain.Reminder{
		ClientID:   clientID,
		Descricao:  descricao,
		Valor:      input.Valor,
		Tipo:       input.Tipo,
		Vencimento: vencimento,
		Telefone:   telefone,
		Nome:       nome,
	}, nil
}

// Create creates a reminder
func (s *ReminderService) Create(ctx context.Context, clientID int32, input ReminderInput) (*domain.Reminder, error) {
	reminder, err := s.buildReminder(ctx, clientID, input)
	if err != nil {
		return nil, err
	}

	// Callers collapsed onto this call must not inherit the first caller's cancellation.
	sharedCtx := context.WithoutCancel(ctx)
	key := fmt.Sprintf("create:%d:%s|%s", clientID, reminder.Descricao, reminder.Vencimento)
	v, err, _ := s.inflight.Do(key, func() (interface{}, error) {
		created, err := s.reminderRepo.Create(sharedCtx, reminder)
		if err != nil {
			return nil, err
		}
		s.publishEvent(clientID, websocket.ReminderCreated(created))
		return created, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Reminder), nil
}

// List returns a client's reminders by due date
func (s *ReminderService) List(ctx context.Context, clientID int32) ([]*domain.Reminder, error) {
	return s.reminderRepo.GetByClient(ctx, clientID)
}

// Update replaces a reminder's fields. Moving the due date re-arms its notification.
func (s *ReminderService) Update(ctx context.Context, clientID, id int32, input ReminderInput) (*domain.Reminder, error) {
	if _, err := s.reminderRepo.GetByID(ctx, clientID, id); err != nil {
		return nil, err
	}
	reminder, err := s.buildReminder(ctx, clientID, input)
	if err != nil {
		return nil, err
	}
	reminder.ID = id

	updated, err := s.reminderRepo.Update(ctx, reminder)
	if err != nil {
		return nil, err
	}

	s.publishEvent(clientID, websocket.ReminderUpdated(updated))
	return updated, nil
}

// Delete removes a reminder
func (s *ReminderService) Delete(ctx context.Context, clientID, id int32) error {
	sharedCtx := context.WithoutCancel(ctx)
	key := fmt.Sprintf("delete:%d:%d", clientID, id)
	_, err, _ := s.inflight.Do(key, func() (interface{}, error) {
		existing, err := s.reminderRepo.GetByID(sharedCtx, clientID, id)
		if err != nil {
			return nil, err
		}
		if err := s.reminderRepo.Delete(sharedCtx, clientID, id); err != nil {
			return nil, err
		}
		s.publishEvent(clientID, websocket.ReminderDeleted(existing))
		return nil, nil
	})
	return err
}
