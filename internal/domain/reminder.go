package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ReminderType distinguishes recurring from one-off reminders
type ReminderType string

const (
	ReminderTypeFixed  ReminderType = "fixo"
	ReminderTypeOneOff ReminderType = "eventual"
)

// IsValid reports whether the reminder type is known
func (t ReminderType) IsValid() bool {
	return t == ReminderTypeFixed || t == ReminderTypeOneOff
}

// Reminder (lembrete) is a due-date obligation. Telefone and Nome are a
// denormalized copy of the client's contact used by the notification consumer.
type Reminder struct {
	ID           int32            `json:"id"`
	ClientID     int32            `json:"clienteId"`
	Descricao    string           `json:"descricao"`
	Valor        *decimal.Decimal `json:"valor,omitempty"`
	Tipo         ReminderType     `json:"tipo"`
	Vencimento   string           `json:"vencimento"`
	Telefone     string           `json:"telefone"`
	Nome         string           `json:"nome"`
	NotificadoEm *time.Time       `json:"notificadoEm,omitempty"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

// Reminder errors
var (
	ErrReminderNotFound     = errors.New("reminder not found")
	ErrInvalidReminderType  = errors.New("reminder type must be fixo or eventual")
	ErrInvalidReminderValue = errors.New("reminder amount must not be negative")
)

// ReminderRepository defines the interface for reminder persistence operations
type ReminderRepository interface {
	Create(ctx context.Context, reminder *Reminder) (*Reminder, error)
	GetByID(ctx context.Context, clientID, id int32) (*Reminder, error)
	GetByClient(ctx context.Context, clientID int32) ([]*Reminder, error)
	// GetPendingUntil returns reminders of every client due on or before the
	// given date that were not yet notified for their current due date.
	GetPendingUntil(ctx context.Context, until time.Time) ([]*Reminder, error)
	// GetOverdueFixed returns fixo reminders whose due date is before the given date.
	GetOverdueFixed(ctx context.Context, before time.Time) ([]*Reminder, error)
	Update(ctx context.Context, reminder *Reminder) (*Reminder, error)
	MarkNotified(ctx context.Context, id int32, at time.Time) error
	Reschedule(ctx context.Context, id int32, vencimento time.Time) error
	Delete(ctx context.Context, clientID, id int32) error
}
