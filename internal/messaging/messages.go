package messaging

import (
	"encoding/json"
	"time"

	"github.com/dafibh/fluxo/fluxo-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// ReminderDueMessage tells the notification consumer that a reminder is about
// to fall due. It carries the contact fields so the consumer needs no database.
type ReminderDueMessage struct {
	ReminderID int32            `json:"reminderId"`
	ClientID   int32            `json:"clienteId"`
	Descricao  string           `json:"descricao"`
	Valor      *decimal.Decimal `json:"valor,omitempty"`
	Vencimento string           `json:"vencimento"`
	Telefone   string           `json:"telefone"`
	Nome       string           `json:"nome"`
	Timestamp  time.Time        `json:"timestamp"`
}

// NewReminderDueMessage builds the message for a reminder
func NewReminderDueMessage(r *domain.Reminder) *ReminderDueMessage {
	return &ReminderDueMessage{
		ReminderID: r.ID,
		ClientID:   r.ClientID,
		Descricao:  r.Descricao,
		Valor:      r.Valor,
		Vencimento: r.Vencimento,
		Telefone:   r.Telefone,
		Nome:       r.Nome,
		Timestamp:  time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ReminderDueMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ReminderDueMessageFromJSON creates a message from JSON bytes
func ReminderDueMessageFromJSON(data []byte) (*ReminderDueMessage, error) {
	var msg ReminderDueMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
