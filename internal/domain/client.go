package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Client (cliente) is the tenant every transaction, category, goal and
// reminder belongs to. ConsultorID links the client to the consultant
// allowed to operate on its data.
type Client struct {
	ID          int32      `json:"id"`
	UserID      uuid.UUID  `json:"userId"`
	Nome        string     `json:"nome"`
	Email       string     `json:"email"`
	Telefone    string     `json:"telefone"`
	CpfCnpj     string     `json:"cpfCnpj"`
	ConsultorID *uuid.UUID `json:"consultorId,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Validation constants
const (
	MaxClientNameLength = 255
	MaxPhoneLength      = 20
)

// ClientRepository defines the interface for client persistence operations
type ClientRepository interface {
	GetByID(ctx context.Context, id int32) (*Client, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Client, error)
	GetByUserAuth0ID(ctx context.Context, auth0ID string) (*Client, error)
	GetByEmail(ctx context.Context, email string) (*Client, error)
	GetByConsultant(ctx context.Context, consultantID uuid.UUID) ([]*Client, error)
	GetAll(ctx context.Context) ([]*Client, error)
	Create(ctx context.Context, client *Client) (*Client, error)
	Update(ctx context.Context, client *Client) (*Client, error)
	SetConsultant(ctx context.Context, clientID int32, consultantID *uuid.UUID) (*Client, error)
}
