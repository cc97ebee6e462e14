package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Operation is the income/expense kind of a transaction as persisted
type Operation string

const (
	OperationIncome  Operation = "entrada"
	OperationExpense Operation = "saída"
)

// IsValid reports whether the operation is one of the canonical kinds
func (o Operation) IsValid() bool {
	return o == OperationIncome || o == OperationExpense
}

// Transaction is a single financial event. Valor is always a non-negative
// magnitude; the sign comes from Operacao. Data is kept as the stored
// calendar string so imported or legacy rows with malformed dates still load.
type Transaction struct {
	ID              int32           `json:"id"`
	ClientID        int32           `json:"clienteId"`
	Data            string          `json:"data"`
	Operacao        Operation       `json:"operacao"`
	Descricao       string          `json:"descricao"`
	Categoria       string          `json:"categoria"`
	Valor           decimal.Decimal `json:"valor"`
	ComprovantePath *string         `json:"comprovantePath,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// TransactionFilters narrows a transaction listing
type TransactionFilters struct {
	StartDate *time.Time
	EndDate   *time.Time
	Operacao  *Operation
	Categoria *string
}

// TransactionPatch holds the fields a batch edit overwrites; nil fields are left untouched
type TransactionPatch struct {
	Data      *string
	Operacao  *Operation
	Descricao *string
	Categoria *string
	Valor     *decimal.Decimal
}

// IsEmpty reports whether the patch changes nothing
func (p TransactionPatch) IsEmpty() bool {
	return p.Data == nil && p.Operacao == nil && p.Descricao == nil && p.Categoria == nil && p.Valor == nil
}

// Validation constants
const (
	MaxDescriptionLength = 255
	MaxBatchSize         = 500
)

// Transaction errors
var (
	ErrTransactionNotFound  = errors.New("transaction not found")
	ErrInvalidOperation     = errors.New("operation must be entrada or saída")
	ErrInvalidAmount        = errors.New("amount must be greater than zero")
	ErrInvalidDate          = errors.New("date must be in yyyy-MM-dd format")
	ErrDescriptionRequired  = errors.New("description is required")
	ErrDescriptionTooLong   = errors.New("description exceeds maximum length")
	ErrCategoryTypeMismatch = errors.New("category does not accept this operation")
	ErrEmptyBatch           = errors.New("batch edit needs at least one transaction and one field")
	ErrBatchTooLarge        = errors.New("batch edit exceeds maximum size")
)

// TransactionRepository defines the interface for transaction persistence operations
type TransactionRepository interface {
	Create(ctx context.Context, tx *Transaction) (*Transaction, error)
	CreateMany(ctx context.Context, txs []*Transaction) ([]*Transaction, error)
	GetByID(ctx context.Context, clientID, id int32) (*Transaction, error)
	GetByClient(ctx context.Context, clientID int32, filters *TransactionFilters) ([]*Transaction, error)
	Update(ctx context.Context, tx *Transaction) (*Transaction, error)
	BatchUpdate(ctx context.Context, clientID int32, ids []int32, patch TransactionPatch) ([]*Transaction, error)
	SetReceipt(ctx context.Context, clientID, id int32, path *string) (*Transaction, error)
	Delete(ctx context.Context, clientID, id int32) error
}
