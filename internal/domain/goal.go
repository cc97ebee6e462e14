package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// GoalPeriod is the span a goal covers
type GoalPeriod string

const (
	GoalPeriodMonthly GoalPeriod = "mensal"
)

// Goal (meta) is a spending ceiling for one category within one month.
// At most one goal exists per (category, month, year) for a client.
type Goal struct {
	ID        int32           `json:"id"`
	ClientID  int32           `json:"clienteId"`
	Categoria string          `json:"categoria"`
	ValorMeta decimal.Decimal `json:"valorMeta"`
	Mes       int             `json:"mes"`
	Ano       int             `json:"ano"`
	Periodo   GoalPeriod      `json:"periodo"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Validation constants
const (
	MinGoalYear = 2000
	MaxGoalYear = 2100
)

// Goal errors
var (
	ErrGoalNotFound      = errors.New("goal not found")
	ErrGoalAlreadyExists = errors.New("a goal for this category and month already exists")
	ErrInvalidGoalAmount = errors.New("goal amount must not be negative")
	ErrInvalidMonth      = errors.New("month must be between 1 and 12")
	ErrInvalidYear       = errors.New("year is out of range")
	ErrInvalidPeriod     = errors.New("only the mensal period is supported")
)

// GoalRepository defines the interface for goal persistence operations
type GoalRepository interface {
	Create(ctx context.Context, goal *Goal) (*Goal, error)
	GetByID(ctx context.Context, clientID, id int32) (*Goal, error)
	GetByMonth(ctx context.Context, clientID int32, year, month int) ([]*Goal, error)
	Update(ctx context.Context, goal *Goal) (*Goal, error)
	Delete(ctx context.Context, clientID, id int32) error
}
