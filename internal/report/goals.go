package report

import (
	"errors"

	"github.com/dafibh/fluxo/fluxo-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// Status is the severity tier of a goal's progress
type Status string

const (
	StatusLow      Status = "baixo"
	StatusMedium   Status = "médio"
	StatusHigh     Status = "alto"
	StatusExceeded Status = "excedido"
)

// ErrInvalidThresholds is returned when the cutoffs are not strictly ascending and positive
var ErrInvalidThresholds = errors.New("thresholds must satisfy 0 < baixo < medio < alto")

// Thresholds are the ascending progress cutoffs. A percentage equal to a
// cutoff stays in the lower tier.
type Thresholds struct {
	Baixo decimal.Decimal
	Medio decimal.Decimal
	Alto  decimal.Decimal
}

// DefaultThresholds returns the 0.7 / 0.9 / 1.0 cutoffs
func DefaultThresholds() Thresholds {
	return Thresholds{
		Baixo: decimal.RequireFromString("0.7"),
		Medio: decimal.RequireFromString("0.9"),
		Alto:  decimal.NewFromInt(1),
	}
}

// Validate checks the cutoffs are positive and strictly ascending
func (t Thresholds) Validate() error {
	if !t.Baixo.IsPositive() || !t.Baixo.LessThan(t.Medio) || !t.Medio.LessThan(t.Alto) {
		return ErrInvalidThresholds
	}
	return nil
}

// Classify returns the tier of a progress percentage
func (t Thresholds) Classify(p decimal.Decimal) Status {
	switch {
	case p.GreaterThan(t.Alto):
		return StatusExceeded
	case p.GreaterThan(t.Medio):
		return StatusHigh
	case p.GreaterThan(t.Baixo):
		return StatusMedium
	default:
		return StatusLow
	}
}

// GoalProgress is a goal compared against the spending of its category
type GoalProgress struct {
	Goal        *domain.Goal    `json:"meta"`
	ValorAtual  decimal.Decimal `json:"valorAtual"`
	Porcentagem decimal.Decimal `json:"porcentagem"`
	Status      Status          `json:"status"`
}

// CompareGoals computes, for every goal, the expense total of the
// transactions whose category matches the goal's exactly and the share of
// the target it represents. A zero target means no limit: the percentage is
// zero and the tier baixo. Each goal is evaluated on its own, in input order.
func CompareGoals(goals []*domain.Goal, txs []*domain.Transaction, th Thresholds, diag *Diagnostics) []GoalProgress {
	spent := make(map[string]decimal.Decimal)
	for _, tx := range txs {
		if operationOf(tx, diag) != domain.OperationExpense {
			continue
		}
		spent[tx.Categoria] = spent[tx.Categoria].Add(tx.Valor)
	}

	out := make([]GoalProgress, 0, len(goals))
	for _, g := range goals {
		atual := spent[g.Categoria]

		pct := decimal.Zero
		if !g.ValorMeta.IsZero() {
			pct = atual.Div(g.ValorMeta)
		}

		out = append(out, GoalProgress{
			Goal:        g,
			ValorAtual:  atual,
			Porcentagem: pct,
			Status:      th.Classify(pct),
		})
	}
	return out
}
