package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/dafibh/fluxo/fluxo-backend/internal/domain"
	"github.com/dafibh/fluxo/fluxo-backend/internal/util"
	"github.com/shopspring/decimal"
)

// MonthBucket holds the income and expense totals of one calendar month
type MonthBucket struct {
	MonthKey   string          `json:"monthKey"`
	MonthLabel string          `json:"monthLabel"`
	Income     decimal.Decimal `json:"income"`
	Expense    decimal.Decimal `json:"expense"`
	Balance    decimal.Decimal `json:"balance"`
}

var monthAbbreviations = [12]string{"jan", "fev", "mar", "abr", "mai", "jun", "jul", "ago", "set", "out", "nov", "dez"}

// MonthKey returns the sortable yyyy-MM key of a month
func MonthKey(year int, month time.Month) string {
	return fmt.Sprintf("%04d-%02d", year, int(month))
}

// MonthLabel returns the pt-BR display label of a month, e.g. "jan/2024"
func MonthLabel(year int, month time.Month) string {
	return fmt.Sprintf("%s/%d", monthAbbreviations[month-1], year)
}

// BucketByMonth sums transactions per calendar month, oldest month first.
// Months without transactions are not emitted.
func BucketByMonth(txs []*domain.Transaction, diag *Diagnostics) []MonthBucket {
	buckets := make(map[string]*MonthBucket)

	for _, tx := range txs {
		d, err := util.ParseDate(tx.Data)
		if err != nil {
			diag.Record(DiagnosticUnparseableDate, tx.ID, tx.Data)
			continue
		}

		key := MonthKey(d.Year(), d.Month())
		b, ok := buckets[key]
		if !ok {
			b = &MonthBucket{
				MonthKey:   key,
				MonthLabel: MonthLabel(d.Year(), d.Month()),
				Income:     decimal.Zero,
				Expense:    decimal.Zero,
			}
			buckets[key] = b
		}

		if operationOf(tx, diag) == domain.OperationIncome {
			b.Income = b.Income.Add(tx.Valor)
		} else {
			b.Expense = b.Expense.Add(tx.Valor)
		}
	}

	out := make([]MonthBucket, 0, len(buckets))
	for _, b := range buckets {
		b.Balance = b.Income.Sub(b.Expense)
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].MonthKey < out[j].MonthKey
	})
	return out
}
