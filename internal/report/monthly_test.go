package report

import (
	"testing"
	"time"

	"github.com/dafibh/fluxo/fluxo-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthLabel(t *testing.T) {
	want := []string{"jan", "fev", "mar", "abr", "mai", "jun", "jul", "ago", "set", "out", "nov", "dez"}
	for i, abbr := range want {
		month := time.Month(i + 1)
		assert.Equal(t, abbr+"/2024", MonthLabel(2024, month))
	}
	assert.Equal(t, "2024-03", MonthKey(2024, time.March))
}

func TestBucketByMonth_ChronologicalWithoutGaps(t *testing.T) {
	txs := []*domain.Transaction{
		tx(1, "2024-03-10", domain.OperationExpense, "Lazer", "30"),
		tx(2, "2023-12-01", domain.OperationIncome, "Salário", "100"),
		tx(3, "2024-01-15", domain.OperationIncome, "Salário", "200"),
		tx(4, "2024-03-01", domain.OperationIncome, "Vendas", "50"),
	}

	got := BucketByMonth(txs, nil)

	require.Len(t, got, 3)
	assert.Equal(t, "2023-12", got[0].MonthKey)
	assert.Equal(t, "dez/2023", got[0].MonthLabel)
	assert.Equal(t, "2024-01", got[1].MonthKey)
	// February has no transactions and is not emitted
	assert.Equal(t, "2024-03", got[2].MonthKey)

	for i, b := range got {
		assert.True(t, b.Balance.Equal(b.Income.Sub(b.Expense)), "balance mismatch in %s", b.MonthKey)
		if i > 0 {
			assert.Less(t, got[i-1].MonthKey, b.MonthKey)
		}
	}
	assert.True(t, got[2].Income.Equal(dec("50")))
	assert.True(t, got[2].Expense.Equal(dec("30")))
	assert.True(t, got[2].Balance.Equal(dec("20")))
}

func TestBucketByMonth_UnknownKindDefaultsToExpense(t *testing.T) {
	txs := []*domain.Transaction{
		tx(1, "2024-01-05", domain.Operation("Saida"), "Lazer", "10"),
		tx(2, "2024-01-06", domain.Operation("transferência"), "Lazer", "15"),
		tx(3, "2024-01-07", domain.Operation("ENTRADA"), "Salário", "100"),
	}
	diag := NewDiagnostics()

	got := BucketByMonth(txs, diag)

	require.Len(t, got, 1)
	assert.True(t, got[0].Expense.Equal(dec("25")))
	assert.True(t, got[0].Income.Equal(dec("100")))
	assert.Equal(t, 1, diag.Count(DiagnosticDefaultedKind))
}

func TestBucketByMonth_SkipsUnparseableDates(t *testing.T) {
	txs := []*domain.Transaction{
		tx(1, "2024-01-05", domain.OperationIncome, "", "10"),
		tx(2, "", domain.OperationIncome, "", "99"),
	}
	diag := NewDiagnostics()

	got := BucketByMonth(txs, diag)

	require.Len(t, got, 1)
	assert.True(t, got[0].Income.Equal(dec("10")))
	assert.Equal(t, 1, diag.Summary().UnparseableDates)
}

func TestBucketByMonth_Empty(t *testing.T) {
	assert.Empty(t, BucketByMonth(nil, nil))
}
