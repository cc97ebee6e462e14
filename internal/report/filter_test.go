package report

import (
	"errors"
	"testing"
	"time"

	"github.com/dafibh/fluxo/fluxo-backend/internal/domain"
	"github.com/dafibh/fluxo/fluxo-backend/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDate(t *testing.T, s string) *time.Time {
	t.Helper()
	d, err := util.ParseDate(s)
	require.NoError(t, err)
	return &d
}

func ids(txs []*domain.Transaction) []int32 {
	out := make([]int32, 0, len(txs))
	for _, tx := range txs {
		out = append(out, tx.ID)
	}
	return out
}

func rangeFixture() []*domain.Transaction {
	return []*domain.Transaction{
		tx(1, "2024-01-01", domain.OperationIncome, "Salário", "10"),
		tx(2, "2024-01-15", domain.OperationExpense, "Lazer", "20"),
		tx(3, "2024-01-31", domain.OperationExpense, "Lazer", "30"),
		tx(4, "2024-02-01", domain.OperationExpense, "Lazer", "40"),
		tx(5, "2023-12-31", domain.OperationExpense, "Lazer", "50"),
	}
}

func TestFilterByDateRange_NoRangeReturnsInput(t *testing.T) {
	txs := rangeFixture()

	assert.Equal(t, txs, FilterByDateRange(txs, nil, nil))
	assert.Equal(t, txs, FilterByDateRange(txs, &DateRange{}, nil))
	// A range without a lower bound does not filter either
	assert.Equal(t, txs, FilterByDateRange(txs, &DateRange{To: mustDate(t, "2024-01-01")}, nil))
}

func TestFilterByDateRange_InclusiveBounds(t *testing.T) {
	r := &DateRange{From: mustDate(t, "2024-01-01"), To: mustDate(t, "2024-01-31")}

	got := FilterByDateRange(rangeFixture(), r, nil)

	assert.Equal(t, []int32{1, 2, 3}, ids(got))
}

func TestFilterByDateRange_OpenUpperBound(t *testing.T) {
	r := &DateRange{From: mustDate(t, "2024-01-15")}

	got := FilterByDateRange(rangeFixture(), r, nil)

	assert.Equal(t, []int32{2, 3, 4}, ids(got))
}

func TestFilterByDateRange_UTCBoundsKeepCalendarDay(t *testing.T) {
	from := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	got := FilterByDateRange(rangeFixture(), &DateRange{From: &from, To: &to}, nil)

	assert.Equal(t, []int32{3}, ids(got))
}

func TestFilterByDateRange_Idempotent(t *testing.T) {
	ranges := []*DateRange{
		nil,
		{From: mustDate(t, "2024-01-01"), To: mustDate(t, "2024-01-31")},
		{From: mustDate(t, "2024-01-20")},
		{From: mustDate(t, "2025-01-01")},
	}

	for _, r := range ranges {
		once := FilterByDateRange(rangeFixture(), r, nil)
		twice := FilterByDateRange(once, r, nil)
		assert.Equal(t, ids(once), ids(twice))
	}
}

func TestFilterByDateRange_UnparseableDateExcludedAndRecorded(t *testing.T) {
	txs := append(rangeFixture(), tx(6, "31/01/2024", domain.OperationExpense, "Lazer", "60"))
	diag := NewDiagnostics()

	got := FilterByDateRange(txs, &DateRange{From: mustDate(t, "2024-01-01")}, diag)

	assert.NotContains(t, ids(got), int32(6))
	assert.Equal(t, 1, diag.Count(DiagnosticUnparseableDate))
	events := diag.Events()
	require.Len(t, events, 1)
	assert.Equal(t, int32(6), events[0].TransactionID)
	assert.Equal(t, "31/01/2024", events[0].Value)
}

func TestParseDateRange(t *testing.T) {
	r, err := ParseDateRange("", "")
	require.NoError(t, err)
	assert.Nil(t, r)

	r, err = ParseDateRange("2024-01-01", "2024-01-31")
	require.NoError(t, err)
	require.NotNil(t, r.From)
	require.NotNil(t, r.To)
	assert.Equal(t, "2024-01-01", r.From.Format(util.DateLayout))
	assert.Equal(t, "2024-01-31", r.To.Format(util.DateLayout))

	r, err = ParseDateRange("2024-01-01", "")
	require.NoError(t, err)
	assert.Nil(t, r.To)

	_, err = ParseDateRange("01/01/2024", "")
	assert.True(t, errors.Is(err, domain.ErrInvalidDate))

	_, err = ParseDateRange("2024-02-01", "2024-01-01")
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestMonthDateRange(t *testing.T) {
	r := MonthDateRange(2024, time.February)

	assert.Equal(t, "2024-02-01", r.From.Format(util.DateLayout))
	assert.Equal(t, "2024-02-29", r.To.Format(util.DateLayout))
}

func TestDropUnparseableDates(t *testing.T) {
	txs := append(rangeFixture(), tx(6, "31/01/2024", domain.OperationExpense, "Lazer", "60"))
	diag := NewDiagnostics()

	got := DropUnparseableDates(txs, diag)

	assert.Equal(t, []int32{1, 2, 3, 4, 5}, ids(got))
	assert.Equal(t, 1, diag.Summary().UnparseableDates)
}
