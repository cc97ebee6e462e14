package report

import (
	"github.com/dafibh/fluxo/fluxo-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// Summary is the dashboard view of a client's transactions over a range
type Summary struct {
	Months            []MonthBucket      `json:"months"`
	IncomeByCategory  []CategoryBucket   `json:"incomeByCategory"`
	ExpenseByCategory []CategoryBucket   `json:"expenseByCategory"`
	TotalIncome       decimal.Decimal    `json:"totalIncome"`
	TotalExpense      decimal.Decimal    `json:"totalExpense"`
	Balance           decimal.Decimal    `json:"balance"`
	Diagnostics       DiagnosticsSummary `json:"diagnostics"`
}

// Summarize runs the filter and both bucketers over the transactions.
// Rows with unparseable dates are dropped before bucketing so that the
// totals and the category sums cover the same rows.
func Summarize(txs []*domain.Transaction, r *DateRange, diag *Diagnostics) Summary {
	filtered := DropUnparseableDates(FilterByDateRange(txs, r, diag), diag)

	months := BucketByMonth(filtered, diag)
	income, expense := decimal.Zero, decimal.Zero
	for _, m := range months {
		income = income.Add(m.Income)
		expense = expense.Add(m.Expense)
	}

	return Summary{
		Months:            months,
		IncomeByCategory:  BucketByCategory(filtered, domain.OperationIncome, diag),
		ExpenseByCategory: BucketByCategory(filtered, domain.OperationExpense, diag),
		TotalIncome:       income,
		TotalExpense:      expense,
		Balance:           income.Sub(expense),
		Diagnostics:       diag.Summary(),
	}
}

// GoalReport is the goal-progress view of one reference month
type GoalReport struct {
	Year        int                `json:"ano"`
	Month       int                `json:"mes"`
	Goals       []GoalProgress     `json:"metas"`
	Diagnostics DiagnosticsSummary `json:"diagnostics"`
}

// BuildGoalReport filters the transactions and compares them against the goals of the month
func BuildGoalReport(year, month int, goals []*domain.Goal, txs []*domain.Transaction, r *DateRange, th Thresholds, diag *Diagnostics) GoalReport {
	filtered := DropUnparseableDates(FilterByDateRange(txs, r, diag), diag)
	return GoalReport{
		Year:        year,
		Month:       month,
		Goals:       CompareGoals(goals, filtered, th, diag),
		Diagnostics: diag.Summary(),
	}
}
