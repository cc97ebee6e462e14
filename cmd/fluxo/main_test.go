package main

import (
	"bytes"
	"testing"

	"github.com/dafibh/fluxo/fluxo-backend/internal/report"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scopedCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	addScopeFlags(cmd)
	require.NoError(t, cmd.Flags().Parse(args))
	return cmd
}

func TestScopeFlags(t *testing.T) {
	clientID, r, err := scopeFlags(scopedCommand(t, "--client", "7", "--from", "2024-01-01", "--to", "2024-03-31"))
	require.NoError(t, err)
	assert.Equal(t, int32(7), clientID)
	require.NotNil(t, r)
	assert.Equal(t, "2024-01-01", r.From.Format("2006-01-02"))
}

func TestScopeFlags_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing client", []string{"--from", "2024-01-01"}},
		{"negative client", []string{"--client", "-1"}},
		{"reversed range", []string{"--client", "1", "--from", "2024-05-01", "--to", "2024-04-01"}},
		{"bad date", []string{"--client", "1", "--from", "01/05/2024"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := scopeFlags(scopedCommand(t, tt.args...))
			assert.Error(t, err)
		})
	}
}

func TestWriteSummary(t *testing.T) {
	s := &report.Summary{
		Months: []report.MonthBucket{
			{MonthKey: "2024-01", MonthLabel: "jan/2024", Income: decimal.NewFromInt(5000), Expense: decimal.NewFromInt(1500), Balance: decimal.NewFromInt(3500)},
		},
		ExpenseByCategory: []report.CategoryBucket{{Name: "Moradia", Value: decimal.NewFromInt(1500)}},
		TotalIncome:       decimal.NewFromInt(5000),
		TotalExpense:      decimal.NewFromInt(1500),
		Balance:           decimal.NewFromInt(3500),
		Diagnostics:       report.DiagnosticsSummary{UnparseableDates: 2},
	}

	var buf bytes.Buffer
	require.NoError(t, writeSummary(&buf, s))

	out := buf.String()
	assert.Contains(t, out, "jan/2024")
	assert.Contains(t, out, "5000.00")
	assert.Contains(t, out, "Moradia")
	assert.Contains(t, out, "Datas inválidas")
	assert.NotContains(t, out, "Entradas por categoria")
}

func TestRootCommandTree(t *testing.T) {
	for _, path := range [][]string{
		{"migrate", "up"},
		{"migrate", "down"},
		{"report", "summary"},
		{"export", "csv"},
		{"reminders", "watch"},
		{"reminders", "scan"},
	} {
		cmd, _, err := rootCmd.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}
