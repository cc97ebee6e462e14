package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dafibh/fluxo/fluxo-backend/internal/report"
	"github.com/spf13/cobra"
)

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print dashboard aggregates for a client",
	}

	summary := &cobra.Command{
		Use:   "summary",
		Short: "Monthly totals and category breakdowns",
		Args:  cobra.NoArgs,
		RunE:  runReportSummary,
	}
	addScopeFlags(summary)
	summary.Flags().Bool("json", false, "print the summary as JSON")
	cmd.AddCommand(summary)

	return cmd
}

func runReportSummary(cmd *cobra.Command, _ []string) error {
	clientID, r, err := scopeFlags(cmd)
	if err != nil {
		return err
	}

	svc, pool, err := openReportService(cmd.Context())
	if err != nil {
		return err
	}
	defer pool.Close()

	s, err := svc.GetSummary(cmd.Context(), clientID, r)
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}
	return writeSummary(cmd.OutOrStdout(), s)
}

// writeSummary renders the summary as aligned plain-text tables
func writeSummary(out io.Writer, s *report.Summary) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)

	fmt.Fprintln(w, "Mês\tEntradas\tSaídas\tSaldo\t")
	for _, m := range s.Months {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n", m.MonthLabel, m.Income.StringFixed(2), m.Expense.StringFixed(2), m.Balance.StringFixed(2))
	}
	fmt.Fprintf(w, "Total\t%s\t%s\t%s\t\n", s.TotalIncome.StringFixed(2), s.TotalExpense.StringFixed(2), s.Balance.StringFixed(2))
	fmt.Fprintln(w, "\t\t\t\t")

	writeBuckets(w, "Saídas por categoria", s.ExpenseByCategory)
	writeBuckets(w, "Entradas por categoria", s.IncomeByCategory)

	if s.Diagnostics.UnparseableDates > 0 || s.Diagnostics.DefaultedKinds > 0 {
		fmt.Fprintf(w, "Datas inválidas\t%d\t\n", s.Diagnostics.UnparseableDates)
		fmt.Fprintf(w, "Operações presumidas\t%d\t\n", s.Diagnostics.DefaultedKinds)
	}
	return w.Flush()
}

func writeBuckets(w io.Writer, title string, buckets []report.CategoryBucket) {
	if len(buckets) == 0 {
		return
	}
	fmt.Fprintf(w, "%s\t\t\n", title)
	for _, b := range buckets {
		fmt.Fprintf(w, "%s\t%s\t\n", b.Name, b.Value.StringFixed(2))
	}
	fmt.Fprintln(w, "\t\t")
}
