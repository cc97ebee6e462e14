package main

import (
	"fmt"
	"io"
	"os"

	"github.com/dafibh/fluxo/fluxo-backend/internal/util"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export client data",
	}

	csvCmd := &cobra.Command{
		Use:   "csv",
		Short: "Write a client's transactions as CSV",
		Long: `Write a client's transactions as CSV. The file starts with a UTF-8 BOM
so spreadsheet tools detect the encoding, and it can be imported back as is.`,
		Args: cobra.NoArgs,
		RunE: runExportCSV,
	}
	addScopeFlags(csvCmd)
	csvCmd.Flags().StringP("out", "o", "", "output file (default transacoes_YYYY-MM-DD.csv, - for stdout)")
	cmd.AddCommand(csvCmd)

	return cmd
}

func runExportCSV(cmd *cobra.Command, _ []string) error {
	clientID, r, err := scopeFlags(cmd)
	if err != nil {
		return err
	}

	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		out = fmt.Sprintf("transacoes_%s.csv", util.Today().Format("2006-01-02"))
	}

	svc, pool, err := openReportService(cmd.Context())
	if err != nil {
		return err
	}
	defer pool.Close()

	var w io.Writer = cmd.OutOrStdout()
	if out != "-" {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("create %s: %w", out, err)
		}
		defer f.Close()
		w = f
	}

	if err := svc.ExportCSV(cmd.Context(), clientID, r, w); err != nil {
		return err
	}
	if out != "-" {
		log.Info().Int32("client_id", clientID).Str("file", out).Msg("Exported transactions")
	}
	return nil
}
