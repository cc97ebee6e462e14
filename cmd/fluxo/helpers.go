package main

import (
	"context"
	"fmt"

	"github.com/dafibh/fluxo/fluxo-backend/internal/config"
	"github.com/dafibh/fluxo/fluxo-backend/internal/report"
	"github.com/dafibh/fluxo/fluxo-backend/internal/repository/postgres"
	"github.com/dafibh/fluxo/fluxo-backend/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

// openReportService connects to the database and builds a report service
// without object storage. The caller closes the returned pool.
func openReportService(ctx context.Context) (*service.ReportService, *pgxpool.Pool, error) {
	cfg, err := config.LoadDatabase()
	if err != nil {
		return nil, nil, err
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}

	thresholds := report.Thresholds{
		Baixo: cfg.Goals.ThresholdLow,
		Medio: cfg.Goals.ThresholdMedium,
		Alto:  cfg.Goals.ThresholdHigh,
	}
	svc := service.NewReportService(
		postgres.NewTransactionRepository(pool),
		postgres.NewGoalRepository(pool),
		nil,
		thresholds,
	)
	return svc, pool, nil
}

// addScopeFlags registers the --client, --from and --to flags
func addScopeFlags(cmd *cobra.Command) {
	cmd.Flags().Int32("client", 0, "client id (required)")
	cmd.Flags().String("from", "", "first day included, YYYY-MM-DD")
	cmd.Flags().String("to", "", "last day included, YYYY-MM-DD")
	_ = cmd.MarkFlagRequired("client")
}

// scopeFlags reads the flags registered by addScopeFlags
func scopeFlags(cmd *cobra.Command) (int32, *report.DateRange, error) {
	clientID, _ := cmd.Flags().GetInt32("client")
	if clientID <= 0 {
		return 0, nil, fmt.Errorf("--client must be a positive id")
	}
	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	r, err := report.ParseDateRange(from, to)
	if err != nil {
		return 0, nil, err
	}
	return clientID, r, nil
}
