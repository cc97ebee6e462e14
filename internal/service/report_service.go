package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dafibh/fluxo/fluxo-backend/internal/domain"
	"github.com/dafibh/fluxo/fluxo-backend/internal/report"
	"github.com/dafibh/fluxo/fluxo-backend/internal/repository/storage"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// ExportURLExpiry is how long a published export link stays valid
const ExportURLExpiry = 15 * time.Minute

// ExportResult points at a CSV export stored in object storage
type ExportResult struct {
	Path      string    `json:"path"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ReportService builds dashboard aggregations, goal progress and CSV exports.
// Transactions are loaded unfiltered and filtered in memory so rows with
// malformed dates show up in the diagnostics.
type ReportService struct {
	transactionRepo domain.TransactionRepository
	goalRepo        domain.GoalRepository
	storage         storage.ObjectStore
	thresholds      report.Thresholds
	now             func() time.Time
}

// NewReportService creates a new ReportService. A nil store disables PublishExport.
func NewReportService(transactionRepo domain.TransactionRepository, goalRepo domain.GoalRepository, store storage.ObjectStore, thresholds report.Thresholds) *ReportService {
	return &ReportService{
		transactionRepo: transactionRepo,
		goalRepo:        goalRepo,
		storage:         store,
		thresholds:      thresholds,
		now:             time.Now,
	}
}

func newDiagnostics(clientID int32) *report.Diagnostics {
	return report.NewDiagnosticsWithLogger(log.Logger.With().Int32("client_id", clientID).Logger())
}

// GetSummary aggregates the client's transactions inside the range by month and by category
func (s *ReportService) GetSummary(ctx context.Context, clientID int32, r *report.DateRange) (*report.Summary, error) {
	txs, err := s.transactionRepo.GetByClient(ctx, clientID, nil)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}

	summary := report.Summarize(txs, r, newDiagnostics(clientID))
	return &summary, nil
}

// GetGoalProgress compares the goals of a month against the expenses inside
// the range. Without a range the month itself is used; a range with only an
// end starts on the first day of the month.
func (s *ReportService) GetGoalProgress(ctx context.Context, clientID int32, year, month int, r *report.DateRange) (*report.GoalReport, error) {
	if err := validateMonthYear(month, year); err != nil {
		return nil, err
	}
	monthRange := report.MonthDateRange(year, time.Month(month))
	switch {
	case r == nil || (r.From == nil && r.To == nil):
		r = monthRange
	case r.From == nil:
		if r.To.Before(*monthRange.From) {
			return nil, report.ErrInvalidRange
		}
		r = &report.DateRange{From: monthRange.From, To: r.To}
	}

	var (
		goals []*domain.Goal
		txs   []*domain.Transaction
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		goals, err = s.goalRepo.GetByMonth(gctx, clientID, year, month)
		if err != nil {
			return fmt.Errorf("load goals: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		txs, err = s.transactionRepo.GetByClient(gctx, clientID, nil)
		if err != nil {
			return fmt.Errorf("load transactions: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	goalReport := report.BuildGoalReport(year, month, goals, txs, r, s.thresholds, newDiagnostics(clientID))
	return &goalReport, nil
}

// ExportCSV writes the client's transactions inside the range as CSV
func (s *ReportService) ExportCSV(ctx context.Context, clientID int32, r *report.DateRange, w io.Writer) error {
	txs, err := s.transactionRepo.GetByClient(ctx, clientID, nil)
	if err != nil {
		return fmt.Errorf("load transactions: %w", err)
	}
	return report.WriteCSV(w, report.FilterByDateRange(txs, r, newDiagnostics(clientID)))
}

// PublishExport stores a CSV export in object storage and returns a short-lived link to it
func (s *ReportService) PublishExport(ctx context.Context, clientID int32, r *report.DateRange) (*ExportResult, error) {
	if s.storage == nil {
		return nil, ErrStorageNotConfigured
	}

	var buf bytes.Buffer
	if err := s.ExportCSV(ctx, clientID, r, &buf); err != nil {
		return nil, err
	}

	now := s.now()
	objectPath := storage.ExportObjectPath(clientID, now)
	stored, err := s.storage.Upload(ctx, objectPath, bytes.NewReader(buf.Bytes()), "text/csv; charset=utf-8", int64(buf.Len()))
	if err != nil {
		return nil, fmt.Errorf("upload export: %w", err)
	}
	url, err := s.storage.GeneratePresignedURL(ctx, stored, ExportURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("presign export: %w", err)
	}

	log.Info().Int32("client_id", clientID).Str("path", stored).Int("bytes", buf.Len()).Msg("Published CSV export")
	return &ExportResult{
		Path:      stored,
		URL:       url,
		ExpiresAt: now.Add(ExportURLExpiry).UTC(),
	}, nil
}
