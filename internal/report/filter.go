package report

import (
	"errors"
	"fmt"
	"time"

	"github.com/dafibh/fluxo/fluxo-backend/internal/domain"
	"github.com/dafibh/fluxo/fluxo-backend/internal/util"
)

// ErrInvalidRange is returned when a range ends before it starts
var ErrInvalidRange = errors.New("date range end is before its start")

// DateRange is an inclusive calendar interval. A nil From disables
// filtering entirely; a nil To leaves the interval open-ended.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// ParseDateRange builds a range from yyyy-MM-dd query values; both may be empty.
// It returns nil when neither bound is given.
func ParseDateRange(from, to string) (*DateRange, error) {
	if from == "" && to == "" {
		return nil, nil
	}

	r := &DateRange{}
	if from != "" {
		d, err := util.ParseDate(from)
		if err != nil {
			return nil, fmt.Errorf("invalid from date %q: %w", from, domain.ErrInvalidDate)
		}
		r.From = &d
	}
	if to != "" {
		d, err := util.ParseDate(to)
		if err != nil {
			return nil, fmt.Errorf("invalid to date %q: %w", to, domain.ErrInvalidDate)
		}
		r.To = &d
	}
	if r.From != nil && r.To != nil && r.To.Before(*r.From) {
		return nil, ErrInvalidRange
	}
	return r, nil
}

// MonthDateRange returns the range covering a whole calendar month
func MonthDateRange(year int, month time.Month) *DateRange {
	first, last := util.MonthRange(year, month)
	return &DateRange{From: &first, To: &last}
}

// bounds returns the start-of-day and end-of-day instants of the range's
// calendar days in the reference zone
func (r *DateRange) bounds() (start time.Time, end *time.Time) {
	start = util.CalendarDay(*r.From)
	if r.To != nil {
		e := util.EndOfDay(util.CalendarDay(*r.To))
		end = &e
	}
	return start, end
}

// DropUnparseableDates returns the transactions whose date parses, recording
// the others in diag
func DropUnparseableDates(txs []*domain.Transaction, diag *Diagnostics) []*domain.Transaction {
	out := make([]*domain.Transaction, 0, len(txs))
	for _, tx := range txs {
		if _, err := util.ParseDate(tx.Data); err != nil {
			diag.Record(DiagnosticUnparseableDate, tx.ID, tx.Data)
			continue
		}
		out = append(out, tx)
	}
	return out
}

// FilterByDateRange returns the transactions whose date falls inside the range.
// Transactions with unparseable dates are left out and recorded in diag.
// Without a range or a From bound the input is returned unchanged.
func FilterByDateRange(txs []*domain.Transaction, r *DateRange, diag *Diagnostics) []*domain.Transaction {
	if r == nil || r.From == nil {
		return txs
	}

	start, end := r.bounds()

	out := make([]*domain.Transaction, 0, len(txs))
	for _, tx := range txs {
		d, err := util.ParseDate(tx.Data)
		if err != nil {
			diag.Record(DiagnosticUnparseableDate, tx.ID, tx.Data)
			continue
		}
		if d.Before(start) {
			continue
		}
		if end != nil && d.After(*end) {
			continue
		}
		out = append(out, tx)
	}
	return out
}
