package report

import (
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DiagnosticKind names a lenient-parsing fallback taken by the pipeline
type DiagnosticKind string

const (
	// DiagnosticUnparseableDate marks a record whose date could not be parsed; it was left out.
	DiagnosticUnparseableDate DiagnosticKind = "unparseable_date"
	// DiagnosticDefaultedKind marks a record whose operation was not recognized; it was counted as expense.
	DiagnosticDefaultedKind DiagnosticKind = "defaulted_kind"
)

// Diagnostic is one recorded fallback
type Diagnostic struct {
	Kind          DiagnosticKind `json:"kind"`
	TransactionID int32          `json:"transactionId"`
	Value         string         `json:"value"`
}

// DiagnosticsSummary is the per-kind count exposed in report responses
type DiagnosticsSummary struct {
	UnparseableDates int `json:"unparseableDates"`
	DefaultedKinds   int `json:"defaultedKinds"`
}

// Diagnostics collects the fallbacks taken while aggregating. A record is
// counted once per kind even when several stages see it. Persisted records
// are keyed by ID; unsaved ones (ID 0) are always counted. A nil
// *Diagnostics is valid and records nothing.
type Diagnostics struct {
	logger zerolog.Logger
	mu     sync.Mutex
	seen   map[diagnosticKey]struct{}
	events []Diagnostic
}

type diagnosticKey struct {
	kind DiagnosticKind
	id   int32
}

// NewDiagnostics creates a collector logging through the global zerolog logger
func NewDiagnostics() *Diagnostics {
	return NewDiagnosticsWithLogger(log.Logger)
}

// NewDiagnosticsWithLogger creates a collector logging through the given logger
func NewDiagnosticsWithLogger(logger zerolog.Logger) *Diagnostics {
	return &Diagnostics{
		logger: logger.With().Str("component", "report").Logger(),
		seen:   make(map[diagnosticKey]struct{}),
	}
}

// Record registers a fallback for a transaction and logs it as a warning
func (d *Diagnostics) Record(kind DiagnosticKind, transactionID int32, value string) {
	if d == nil {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if transactionID != 0 {
		key := diagnosticKey{kind: kind, id: transactionID}
		if _, ok := d.seen[key]; ok {
			return
		}
		d.seen[key] = struct{}{}
	}

	d.events = append(d.events, Diagnostic{Kind: kind, TransactionID: transactionID, Value: value})

	d.logger.Warn().
		Str("kind", string(kind)).
		Int32("transaction_id", transactionID).
		Str("value", value).
		Msg("Lenient fallback applied to transaction")
}

// Count returns how many records took the given fallback
func (d *Diagnostics) Count(kind DiagnosticKind) int {
	if d == nil {
		return 0
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	n := 0
	for _, e := range d.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// Events returns a copy of every recorded fallback in recording order
func (d *Diagnostics) Events() []Diagnostic {
	if d == nil {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]Diagnostic, len(d.events))
	copy(out, d.events)
	return out
}

// Summary returns the per-kind counts
func (d *Diagnostics) Summary() DiagnosticsSummary {
	return DiagnosticsSummary{
		UnparseableDates: d.Count(DiagnosticUnparseableDate),
		DefaultedKinds:   d.Count(DiagnosticDefaultedKind),
	}
}
