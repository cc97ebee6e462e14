package report

import (
	"strings"
	"unicode"

	"github.com/dafibh/fluxo/fluxo-backend/internal/domain"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeKind maps a raw operation string to a canonical operation.
// Matching ignores case, surrounding space and diacritics, so "Saida",
// "SAÍDA" and "saída" are all expense. Anything else is reported as
// expense with ok=false.
func NormalizeKind(raw string) (op domain.Operation, ok bool) {
	switch foldKind(raw) {
	case "entrada":
		return domain.OperationIncome, true
	case "saida":
		return domain.OperationExpense, true
	default:
		return domain.OperationExpense, false
	}
}

func foldKind(raw string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, raw)
	if err != nil {
		folded = raw
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

// operationOf resolves a transaction's operation, recording a diagnostic when it had to default
func operationOf(tx *domain.Transaction, diag *Diagnostics) domain.Operation {
	op, ok := NormalizeKind(string(tx.Operacao))
	if !ok {
		diag.Record(DiagnosticDefaultedKind, tx.ID, string(tx.Operacao))
	}
	return op
}
