package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dafibh/fluxo/fluxo-backend/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	// MaxCategoryBuckets is the most entries a category breakdown may have
	MaxCategoryBuckets = 10
	// TopCategoryCut is how many categories survive when the breakdown is collapsed
	TopCategoryCut = 9
	// UncategorizedName labels transactions with a blank category
	UncategorizedName = "Sem categoria"
)

// CategoryBucket is the total of one category
type CategoryBucket struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
}

// OthersName returns the label of the synthetic bucket collapsing n categories
func OthersName(n int) string {
	return fmt.Sprintf("Outros (%d)", n)
}

// BucketByCategory sums the transactions of one operation per category,
// largest first. Ties are ordered by name. When there are more than
// MaxCategoryBuckets categories, everything after the first TopCategoryCut
// is folded into a single "Outros (N)" bucket.
func BucketByCategory(txs []*domain.Transaction, op domain.Operation, diag *Diagnostics) []CategoryBucket {
	totals := make(map[string]decimal.Decimal)

	for _, tx := range txs {
		if operationOf(tx, diag) != op {
			continue
		}
		name := tx.Categoria
		if strings.TrimSpace(name) == "" {
			name = UncategorizedName
		}
		totals[name] = totals[name].Add(tx.Valor)
	}

	out := make([]CategoryBucket, 0, len(totals))
	for name, value := range totals {
		out = append(out, CategoryBucket{Name: name, Value: value})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Value.Cmp(out[j].Value); c != 0 {
			return c > 0
		}
		return out[i].Name < out[j].Name
	})

	if len(out) <= MaxCategoryBuckets {
		return out
	}

	tail := out[TopCategoryCut:]
	rest := decimal.Zero
	for _, b := range tail {
		rest = rest.Add(b.Value)
	}

	collapsed := make([]CategoryBucket, 0, TopCategoryCut+1)
	collapsed = append(collapsed, out[:TopCategoryCut]...)
	collapsed = append(collapsed, CategoryBucket{Name: OthersName(len(tail)), Value: rest})
	return collapsed
}
