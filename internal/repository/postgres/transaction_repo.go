package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dafibh/fluxo/fluxo-backend/internal/domain"
	"github.com/dafibh/fluxo/fluxo-backend/internal/util"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const transactionColumns = `id, cliente_id, data, operacao, descricao, categoria, valor, comprovante_path, created_at, updated_at`

// TransactionRepository implements domain.TransactionRepository using PostgreSQL
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

// Create creates a new transaction
func (r *TransactionRepository) Create(ctx context.Context, transaction *domain.Transaction) (*domain.Transaction, error) {
	return insertTransaction(ctx, r.pool, transaction)
}

// CreateMany inserts a set of transactions atomically; either all rows are stored or none
func (r *TransactionRepository) CreateMany(ctx context.Context, transactions []*domain.Transaction) ([]*domain.Transaction, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	created := make([]*domain.Transaction, 0, len(transactions))
	for i, t := range transactions {
		saved, err := insertTransaction(ctx, tx, t)
		if err != nil {
			return nil, fmt.Errorf("insert row %d: %w", i+1, err)
		}
		created = append(created, saved)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}
	return created, nil
}

func insertTransaction(ctx context.Context, q querier, t *domain.Transaction) (*domain.Transaction, error) {
	valor, err := decimalToPgNumeric(t.Valor)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	row := q.QueryRow(ctx, `
		INSERT INTO transacoes (cliente_id, data, operacao, descricao, categoria, valor, comprovante_path)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+transactionColumns,
		t.ClientID, t.Data, string(t.Operacao), t.Descricao, t.Categoria, valor, stringPtrToPgText(t.ComprovantePath))
	return scanTransaction(row)
}

// GetByID retrieves a transaction by ID within a client
func (r *TransactionRepository) GetByID(ctx context.Context, clientID, id int32) (*domain.Transaction, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+transactionColumns+` FROM transacoes WHERE cliente_id = $1 AND id = $2`, clientID, id)
	return scanTransaction(row)
}

// GetByClient lists a client's transactions, newest first.
// Date bounds compare the stored yyyy-MM-dd text, which sorts chronologically.
func (r *TransactionRepository) GetByClient(ctx context.Context, clientID int32, filters *domain.TransactionFilters) ([]*domain.Transaction, error) {
	where := []string{"cliente_id = $1"}
	args := []any{clientID}

	if filters != nil {
		if filters.StartDate != nil {
			args = append(args, filters.StartDate.Format(util.DateLayout))
			where = append(where, fmt.Sprintf("data >= $%d", len(args)))
		}
		if filters.EndDate != nil {
			args = append(args, filters.EndDate.Format(util.DateLayout))
			where = append(where, fmt.Sprintf("data <= $%d", len(args)))
		}
		if filters.Operacao != nil {
			args = append(args, string(*filters.Operacao))
			where = append(where, fmt.Sprintf("operacao = $%d", len(args)))
		}
		if filters.Categoria != nil {
			args = append(args, *filters.Categoria)
			where = append(where, fmt.Sprintf("categoria = $%d", len(args)))
		}
	}

	query := `SELECT ` + transactionColumns + ` FROM transacoes WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY data DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectTransactions(rows)
}

// Update replaces the editable fields of a transaction
func (r *TransactionRepository) Update(ctx context.Context, transaction *domain.Transaction) (*domain.Transaction, error) {
	valor, err := decimalToPgNumeric(transaction.Valor)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE transacoes
		SET data = $3, operacao = $4, descricao = $5, categoria = $6, valor = $7, updated_at = now()
		WHERE cliente_id = $1 AND id = $2
		RETURNING `+transactionColumns,
		transaction.ClientID, transaction.ID, transaction.Data, string(transaction.Operacao),
		transaction.Descricao, transaction.Categoria, valor)
	return scanTransaction(row)
}

// BatchUpdate applies the same patch to every listed transaction in one
// database transaction. Unknown ids abort the whole batch.
func (r *TransactionRepository) BatchUpdate(ctx context.Context, clientID int32, ids []int32, patch domain.TransactionPatch) ([]*domain.Transaction, error) {
	valor, err := decimalPtrToPgNumeric(patch.Valor)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}
	var operacao pgtype.Text
	if patch.Operacao != nil {
		operacao = pgtype.Text{String: string(*patch.Operacao), Valid: true}
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin batch: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var found int
	err = tx.QueryRow(ctx, `
		SELECT count(DISTINCT id) FROM transacoes
		WHERE cliente_id = $1 AND id = ANY($2)`, clientID, ids).Scan(&found)
	if err != nil {
		return nil, err
	}
	if found != countDistinct(ids) {
		return nil, domain.ErrTransactionNotFound
	}

	rows, err := tx.Query(ctx, `
		UPDATE transacoes
		SET data      = COALESCE($3::text, data),
		    operacao  = COALESCE($4::text, operacao),
		    descricao = COALESCE($5::text, descricao),
		    categoria = COALESCE($6::text, categoria),
		    valor     = COALESCE($7::numeric, valor),
		    updated_at = now()
		WHERE cliente_id = $1 AND id = ANY($2)
		RETURNING `+transactionColumns,
		clientID, ids, stringPtrToPgText(patch.Data), operacao,
		stringPtrToPgText(patch.Descricao), stringPtrToPgText(patch.Categoria), valor)
	if err != nil {
		return nil, err
	}
	updated, err := collectTransactions(rows)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit batch: %w", err)
	}
	return updated, nil
}

// SetReceipt stores (or clears, with nil) the object path of a transaction's receipt
func (r *TransactionRepository) SetReceipt(ctx context.Context, clientID, id int32, path *string) (*domain.Transaction, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE transacoes
		SET comprovante_path = $3, updated_at = now()
		WHERE cliente_id = $1 AND id = $2
		RETURNING `+transactionColumns,
		clientID, id, stringPtrToPgText(path))
	return scanTransaction(row)
}

// Delete removes a transaction
func (r *TransactionRepository) Delete(ctx context.Context, clientID, id int32) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM transacoes WHERE cliente_id = $1 AND id = $2`, clientID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		t           domain.Transaction
		operacao    string
		valor       pgtype.Numeric
		comprovante pgtype.Text
	)
	err := row.Scan(&t.ID, &t.ClientID, &t.Data, &operacao, &t.Descricao, &t.Categoria,
		&valor, &comprovante, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	t.Operacao = domain.Operation(operacao)
	t.Valor = pgNumericToDecimal(valor)
	t.ComprovantePath = pgTextToStringPtr(comprovante)
	return &t, nil
}

func collectTransactions(rows pgx.Rows) ([]*domain.Transaction, error) {
	defer rows.Close()

	out := []*domain.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func countDistinct(ids []int32) int {
	seen := make(map[int32]struct{}, len(ids))
	for _, id := range ids {
		seen[id] = struct{}{}
	}
	return len(seen)
}
