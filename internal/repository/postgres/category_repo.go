package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/dafibh/fluxo/fluxo-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const categoryColumns = `id, cliente_id, nome, tipo, padrao`

// CategoryRepository implements domain.CategoryRepository using PostgreSQL
type CategoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository creates a new CategoryRepository
func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

// Create creates a new category
func (r *CategoryRepository) Create(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	return insertCategory(ctx, r.pool, category.ClientID, category.Nome, category.Tipo, category.Padrao)
}

// CreateDefaults seeds the default categories for a client. Names the client
// already has are skipped, so calling it twice is harmless.
func (r *CategoryRepository) CreateDefaults(ctx context.Context, clientID int32, defaults []domain.Category) error {
	batch := &pgx.Batch{}
	for _, c := range defaults {
		batch.Queue(`
			INSERT INTO categorias (cliente_id, nome, tipo, padrao)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (cliente_id, nome) DO NOTHING`,
			clientID, c.Nome, string(c.Tipo), c.Padrao)
	}
	return r.pool.SendBatch(ctx, batch).Close()
}

// GetByID retrieves a category by ID within a client
func (r *CategoryRepository) GetByID(ctx context.Context, clientID, id int32) (*domain.Category, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categorias WHERE cliente_id = $1 AND id = $2`, clientID, id)
	return scanCategory(row)
}

// GetByName retrieves a category by its exact name within a client
func (r *CategoryRepository) GetByName(ctx context.Context, clientID int32, name string) (*domain.Category, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categorias WHERE cliente_id = $1 AND nome = $2`, clientID, name)
	return scanCategory(row)
}

// GetAllByClient lists a client's categories, defaults first
func (r *CategoryRepository) GetAllByClient(ctx context.Context, clientID int32) ([]*domain.Category, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+categoryColumns+` FROM categorias
		WHERE cliente_id = $1
		ORDER BY padrao DESC, nome`, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*domain.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpdateType changes the type of a custom category in place
func (r *CategoryRepository) UpdateType(ctx context.Context, clientID, id int32, tipo domain.CategoryType) (*domain.Category, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE categorias SET tipo = $3
		WHERE cliente_id = $1 AND id = $2
		RETURNING `+categoryColumns,
		clientID, id, string(tipo))
	return scanCategory(row)
}

// OperationsInUse lists the distinct operation values stored on the client's
// transactions under a category name
func (r *CategoryRepository) OperationsInUse(ctx context.Context, clientID int32, name string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT operacao FROM transacoes
		WHERE cliente_id = $1 AND categoria = $2`, clientID, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ops []string
	for rows.Next() {
		var op string
		if err := rows.Scan(&op); err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, rows.Err()
}

// Rename creates the replacement category, moves transactions and goals to the
// new name and removes the old category, all in one database transaction.
// Any failure leaves the old category and its references untouched.
func (r *CategoryRepository) Rename(ctx context.Context, clientID, id int32, newName string, tipo domain.CategoryType) (*domain.Category, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin rename: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	old, err := scanCategory(tx.QueryRow(ctx, `
		SELECT `+categoryColumns+` FROM categorias
		WHERE cliente_id = $1 AND id = $2
		FOR UPDATE`, clientID, id))
	if err != nil {
		return nil, err
	}

	created, err := insertCategory(ctx, tx, clientID, newName, tipo, false)
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE transacoes SET categoria = $3, updated_at = now()
		WHERE cliente_id = $1 AND categoria = $2`, clientID, old.Nome, newName); err != nil {
		return nil, fmt.Errorf("move transactions: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE metas SET categoria = $3, updated_at = now()
		WHERE cliente_id = $1 AND categoria = $2`, clientID, old.Nome, newName); err != nil {
		if isPgUniqueViolation(err) {
			return nil, domain.ErrGoalAlreadyExists
		}
		return nil, fmt.Errorf("move goals: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM categorias WHERE cliente_id = $1 AND id = $2`, clientID, id); err != nil {
		return nil, fmt.Errorf("remove old category: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit rename: %w", err)
	}
	return created, nil
}

// Delete removes a category. Transactions keep the name as free text.
func (r *CategoryRepository) Delete(ctx context.Context, clientID, id int32) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categorias WHERE cliente_id = $1 AND id = $2`, clientID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}

func insertCategory(ctx context.Context, q querier, clientID int32, nome string, tipo domain.CategoryType, padrao bool) (*domain.Category, error) {
	row := q.QueryRow(ctx, `
		INSERT INTO categorias (cliente_id, nome, tipo, padrao)
		VALUES ($1, $2, $3, $4)
		RETURNING `+categoryColumns,
		clientID, nome, string(tipo), padrao)
	c, err := scanCategory(row)
	if err != nil {
		if isPgUniqueViolation(err) {
			return nil, domain.ErrCategoryAlreadyExists
		}
		return nil, err
	}
	return c, nil
}

func scanCategory(row pgx.Row) (*domain.Category, error) {
	var (
		c    domain.Category
		tipo string
	)
	if err := row.Scan(&c.ID, &c.ClientID, &c.Nome, &tipo, &c.Padrao); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, err
	}
	c.Tipo = domain.CategoryType(tipo)
	return &c, nil
}
