package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/dafibh/fluxo/fluxo-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const goalColumns = `id, cliente_id, categoria, valor_meta, mes, ano, periodo, created_at, updated_at`

// GoalRepository implements domain.GoalRepository using PostgreSQL
type GoalRepository struct {
	pool *pgxpool.Pool
}

// NewGoalRepository creates a new GoalRepository
func NewGoalRepository(pool *pgxpool.Pool) *GoalRepository {
	return &GoalRepository{pool: pool}
}

// Create creates a new goal. A second goal for the same category and month
// violates the unique constraint and maps to ErrGoalAlreadyExists.
func (r *GoalRepository) Create(ctx context.Context, goal *domain.Goal) (*domain.Goal, error) {
	valor, err := decimalToPgNumeric(goal.ValorMeta)
	if err != nil {
		return nil, fmt.Errorf("invalid goal amount: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO metas (cliente_id, categoria, valor_meta, mes, ano, periodo)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+goalColumns,
		goal.ClientID, goal.Categoria, valor, goal.Mes, goal.Ano, string(goal.Periodo))
	created, err := scanGoal(row)
	if err != nil {
		if isPgUniqueViolation(err) {
			return nil, domain.ErrGoalAlreadyExists
		}
		return nil, err
	}
	return created, nil
}

// GetByID retrieves a goal by ID within a client
func (r *GoalRepository) GetByID(ctx context.Context, clientID, id int32) (*domain.Goal, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+goalColumns+` FROM metas WHERE cliente_id = $1 AND id = $2`, clientID, id)
	return scanGoal(row)
}

// GetByMonth lists a client's goals for one month
func (r *GoalRepository) GetByMonth(ctx context.Context, clientID int32, year, month int) ([]*domain.Goal, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+goalColumns+` FROM metas
		WHERE cliente_id = $1 AND ano = $2 AND mes = $3
		ORDER BY categoria, id`, clientID, year, month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*domain.Goal{}
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// Update updates a goal
func (r *GoalRepository) Update(ctx context.Context, goal *domain.Goal) (*domain.Goal, error) {
	valor, err := decimalToPgNumeric(goal.ValorMeta)
	if err != nil {
		return nil, fmt.Errorf("invalid goal amount: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE metas
		SET categoria = $3, valor_meta = $4, mes = $5, ano = $6, periodo = $7, updated_at = now()
		WHERE cliente_id = $1 AND id = $2
		RETURNING `+goalColumns,
		goal.ClientID, goal.ID, goal.Categoria, valor, goal.Mes, goal.Ano, string(goal.Periodo))
	updated, err := scanGoal(row)
	if err != nil {
		if isPgUniqueViolation(err) {
			return nil, domain.ErrGoalAlreadyExists
		}
		return nil, err
	}
	return updated, nil
}

// Delete removes a goal
func (r *GoalRepository) Delete(ctx context.Context, clientID, id int32) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM metas WHERE cliente_id = $1 AND id = $2`, clientID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrGoalNotFound
	}
	return nil
}

func scanGoal(row pgx.Row) (*domain.Goal, error) {
	var (
		g        domain.Goal
		valor    pgtype.Numeric
		mes, ano int16
		periodo  string
	)
	err := row.Scan(&g.ID, &g.ClientID, &g.Categoria, &valor, &mes, &ano, &periodo, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrGoalNotFound
		}
		return nil, err
	}
	g.ValorMeta = pgNumericToDecimal(valor)
	g.Mes = int(mes)
	g.Ano = int(ano)
	g.Periodo = domain.GoalPeriod(periodo)
	return &g, nil
}
