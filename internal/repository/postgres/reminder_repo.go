package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dafibh/fluxo/fluxo-backend/internal/domain"
	"github.com/dafibh/fluxo/fluxo-backend/internal/util"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const reminderColumns = `id, cliente_id, descricao, valor, tipo, to_char(vencimento, 'YYYY-MM-DD'),
	telefone, nome, notificado_em, created_at, updated_at`

// ReminderRepository implements domain.ReminderRepository using PostgreSQL
type ReminderRepository struct {
	pool *pgxpool.Pool
}

// NewReminderRepository creates a new ReminderRepository
func NewReminderRepository(pool *pgxpool.Pool) *ReminderRepository {
	return &ReminderRepository{pool: pool}
}

// Create creates a new reminder
func (r *ReminderRepository) Create(ctx context.Context, reminder *domain.Reminder) (*domain.Reminder, error) {
	valor, err := decimalPtrToPgNumeric(reminder.Valor)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO lembretes (cliente_id, descricao, valor, tipo, vencimento, telefone, nome)
		VALUES ($1, $2, $3, $4, $5::date, $6, $7)
		RETURNING `+reminderColumns,
		reminder.ClientID, reminder.Descricao, valor, string(reminder.Tipo),
		reminder.Vencimento, reminder.Telefone, reminder.Nome)
	return scanReminder(row)
}

// GetByID retrieves a reminder by ID within a client
func (r *ReminderRepository) GetByID(ctx context.Context, clientID, id int32) (*domain.Reminder, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+reminderColumns+` FROM lembretes WHERE cliente_id = $1 AND id = $2`, clientID, id)
	return scanReminder(row)
}

// GetByClient lists a client's reminders by due date
func (r *ReminderRepository) GetByClient(ctx context.Context, clientID int32) ([]*domain.Reminder, error) {
	return r.list(ctx, `SELECT `+reminderColumns+` FROM lembretes WHERE cliente_id = $1 ORDER BY vencimento, id`, clientID)
}

// GetPendingUntil lists not-yet-notified reminders of every client due on or before until
func (r *ReminderRepository) GetPendingUntil(ctx context.Context, until time.Time) ([]*domain.Reminder, error) {
	return r.list(ctx, `
		SELECT `+reminderColumns+` FROM lembretes
		WHERE notificado_em IS NULL AND vencimento <= $1::date
		ORDER BY vencimento, id`, until.Format(util.DateLayout))
}

// GetOverdueFixed lists fixo reminders due before the given date
func (r *ReminderRepository) GetOverdueFixed(ctx context.Context, before time.Time) ([]*domain.Reminder, error) {
	return r.list(ctx, `
		SELECT `+reminderColumns+` FROM lembretes
		WHERE tipo = 'fixo' AND vencimento < $1::date
		ORDER BY vencimento, id`, before.Format(util.DateLayout))
}

// Update updates a reminder. Changing the due date re-arms the notification.
func (r *ReminderRepository) Update(ctx context.Context, reminder *domain.Reminder) (*domain.Reminder, error) {
	valor, err := decimalPtrToPgNumeric(reminder.Valor)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE lembretes
		SET descricao = $3, valor = $4, tipo = $5,
		    notificado_em = CASE WHEN vencimento = $6::date THEN notificado_em ELSE NULL END,
		    vencimento = $6::date, telefone = $7, nome = $8, updated_at = now()
		WHERE cliente_id = $1 AND id = $2
		RETURNING `+reminderColumns,
		reminder.ClientID, reminder.ID, reminder.Descricao, valor, string(reminder.Tipo),
		reminder.Vencimento, reminder.Telefone, reminder.Nome)
	return scanReminder(row)
}

// MarkNotified records that the notification for the current due date was published
func (r *ReminderRepository) MarkNotified(ctx context.Context, id int32, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `UPDATE lembretes SET notificado_em = $2, updated_at = now() WHERE id = $1`, id, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrReminderNotFound
	}
	return nil
}

// Reschedule moves a reminder to a new due date and clears its notification mark
func (r *ReminderRepository) Reschedule(ctx context.Context, id int32, vencimento time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE lembretes SET vencimento = $2::date, notificado_em = NULL, updated_at = now()
		WHERE id = $1`, id, vencimento.Format(util.DateLayout))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrReminderNotFound
	}
	return nil
}

// Delete removes a reminder
func (r *ReminderRepository) Delete(ctx context.Context, clientID, id int32) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM lembretes WHERE cliente_id = $1 AND id = $2`, clientID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrReminderNotFound
	}
	return nil
}

func (r *ReminderRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Reminder, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*domain.Reminder{}
	for rows.Next() {
		rem, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rem)
	}
	return out, rows.Err()
}

func scanReminder(row pgx.Row) (*domain.Reminder, error) {
	var (
		rem          domain.Reminder
		valor        pgtype.Numeric
		tipo         string
		notificadoEm pgtype.Timestamptz
	)
	err := row.Scan(&rem.ID, &rem.ClientID, &rem.Descricao, &valor, &tipo, &rem.Vencimento,
		&rem.Telefone, &rem.Nome, &notificadoEm, &rem.CreatedAt, &rem.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrReminderNotFound
		}
		return nil, err
	}
	rem.Valor = pgNumericToDecimalPtr(valor)
	rem.Tipo = domain.ReminderType(tipo)
	if notificadoEm.Valid {
		at := notificadoEm.Time
		rem.NotificadoEm = &at
	}
	return &rem, nil
}
