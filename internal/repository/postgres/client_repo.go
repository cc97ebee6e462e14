package postgres

import (
	"context"
	"errors"

	"github.com/dafibh/fluxo/fluxo-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const clientColumns = `c.id, c.user_id, c.nome, c.email, c.telefone, c.cpf_cnpj, c.consultor_id, c.created_at, c.updated_at`

// ClientRepository implements domain.ClientRepository using PostgreSQL
type ClientRepository struct {
	pool *pgxpool.Pool
}

// NewClientRepository creates a new ClientRepository
func NewClientRepository(pool *pgxpool.Pool) *ClientRepository {
	return &ClientRepository{pool: pool}
}

// GetByID retrieves a client by ID
func (r *ClientRepository) GetByID(ctx context.Context, id int32) (*domain.Client, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+clientColumns+` FROM clientes c WHERE c.id = $1`, id)
	return scanClient(row)
}

// GetByUserID retrieves the client owned by a user
func (r *ClientRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Client, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+clientColumns+` FROM clientes c WHERE c.user_id = $1`, uuidToPg(userID))
	return scanClient(row)
}

// GetByUserAuth0ID retrieves the client owned by the user with the given Auth0 ID
func (r *ClientRepository) GetByUserAuth0ID(ctx context.Context, auth0ID string) (*domain.Client, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+clientColumns+`
		FROM clientes c
		JOIN users u ON u.id = c.user_id
		WHERE u.auth0_id = $1`, auth0ID)
	return scanClient(row)
}

// GetByEmail retrieves a client by contact email (case-insensitive)
func (r *ClientRepository) GetByEmail(ctx context.Context, email string) (*domain.Client, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+clientColumns+` FROM clientes c WHERE lower(c.email) = lower($1) ORDER BY c.id LIMIT 1`, email)
	return scanClient(row)
}

// GetByConsultant lists the clients linked to a consultant
func (r *ClientRepository) GetByConsultant(ctx context.Context, consultantID uuid.UUID) ([]*domain.Client, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+clientColumns+` FROM clientes c WHERE c.consultor_id = $1 ORDER BY c.nome, c.id`, uuidToPg(consultantID))
	if err != nil {
		return nil, err
	}
	return collectClients(rows)
}

// GetAll lists every client
func (r *ClientRepository) GetAll(ctx context.Context) ([]*domain.Client, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+clientColumns+` FROM clientes c ORDER BY c.id`)
	if err != nil {
		return nil, err
	}
	return collectClients(rows)
}

// Create creates a new client
func (r *ClientRepository) Create(ctx context.Context, client *domain.Client) (*domain.Client, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO clientes AS c (user_id, nome, email, telefone, cpf_cnpj)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+clientColumns,
		uuidToPg(client.UserID), client.Nome, client.Email, client.Telefone, client.CpfCnpj)
	created, err := scanClient(row)
	if err != nil {
		if isPgUniqueViolation(err) {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}
	return created, nil
}

// Update updates a client's profile fields
func (r *ClientRepository) Update(ctx context.Context, client *domain.Client) (*domain.Client, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE clientes AS c
		SET nome = $2, telefone = $3, cpf_cnpj = $4, updated_at = now()
		WHERE c.id = $1
		RETURNING `+clientColumns,
		client.ID, client.Nome, client.Telefone, client.CpfCnpj)
	return scanClient(row)
}

// SetConsultant links (or unlinks, with nil) a consultant to a client
func (r *ClientRepository) SetConsultant(ctx context.Context, clientID int32, consultantID *uuid.UUID) (*domain.Client, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE clientes AS c
		SET consultor_id = $2, updated_at = now()
		WHERE c.id = $1
		RETURNING `+clientColumns,
		clientID, uuidPtrToPg(consultantID))
	return scanClient(row)
}

func scanClient(row pgx.Row) (*domain.Client, error) {
	var (
		c           domain.Client
		userID      pgtype.UUID
		consultorID pgtype.UUID
	)
	err := row.Scan(&c.ID, &userID, &c.Nome, &c.Email, &c.Telefone, &c.CpfCnpj, &consultorID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrClientNotFound
		}
		return nil, err
	}
	c.UserID = uuid.UUID(userID.Bytes)
	c.ConsultorID = pgToUUIDPtr(consultorID)
	return &c, nil
}

func collectClients(rows pgx.Rows) ([]*domain.Client, error) {
	defer rows.Close()

	var out []*domain.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
