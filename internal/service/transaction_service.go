package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/dafibh/fluxo/fluxo-backend/internal/domain"
	"github.com/dafibh/fluxo/fluxo-backend/internal/report"
	"github.com/dafibh/fluxo/fluxo-backend/internal/util"
	"github.com/dafibh/fluxo/fluxo-backend/internal/websocket"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// TransactionService handles transaction business logic
type TransactionService struct {
	eventPublishing
	transactionRepo domain.TransactionRepository
	categoryRepo    domain.CategoryRepository
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(transactionRepo domain.TransactionRepository, categoryRepo domain.CategoryRepository) *TransactionService {
	return &TransactionService{
		transactionRepo: transactionRepo,
		categoryRepo:    categoryRepo,
	}
}

// TransactionInput is the payload for creating or replacing a transaction.
// An empty Data means today.
type TransactionInput struct {
	Data      string          `json:"data"`
	Operacao  string          `json:"operacao"`
	Descricao string          `json:"descricao"`
	Categoria string          `json:"categoria"`
	Valor     decimal.Decimal `json:"valor"`
}

// BatchUpdateInput selects transactions and the fields to overwrite on all of them
type BatchUpdateInput struct {
	IDs       []int32          `json:"ids"`
	Data      *string          `json:"data,omitempty"`
	Operacao  *string          `json:"operacao,omitempty"`
	Descricao *string          `json:"descricao,omitempty"`
	Categoria *string          `json:"categoria,omitempty"`
	Valor     *decimal.Decimal `json:"valor,omitempty"`
}

// ImportResult reports how many rows a CSV import created
type ImportResult struct {
	Imported int `json:"imported"`
}

// Create validates and stores a new transaction
func (s *TransactionService) Create(ctx context.Context, clientID int32, input TransactionInput) (*domain.Transaction, error) {
	tx, err := buildTransaction(input)
	if err != nil {
		return nil, err
	}
	tx.ClientID = clientID
	if err := s.checkCategoryType(ctx, clientID, tx.Categoria, tx.Operacao); err != nil {
		return nil, err
	}

	created, err := s.transactionRepo.Create(ctx, tx)
	if err != nil {
		return nil, err
	}

	s.publishEvent(clientID, websocket.TransactionCreated(created))
	return created, nil
}

// GetByID returns one transaction of the client
func (s *TransactionService) GetByID(ctx context.Context, clientID, id int32) (*domain.Transaction, error) {
	return s.transactionRepo.GetByID(ctx, clientID, id)
}

// List returns the client's transactions, newest first
func (s *TransactionService) List(ctx context.Context, clientID int32, filters *domain.TransactionFilters) ([]*domain.Transaction, error) {
	return s.transactionRepo.GetByClient(ctx, clientID, filters)
}

// Update replaces a transaction with the validated input
func (s *TransactionService) Update(ctx context.Context, clientID, id int32, input TransactionInput) (*domain.Transaction, error) {
	tx, err := buildTransaction(input)
	if err != nil {
		return nil, err
	}
	tx.ID = id
	tx.ClientID = clientID
	if err := s.checkCategoryType(ctx, clientID, tx.Categoria, tx.Operacao); err != nil {
		return nil, err
	}

	updated, err := s.transactionRepo.Update(ctx, tx)
	if err != nil {
		return nil, err
	}

	s.publishEvent(clientID, websocket.TransactionUpdated(updated))
	return updated, nil
}

// BatchUpdate overwrites the given fields on every selected transaction.
// Every resulting row is validated before anything is written; the write
// itself is all-or-nothing.
func (s *TransactionService) BatchUpdate(ctx context.Context, clientID int32, input BatchUpdateInput) ([]*domain.Transaction, error) {
	patch, err := buildPatch(input)
	if err != nil {
		return nil, err
	}
	if len(input.IDs) == 0 || patch.IsEmpty() {
		return nil, domain.ErrEmptyBatch
	}
	if len(input.IDs) > domain.MaxBatchSize {
		return nil, domain.ErrBatchTooLarge
	}

	if patch.Categoria != nil || patch.Operacao != nil {
		if err := s.checkBatchCategoryTypes(ctx, clientID, input.IDs, patch); err != nil {
			return nil, err
		}
	}

	updated, err := s.transactionRepo.BatchUpdate(ctx, clientID, input.IDs, patch)
	if err != nil {
		return nil, err
	}

	log.Info().Int32("client_id", clientID).Int("count", len(updated)).Msg("Batch updated transactions")
	s.publishEvent(clientID, websocket.TransactionsBatchUpdated(updated))
	return updated, nil
}

// Delete removes a transaction
func (s *TransactionService) Delete(ctx context.Context, clientID, id int32) error {
	existing, err := s.transactionRepo.GetByID(ctx, clientID, id)
	if err != nil {
		return err
	}
	if err := s.transactionRepo.Delete(ctx, clientID, id); err != nil {
		return err
	}

	s.publishEvent(clientID, websocket.TransactionDeleted(existing))
	return nil
}

// ImportCSV creates one transaction per CSV row. A single invalid row
// rejects the whole file.
func (s *TransactionService) ImportCSV(ctx context.Context, clientID int32, r io.Reader) (*ImportResult, error) {
	rows, err := report.ParseCSV(r)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return &ImportResult{}, nil
	}

	types, err := s.categoryTypes(ctx, clientID)
	if err != nil {
		return nil, err
	}
	for i, tx := range rows {
		line := i + 2 // header is line 1
		if err := validateTransaction(tx); err != nil {
			return nil, &report.CSVError{Line: line, Err: err}
		}
		if tipo, ok := types[tx.Categoria]; ok && !tipo.Accepts(tx.Operacao) {
			return nil, &report.CSVError{Line: line, Err: domain.ErrCategoryTypeMismatch}
		}
		tx.ClientID = clientID
	}

	created, err := s.transactionRepo.CreateMany(ctx, rows)
	if err != nil {
		return nil, err
	}

	log.Info().Int32("client_id", clientID).Int("count", len(created)).Msg("Imported transactions")
	s.publishEvent(clientID, websocket.TransactionsImported(&ImportResult{Imported: len(created)}))
	return &ImportResult{Imported: len(created)}, nil
}

// checkCategoryType rejects an operation the named category does not accept.
// Names with no registered category are free-form and always allowed.
func (s *TransactionService) checkCategoryType(ctx context.Context, clientID int32, categoria string, op domain.Operation) error {
	if categoria == "" {
		return nil
	}
	category, err := s.categoryRepo.GetByName(ctx, clientID, categoria)
	if errors.Is(err, domain.ErrCategoryNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if !category.Tipo.Accepts(op) {
		return domain.ErrCategoryTypeMismatch
	}
	return nil
}

func (s *TransactionService) checkBatchCategoryTypes(ctx context.Context, clientID int32, ids []int32, patch domain.TransactionPatch) error {
	current, err := s.transactionRepo.GetByClient(ctx, clientID, nil)
	if err != nil {
		return err
	}
	byID := make(map[int32]*domain.Transaction, len(current))
	for _, tx := range current {
		byID[tx.ID] = tx
	}
	types, err := s.categoryTypes(ctx, clientID)
	if err != nil {
		return err
	}

	for _, id := range ids {
		tx, ok := byID[id]
		if !ok {
			return domain.ErrTransactionNotFound
		}
		categoria, op := tx.Categoria, tx.Operacao
		if patch.Categoria != nil {
			categoria = *patch.Categoria
		}
		if patch.Operacao != nil {
			op = *patch.Operacao
		}
		if tipo, ok := types[categoria]; ok && !tipo.Accepts(op) {
			return fmt.Errorf("transaction %d: %w", id, domain.ErrCategoryTypeMismatch)
		}
	}
	return nil
}

func (s *TransactionService) categoryTypes(ctx context.Context, clientID int32) (map[string]domain.CategoryType, error) {
	categories, err := s.categoryRepo.GetAllByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	types := make(map[string]domain.CategoryType, len(categories))
	for _, c := range categories {
		types[c.Nome] = c.Tipo
	}
	return types, nil
}

func buildTransaction(input TransactionInput) (*domain.Transaction, error) {
	op, ok := report.NormalizeKind(input.Operacao)
	if !ok {
		return nil, domain.ErrInvalidOperation
	}

	data := strings.TrimSpace(input.Data)
	if data == "" {
		data = util.Today().Format(util.DateLayout)
	}

	tx := &domain.Transaction{
		Data:      data,
		Operacao:  op,
		Descricao: strings.TrimSpace(input.Descricao),
		Categoria: strings.TrimSpace(input.Categoria),
		Valor:     input.Valor,
	}
	if err := validateTransaction(tx); err != nil {
		return nil, err
	}
	return tx, nil
}

func validateTransaction(tx *domain.Transaction) error {
	if tx.Descricao == "" {
		return domain.ErrDescriptionRequired
	}
	if utf8.RuneCountInString(tx.Descricao) > domain.MaxDescriptionLength {
		return domain.ErrDescriptionTooLong
	}
	if !tx.Valor.IsPositive() {
		return domain.ErrInvalidAmount
	}
	if !tx.Operacao.IsValid() {
		return domain.ErrInvalidOperation
	}
	if _, err := util.ParseDate(tx.Data); err != nil {
		return domain.ErrInvalidDate
	}
	return nil
}

func buildPatch(input BatchUpdateInput) (domain.TransactionPatch, error) {
	var patch domain.TransactionPatch

	if input.Data != nil {
		data := strings.TrimSpace(*input.Data)
		if _, err := util.ParseDate(data); err != nil {
			return patch, domain.ErrInvalidDate
		}
		patch.Data = &data
	}
	if input.Operacao != nil {
		op, ok := report.NormalizeKind(*input.Operacao)
		if !ok {
			return patch, domain.ErrInvalidOperation
		}
		patch.Operacao = &op
	}
	if input.Descricao != nil {
		descricao := strings.TrimSpace(*input.Descricao)
		if descricao == "" {
			return patch, domain.ErrDescriptionRequired
		}
		if utf8.RuneCountInString(descricao) > domain.MaxDescriptionLength {
			return patch, domain.ErrDescriptionTooLong
		}
		patch.Descricao = &descricao
	}
	if input.Categoria != nil {
		categoria := strings.TrimSpace(*input.Categoria)
		patch.Categoria = &categoria
	}
	if input.Valor != nil {
		if !input.Valor.IsPositive() {
			return patch, domain.ErrInvalidAmount
		}
		valor := *input.Valor
		patch.Valor = &valor
	}
	return patch, nil
}
