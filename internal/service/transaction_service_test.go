package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dafibh/fluxo/fluxo-backend/internal/domain"
	"github.com/dafibh/fluxo/fluxo-backend/internal/report"
	"github.com/dafibh/fluxo/fluxo-backend/internal/testutil"
	"github.com/dafibh/fluxo/fluxo-backend/internal/util"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTransactionService() (*TransactionService, *testutil.MockTransactionRepository, *testutil.MockCategoryRepository, *testutil.MockEventPublisher) {
	txRepo := testutil.NewMockTransactionRepository()
	categoryRepo := testutil.NewMockCategoryRepository()
	events := &testutil.MockEventPublisher{}
	svc := NewTransactionService(txRepo, categoryRepo)
	svc.SetEventPublisher(events)

	categoryRepo.AddCategory(&domain.Category{ClientID: 1, Nome: "Salário", Tipo: domain.CategoryTypeIncome, Padrao: true})
	categoryRepo.AddCategory(&domain.Category{ClientID: 1, Nome: "Moradia", Tipo: domain.CategoryTypeExpense, Padrao: true})
	categoryRepo.AddCategory(&domain.Category{ClientID: 1, Nome: "Outros", Tipo: domain.CategoryTypeBoth, Padrao: true})
	return svc, txRepo, categoryRepo, events
}

func validInput() TransactionInput {
	return TransactionInput{
		Data:      "2024-03-10",
		Operacao:  "saída",
		Descricao: "Aluguel",
		Categoria: "Moradia",
		Valor:     decimal.RequireFromString("1500.00"),
	}
}

func TestTransactionService_Create(t *testing.T) {
	svc, _, _, events := setupTransactionService()

	in := validInput()
	in.Operacao = "SAIDA"
	in.Descricao = "  Aluguel  "

	created, err := svc.Create(context.Background(), 1, in)
	require.NoError(t, err)
	assert.Equal(t, int32(1), created.ClientID)
	assert.Equal(t, domain.OperationExpense, created.Operacao)
	assert.Equal(t, "Aluguel", created.Descricao)
	assert.Equal(t, "2024-03-10", created.Data)
	assert.Equal(t, []string{"transaction.created"}, events.Types())
}

func TestTransactionService_CreateDefaultsToToday(t *testing.T) {
	svc, _, _, _ := setupTransactionService()

	in := validInput()
	in.Data = ""
	created, err := svc.Create(context.Background(), 1, in)
	require.NoError(t, err)
	assert.Equal(t, util.Today().Format(util.DateLayout), created.Data)
}

func TestTransactionService_CreateValidation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*TransactionInput)
		want   error
	}{
		{"missing description", func(in *TransactionInput) { in.Descricao = " " }, domain.ErrDescriptionRequired},
		{"long description", func(in *TransactionInput) { in.Descricao = strings.Repeat("a", domain.MaxDescriptionLength+1) }, domain.ErrDescriptionTooLong},
		{"zero amount", func(in *TransactionInput) { in.Valor = decimal.Zero }, domain.ErrInvalidAmount},
		{"negative amount", func(in *TransactionInput) { in.Valor = decimal.NewFromInt(-5) }, domain.ErrInvalidAmount},
		{"unknown kind", func(in *TransactionInput) { in.Operacao = "transfer" }, domain.ErrInvalidOperation},
		{"bad date", func(in *TransactionInput) { in.Data = "10/03/2024" }, domain.ErrInvalidDate},
		{"impossible date", func(in *TransactionInput) { in.Data = "2024-02-30" }, domain.ErrInvalidDate},
		{"income in expense category", func(in *TransactionInput) { in.Operacao = "entrada" }, domain.ErrCategoryTypeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, txRepo, _, events := setupTransactionService()
			in := validInput()
			tt.modify(&in)

			_, err := svc.Create(context.Background(), 1, in)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, txRepo.Transactions)
			assert.Empty(t, events.Types())
		})
	}
}

func TestTransactionService_CategoryRules(t *testing.T) {
	svc, _, _, _ := setupTransactionService()
	ctx := context.Background()

	in := validInput()
	in.Operacao = "entrada"
	in.Categoria = "Outros"
	_, err := svc.Create(ctx, 1, in)
	assert.NoError(t, err, "ambos accepts income")

	in.Categoria = "Livre"
	_, err = svc.Create(ctx, 1, in)
	assert.NoError(t, err, "unregistered names are free-form")

	in.Categoria = ""
	_, err = svc.Create(ctx, 1, in)
	assert.NoError(t, err, "category is optional")
}

func TestTransactionService_UpdateAndDelete(t *testing.T) {
	svc, txRepo, _, events := setupTransactionService()
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, validInput())
	require.NoError(t, err)

	in := validInput()
	in.Valor = decimal.RequireFromString("1600")
	updated, err := svc.Update(ctx, 1, created.ID, in)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("1600").Equal(updated.Valor))

	_, err = svc.Update(ctx, 2, created.ID, in)
	assert.ErrorIs(t, err, domain.ErrTransactionNotFound)

	require.NoError(t, svc.Delete(ctx, 1, created.ID))
	assert.Empty(t, txRepo.Transactions)
	assert.ErrorIs(t, svc.Delete(ctx, 1, created.ID), domain.ErrTransactionNotFound)

	assert.Equal(t, []string{"transaction.created", "transaction.updated", "transaction.deleted"}, events.Types())
}

func TestTransactionService_List(t *testing.T) {
	svc, txRepo, _, _ := setupTransactionService()
	ctx := context.Background()

	txRepo.AddTransaction(&domain.Transaction{ClientID: 1, Data: "2024-01-01", Operacao: domain.OperationIncome, Valor: decimal.NewFromInt(1)})
	txRepo.AddTransaction(&domain.Transaction{ClientID: 1, Data: "2024-02-01", Operacao: domain.OperationExpense, Valor: decimal.NewFromInt(2)})
	txRepo.AddTransaction(&domain.Transaction{ClientID: 2, Data: "2024-02-01", Operacao: domain.OperationExpense, Valor: decimal.NewFromInt(3)})

	all, err := svc.List(ctx, 1, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "2024-02-01", all[0].Data)

	op := domain.OperationIncome
	income, err := svc.List(ctx, 1, &domain.TransactionFilters{Operacao: &op})
	require.NoError(t, err)
	require.Len(t, income, 1)
	assert.Equal(t, domain.OperationIncome, income[0].Operacao)
}

func TestTransactionService_BatchUpdate(t *testing.T) {
	svc, txRepo, _, events := setupTransactionService()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		txRepo.AddTransaction(&domain.Transaction{ClientID: 1, Data: "2024-01-01", Operacao: domain.OperationExpense, Descricao: "x", Valor: decimal.NewFromInt(10)})
	}

	categoria := " Moradia "
	updated, err := svc.BatchUpdate(ctx, 1, BatchUpdateInput{IDs: []int32{1, 2}, Categoria: &categoria})
	require.NoError(t, err)
	assert.Len(t, updated, 2)
	assert.Equal(t, "Moradia", txRepo.Transactions[1].Categoria)
	assert.Equal(t, "Moradia", txRepo.Transactions[2].Categoria)
	assert.Equal(t, "", txRepo.Transactions[3].Categoria)
	assert.Equal(t, []string{"transaction.batch_updated"}, events.Types())
}

func TestTransactionService_BatchUpdateRejects(t *testing.T) {
	ctx := context.Background()
	moradia := "Moradia"
	salario := "Salário"
	entrada := "entrada"
	badDate := "2024-13-01"
	zero := decimal.Zero

	tests := []struct {
		name  string
		input BatchUpdateInput
		want  error
	}{
		{"no ids", BatchUpdateInput{Categoria: &moradia}, domain.ErrEmptyBatch},
		{"no fields", BatchUpdateInput{IDs: []int32{1}}, domain.ErrEmptyBatch},
		{"unknown id", BatchUpdateInput{IDs: []int32{1, 99}, Categoria: &moradia}, domain.ErrTransactionNotFound},
		{"bad date", BatchUpdateInput{IDs: []int32{1}, Data: &badDate}, domain.ErrInvalidDate},
		{"zero amount", BatchUpdateInput{IDs: []int32{1}, Valor: &zero}, domain.ErrInvalidAmount},
		{"category mismatch on resulting row", BatchUpdateInput{IDs: []int32{1, 2}, Categoria: &salario}, domain.ErrCategoryTypeMismatch},
		{"kind mismatch with current category", BatchUpdateInput{IDs: []int32{2}, Operacao: &entrada}, domain.ErrCategoryTypeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, txRepo, _, events := setupTransactionService()
			txRepo.AddTransaction(&domain.Transaction{ClientID: 1, Data: "2024-01-01", Operacao: domain.OperationExpense, Descricao: "a", Valor: decimal.NewFromInt(10)})
			txRepo.AddTransaction(&domain.Transaction{ClientID: 1, Data: "2024-01-01", Operacao: domain.OperationExpense, Descricao: "b", Categoria: "Moradia", Valor: decimal.NewFromInt(10)})

			_, err := svc.BatchUpdate(ctx, 1, tt.input)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, "", txRepo.Transactions[1].Categoria)
			assert.Equal(t, domain.OperationExpense, txRepo.Transactions[2].Operacao)
			assert.Empty(t, events.Types())
		})
	}
}

func TestTransactionService_BatchUpdateTooLarge(t *testing.T) {
	svc, _, _, _ := setupTransactionService()
	ids := make([]int32, domain.MaxBatchSize+1)
	desc := "x"

	_, err := svc.BatchUpdate(context.Background(), 1, BatchUpdateInput{IDs: ids, Descricao: &desc})
	assert.ErrorIs(t, err, domain.ErrBatchTooLarge)
}

func TestTransactionService_ImportCSV(t *testing.T) {
	svc, txRepo, _, events := setupTransactionService()

	csv := "\ufeffData,Descrição,Categoria,Valor,Tipo\n" +
		"05/01/2024,Salário janeiro,Salário,5000.00,entrada\n" +
		"2024-01-10,Aluguel,Moradia,1500.50,saída\n"

	result, err := svc.ImportCSV(context.Background(), 1, strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	require.Len(t, txRepo.Transactions, 2)
	for _, tx := range txRepo.Transactions {
		assert.Equal(t, int32(1), tx.ClientID)
	}
	assert.Equal(t, []string{"transaction.imported"}, events.Types())
}

func TestTransactionService_ImportCSVIsAllOrNothing(t *testing.T) {
	svc, txRepo, _, events := setupTransactionService()

	csv := "Data,Descrição,Categoria,Valor,Tipo\n" +
		"2024-01-05,Ok,Outros,10.00,saída\n" +
		"2024-01-06,,Outros,10.00,saída\n"

	_, err := svc.ImportCSV(context.Background(), 1, strings.NewReader(csv))
	require.Error(t, err)

	var csvErr *report.CSVError
	require.True(t, errors.As(err, &csvErr))
	assert.Equal(t, 3, csvErr.Line)
	assert.ErrorIs(t, err, domain.ErrDescriptionRequired)
	assert.Empty(t, txRepo.Transactions)
	assert.Empty(t, events.Types())
}

func TestTransactionService_ImportCSVCategoryMismatch(t *testing.T) {
	svc, txRepo, _, _ := setupTransactionService()

	csv := "Data,Descrição,Categoria,Valor,Tipo\n" +
		"2024-01-05,Conta,Salário,10.00,saída\n"

	_, err := svc.ImportCSV(context.Background(), 1, strings.NewReader(csv))
	assert.ErrorIs(t, err, domain.ErrCategoryTypeMismatch)
	assert.Empty(t, txRepo.Transactions)
}

func TestTransactionService_ImportCSVEmpty(t *testing.T) {
	svc, txRepo, _, events := setupTransactionService()

	result, err := svc.ImportCSV(context.Background(), 1, strings.NewReader("Data,Descrição,Categoria,Valor,Tipo\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, result.Imported)
	assert.Empty(t, txRepo.Transactions)
	assert.Empty(t, events.Types())
}
