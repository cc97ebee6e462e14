package service

import (
	"context"
	"testing"

	"github.com/dafibh/fluxo/fluxo-backend/internal/domain"
	"github.com/dafibh/fluxo/fluxo-backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCategoryService() (*CategoryService, *testutil.MockCategoryRepository, *testutil.MockEventPublisher) {
	repo := testutil.NewMockCategoryRepository()
	events := &testutil.MockEventPublisher{}
	svc := NewCategoryService(repo)
	svc.SetEventPublisher(events)
	return svc, repo, events
}

func TestCategoryService_SeedDefaultsIsIdempotent(t *testing.T) {
	svc, repo, _ := setupCategoryService()
	ctx := context.Background()

	require.NoError(t, svc.SeedDefaults(ctx, 1))
	require.NoError(t, svc.SeedDefaults(ctx, 1))

	categories, err := svc.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, categories, len(domain.DefaultCategories))
	assert.Len(t, repo.Categories, len(domain.DefaultCategories))
}

func TestCategoryService_Create(t *testing.T) {
	svc, _, events := setupCategoryService()
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, CategoryInput{Nome: "  Marketing ", Tipo: domain.CategoryTypeExpense})
	require.NoError(t, err)
	assert.Equal(t, "Marketing", created.Nome)
	assert.False(t, created.Padrao)
	assert.Equal(t, []string{"category.created"}, events.Types())

	_, err = svc.Create(ctx, 1, CategoryInput{Nome: "Marketing", Tipo: domain.CategoryTypeBoth})
	assert.ErrorIs(t, err, domain.ErrCategoryAlreadyExists)

	// the same name is free in another client
	_, err = svc.Create(ctx, 2, CategoryInput{Nome: "Marketing", Tipo: domain.CategoryTypeBoth})
	assert.NoError(t, err)
}

func TestCategoryService_CreateValidation(t *testing.T) {
	svc, _, _ := setupCategoryService()
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, CategoryInput{Nome: "", Tipo: domain.CategoryTypeExpense})
	assert.ErrorIs(t, err, domain.ErrNameRequired)

	long := make([]rune, domain.MaxCategoryNameLength+1)
	for i := range long {
		long[i] = 'a'
	}
	_, err = svc.Create(ctx, 1, CategoryInput{Nome: string(long), Tipo: domain.CategoryTypeExpense})
	assert.ErrorIs(t, err, domain.ErrNameTooLong)

	_, err = svc.Create(ctx, 1, CategoryInput{Nome: "X", Tipo: "outro"})
	assert.ErrorIs(t, err, domain.ErrInvalidCategoryType)
}

func TestCategoryService_DefaultsAreProtected(t *testing.T) {
	svc, repo, events := setupCategoryService()
	ctx := context.Background()
	require.NoError(t, svc.SeedDefaults(ctx, 1))

	salario, err := repo.GetByName(ctx, 1, "Salário")
	require.NoError(t, err)

	_, err = svc.Update(ctx, 1, salario.ID, CategoryInput{Nome: "Salario", Tipo: salario.Tipo})
	assert.ErrorIs(t, err, domain.ErrDefaultCategoryImmutable)

	_, err = svc.Update(ctx, 1, salario.ID, CategoryInput{Nome: salario.Nome, Tipo: domain.CategoryTypeBoth})
	assert.ErrorIs(t, err, domain.ErrDefaultCategoryImmutable)

	err = svc.Delete(ctx, 1, salario.ID)
	assert.ErrorIs(t, err, domain.ErrDefaultCategoryImmutable)

	// an unchanged save is not an edit
	same, err := svc.Update(ctx, 1, salario.ID, CategoryInput{Nome: salario.Nome, Tipo: salario.Tipo})
	require.NoError(t, err)
	assert.Equal(t, salario.ID, same.ID)

	assert.Empty(t, events.Types())
	_, err = repo.GetByID(ctx, 1, salario.ID)
	assert.NoError(t, err)
}

func TestCategoryService_RenameMovesReferences(t *testing.T) {
	svc, repo, events := setupCategoryService()
	ctx := context.Background()

	txRepo := testutil.NewMockTransactionRepository()
	goalRepo := testutil.NewMockGoalRepository()
	repo.Transactions = txRepo
	repo.Goals = goalRepo

	old, err := svc.Create(ctx, 1, CategoryInput{Nome: "Mkt", Tipo: domain.CategoryTypeExpense})
	require.NoError(t, err)
	txRepo.AddTransaction(&domain.Transaction{ClientID: 1, Categoria: "Mkt", Operacao: domain.OperationExpense, Valor: decimal.NewFromInt(10), Data: "2024-01-05"})
	txRepo.AddTransaction(&domain.Transaction{ClientID: 2, Categoria: "Mkt", Operacao: domain.OperationExpense, Valor: decimal.NewFromInt(10), Data: "2024-01-05"})
	goalRepo.AddGoal(&domain.Goal{ClientID: 1, Categoria: "Mkt", Mes: 1, Ano: 2024, ValorMeta: decimal.NewFromInt(100)})

	renamed, err := svc.Update(ctx, 1, old.ID, CategoryInput{Nome: "Marketing", Tipo: domain.CategoryTypeExpense})
	require.NoError(t, err)
	assert.Equal(t, "Marketing", renamed.Nome)
	assert.NotEqual(t, old.ID, renamed.ID)

	_, err = repo.GetByName(ctx, 1, "Mkt")
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)
	assert.Equal(t, "Marketing", txRepo.Transactions[1].Categoria)
	assert.Equal(t, "Mkt", txRepo.Transactions[2].Categoria, "other clients keep their names")
	assert.Equal(t, "Marketing", goalRepo.Goals[1].Categoria)

	assert.Equal(t, []string{"category.created", "category.deleted", "category.created"}, events.Types())
}

func TestCategoryService_RenameToExistingName(t *testing.T) {
	svc, _, _ := setupCategoryService()
	ctx := context.Background()

	a, err := svc.Create(ctx, 1, CategoryInput{Nome: "A", Tipo: domain.CategoryTypeExpense})
	require.NoError(t, err)
	_, err = svc.Create(ctx, 1, CategoryInput{Nome: "B", Tipo: domain.CategoryTypeExpense})
	require.NoError(t, err)

	_, err = svc.Update(ctx, 1, a.ID, CategoryInput{Nome: "B", Tipo: domain.CategoryTypeExpense})
	assert.ErrorIs(t, err, domain.ErrCategoryAlreadyExists)
}

func TestCategoryService_UpdateTypeOnly(t *testing.T) {
	svc, _, events := setupCategoryService()
	ctx := context.Background()

	c, err := svc.Create(ctx, 1, CategoryInput{Nome: "Freelas", Tipo: domain.CategoryTypeIncome})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, 1, c.ID, CategoryInput{Nome: "Freelas", Tipo: domain.CategoryTypeBoth})
	require.NoError(t, err)
	assert.Equal(t, c.ID, updated.ID)
	assert.Equal(t, domain.CategoryTypeBoth, updated.Tipo)
	assert.Equal(t, []string{"category.created", "category.updated"}, events.Types())
}

func TestCategoryService_TypeChangeRejectedByExistingTransactions(t *testing.T) {
	svc, repo, events := setupCategoryService()
	ctx := context.Background()

	txRepo := testutil.NewMockTransactionRepository()
	repo.Transactions = txRepo

	c, err := svc.Create(ctx, 1, CategoryInput{Nome: "Extras", Tipo: domain.CategoryTypeBoth})
	require.NoError(t, err)
	txRepo.AddTransaction(&domain.Transaction{ClientID: 1, Categoria: "Extras", Operacao: domain.OperationExpense, Valor: decimal.NewFromInt(30), Data: "2024-01-05"})
	txRepo.AddTransaction(&domain.Transaction{ClientID: 2, Categoria: "Extras", Operacao: domain.OperationIncome, Valor: decimal.NewFromInt(30), Data: "2024-01-05"})

	_, err = svc.Update(ctx, 1, c.ID, CategoryInput{Nome: "Extras", Tipo: domain.CategoryTypeIncome})
	assert.ErrorIs(t, err, domain.ErrCategoryInUse)

	_, err = svc.Update(ctx, 1, c.ID, CategoryInput{Nome: "Bicos", Tipo: domain.CategoryTypeIncome})
	assert.ErrorIs(t, err, domain.ErrCategoryInUse, "a rename carrying a new type is checked too")

	stored, err := repo.GetByID(ctx, 1, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryTypeBoth, stored.Tipo)
	assert.Equal(t, "Extras", txRepo.Transactions[1].Categoria)

	// other clients' transactions do not count
	updated, err := svc.Update(ctx, 1, c.ID, CategoryInput{Nome: "Extras", Tipo: domain.CategoryTypeExpense})
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryTypeExpense, updated.Tipo)
	assert.Equal(t, []string{"category.created", "category.updated"}, events.Types())
}

func TestCategoryService_Delete(t *testing.T) {
	svc, _, events := setupCategoryService()
	ctx := context.Background()

	c, err := svc.Create(ctx, 1, CategoryInput{Nome: "Temp", Tipo: domain.CategoryTypeBoth})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, 1, c.ID))
	assert.ErrorIs(t, svc.Delete(ctx, 1, c.ID), domain.ErrCategoryNotFound)
	assert.Equal(t, []string{"category.created", "category.deleted"}, events.Types())
}

func TestCategoryService_ScopedByClient(t *testing.T) {
	svc, _, _ := setupCategoryService()
	ctx := context.Background()

	c, err := svc.Create(ctx, 1, CategoryInput{Nome: "Privada", Tipo: domain.CategoryTypeBoth})
	require.NoError(t, err)

	_, err = svc.Update(ctx, 2, c.ID, CategoryInput{Nome: "Roubada", Tipo: domain.CategoryTypeBoth})
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, 2, c.ID), domain.ErrCategoryNotFound)
}
