package domain

import (
	"context"
	"errors"
)

// CategoryType restricts which operations a category may classify
type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "entrada"
	CategoryTypeExpense CategoryType = "saída"
	CategoryTypeBoth    CategoryType = "ambos"
)

// IsValid reports whether the type is a known category type
func (t CategoryType) IsValid() bool {
	return t == CategoryTypeIncome || t == CategoryTypeExpense || t == CategoryTypeBoth
}

// Accepts reports whether a transaction with the given operation may use this category
func (t CategoryType) Accepts(op Operation) bool {
	switch t {
	case CategoryTypeBoth:
		return true
	case CategoryTypeIncome:
		return op == OperationIncome
	case CategoryTypeExpense:
		return op == OperationExpense
	}
	return false
}

// Category is a named grouping scoped to one client. Padrao categories are
// seeded for every client and can be neither edited nor deleted.
type Category struct {
	ID       int32        `json:"id"`
	ClientID int32        `json:"clienteId"`
	Nome     string       `json:"nome"`
	Tipo     CategoryType `json:"tipo"`
	Padrao   bool         `json:"padrao"`
}

// DefaultCategories is the baseline every client starts with
var DefaultCategories = []Category{
	{Nome: "Salário", Tipo: CategoryTypeIncome, Padrao: true},
	{Nome: "Vendas", Tipo: CategoryTypeIncome, Padrao: true},
	{Nome: "Outras receitas", Tipo: CategoryTypeIncome, Padrao: true},
	{Nome: "Alimentação", Tipo: CategoryTypeExpense, Padrao: true},
	{Nome: "Moradia", Tipo: CategoryTypeExpense, Padrao: true},
	{Nome: "Transporte", Tipo: CategoryTypeExpense, Padrao: true},
	{Nome: "Saúde", Tipo: CategoryTypeExpense, Padrao: true},
	{Nome: "Educação", Tipo: CategoryTypeExpense, Padrao: true},
	{Nome: "Lazer", Tipo: CategoryTypeExpense, Padrao: true},
	{Nome: "Impostos", Tipo: CategoryTypeExpense, Padrao: true},
	{Nome: "Outros", Tipo: CategoryTypeBoth, Padrao: true},
}

// Validation constants
const (
	MaxCategoryNameLength = 100
)

// Category errors
var (
	ErrCategoryNotFound         = errors.New("category not found")
	ErrCategoryAlreadyExists    = errors.New("category with this name already exists")
	ErrInvalidCategoryType      = errors.New("category type must be entrada, saída or ambos")
	ErrDefaultCategoryImmutable = errors.New("default categories cannot be changed or deleted")
	ErrCategoryInUse            = errors.New("category has transactions its new type does not accept")
)

// CategoryRepository defines the interface for category persistence operations
type CategoryRepository interface {
	Create(ctx context.Context, category *Category) (*Category, error)
	CreateDefaults(ctx context.Context, clientID int32, defaults []Category) error
	GetByID(ctx context.Context, clientID, id int32) (*Category, error)
	GetByName(ctx context.Context, clientID int32, name string) (*Category, error)
	GetAllByClient(ctx context.Context, clientID int32) ([]*Category, error)
	UpdateType(ctx context.Context, clientID, id int32, tipo CategoryType) (*Category, error)
	// OperationsInUse returns the distinct raw operation values of the
	// client's transactions filed under the category name.
	OperationsInUse(ctx context.Context, clientID int32, name string) ([]string, error)
	// Rename replaces a category by a new one with the given name and type,
	// moving every transaction and goal that references the old name.
	Rename(ctx context.Context, clientID, id int32, newName string, tipo CategoryType) (*Category, error)
	Delete(ctx context.Context, clientID, id int32) error
}
