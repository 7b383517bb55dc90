package handlers

import (
	"context"

	"budgetgrid/internal/apiclient"
	"budgetgrid/internal/domain"
	"budgetgrid/internal/pagination"
)

// BudgetAPI is the slice of the backend client the budget pages need.
type BudgetAPI interface {
	ListBudgets(ctx context.Context, page pagination.PageRequest) (*pagination.Page[domain.Budget], error)
	GetBudget(ctx context.Context, id int64) (*domain.Budget, error)
	CreateBudget(ctx context.Context, input apiclient.BudgetInput) error
	UpdateBudget(ctx context.Context, id int64, input apiclient.BudgetInput) error
	DeleteBudget(ctx context.Context, id int64) error
}

// CategoryAPI is the slice of the backend client the category table needs.
type CategoryAPI interface {
	CategoryTree(ctx context.Context, budgetID int64) ([]*domain.Category, error)
	ListCategories(ctx context.Context, nestingLevel int, parentID *int64) ([]*domain.Category, error)
	CreateCategory(ctx context.Context, input apiclient.NewCategory) error
	UpdateCategoryTax(ctx context.Context, categoryID int64, taxRate *float64) error
	DeleteCategory(ctx context.Context, categoryID int64) error
	UpdateCells(ctx context.Context, batch []domain.BatchCell) error
}

var (
	_ BudgetAPI   = (*apiclient.Client)(nil)
	_ CategoryAPI = (*apiclient.Client)(nil)
)
