package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"budgetgrid/internal/domain"
	apperrors "budgetgrid/internal/errors"
)

// NewCategory is the category creation payload. Monthly unit prices travel as
// month-name/value pairs; value types are the checked unit flags; a disabled
// tax field travels as null.
type NewCategory struct {
	Name                string                      `json:"name"`
	NestingLevel        int                         `json:"nestingLevel"`
	CategoryDescription *domain.CategoryDescription `json:"categoryDescription"`
	BudgetID            int64                       `json:"budgetId"`
	ParentID            *int64                      `json:"parentId"`
	TaxRate             *float64                    `json:"taxRate"`
	ValueType           []domain.ValueType          `json:"valueType"`
	UnitPrice           []domain.MonthValue         `json:"unitPrice"`
	PriceChange         bool                        `json:"priceChange"`
	IsAutocomplete      bool                        `json:"isAutocomplete"`
}

// CategoryTree fetches the full nested category tree for one budget,
// including cells and stored financial results.
func (c *Client) CategoryTree(ctx context.Context, budgetID int64) ([]*domain.Category, error) {
	query := url.Values{}
	query.Set("budgetId", strconv.FormatInt(budgetID, 10))

	var tree []*domain.Category
	if err := c.do(ctx, http.MethodGet, "/api/category/full", query, nil, &tree, apperrors.ErrBudgetNotFound); err != nil {
		return nil, err
	}
	return tree, nil
}

// ListCategories fetches the flat category list for one nesting level, used
// to populate the parent dropdown of the add-category form. parentID may be
// nil to list across parents.
func (c *Client) ListCategories(ctx context.Context, nestingLevel int, parentID *int64) ([]*domain.Category, error) {
	query := url.Values{}
	query.Set("nestingLevel", strconv.Itoa(nestingLevel))
	if parentID != nil {
		query.Set("parentId", strconv.FormatInt(*parentID, 10))
	} else {
		query.Set("parentId", "")
	}

	var categories []*domain.Category
	if err := c.do(ctx, http.MethodGet, "/api/category", query, nil, &categories, nil); err != nil {
		return nil, err
	}
	return categories, nil
}

// CreateCategory posts a new category.
func (c *Client) CreateCategory(ctx context.Context, input NewCategory) error {
	return c.do(ctx, http.MethodPost, "/api/category", nil, input, nil, nil)
}

// UpdateCategoryTax patches a single category's tax rate. A nil rate clears
// it.
func (c *Client) UpdateCategoryTax(ctx context.Context, categoryID int64, taxRate *float64) error {
	body := map[string]*float64{"taxRate": taxRate}
	path := fmt.Sprintf("/api/category/%d", categoryID)
	return c.do(ctx, http.MethodPatch, path, nil, body, nil, apperrors.ErrCategoryNotFound)
}

// DeleteCategory deletes a category; the backend cascades to its children.
func (c *Client) DeleteCategory(ctx context.Context, categoryID int64) error {
	path := fmt.Sprintf("/api/category/%d", categoryID)
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil, apperrors.ErrCategoryNotFound)
}

// UpdateCells sends one batch of cell updates.
func (c *Client) UpdateCells(ctx context.Context, batch []domain.BatchCell) error {
	if len(batch) == 0 {
		return nil
	}
	return c.do(ctx, http.MethodPatch, "/api/category/full/update", nil, batch, nil, nil)
}
