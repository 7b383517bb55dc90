package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"budgetgrid/internal/domain"
	apperrors "budgetgrid/internal/errors"
	"budgetgrid/internal/pagination"
)

// BudgetInput is the create/update payload for a budget.
type BudgetInput struct {
	Name string `json:"name"`
	Year int    `json:"year"`
}

// ListBudgets fetches one page of budgets. The backend's page numbers are
// zero-based; PageRequest is one-based.
func (c *Client) ListBudgets(ctx context.Context, page pagination.PageRequest) (*pagination.Page[domain.Budget], error) {
	page.Defaults()
	query := url.Values{}
	query.Set("page", strconv.Itoa(page.Page-1))
	query.Set("size", strconv.Itoa(page.Size))

	var result pagination.Page[domain.Budget]
	if err := c.do(ctx, http.MethodGet, "/api/budget", query, nil, &result, nil); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetBudget fetches one budget by id.
func (c *Client) GetBudget(ctx context.Context, id int64) (*domain.Budget, error) {
	var budget domain.Budget
	path := fmt.Sprintf("/api/budget/%d", id)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &budget, apperrors.ErrBudgetNotFound); err != nil {
		return nil, err
	}
	return &budget, nil
}

// CreateBudget creates a new yearly budget.
func (c *Client) CreateBudget(ctx context.Context, input BudgetInput) error {
	return c.do(ctx, http.MethodPost, "/api/budget", nil, input, nil, nil)
}

// UpdateBudget patches an existing budget's name and year.
func (c *Client) UpdateBudget(ctx context.Context, id int64, input BudgetInput) error {
	path := fmt.Sprintf("/api/budget/%d", id)
	return c.do(ctx, http.MethodPatch, path, nil, input, nil, apperrors.ErrBudgetNotFound)
}

// DeleteBudget deletes a budget; the backend cascades to its categories.
func (c *Client) DeleteBudget(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/api/budget/%d", id)
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil, apperrors.ErrBudgetNotFound)
}
