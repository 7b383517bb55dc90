package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"budgetgrid/internal/apiclient"
	"budgetgrid/internal/domain"
	"budgetgrid/internal/pagination"
)

// BudgetHandler renders the budget list and the add/edit budget form.
type BudgetHandler struct {
	api      BudgetAPI
	pageSize int
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(api BudgetAPI, pageSize int) *BudgetHandler {
	return &BudgetHandler{api: api, pageSize: pageSize}
}

type budgetForm struct {
	Name string `form:"name" binding:"required"`
	Year int    `form:"year" binding:"required,min=1900,max=2200"`
}

// List renders the paginated budget list. A fetch failure still renders the
// page, with a notice, so the view stays interactive.
func (h *BudgetHandler) List(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		page = pagination.PageRequest{}
	}
	page.Defaults()
	if page.Size == 20 {
		page.Size = h.pageSize
	}

	result, err := h.api.ListBudgets(c.Request.Context(), page)
	if err != nil {
		flashError(c, err)
		result = &pagination.Page[domain.Budget]{Content: []domain.Budget{}}
	}

	c.HTML(http.StatusOK, "budgets.tmpl", gin.H{
		"Title": "Budgets",
		"Flash": takeFlash(c),
		"Page":  result,
	})
}

// NewForm renders the empty add-budget form.
func (h *BudgetHandler) NewForm(c *gin.Context) {
	c.HTML(http.StatusOK, "budget_form.tmpl", gin.H{
		"Title":  "New budget",
		"Flash":  takeFlash(c),
		"Action": "/budgets",
		"Name":   "",
		"Year":   time.Now().Year(),
	})
}

// Create posts a new budget and returns to the list.
func (h *BudgetHandler) Create(c *gin.Context) {
	var form budgetForm
	if err := c.ShouldBind(&form); err != nil {
		setFlash(c, "error", "Name and year are required")
		redirect(c, "/budgets/new")
		return
	}

	err := h.api.CreateBudget(c.Request.Context(), apiclient.BudgetInput{
		Name: form.Name,
		Year: form.Year,
	})
	if err != nil {
		flashError(c, err)
		redirect(c, "/budgets/new")
		return
	}

	setFlash(c, "info", fmt.Sprintf("Budget %q created", form.Name))
	redirect(c, "/budgets")
}

// EditForm renders the edit form pre-filled with the budget's current values.
func (h *BudgetHandler) EditForm(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		flashError(c, err)
		redirect(c, "/budgets")
		return
	}

	budget, err := h.api.GetBudget(c.Request.Context(), id)
	if err != nil {
		flashError(c, err)
		redirect(c, "/budgets")
		return
	}

	c.HTML(http.StatusOK, "budget_form.tmpl", gin.H{
		"Title":  "Edit budget",
		"Flash":  takeFlash(c),
		"Action": fmt.Sprintf("/budgets/%d", id),
		"Name":   budget.Name,
		"Year":   budget.Year,
	})
}

// Update patches a budget's name and year.
func (h *BudgetHandler) Update(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		flashError(c, err)
		redirect(c, "/budgets")
		return
	}

	var form budgetForm
	if err := c.ShouldBind(&form); err != nil {
		setFlash(c, "error", "Name and year are required")
		redirect(c, fmt.Sprintf("/budgets/%d/edit", id))
		return
	}

	err = h.api.UpdateBudget(c.Request.Context(), id, apiclient.BudgetInput{
		Name: form.Name,
		Year: form.Year,
	})
	if err != nil {
		flashError(c, err)
		redirect(c, fmt.Sprintf("/budgets/%d/edit", id))
		return
	}

	setFlash(c, "info", fmt.Sprintf("Budget %q updated", form.Name))
	redirect(c, "/budgets")
}

// Delete removes a budget; its category tree goes with it on the backend.
func (h *BudgetHandler) Delete(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		flashError(c, err)
		redirect(c, "/budgets")
		return
	}

	if err := h.api.DeleteBudget(c.Request.Context(), id); err != nil {
		flashError(c, err)
	} else {
		setFlash(c, "info", "Budget deleted")
	}
	redirect(c, "/budgets")
}
