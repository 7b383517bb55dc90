package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"budgetgrid/internal/aggregate"
	"budgetgrid/internal/apiclient"
	"budgetgrid/internal/domain"
	"budgetgrid/internal/editor"
	"budgetgrid/internal/logger"
	"budgetgrid/internal/months"
	"budgetgrid/internal/tree"
)

// CategoryHandler renders one budget's category table and the add-category
// form, and drives the save workflow.
type CategoryHandler struct {
	api      CategoryAPI
	budgets  BudgetAPI
	sessions *tableSessions
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(api CategoryAPI, budgets BudgetAPI) *CategoryHandler {
	return &CategoryHandler{
		api:      api,
		budgets:  budgets,
		sessions: newTableSessions(),
	}
}

// tableCell is one rendered month cell.
type tableCell struct {
	Field        string
	Editable     bool
	PriceInMoney float64
	PricePerUnit float64
	UnitCount    float64
}

// tableRow is one rendered table row.
type tableRow struct {
	ID         int64
	Name       string
	Level      int
	RowClass   string
	Taxable    bool
	TaxValue   string
	Cells      []tableCell
	Total      float64
	Deletable  bool
	Expandable bool
	Expanded   bool
}

// Table renders the category table: fetch budget header and tree, aggregate,
// flatten against the budget's expand state, render. The two fetches are
// independent and run concurrently.
func (h *CategoryHandler) Table(c *gin.Context) {
	budgetID, err := parsePathID(c, "id")
	if err != nil {
		flashError(c, err)
		redirect(c, "/budgets")
		return
	}

	var (
		budget *domain.Budget
		loaded []*domain.Category
	)
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		var err error
		budget, err = h.budgets.GetBudget(ctx, budgetID)
		return err
	})
	g.Go(func() error {
		var err error
		loaded, err = h.api.CategoryTree(ctx, budgetID)
		return err
	})
	if err := g.Wait(); err != nil {
		flashError(c, err)
		redirect(c, "/budgets")
		return
	}

	sess := h.sessions.get(budgetID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	result := aggregate.Aggregate(loaded)
	sess.refresh(loaded, result.Flat)
	rows := sess.state.Flatten(result.Flat)

	c.HTML(http.StatusOK, "table.tmpl", gin.H{
		"Title":    fmt.Sprintf("%s (%d)", budget.Name, budget.Year),
		"Flash":    takeFlash(c),
		"BudgetID": budgetID,
		"Rows":     h.viewRows(rows),
	})
}

func (h *CategoryHandler) viewRows(rows []tree.Row) []tableRow {
	view := make([]tableRow, 0, len(rows))
	for _, row := range rows {
		cat := row.Category
		metric := cat.IsMetricRow()
		leaf := cat.IsLeaf()

		cells := make([]tableCell, 0, 12)
		for _, month := range months.All() {
			cell := tableCell{}
			if mc := cat.CellForMonth(month); mc != nil {
				cell.PriceInMoney = mc.Price.PriceInMoney
				cell.PricePerUnit = mc.Price.PricePerUnit
				cell.UnitCount = mc.Price.UnitCount
				cell.Editable = leaf
				cell.Field = fmt.Sprintf("%d_%s", cat.ID, months.ShortFor(month))
			}
			cells = append(cells, cell)
		}

		taxValue := ""
		if cat.TaxRate != nil {
			taxValue = strconv.FormatFloat(*cat.TaxRate, 'f', -1, 64)
		}

		view = append(view, tableRow{
			ID:         cat.ID,
			Name:       cat.Name,
			Level:      row.Level,
			RowClass:   rowClass(cat),
			Taxable:    !leaf && !metric,
			TaxValue:   taxValue,
			Cells:      cells,
			Total:      cat.TotalAmount.PriceInMoney,
			Deletable:  !leaf && !metric,
			Expandable: row.Expandable,
			Expanded:   row.Expanded,
		})
	}
	return view
}

func rowClass(c *domain.Category) string {
	switch {
	case c.IsMetricRow():
		return "metric-row"
	case c.NestingLevel == domain.LevelBucket:
		return "parent-row"
	case c.NestingLevel == domain.LevelSub:
		return "sub-row"
	}
	return ""
}

// Toggle flips a row's expansion and returns to the table.
func (h *CategoryHandler) Toggle(c *gin.Context) {
	budgetID, err := parsePathID(c, "id")
	if err != nil {
		flashError(c, err)
		redirect(c, "/budgets")
		return
	}
	tablePath := fmt.Sprintf("/budgets/%d/table", budgetID)

	categoryID, err := strconv.ParseInt(c.Query("category"), 10, 64)
	if err != nil {
		redirect(c, tablePath)
		return
	}

	sess := h.sessions.get(budgetID)
	sess.mu.Lock()
	sess.state.Toggle(sess.flat, categoryID)
	sess.mu.Unlock()

	redirect(c, tablePath)
}

// ExpandAll restores the default fully-expanded table.
func (h *CategoryHandler) ExpandAll(c *gin.Context) {
	budgetID, err := parsePathID(c, "id")
	if err != nil {
		flashError(c, err)
		redirect(c, "/budgets")
		return
	}

	sess := h.sessions.get(budgetID)
	sess.mu.Lock()
	sess.state.ExpandAll()
	sess.mu.Unlock()

	redirect(c, fmt.Sprintf("/budgets/%d/table", budgetID))
}

// CollapseAll collapses every expandable row.
func (h *CategoryHandler) CollapseAll(c *gin.Context) {
	budgetID, err := parsePathID(c, "id")
	if err != nil {
		flashError(c, err)
		redirect(c, "/budgets")
		return
	}

	sess := h.sessions.get(budgetID)
	sess.mu.Lock()
	sess.state.CollapseAll(sess.flat)
	sess.mu.Unlock()

	redirect(c, fmt.Sprintf("/budgets/%d/table", budgetID))
}

// Save diffs the posted table values against the loaded snapshot and sends
// the resulting patches: tax changes individually, cell changes as one batch
// together with the financial-result write-back. Success or failure, it ends
// in a redirect to the table so the next render reflects server truth.
func (h *CategoryHandler) Save(c *gin.Context) {
	budgetID, err := parsePathID(c, "id")
	if err != nil {
		flashError(c, err)
		redirect(c, "/budgets")
		return
	}
	tablePath := fmt.Sprintf("/budgets/%d/table", budgetID)

	sess := h.sessions.get(budgetID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.editor == nil {
		redirect(c, tablePath)
		return
	}

	if err := c.Request.ParseForm(); err != nil {
		flashError(c, err)
		redirect(c, tablePath)
		return
	}
	cellEdits, taxEdits := parseTableForm(c.Request.PostForm)

	changes := sess.editor.Diff(cellEdits, taxEdits)

	edited := editor.ApplyEdits(sess.loaded, cellEdits, taxEdits)
	writeback := sess.editor.FinancialWriteback(aggregate.Aggregate(edited))
	batch := append(changes.CellPatches, writeback...)

	if len(changes.TaxPatches) == 0 && len(batch) == 0 {
		setFlash(c, "info", "Nothing to save")
		redirect(c, tablePath)
		return
	}

	var saveErr error
	for _, patch := range changes.TaxPatches {
		if err := h.api.UpdateCategoryTax(c.Request.Context(), patch.CategoryID, patch.TaxRate); err != nil {
			saveErr = err
		}
	}
	if err := h.api.UpdateCells(c.Request.Context(), batch); err != nil {
		saveErr = err
	}

	if saveErr != nil {
		flashError(c, saveErr)
	} else {
		setFlash(c, "info", "Saved")
	}
	redirect(c, tablePath)
}

// parseTableForm translates the posted inputs into typed edits. Field names
// are ppu_<categoryID>_<mon>, uc_<categoryID>_<mon>, and tax_<categoryID>;
// unparsable fields are skipped with a log line.
func parseTableForm(form map[string][]string) ([]editor.CellEdit, []editor.TaxEdit) {
	log := logger.Get()
	cellIndex := make(map[string]*editor.CellEdit)
	var taxEdits []editor.TaxEdit

	for name, values := range form {
		if len(values) == 0 {
			continue
		}
		raw := values[0]

		if id, ok := cutPrefixID(name, "tax_"); ok {
			var rate *float64
			if raw != "" {
				parsed, err := strconv.ParseFloat(raw, 64)
				if err != nil {
					log.Warnw("unparsable tax value, skipping", "field", name, "value", raw)
					continue
				}
				rate = &parsed
			}
			taxEdits = append(taxEdits, editor.TaxEdit{CategoryID: id, TaxRate: rate})
			continue
		}

		prefix := ""
		switch {
		case len(name) > 4 && name[:4] == "ppu_":
			prefix = "ppu_"
		case len(name) > 3 && name[:3] == "uc_":
			prefix = "uc_"
		default:
			continue
		}

		id, month, ok := splitCellField(name[len(prefix):])
		if !ok {
			log.Warnw("unparsable cell field, skipping", "field", name)
			continue
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			log.Warnw("unparsable cell value, skipping", "field", name, "value", raw)
			continue
		}

		key := name[len(prefix):]
		edit, exists := cellIndex[key]
		if !exists {
			edit = &editor.CellEdit{CategoryID: id, Month: month}
			cellIndex[key] = edit
		}
		if prefix == "ppu_" {
			v := value
			edit.PricePerUnit = &v
		} else {
			v := value
			edit.UnitCount = &v
		}
	}

	cellEdits := make([]editor.CellEdit, 0, len(cellIndex))
	for _, edit := range cellIndex {
		cellEdits = append(cellEdits, *edit)
	}
	return cellEdits, taxEdits
}

func cutPrefixID(name, prefix string) (int64, bool) {
	if len(name) <= len(prefix) || name[:len(prefix)] != prefix {
		return 0, false
	}
	id, err := strconv.ParseInt(name[len(prefix):], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// splitCellField splits "<categoryID>_<mon>" into its parts.
func splitCellField(field string) (int64, months.Month, bool) {
	sep := -1
	for i := 0; i < len(field); i++ {
		if field[i] == '_' {
			sep = i
			break
		}
	}
	if sep <= 0 {
		return 0, "", false
	}
	id, err := strconv.ParseInt(field[:sep], 10, 64)
	if err != nil {
		return 0, "", false
	}
	month, ok := months.FromShort(field[sep+1:])
	if !ok {
		return 0, "", false
	}
	return id, month, true
}

// DeleteCategory deletes a category from the table. Leaf rows (nesting level
// 2) are not deletable here: the call is never issued and the row stays.
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	budgetID, err := parsePathID(c, "id")
	if err != nil {
		flashError(c, err)
		redirect(c, "/budgets")
		return
	}
	tablePath := fmt.Sprintf("/budgets/%d/table", budgetID)

	categoryID, err := parsePathID(c, "cid")
	if err != nil {
		flashError(c, err)
		redirect(c, tablePath)
		return
	}

	sess := h.sessions.get(budgetID)
	sess.mu.Lock()
	node := sess.find(categoryID)
	sess.mu.Unlock()

	if node != nil && (node.IsLeaf() || node.IsMetricRow()) {
		redirect(c, tablePath)
		return
	}

	if err := h.api.DeleteCategory(c.Request.Context(), categoryID); err != nil {
		flashError(c, err)
	} else {
		setFlash(c, "info", "Category deleted")
	}
	redirect(c, tablePath)
}

// NewForm renders the add-category form. The parent dropdown is populated
// from the previous nesting level of the requested target level.
func (h *CategoryHandler) NewForm(c *gin.Context) {
	budgetID, err := parsePathID(c, "id")
	if err != nil {
		flashError(c, err)
		redirect(c, "/budgets")
		return
	}

	level, err := strconv.Atoi(c.DefaultQuery("level", "0"))
	if err != nil || level < domain.LevelBucket || level > domain.LevelLeaf {
		level = domain.LevelBucket
	}

	var parents []*domain.Category
	if level > domain.LevelBucket {
		parents, err = h.api.ListCategories(c.Request.Context(), level-1, nil)
		if err != nil {
			flashError(c, err)
			parents = nil
		}
	}

	c.HTML(http.StatusOK, "category_form.tmpl", gin.H{
		"Title":        "Add category",
		"Flash":        takeFlash(c),
		"BudgetID":     budgetID,
		"Descriptions": domain.Descriptions(),
		"Parents":      parents,
		"Form":         categoryForm{NestingLevel: level},
	})
}

type categoryForm struct {
	Name                string  `form:"name" binding:"required"`
	NestingLevel        int     `form:"nestingLevel" binding:"nesting_level"`
	CategoryDescription string  `form:"categoryDescription" binding:"omitempty,category_description"`
	ParentID            *int64  `form:"parentId"`
	TaxRate             float64 `form:"taxRate"`
	TaxDisabled         bool    `form:"taxDisabled"`
	UnitMoney           bool    `form:"unitMoney"`
	UnitTons            bool    `form:"unitTons"`
	UnitLiters          bool    `form:"unitLiters"`
	UnitPieces          bool    `form:"unitPieces"`
	AllMonths           string  `form:"allMonths"`
}

// validate applies the level-dependent required-field rules: a bucket needs a
// description, lower levels need a parent, and a line item needs money plus
// one unit type.
func (f *categoryForm) validate() string {
	switch f.NestingLevel {
	case domain.LevelBucket:
		if f.CategoryDescription == "" {
			return "A top-level category needs a bucket description"
		}
	case domain.LevelSub:
		if f.ParentID == nil {
			return "A sub-category needs a parent"
		}
	case domain.LevelLeaf:
		if f.ParentID == nil {
			return "A line item needs a parent"
		}
		if !f.UnitMoney || !(f.UnitTons || f.UnitLiters || f.UnitPieces) {
			return "A line item needs the money unit and one of tons, liters, or pieces"
		}
	}
	return ""
}

// valueTypes maps the checked unit flags to wire value types.
func (f *categoryForm) valueTypes() []domain.ValueType {
	var types []domain.ValueType
	if f.UnitMoney {
		types = append(types, domain.ValueTypeMoney)
	}
	if f.UnitTons {
		types = append(types, domain.ValueTypeWeight)
	}
	if f.UnitLiters {
		types = append(types, domain.ValueTypeLiters)
	}
	if f.UnitPieces {
		types = append(types, domain.ValueTypePieces)
	}
	return types
}

// Create posts a new category built from the form and returns to the table.
func (h *CategoryHandler) Create(c *gin.Context) {
	budgetID, err := parsePathID(c, "id")
	if err != nil {
		flashError(c, err)
		redirect(c, "/budgets")
		return
	}
	formPath := fmt.Sprintf("/budgets/%d/categories/new", budgetID)
	tablePath := fmt.Sprintf("/budgets/%d/table", budgetID)

	var form categoryForm
	if err := c.ShouldBind(&form); err != nil {
		setFlash(c, "error", "Please fill in the required fields")
		redirect(c, formPath)
		return
	}
	if msg := form.validate(); msg != "" {
		setFlash(c, "error", msg)
		redirect(c, formPath)
		return
	}

	input := apiclient.NewCategory{
		Name:         form.Name,
		NestingLevel: form.NestingLevel,
		BudgetID:     budgetID,
		ParentID:     form.ParentID,
		ValueType:    form.valueTypes(),
		UnitPrice:    h.unitPrices(c, form.AllMonths),
	}
	if form.CategoryDescription != "" {
		desc := domain.CategoryDescription(form.CategoryDescription)
		input.CategoryDescription = &desc
	}
	// A disabled or zero tax travels as null.
	if !form.TaxDisabled && form.TaxRate != 0 {
		rate := form.TaxRate
		input.TaxRate = &rate
	}

	if err := h.api.CreateCategory(c.Request.Context(), input); err != nil {
		flashError(c, err)
		redirect(c, formPath)
		return
	}

	setFlash(c, "info", fmt.Sprintf("Category %q created", form.Name))
	redirect(c, tablePath)
}

// unitPrices collects the monthly values from the form. A non-empty
// "all months" value wins over the individual fields.
func (h *CategoryHandler) unitPrices(c *gin.Context, allMonths string) []domain.MonthValue {
	var fill *float64
	if allMonths != "" {
		if parsed, err := strconv.ParseFloat(allMonths, 64); err == nil {
			fill = &parsed
		}
	}

	prices := make([]domain.MonthValue, 0, 12)
	for _, short := range months.Short() {
		month, _ := months.FromShort(short)
		value := 0.0
		if fill != nil {
			value = *fill
		} else if raw := c.PostForm(short); raw != "" {
			if parsed, err := strconv.ParseFloat(raw, 64); err == nil {
				value = parsed
			}
		}
		prices = append(prices, domain.MonthValue{Month: month, Value: value})
	}
	return prices
}
