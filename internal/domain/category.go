package domain

import (
	"budgetgrid/internal/months"
)

// ValueType identifies what a cell value measures on the wire.
type ValueType string

const (
	ValueTypeMoney  ValueType = "MONEY"
	ValueTypeWeight ValueType = "WEIGHT"
	ValueTypeLiters ValueType = "LITERS"
	ValueTypePieces ValueType = "PIECES"
)

// Valid reports whether v is a recognized value type.
func (v ValueType) Valid() bool {
	switch v {
	case ValueTypeMoney, ValueTypeWeight, ValueTypeLiters, ValueTypePieces:
		return true
	}
	return false
}

// CategoryDescription tags a top-level category with the P&L bucket it plays
// in the financial metric formulas.
type CategoryDescription string

const (
	DescriptionDepreciation  CategoryDescription = "DEPRECIATION"
	DescriptionTax           CategoryDescription = "TAX"
	DescriptionIncome        CategoryDescription = "INCOME"
	DescriptionAmortizations CategoryDescription = "AMORTIZATIONS"
	DescriptionExpenses      CategoryDescription = "EXPENSES"
	DescriptionInterest      CategoryDescription = "INTEREST"
)

// Descriptions lists every recognized bucket tag.
func Descriptions() []CategoryDescription {
	return []CategoryDescription{
		DescriptionDepreciation,
		DescriptionTax,
		DescriptionIncome,
		DescriptionAmortizations,
		DescriptionExpenses,
		DescriptionInterest,
	}
}

// Valid reports whether d is a recognized bucket tag.
func (d CategoryDescription) Valid() bool {
	switch d {
	case DescriptionDepreciation, DescriptionTax, DescriptionIncome,
		DescriptionAmortizations, DescriptionExpenses, DescriptionInterest:
		return true
	}
	return false
}

// MetricType identifies a derived financial metric row.
type MetricType string

const (
	MetricEBITDA    MetricType = "EBITDA"
	MetricEBIT      MetricType = "EBIT"
	MetricNetProfit MetricType = "NETTO_PELNA"
)

// Nesting levels of the category tree. Leaves are the unit-priced line items.
const (
	LevelBucket = 0
	LevelSub    = 1
	LevelLeaf   = 2
)

// Price is the money/unit-price/unit-count triple backing a cell.
type Price struct {
	PriceInMoney float64 `json:"priceInMoney"`
	PricePerUnit float64 `json:"pricePerUnit"`
	UnitCount    float64 `json:"unitCount"`
}

// Cell is one category's value for one calendar month.
type Cell struct {
	ID    int64        `json:"id"`
	Month months.Month `json:"month"`
	Price Price        `json:"price"`
}

// FinancialCell is one month of a stored financial result. Unlike Cell it
// carries a plain value, not a price triple.
type FinancialCell struct {
	ID    int64        `json:"id"`
	Month months.Month `json:"month"`
	Value float64      `json:"value"`
}

// FinancialResult is a stored per-metric series of monthly values, written
// back on save from the freshly derived metric rows.
type FinancialResult struct {
	FinancialMetricType MetricType      `json:"financialMetricType"`
	Cells               []FinancialCell `json:"cells"`
}

// TotalAmount is the derived yearly total of a category. It is recomputed on
// every aggregation pass and never sent back to the backend.
type TotalAmount struct {
	PriceInMoney float64 `json:"priceInMoney"`
	UnitCount    float64 `json:"unitCount"`
}

// Category is a node of a budget's P&L tree. A parent exclusively owns its
// children; deleting a parent cascades on the backend.
type Category struct {
	ID                  int64                `json:"id"`
	Name                string               `json:"name"`
	TaxRate             *float64             `json:"taxRate"`
	PrimaryType         ValueType            `json:"primaryType"`
	AdditionalType      *ValueType           `json:"additionalType"`
	NestingLevel        int                  `json:"nestingLevel"`
	Position            int                  `json:"position"`
	HidePrice           bool                 `json:"hidePrice"`
	CategoryDescription *CategoryDescription `json:"categoryDescription"`
	TotalAmount         TotalAmount          `json:"totalAmount"`
	Cells               []Cell               `json:"cells"`
	ChildCategories     []*Category          `json:"childCategories"`
	FinancialResults    []FinancialResult    `json:"financialResults"`
}

// IsLeaf reports whether c is a unit-priced line item. Leaves cannot have
// children and are not deletable from the table.
func (c *Category) IsLeaf() bool {
	return c.NestingLevel == LevelLeaf
}

// Expandable reports whether c has children to show.
func (c *Category) Expandable() bool {
	return len(c.ChildCategories) > 0
}

// IsMetricRow reports whether c is a derived metric row rather than a real
// category. Metric rows are named after their metric type.
func (c *Category) IsMetricRow() bool {
	switch MetricType(c.Name) {
	case MetricEBITDA, MetricEBIT, MetricNetProfit:
		return true
	}
	return false
}

// CellForMonth returns the cell for the given month, or nil when the category
// has no value for it.
func (c *Category) CellForMonth(m months.Month) *Cell {
	for i := range c.Cells {
		if c.Cells[i].Month == m {
			return &c.Cells[i]
		}
	}
	return nil
}

// Clone returns a deep copy of c, including its subtree. Aggregation works on
// clones so loaded snapshots stay untouched.
func (c *Category) Clone() *Category {
	if c == nil {
		return nil
	}
	clone := *c
	if c.TaxRate != nil {
		rate := *c.TaxRate
		clone.TaxRate = &rate
	}
	if c.AdditionalType != nil {
		at := *c.AdditionalType
		clone.AdditionalType = &at
	}
	if c.CategoryDescription != nil {
		desc := *c.CategoryDescription
		clone.CategoryDescription = &desc
	}
	clone.Cells = make([]Cell, len(c.Cells))
	copy(clone.Cells, c.Cells)
	clone.FinancialResults = make([]FinancialResult, len(c.FinancialResults))
	for i, fr := range c.FinancialResults {
		cells := make([]FinancialCell, len(fr.Cells))
		copy(cells, fr.Cells)
		clone.FinancialResults[i] = FinancialResult{
			FinancialMetricType: fr.FinancialMetricType,
			Cells:               cells,
		}
	}
	clone.ChildCategories = make([]*Category, len(c.ChildCategories))
	for i, child := range c.ChildCategories {
		clone.ChildCategories[i] = child.Clone()
	}
	return &clone
}

// CloneTree deep-copies a forest of categories.
func CloneTree(categories []*Category) []*Category {
	clones := make([]*Category, len(categories))
	for i, c := range categories {
		clones[i] = c.Clone()
	}
	return clones
}

// BatchCell is one entry of the batch cell-update payload.
type BatchCell struct {
	ID        int64     `json:"id"`
	Value     float64   `json:"value"`
	ValueType ValueType `json:"valueType"`
}

// MonthValue pairs a month name with a plain value, as expected by the
// category creation endpoint.
type MonthValue struct {
	Month months.Month `json:"month"`
	Value float64      `json:"value"`
}
