package testutil

import (
	"sync/atomic"

	"budgetgrid/internal/domain"
	"budgetgrid/internal/months"
)

// counter provides unique ids across fixtures within a test run. It starts
// above the small literal ids tests assign by hand so the two never collide.
var counter atomic.Int64

func init() {
	counter.Store(1000)
}

// NextID returns a fresh positive id.
func NextID() int64 {
	return counter.Add(1)
}

// MonthlyCells builds twelve cells with the same price, one per month in
// canonical order, each with its own cell id.
func MonthlyCells(price domain.Price) []domain.Cell {
	cells := make([]domain.Cell, 0, 12)
	for _, month := range months.All() {
		cells = append(cells, domain.Cell{
			ID:    NextID(),
			Month: month,
			Price: price,
		})
	}
	return cells
}

// Bucket builds a level-0 category tagged with the given description and a
// flat monthly priceInMoney.
func Bucket(name string, desc domain.CategoryDescription, monthlyMoney float64) *domain.Category {
	d := desc
	return &domain.Category{
		ID:                  NextID(),
		Name:                name,
		PrimaryType:         domain.ValueTypeMoney,
		NestingLevel:        domain.LevelBucket,
		CategoryDescription: &d,
		Cells:               MonthlyCells(domain.Price{PriceInMoney: monthlyMoney}),
	}
}

// Leaf builds a level-2 line item with twelve cells of the given unit price
// and count.
func Leaf(name string, pricePerUnit, unitCount float64) *domain.Category {
	additional := domain.ValueTypePieces
	return &domain.Category{
		ID:             NextID(),
		Name:           name,
		PrimaryType:    domain.ValueTypeMoney,
		AdditionalType: &additional,
		NestingLevel:   domain.LevelLeaf,
		Cells: MonthlyCells(domain.Price{
			PriceInMoney: pricePerUnit * unitCount,
			PricePerUnit: pricePerUnit,
			UnitCount:    unitCount,
		}),
	}
}

// Sub builds a level-1 sub-category over the given leaves.
func Sub(name string, leaves ...*domain.Category) *domain.Category {
	return &domain.Category{
		ID:              NextID(),
		Name:            name,
		PrimaryType:     domain.ValueTypeMoney,
		NestingLevel:    domain.LevelSub,
		ChildCategories: leaves,
	}
}

// WithChildren attaches children to a bucket and returns it.
func WithChildren(bucket *domain.Category, children ...*domain.Category) *domain.Category {
	bucket.ChildCategories = children
	return bucket
}

// WithFinancialResults attaches stored result series for the given metric
// types, one zero-valued financial cell per month.
func WithFinancialResults(category *domain.Category, metricTypes ...domain.MetricType) *domain.Category {
	for _, metricType := range metricTypes {
		cells := make([]domain.FinancialCell, 0, 12)
		for _, month := range months.All() {
			cells = append(cells, domain.FinancialCell{
				ID:    NextID(),
				Month: month,
			})
		}
		category.FinancialResults = append(category.FinancialResults, domain.FinancialResult{
			FinancialMetricType: metricType,
			Cells:               cells,
		})
	}
	return category
}

// PnLTree builds the standard test tree: INCOME 1000/mo (with stored EBITDA,
// EBIT, and NETTO_PELNA results), EXPENSES 400/mo, AMORTIZATIONS 100/mo,
// DEPRECIATION 50/mo.
func PnLTree() []*domain.Category {
	income := WithFinancialResults(
		Bucket("Sales", domain.DescriptionIncome, 1000),
		domain.MetricEBITDA, domain.MetricEBIT, domain.MetricNetProfit,
	)
	return []*domain.Category{
		income,
		Bucket("Operating costs", domain.DescriptionExpenses, 400),
		Bucket("Amortizations", domain.DescriptionAmortizations, 100),
		Bucket("Depreciation", domain.DescriptionDepreciation, 50),
	}
}
