// Package aggregate rolls a budget's category tree up into a display-ready
// snapshot: every node gets canonical monthly cells and a recomputed yearly
// total, and one synthetic row per financial metric type is derived from the
// tagged top-level buckets.
//
// Aggregate never mutates its input. It deep-copies the tree and returns a
// fresh Result, so callers can hold the loaded snapshot and the aggregated
// view side by side.
package aggregate

import (
	"sort"

	"budgetgrid/internal/domain"
	"budgetgrid/internal/months"
)

// Result is one aggregation pass over a category tree.
type Result struct {
	// Tree holds aggregated copies of the input roots, children included.
	Tree []*domain.Category
	// Flat lists every node in pre-order visitation, followed by the
	// synthetic metric rows.
	Flat []*domain.Category
	// Metrics holds only the synthetic metric rows, in derivation order.
	Metrics []*domain.Category

	byID map[int64]*domain.Category
}

// ByID returns the aggregated node with the given id, or nil.
func (r *Result) ByID(id int64) *domain.Category {
	return r.byID[id]
}

// Aggregate computes totals for every node of the tree and derives the
// synthetic metric rows. The input is never modified.
func Aggregate(tree []*domain.Category) *Result {
	roots := domain.CloneTree(tree)

	var flat []*domain.Category
	rollUp(roots, &flat)

	metrics := deriveMetrics(flat)
	flat = append(flat, metrics...)

	byID := make(map[int64]*domain.Category, len(flat))
	for _, c := range flat {
		byID[c.ID] = c
	}

	return &Result{Tree: roots, Flat: flat, Metrics: metrics, byID: byID}
}

// rollUp walks the tree depth-first, appending nodes to the flat list in
// pre-order. Children are aggregated before their parent so parent cells can
// be combined from already-final child cells.
//
// Combining policy, held invariant across the whole table: priceInMoney and
// unitCount sum over immediate children; pricePerUnit is derived as
// priceInMoney/unitCount (0 when unitCount is 0), never summed.
func rollUp(categories []*domain.Category, flat *[]*domain.Category) {
	for _, category := range categories {
		*flat = append(*flat, category)

		if len(category.ChildCategories) > 0 {
			rollUp(category.ChildCategories, flat)

			sums := make(map[months.Month]domain.Price, 12)
			for _, child := range category.ChildCategories {
				for _, cell := range child.Cells {
					sum := sums[cell.Month]
					sum.PriceInMoney += cell.Price.PriceInMoney
					sum.UnitCount += cell.Price.UnitCount
					sums[cell.Month] = sum
				}
			}

			cells := make([]domain.Cell, 0, 12)
			for i, month := range months.All() {
				price := sums[month]
				if price.UnitCount > 0 {
					price.PricePerUnit = price.PriceInMoney / price.UnitCount
				} else {
					price.PricePerUnit = 0
				}
				cells = append(cells, domain.Cell{
					ID:    int64(i + 1),
					Month: month,
					Price: price,
				})
			}
			category.Cells = cells
		} else {
			sort.SliceStable(category.Cells, func(i, j int) bool {
				return months.Index(category.Cells[i].Month) < months.Index(category.Cells[j].Month)
			})
		}

		category.TotalAmount = totalOf(category.Cells)
	}
}

func totalOf(cells []domain.Cell) domain.TotalAmount {
	var total domain.TotalAmount
	for _, cell := range cells {
		total.PriceInMoney += cell.Price.PriceInMoney
		total.UnitCount += cell.Price.UnitCount
	}
	return total
}

// metricOrder fixes the derivation order of metric rows by formula breadth.
var metricOrder = []domain.MetricType{
	domain.MetricEBITDA,
	domain.MetricEBIT,
	domain.MetricNetProfit,
}

// deriveMetrics builds one synthetic category per distinct financial metric
// type found among the level-0 categories' stored financial results. Metric
// values are computed from the monthly priceInMoney of the tagged buckets; a
// missing bucket contributes zero for every month instead of failing.
func deriveMetrics(flat []*domain.Category) []*domain.Category {
	var level0 []*domain.Category
	for _, c := range flat {
		if c.NestingLevel == domain.LevelBucket {
			level0 = append(level0, c)
		}
	}
	if len(level0) == 0 {
		return nil
	}

	wanted := make(map[domain.MetricType]bool)
	for _, c := range level0 {
		for _, fr := range c.FinancialResults {
			wanted[fr.FinancialMetricType] = true
		}
	}
	if len(wanted) == 0 {
		return nil
	}

	buckets := make(map[domain.CategoryDescription]*domain.Category)
	for _, desc := range domain.Descriptions() {
		buckets[desc] = findBucket(level0, desc)
	}

	nextID := maxID(flat) + 1
	var metrics []*domain.Category
	for _, metricType := range metricOrder {
		if !wanted[metricType] {
			continue
		}
		metric := deriveMetric(metricType, buckets)
		metric.ID = nextID
		nextID++
		metric.Position = len(level0) + len(metrics) + 1
		metrics = append(metrics, metric)
	}
	return metrics
}

func deriveMetric(metricType domain.MetricType, buckets map[domain.CategoryDescription]*domain.Category) *domain.Category {
	income := buckets[domain.DescriptionIncome]
	expenses := buckets[domain.DescriptionExpenses]
	amortizations := buckets[domain.DescriptionAmortizations]
	depreciation := buckets[domain.DescriptionDepreciation]
	tax := buckets[domain.DescriptionTax]
	interest := buckets[domain.DescriptionInterest]

	cells := make([]domain.Cell, 0, 12)
	for i, month := range months.All() {
		var value float64
		switch metricType {
		case domain.MetricEBITDA:
			value = monthMoney(income, month) - monthMoney(expenses, month)
		case domain.MetricEBIT:
			value = monthMoney(income, month) - monthMoney(expenses, month) -
				monthMoney(amortizations, month) - monthMoney(depreciation, month)
		case domain.MetricNetProfit:
			value = monthMoney(income, month) - monthMoney(expenses, month) -
				monthMoney(tax, month) - monthMoney(amortizations, month) -
				monthMoney(depreciation, month) - monthMoney(interest, month)
		}
		// Unit fields are meaningless across buckets and stay zero.
		cells = append(cells, domain.Cell{
			ID:    int64(i + 1),
			Month: month,
			Price: domain.Price{PriceInMoney: value},
		})
	}

	return &domain.Category{
		Name:         string(metricType),
		PrimaryType:  domain.ValueTypeMoney,
		NestingLevel: domain.LevelBucket,
		Cells:        cells,
		TotalAmount:  totalOf(cells),
	}
}

// findBucket returns the first level-0 category tagged with desc, or nil when
// the bucket is absent. Callers treat a nil bucket as all-zero.
func findBucket(level0 []*domain.Category, desc domain.CategoryDescription) *domain.Category {
	for _, c := range level0 {
		if c.CategoryDescription != nil && *c.CategoryDescription == desc {
			return c
		}
	}
	return nil
}

// monthMoney reads a bucket's priceInMoney for one month; absent buckets and
// absent month cells both read as zero.
func monthMoney(bucket *domain.Category, month months.Month) float64 {
	if bucket == nil {
		return 0
	}
	if cell := bucket.CellForMonth(month); cell != nil {
		return cell.Price.PriceInMoney
	}
	return 0
}

func maxID(categories []*domain.Category) int64 {
	var max int64
	for _, c := range categories {
		if c.ID > max {
			max = c.ID
		}
	}
	return max
}
