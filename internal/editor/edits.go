package editor

import (
	"budgetgrid/internal/domain"
	"budgetgrid/internal/months"
)

// ApplyEdits produces the edited snapshot: a deep copy of the loaded tree
// with the posted values written into the matching leaf cells and tax rates.
// An edited cell's priceInMoney is recomputed as pricePerUnit * unitCount.
// The loaded snapshot is never touched, so Diff can keep comparing against
// it.
func ApplyEdits(loaded []*domain.Category, cellEdits []CellEdit, taxEdits []TaxEdit) []*domain.Category {
	edited := domain.CloneTree(loaded)

	type cellKey struct {
		categoryID int64
		month      months.Month
	}
	cells := make(map[cellKey]CellEdit, len(cellEdits))
	for _, edit := range cellEdits {
		cells[cellKey{edit.CategoryID, edit.Month}] = edit
	}
	taxes := make(map[int64]TaxEdit, len(taxEdits))
	for _, edit := range taxEdits {
		taxes[edit.CategoryID] = edit
	}

	var apply func(categories []*domain.Category)
	apply = func(categories []*domain.Category) {
		for _, c := range categories {
			if edit, ok := taxes[c.ID]; ok && !c.IsLeaf() {
				c.TaxRate = edit.TaxRate
			}
			if c.IsLeaf() {
				for i := range c.Cells {
					edit, ok := cells[cellKey{c.ID, c.Cells[i].Month}]
					if !ok {
						continue
					}
					price := &c.Cells[i].Price
					if edit.PricePerUnit != nil {
						price.PricePerUnit = *edit.PricePerUnit
					}
					if edit.UnitCount != nil {
						price.UnitCount = *edit.UnitCount
					}
					price.PriceInMoney = price.PricePerUnit * price.UnitCount
				}
			}
			apply(c.ChildCategories)
		}
	}
	apply(edited)
	return edited
}
