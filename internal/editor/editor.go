// Package editor tracks table edits between two snapshots: the tree as last
// loaded from the backend and the values the user has typed. The diff of the
// two produces the patch payloads deterministically; nothing in here talks to
// the network.
package editor

import (
	"budgetgrid/internal/aggregate"
	"budgetgrid/internal/domain"
	"budgetgrid/internal/logger"
	"budgetgrid/internal/months"
)

// CellEdit is a posted value for one editable monthly cell. Nil fields were
// not part of the submission.
type CellEdit struct {
	CategoryID   int64
	Month        months.Month
	PricePerUnit *float64
	UnitCount    *float64
}

// TaxEdit is a posted tax rate for one category. A nil rate clears the tax.
type TaxEdit struct {
	CategoryID int64
	TaxRate    *float64
}

// TaxPatch is one individual PATCH against a category's tax rate.
type TaxPatch struct {
	CategoryID int64
	TaxRate    *float64
}

// Changeset is the deterministic output of diffing edits against the loaded
// snapshot. Tax patches are sent one by one; cell patches go out as a single
// batch.
type Changeset struct {
	TaxPatches  []TaxPatch
	CellPatches []domain.BatchCell
}

// Empty reports whether the changeset carries nothing to send.
func (c *Changeset) Empty() bool {
	return len(c.TaxPatches) == 0 && len(c.CellPatches) == 0
}

type cellKey struct {
	categoryID int64
	month      months.Month
}

type cellInfo struct {
	cellID   int64
	price    domain.Price
	unitType domain.ValueType
}

// Session indexes one loaded category tree for editing: leaf cell ids and
// their loaded values, tax rates, and the stored financial-result cells used
// for metric write-back.
type Session struct {
	cells     map[cellKey]cellInfo
	tax       map[int64]*float64
	taxable   map[int64]bool
	finCells  map[domain.MetricType]map[months.Month]int64
	finValues map[domain.MetricType]map[months.Month]float64
}

// NewSession builds a session from the raw (un-aggregated) tree returned by
// the backend.
func NewSession(loaded []*domain.Category) *Session {
	s := &Session{
		cells:     make(map[cellKey]cellInfo),
		tax:       make(map[int64]*float64),
		taxable:   make(map[int64]bool),
		finCells:  make(map[domain.MetricType]map[months.Month]int64),
		finValues: make(map[domain.MetricType]map[months.Month]float64),
	}
	s.index(loaded)
	return s
}

func (s *Session) index(categories []*domain.Category) {
	for _, c := range categories {
		// Only leaf cells are editable; parents are recomputed rollups.
		if c.IsLeaf() {
			unitType := domain.ValueTypePieces
			if c.AdditionalType != nil {
				unitType = *c.AdditionalType
			}
			for _, cell := range c.Cells {
				s.cells[cellKey{c.ID, cell.Month}] = cellInfo{
					cellID:   cell.ID,
					price:    cell.Price,
					unitType: unitType,
				}
			}
		} else {
			s.taxable[c.ID] = true
			if c.TaxRate != nil {
				rate := *c.TaxRate
				s.tax[c.ID] = &rate
			} else {
				s.tax[c.ID] = nil
			}
		}

		for _, fr := range c.FinancialResults {
			ids := make(map[months.Month]int64, len(fr.Cells))
			values := make(map[months.Month]float64, len(fr.Cells))
			for _, cell := range fr.Cells {
				ids[cell.Month] = cell.ID
				values[cell.Month] = cell.Value
			}
			s.finCells[fr.FinancialMetricType] = ids
			s.finValues[fr.FinancialMetricType] = values
		}

		s.index(c.ChildCategories)
	}
}

// CellID resolves the backend cell id for a category's month, with ok=false
// when the cell is unknown to the loaded snapshot.
func (s *Session) CellID(categoryID int64, month months.Month) (int64, bool) {
	info, ok := s.cells[cellKey{categoryID, month}]
	return info.cellID, ok
}

// Diff compares the posted edits against the loaded snapshot. Unchanged
// fields produce no patch. An edit whose cell id cannot be resolved is logged
// and skipped, never fatal.
func (s *Session) Diff(cellEdits []CellEdit, taxEdits []TaxEdit) Changeset {
	var cs Changeset
	log := logger.Get()

	for _, edit := range taxEdits {
		loaded, known := s.tax[edit.CategoryID]
		if !known || !s.taxable[edit.CategoryID] {
			log.Warnw("tax edit for unknown category, skipping",
				"category_id", edit.CategoryID,
			)
			continue
		}
		if taxEqual(loaded, edit.TaxRate) {
			continue
		}
		cs.TaxPatches = append(cs.TaxPatches, TaxPatch{
			CategoryID: edit.CategoryID,
			TaxRate:    edit.TaxRate,
		})
	}

	for _, edit := range cellEdits {
		info, ok := s.cells[cellKey{edit.CategoryID, edit.Month}]
		if !ok {
			log.Warnw("no cell id for edited field, skipping",
				"category_id", edit.CategoryID,
				"month", edit.Month,
			)
			continue
		}
		if edit.PricePerUnit != nil && *edit.PricePerUnit != info.price.PricePerUnit {
			cs.CellPatches = append(cs.CellPatches, domain.BatchCell{
				ID:        info.cellID,
				Value:     *edit.PricePerUnit,
				ValueType: domain.ValueTypeMoney,
			})
		}
		if edit.UnitCount != nil && *edit.UnitCount != info.price.UnitCount {
			cs.CellPatches = append(cs.CellPatches, domain.BatchCell{
				ID:        info.cellID,
				Value:     *edit.UnitCount,
				ValueType: info.unitType,
			})
		}
	}

	return cs
}

// FinancialWriteback repackages the derived metric rows into batch cell
// updates against the stored financial-result cells, keyed by month. Metrics
// without a stored result series, and months without a stored cell id, are
// skipped with a log line.
func (s *Session) FinancialWriteback(result *aggregate.Result) []domain.BatchCell {
	log := logger.Get()
	var batch []domain.BatchCell
	for _, metric := range result.Metrics {
		ids, ok := s.finCells[domain.MetricType(metric.Name)]
		if !ok {
			log.Warnw("no stored financial result for metric, skipping writeback",
				"metric", metric.Name,
			)
			continue
		}
		values := s.finValues[domain.MetricType(metric.Name)]
		for _, cell := range metric.Cells {
			id, ok := ids[cell.Month]
			if !ok {
				log.Warnw("no financial cell id for month, skipping",
					"metric", metric.Name,
					"month", cell.Month,
				)
				continue
			}
			if values[cell.Month] == cell.Price.PriceInMoney {
				continue
			}
			batch = append(batch, domain.BatchCell{
				ID:        id,
				Value:     cell.Price.PriceInMoney,
				ValueType: domain.ValueTypeMoney,
			})
		}
	}
	return batch
}

func taxEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
