// Package tree projects an aggregated category list onto the visible table
// rows. Expansion state lives here, keyed by category id, instead of being
// scattered over the nodes themselves; flattening is a pure function of the
// list and the state, so calling it twice with unchanged inputs yields
// identical output.
package tree

import "budgetgrid/internal/domain"

// Row is one visible table row.
type Row struct {
	Category   *domain.Category
	Level      int
	Expandable bool
	Expanded   bool
}

// TableState tracks which categories are collapsed or hidden. The zero state
// shows every expandable node expanded, which is also the state ExpandAll
// restores.
type TableState struct {
	collapsed map[int64]bool
	hidden    map[int64]bool
}

// NewTableState returns a state with everything expanded and visible.
func NewTableState() *TableState {
	return &TableState{
		collapsed: make(map[int64]bool),
		hidden:    make(map[int64]bool),
	}
}

// Expanded reports whether the category with the given id is expanded.
func (s *TableState) Expanded(id int64) bool {
	return !s.collapsed[id]
}

// SetHidden marks a single category (and thereby its subtree) as hidden from
// the table without touching expansion state.
func (s *TableState) SetHidden(id int64, hidden bool) {
	if hidden {
		s.hidden[id] = true
	} else {
		delete(s.hidden, id)
	}
}

// Toggle flips the expansion of the category with the given id. Collapsing
// also collapses every descendant, so re-expanding the parent later shows its
// immediate children still collapsed rather than resurrecting a previously
// expanded subtree. Expanding touches only the node itself.
//
// flat must be the pre-order flat list the state is projected against;
// descendants are the run of following entries with a deeper nesting level,
// exactly as they render.
func (s *TableState) Toggle(flat []*domain.Category, id int64) {
	idx := -1
	for i, c := range flat {
		if c.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}

	node := flat[idx]
	if s.collapsed[id] {
		delete(s.collapsed, id)
		return
	}

	s.collapsed[id] = true
	for i := idx + 1; i < len(flat); i++ {
		if flat[i].NestingLevel <= node.NestingLevel {
			break
		}
		s.collapsed[flat[i].ID] = true
	}
}

// CollapseAll collapses every expandable node.
func (s *TableState) CollapseAll(flat []*domain.Category) {
	for _, c := range flat {
		if c.Expandable() {
			s.collapsed[c.ID] = true
		}
	}
}

// ExpandAll restores the default fully-expanded state.
func (s *TableState) ExpandAll() {
	s.collapsed = make(map[int64]bool)
}

// Flatten returns the currently visible rows of the pre-order flat list: a
// node shows only when every ancestor is expanded and no ancestor (or the
// node itself) is hidden. Synthetic metric rows sit at nesting level 0 and
// are always visible.
func (s *TableState) Flatten(flat []*domain.Category) []Row {
	rows := make([]Row, 0, len(flat))
	skipBelow := -1
	for _, c := range flat {
		if skipBelow >= 0 && c.NestingLevel > skipBelow {
			continue
		}
		skipBelow = -1

		if s.hidden[c.ID] {
			skipBelow = c.NestingLevel
			continue
		}

		expandable := c.Expandable()
		expanded := s.Expanded(c.ID)
		rows = append(rows, Row{
			Category:   c,
			Level:      c.NestingLevel,
			Expandable: expandable,
			Expanded:   expanded,
		})
		if expandable && !expanded {
			skipBelow = c.NestingLevel
		}
	}
	return rows
}
