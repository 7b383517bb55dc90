package handlers

import (
	"sync"

	"budgetgrid/internal/domain"
	"budgetgrid/internal/editor"
	"budgetgrid/internal/tree"
)

// tableSession is the in-memory view state for one budget's table: the last
// loaded raw tree, the edit session built from it, the last aggregated flat
// list, and the expand/collapse state. Expansion survives page loads; the
// snapshots are replaced wholesale on every fetch.
type tableSession struct {
	mu     sync.Mutex
	state  *tree.TableState
	editor *editor.Session
	loaded []*domain.Category
	flat   []*domain.Category
}

func newTableSession() *tableSession {
	return &tableSession{state: tree.NewTableState()}
}

// refresh replaces the session's snapshots after a fetch.
func (s *tableSession) refresh(loaded []*domain.Category, flat []*domain.Category) {
	s.loaded = loaded
	s.flat = flat
	s.editor = editor.NewSession(loaded)
}

// find returns the aggregated node with the given id from the last fetch, or
// nil when the table has not been loaded yet.
func (s *tableSession) find(id int64) *domain.Category {
	for _, c := range s.flat {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// tableSessions hands out one session per budget.
type tableSessions struct {
	mu sync.Mutex
	m  map[int64]*tableSession
}

func newTableSessions() *tableSessions {
	return &tableSessions{m: make(map[int64]*tableSession)}
}

func (s *tableSessions) get(budgetID int64) *tableSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.m[budgetID]
	if !ok {
		sess = newTableSession()
		s.m[budgetID] = sess
	}
	return sess
}
