package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"budgetgrid/internal/domain"
	"budgetgrid/internal/pagination"
)

// RecordedRequest is one request the fake backend received.
type RecordedRequest struct {
	Method string
	Path   string
	Body   []byte
}

// FakeBackend is an in-memory stand-in for the budget backend, good enough
// for client and handler tests. It records every request so tests can assert
// which calls were (or were not) issued.
type FakeBackend struct {
	mu sync.Mutex

	Budgets []domain.Budget
	Trees   map[int64][]*domain.Category

	// TaxUpdates maps category id to the last patched tax rate.
	TaxUpdates map[int64]*float64
	// CellBatches collects every batch cell update received.
	CellBatches [][]domain.BatchCell
	// Created collects raw category creation payloads.
	Created []map[string]any

	// FailWith, when non-zero, makes every request answer that status with
	// Message as the error body.
	FailWith int
	Message  string

	requests []RecordedRequest
	server   *httptest.Server
}

// NewFakeBackend starts a fake backend; it shuts down with the test.
func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()

	f := &FakeBackend{
		Trees:      make(map[int64][]*domain.Category),
		TaxUpdates: make(map[int64]*float64),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/budget", f.listBudgets)
	mux.HandleFunc("POST /api/budget", f.createBudget)
	mux.HandleFunc("GET /api/budget/{id}", f.getBudget)
	mux.HandleFunc("PATCH /api/budget/{id}", f.patchBudget)
	mux.HandleFunc("DELETE /api/budget/{id}", f.deleteBudget)
	mux.HandleFunc("GET /api/category/full", f.categoryTree)
	mux.HandleFunc("PATCH /api/category/full/update", f.updateCells)
	mux.HandleFunc("GET /api/category", f.listCategories)
	mux.HandleFunc("POST /api/category", f.createCategory)
	mux.HandleFunc("PATCH /api/category/{id}", f.patchCategory)
	mux.HandleFunc("DELETE /api/category/{id}", f.deleteCategory)

	f.server = httptest.NewServer(f.record(mux))
	t.Cleanup(f.server.Close)
	return f
}

// URL returns the fake backend's base URL.
func (f *FakeBackend) URL() string {
	return f.server.URL
}

// Requests returns a copy of everything received so far.
func (f *FakeBackend) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	reqs := make([]RecordedRequest, len(f.requests))
	copy(reqs, f.requests)
	return reqs
}

// Received reports whether any request matched the method and path.
func (f *FakeBackend) Received(method, path string) bool {
	for _, req := range f.Requests() {
		if req.Method == method && req.Path == path {
			return true
		}
	}
	return false
}

func (f *FakeBackend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			body, _ = io.ReadAll(r.Body)
		}
		f.mu.Lock()
		f.requests = append(f.requests, RecordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Body:   body,
		})
		fail, msg := f.FailWith, f.Message
		f.mu.Unlock()

		if fail != 0 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(fail)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": msg})
			return
		}

		r.Body = io.NopCloser(bytes.NewReader(body))
		next.ServeHTTP(w, r)
	})
}

func (f *FakeBackend) listBudgets(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	if size <= 0 {
		size = 20
	}

	start := page * size
	end := start + size
	if start > len(f.Budgets) {
		start = len(f.Budgets)
	}
	if end > len(f.Budgets) {
		end = len(f.Budgets)
	}

	writeJSON(w, pagination.NewPage(f.Budgets[start:end], page, size, int64(len(f.Budgets))))
}

func (f *FakeBackend) getBudget(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	for _, b := range f.Budgets {
		if b.ID == id {
			writeJSON(w, b)
			return
		}
	}
	http.NotFound(w, r)
}

func (f *FakeBackend) createBudget(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var budget domain.Budget
	if err := json.NewDecoder(r.Body).Decode(&budget); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	budget.ID = NextID()
	f.Budgets = append(f.Budgets, budget)
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, budget)
}

func (f *FakeBackend) patchBudget(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	var input domain.Budget
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	for i := range f.Budgets {
		if f.Budgets[i].ID == id {
			f.Budgets[i].Name = input.Name
			f.Budgets[i].Year = input.Year
			writeJSON(w, f.Budgets[i])
			return
		}
	}
	http.NotFound(w, r)
}

func (f *FakeBackend) deleteBudget(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	for i := range f.Budgets {
		if f.Budgets[i].ID == id {
			f.Budgets = append(f.Budgets[:i], f.Budgets[i+1:]...)
			delete(f.Trees, id)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	http.NotFound(w, r)
}

func (f *FakeBackend) categoryTree(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	budgetID, _ := strconv.ParseInt(r.URL.Query().Get("budgetId"), 10, 64)
	tree, ok := f.Trees[budgetID]
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, tree)
}

func (f *FakeBackend) listCategories(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	level, _ := strconv.Atoi(r.URL.Query().Get("nestingLevel"))
	var result []*domain.Category
	var walk func(categories []*domain.Category)
	walk = func(categories []*domain.Category) {
		for _, c := range categories {
			if c.NestingLevel == level {
				result = append(result, c)
			}
			walk(c.ChildCategories)
		}
	}
	for _, tree := range f.Trees {
		walk(tree)
	}
	if result == nil {
		result = []*domain.Category{}
	}
	writeJSON(w, result)
}

func (f *FakeBackend) createCategory(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.Created = append(f.Created, payload)
	w.WriteHeader(http.StatusCreated)
}

func (f *FakeBackend) patchCategory(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	var body struct {
		TaxRate *float64 `json:"taxRate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.TaxUpdates[id] = body.TaxRate
	w.WriteHeader(http.StatusOK)
}

func (f *FakeBackend) deleteCategory(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	var prune func(categories []*domain.Category) []*domain.Category
	prune = func(categories []*domain.Category) []*domain.Category {
		kept := categories[:0]
		for _, c := range categories {
			if c.ID == id {
				continue
			}
			c.ChildCategories = prune(c.ChildCategories)
			kept = append(kept, c)
		}
		return kept
	}
	for budgetID, tree := range f.Trees {
		f.Trees[budgetID] = prune(tree)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (f *FakeBackend) updateCells(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var batch []domain.BatchCell
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.CellBatches = append(f.CellBatches, batch)
	w.WriteHeader(http.StatusOK)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
