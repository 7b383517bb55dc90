package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"budgetgrid/internal/apiclient"
	"budgetgrid/internal/domain"
	apperrors "budgetgrid/internal/errors"
	"budgetgrid/internal/pagination"
	"budgetgrid/internal/validator"
	"budgetgrid/internal/web"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	validator.Register()
	os.Exit(m.Run())
}

// --- mock budget API ---

type mockBudgetAPI struct {
	listBudgetsFn  func(ctx context.Context, page pagination.PageRequest) (*pagination.Page[domain.Budget], error)
	getBudgetFn    func(ctx context.Context, id int64) (*domain.Budget, error)
	createBudgetFn func(ctx context.Context, input apiclient.BudgetInput) error
	updateBudgetFn func(ctx context.Context, id int64, input apiclient.BudgetInput) error
	deleteBudgetFn func(ctx context.Context, id int64) error
}

func (m *mockBudgetAPI) ListBudgets(ctx context.Context, page pagination.PageRequest) (*pagination.Page[domain.Budget], error) {
	if m.listBudgetsFn != nil {
		return m.listBudgetsFn(ctx, page)
	}
	p := pagination.NewPage([]domain.Budget{}, 0, 20, 0)
	return &p, nil
}

func (m *mockBudgetAPI) GetBudget(ctx context.Context, id int64) (*domain.Budget, error) {
	if m.getBudgetFn != nil {
		return m.getBudgetFn(ctx, id)
	}
	return &domain.Budget{ID: id, Name: "2025", Year: 2025}, nil
}

func (m *mockBudgetAPI) CreateBudget(ctx context.Context, input apiclient.BudgetInput) error {
	if m.createBudgetFn != nil {
		return m.createBudgetFn(ctx, input)
	}
	return nil
}

func (m *mockBudgetAPI) UpdateBudget(ctx context.Context, id int64, input apiclient.BudgetInput) error {
	if m.updateBudgetFn != nil {
		return m.updateBudgetFn(ctx, id, input)
	}
	return nil
}

func (m *mockBudgetAPI) DeleteBudget(ctx context.Context, id int64) error {
	if m.deleteBudgetFn != nil {
		return m.deleteBudgetFn(ctx, id)
	}
	return nil
}

var _ BudgetAPI = (*mockBudgetAPI)(nil)

// --- shared helpers ---

func setupBudgetRouter(handler *BudgetHandler) *gin.Engine {
	r := gin.New()
	r.SetHTMLTemplate(web.Templates())
	r.GET("/budgets", handler.List)
	r.GET("/budgets/new", handler.NewForm)
	r.POST("/budgets", handler.Create)
	r.GET("/budgets/:id/edit", handler.EditForm)
	r.POST("/budgets/:id", handler.Update)
	r.POST("/budgets/:id/delete", handler.Delete)
	return r
}

// doGet issues a GET against the router.
func doGet(r *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

// doForm posts form values against the router.
func doForm(r *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

// flashFrom decodes the flash cookie set on the response, if any.
func flashFrom(t *testing.T, rec *httptest.ResponseRecorder) *Flash {
	t.Helper()
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name != flashCookie || cookie.Value == "" {
			continue
		}
		once, err := url.QueryUnescape(cookie.Value)
		if err != nil {
			t.Fatalf("undecodable flash cookie: %v", err)
		}
		decoded, err := url.QueryUnescape(once)
		if err != nil {
			t.Fatalf("undecodable flash cookie: %v", err)
		}
		kind, message, found := strings.Cut(decoded, "|")
		if !found {
			return &Flash{Kind: "info", Message: decoded}
		}
		return &Flash{Kind: kind, Message: message}
	}
	return nil
}

func assertRedirect(t *testing.T, rec *httptest.ResponseRecorder, location string) {
	t.Helper()
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Location"); got != location {
		t.Fatalf("expected redirect to %s, got %s", location, got)
	}
}

func assertFlash(t *testing.T, rec *httptest.ResponseRecorder, kind, contains string) {
	t.Helper()
	flash := flashFrom(t, rec)
	if flash == nil {
		t.Fatal("expected a flash notice, got none")
	}
	if flash.Kind != kind {
		t.Errorf("flash kind = %s, want %s", flash.Kind, kind)
	}
	if !strings.Contains(flash.Message, contains) {
		t.Errorf("flash message %q does not contain %q", flash.Message, contains)
	}
}

// --- tests ---

func TestBudgetHandler_List(t *testing.T) {
	t.Run("renders the budget list", func(t *testing.T) {
		api := &mockBudgetAPI{
			listBudgetsFn: func(_ context.Context, page pagination.PageRequest) (*pagination.Page[domain.Budget], error) {
				p := pagination.NewPage([]domain.Budget{
					{ID: 1, Name: "FY2025", Year: 2025},
				}, 0, page.Size, 1)
				return &p, nil
			},
		}
		r := setupBudgetRouter(NewBudgetHandler(api, 20))

		rec := doGet(r, "/budgets")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "FY2025") {
			t.Error("budget name missing from page")
		}
	})

	t.Run("fetch failure still renders with a notice", func(t *testing.T) {
		api := &mockBudgetAPI{
			listBudgetsFn: func(_ context.Context, _ pagination.PageRequest) (*pagination.Page[domain.Budget], error) {
				return nil, apperrors.ErrBackendUnavailable
			},
		}
		r := setupBudgetRouter(NewBudgetHandler(api, 20))

		rec := doGet(r, "/budgets")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		assertFlash(t, rec, "error", "unreachable")
	})

	t.Run("passes the configured page size", func(t *testing.T) {
		var gotSize int
		api := &mockBudgetAPI{
			listBudgetsFn: func(_ context.Context, page pagination.PageRequest) (*pagination.Page[domain.Budget], error) {
				gotSize = page.Size
				p := pagination.NewPage([]domain.Budget{}, 0, page.Size, 0)
				return &p, nil
			},
		}
		r := setupBudgetRouter(NewBudgetHandler(api, 50))

		doGet(r, "/budgets")
		if gotSize != 50 {
			t.Errorf("page size = %d, want 50", gotSize)
		}
	})
}

func TestBudgetHandler_Create(t *testing.T) {
	t.Run("creates and returns to the list", func(t *testing.T) {
		var got apiclient.BudgetInput
		api := &mockBudgetAPI{
			createBudgetFn: func(_ context.Context, input apiclient.BudgetInput) error {
				got = input
				return nil
			},
		}
		r := setupBudgetRouter(NewBudgetHandler(api, 20))

		rec := doForm(r, "/budgets", url.Values{"name": {"FY2026"}, "year": {"2026"}})
		assertRedirect(t, rec, "/budgets")
		assertFlash(t, rec, "info", "FY2026")
		if got.Name != "FY2026" || got.Year != 2026 {
			t.Errorf("input = %+v, want FY2026/2026", got)
		}
	})

	t.Run("missing name returns to the form", func(t *testing.T) {
		called := false
		api := &mockBudgetAPI{
			createBudgetFn: func(_ context.Context, _ apiclient.BudgetInput) error {
				called = true
				return nil
			},
		}
		r := setupBudgetRouter(NewBudgetHandler(api, 20))

		rec := doForm(r, "/budgets", url.Values{"year": {"2026"}})
		assertRedirect(t, rec, "/budgets/new")
		assertFlash(t, rec, "error", "required")
		if called {
			t.Error("create was called despite invalid input")
		}
	})

	t.Run("out-of-range year returns to the form", func(t *testing.T) {
		r := setupBudgetRouter(NewBudgetHandler(&mockBudgetAPI{}, 20))

		rec := doForm(r, "/budgets", url.Values{"name": {"x"}, "year": {"999"}})
		assertRedirect(t, rec, "/budgets/new")
	})

	t.Run("backend rejection surfaces its message", func(t *testing.T) {
		api := &mockBudgetAPI{
			createBudgetFn: func(_ context.Context, _ apiclient.BudgetInput) error {
				return apperrors.WithMessage(apperrors.ErrBackendRejected, "year already exists")
			},
		}
		r := setupBudgetRouter(NewBudgetHandler(api, 20))

		rec := doForm(r, "/budgets", url.Values{"name": {"x"}, "year": {"2026"}})
		assertRedirect(t, rec, "/budgets/new")
		assertFlash(t, rec, "error", "year already exists")
	})
}

func TestBudgetHandler_EditForm(t *testing.T) {
	t.Run("pre-fills the current values", func(t *testing.T) {
		api := &mockBudgetAPI{
			getBudgetFn: func(_ context.Context, id int64) (*domain.Budget, error) {
				return &domain.Budget{ID: id, Name: "FY2025", Year: 2025}, nil
			},
		}
		r := setupBudgetRouter(NewBudgetHandler(api, 20))

		rec := doGet(r, "/budgets/7/edit")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "FY2025") {
			t.Error("budget name missing from form")
		}
	})

	t.Run("missing budget returns to the list", func(t *testing.T) {
		api := &mockBudgetAPI{
			getBudgetFn: func(_ context.Context, _ int64) (*domain.Budget, error) {
				return nil, apperrors.ErrBudgetNotFound
			},
		}
		r := setupBudgetRouter(NewBudgetHandler(api, 20))

		rec := doGet(r, "/budgets/7/edit")
		assertRedirect(t, rec, "/budgets")
		assertFlash(t, rec, "error", "not found")
	})

	t.Run("non-numeric id returns to the list", func(t *testing.T) {
		r := setupBudgetRouter(NewBudgetHandler(&mockBudgetAPI{}, 20))

		rec := doGet(r, "/budgets/abc/edit")
		assertRedirect(t, rec, "/budgets")
	})
}

func TestBudgetHandler_Update(t *testing.T) {
	t.Run("patches and returns to the list", func(t *testing.T) {
		var gotID int64
		api := &mockBudgetAPI{
			updateBudgetFn: func(_ context.Context, id int64, input apiclient.BudgetInput) error {
				gotID = id
				return nil
			},
		}
		r := setupBudgetRouter(NewBudgetHandler(api, 20))

		rec := doForm(r, "/budgets/7", url.Values{"name": {"FY2025"}, "year": {"2025"}})
		assertRedirect(t, rec, "/budgets")
		if gotID != 7 {
			t.Errorf("id = %d, want 7", gotID)
		}
	})

	t.Run("failure returns to the edit form", func(t *testing.T) {
		api := &mockBudgetAPI{
			updateBudgetFn: func(_ context.Context, _ int64, _ apiclient.BudgetInput) error {
				return apperrors.ErrBudgetNotFound
			},
		}
		r := setupBudgetRouter(NewBudgetHandler(api, 20))

		rec := doForm(r, "/budgets/7", url.Values{"name": {"x"}, "year": {"2025"}})
		assertRedirect(t, rec, "/budgets/7/edit")
		assertFlash(t, rec, "error", "not found")
	})
}

func TestBudgetHandler_Delete(t *testing.T) {
	t.Run("deletes and returns to the list", func(t *testing.T) {
		var gotID int64
		api := &mockBudgetAPI{
			deleteBudgetFn: func(_ context.Context, id int64) error {
				gotID = id
				return nil
			},
		}
		r := setupBudgetRouter(NewBudgetHandler(api, 20))

		rec := doForm(r, "/budgets/7/delete", url.Values{})
		assertRedirect(t, rec, "/budgets")
		assertFlash(t, rec, "info", "deleted")
		if gotID != 7 {
			t.Errorf("id = %d, want 7", gotID)
		}
	})

	t.Run("failure surfaces as a notice", func(t *testing.T) {
		api := &mockBudgetAPI{
			deleteBudgetFn: func(_ context.Context, _ int64) error {
				return apperrors.ErrBackendUnavailable
			},
		}
		r := setupBudgetRouter(NewBudgetHandler(api, 20))

		rec := doForm(r, "/budgets/7/delete", url.Values{})
		assertRedirect(t, rec, "/budgets")
		assertFlash(t, rec, "error", "unreachable")
	})
}
