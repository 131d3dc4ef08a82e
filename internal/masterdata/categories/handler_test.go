package categories

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/kpir/internal/masterdata/shared"
	"github.com/odyssey-erp/kpir/internal/rbac"
)

type stubRepo struct {
	categories []Category
	docCounts  map[int64]int
	lastFilter shared.ListFilters
	deleted    []int64
}

func (s *stubRepo) List(ctx context.Context, filters shared.ListFilters) ([]Category, error) {
	s.lastFilter = filters
	return s.categories, nil
}

func (s *stubRepo) Get(ctx context.Context, id int64) (Category, error) {
	for _, c := range s.categories {
		if c.ID == id {
			return c, nil
		}
	}
	return Category{}, ErrCategoryNotFound
}

func (s *stubRepo) Create(ctx context.Context, c Category) (Category, error) {
	c.ID = int64(len(s.categories) + 1)
	s.categories = append(s.categories, c)
	return c, nil
}

func (s *stubRepo) Update(ctx context.Context, c Category) error { return nil }

func (s *stubRepo) Delete(ctx context.Context, id int64) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubRepo) CountDocuments(ctx context.Context, id int64) (int, error) {
	return s.docCounts[id], nil
}

func newRouter(repo Repository, principal rbac.Principal) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(rbac.WithPrincipal(req.Context(), principal)))
		})
	})
	r.Route("/api/categories", NewHandler(nil, NewService(repo)).MountRoutes)
	return r
}

func employee(companyID int64) rbac.Principal {
	return rbac.Principal{UserID: 1, CompanyID: &companyID, Role: rbac.RoleEmployee}
}

func TestListScopesToCompanyAndType(t *testing.T) {
	repo := &stubRepo{categories: []Category{{ID: 1, CompanyID: 7, Name: "Sprzedaż", Type: "INCOME"}}}
	router := newRouter(repo, employee(7))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/categories?type=income", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, repo.lastFilter.CompanyID)
	assert.Equal(t, int64(7), *repo.lastFilter.CompanyID)
	assert.Equal(t, "INCOME", repo.lastFilter.Type)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/categories?type=other", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestWritesRequireAdmin(t *testing.T) {
	router := newRouter(&stubRepo{}, employee(7))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/categories", strings.NewReader(`{"companyId":7,"name":"X","type":"COST"}`)))
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestDeleteInUse(t *testing.T) {
	repo := &stubRepo{
		categories: []Category{{ID: 3, CompanyID: 7, Name: "Paliwo", Type: "COST"}},
		docCounts:  map[int64]int{3: 2},
	}
	router := newRouter(repo, rbac.Principal{UserID: 9, Role: rbac.RoleSystemAdmin})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/api/categories/3", nil))
	require.Equal(t, http.StatusConflict, rr.Code)

	var body inUseBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, CodeCategoryInUse, body.Code)
	assert.Equal(t, 2, body.UsedInDocuments)
	assert.Empty(t, repo.deleted)

	repo.docCounts[3] = 0
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/api/categories/3", nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, []int64{3}, repo.deleted)
}

func TestCreateValidates(t *testing.T) {
	router := newRouter(&stubRepo{}, rbac.Principal{UserID: 9, Role: rbac.RoleSystemAdmin})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/categories", strings.NewReader(`{"companyId":7,"name":"  ","type":"COST"}`)))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/categories", strings.NewReader(`{"companyId":7,"name":"Media","type":"cost"}`)))
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.JSONEq(t, `{"id":1}`, rr.Body.String())
}
