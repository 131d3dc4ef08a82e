package ledger

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/kpir/internal/platform/httpx"
	"github.com/odyssey-erp/kpir/internal/rbac"
)

func newTestRouter(repo Repository, principal rbac.Principal) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(rbac.WithPrincipal(req.Context(), principal)))
		})
	})
	NewHandler(nil, NewService(repo, nil, nil)).MountRoutes(r)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestCreateAndBookOverHTTP(t *testing.T) {
	repo := newMemRepo()
	h := newTestRouter(repo, manager(1))

	rr := do(t, h, http.MethodPost, "/documents", `{"type":"INCOME","issueDate":"2025-12-05","eventDate":"2025-12-05","netAmount":1000,"vatAmount":230,"grossAmount":1230}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var created map[string]int64
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	require.NotZero(t, created["id"])

	path := "/documents/" + jsonInt(created["id"]) + "/book"
	rr = do(t, h, http.MethodPost, path, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var booked map[string]int64
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &booked))
	assert.Equal(t, int64(1), booked["ledgerNumber"])

	rr = do(t, h, http.MethodPost, path, "")
	require.Equal(t, http.StatusBadRequest, rr.Code)
	var body httpx.ErrorBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, CodeAlreadyBooked, body.Code)
	assert.NotEmpty(t, body.Message)

	rr = do(t, h, http.MethodGet, "/ledger", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var entries []LedgerEntryView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "1230.00", entries[0].GrossAmount)
}

func TestBookStatusCodes(t *testing.T) {
	repo := newMemRepo()
	foreign := repo.seed(draft(2, TypeIncome, "2025-12-01", "1"))
	own := repo.seed(draft(1, TypeIncome, "2025-12-01", "1"))

	h := newTestRouter(repo, manager(1))
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodPost, "/documents/404/book", "").Code)
	assert.Equal(t, http.StatusForbidden, do(t, h, http.MethodPost, "/documents/"+jsonInt(foreign.ID)+"/book", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/documents/abc/book", "").Code)

	companyID := int64(1)
	employee := newTestRouter(repo, rbac.Principal{UserID: 3, CompanyID: &companyID, Role: rbac.RoleEmployee})
	assert.Equal(t, http.StatusForbidden, do(t, employee, http.MethodPost, "/documents/"+jsonInt(own.ID)+"/book", "").Code)
	assert.Equal(t, http.StatusOK, do(t, employee, http.MethodGet, "/documents", "").Code)
}

func TestAdminHasNoDocumentAccess(t *testing.T) {
	h := newTestRouter(newMemRepo(), rbac.Principal{UserID: 1, Role: rbac.RoleSystemAdmin})
	assert.Equal(t, http.StatusForbidden, do(t, h, http.MethodGet, "/documents", "").Code)
	assert.Equal(t, http.StatusForbidden, do(t, h, http.MethodGet, "/ledger", "").Code)
}

func TestCreateValidationMessage(t *testing.T) {
	h := newTestRouter(newMemRepo(), manager(1))
	rr := do(t, h, http.MethodPost, "/documents", `{"type":"INCOME","issueDate":"2025-12-05","eventDate":"2025-12-05","netAmount":1,"vatAmount":0}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	var body httpx.ErrorBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "Missing field: grossAmount", body.Message)
}

func TestListFiltersByQuery(t *testing.T) {
	repo := newMemRepo()
	repo.seed(draft(1, TypeIncome, "2025-12-01", "1"))
	repo.seed(draft(1, TypeCost, "2025-12-02", "2"))
	h := newTestRouter(repo, manager(1))

	rr := do(t, h, http.MethodGet, "/documents?type=COST", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var docs []DocumentView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &docs))
	require.Len(t, docs, 1)
	assert.Equal(t, "COST", docs[0].Type)
	assert.Equal(t, "2.00", docs[0].GrossAmount)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/documents?status=LOST", "").Code)
}

func jsonInt(v int64) string {
	b, _ := json.Marshal(v)
	return string(b)
}
