package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/odyssey-erp/kpir/internal/auth"
	"github.com/odyssey-erp/kpir/internal/rbac"
	"github.com/odyssey-erp/kpir/internal/shared"
	_ "github.com/odyssey-erp/kpir/testing"
)

type stubRepo struct {
	user *auth.User
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	if s.user == nil || !strings.EqualFold(s.user.Email, email) {
		return nil, auth.ErrUserNotFound
	}
	return s.user, nil
}

func (s *stubRepo) FindByID(ctx context.Context, id int64) (*auth.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, auth.ErrUserNotFound
	}
	return s.user, nil
}

type harness struct {
	router   http.Handler
	sessions *shared.SessionManager
	last     *shared.Session
}

func newHarness(t *testing.T, repo auth.Repository) *harness {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })

	h := &harness{sessions: shared.NewSessionManager(redisClient, "test_session", time.Hour, false)}
	service := auth.NewService(repo)
	handler := auth.NewHandler(nil, service, h.sessions, shared.NewCSRFManager("csrfsecret"), rbac.Middleware{Loader: service})

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			sess, err := h.sessions.Load(req.Context(), req)
			if err != nil {
				t.Fatalf("load session: %v", err)
			}
			h.last = sess
			next.ServeHTTP(w, req.WithContext(shared.ContextWithSession(req.Context(), sess)))
		})
	})
	r.Route("/api", handler.MountRoutes)
	h.router = r
	return h
}

func (h *harness) do(t *testing.T, method, path, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	res := httptest.NewRecorder()
	h.router.ServeHTTP(res, req)
	return res
}

func testUser(t *testing.T) *auth.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	company := int64(5)
	return &auth.User{ID: 11, CompanyID: &company, Email: "anna@example.com", PasswordHash: string(hash), FirstName: "Anna", Role: rbac.RoleManager}
}

func TestLoginInvalidCredentials(t *testing.T) {
	h := newHarness(t, &stubRepo{user: testUser(t)})

	res := h.do(t, http.MethodPost, "/api/login", `{"email":"anna@example.com","password":"wrong"}`, nil)
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
	if h.last.User() != "" {
		t.Fatalf("session must stay anonymous")
	}
}

func TestLoginValidation(t *testing.T) {
	h := newHarness(t, &stubRepo{})

	res := h.do(t, http.MethodPost, "/api/login", `{"email":"not-an-email"}`, nil)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestLoginSuccessAndMe(t *testing.T) {
	h := newHarness(t, &stubRepo{user: testUser(t)})

	res := h.do(t, http.MethodPost, "/api/login", `{"email":"anna@example.com","password":"secret123"}`, nil)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	var view auth.UserView
	if err := json.Unmarshal(res.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if view.Role != "ROLE_MANAGER" || view.CompanyID == nil || *view.CompanyID != 5 {
		t.Fatalf("unexpected user view: %+v", view)
	}
	if view.CSRFToken == "" {
		t.Fatalf("expected csrf token")
	}

	sess := h.last
	if sess.User() != "11" {
		t.Fatalf("expected session user 11, got %q", sess.User())
	}
	commit := httptest.NewRecorder()
	if err := h.sessions.Commit(context.Background(), commit, sess); err != nil {
		t.Fatalf("commit: %v", err)
	}
	var cookie *http.Cookie
	for _, c := range commit.Result().Cookies() {
		if c.Name == "test_session" {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatalf("expected session cookie")
	}

	me := h.do(t, http.MethodGet, "/api/me", "", cookie)
	if me.Code != http.StatusOK {
		t.Fatalf("expected 200 from me, got %d", me.Code)
	}
	if !strings.Contains(me.Body.String(), `"email":"anna@example.com"`) {
		t.Fatalf("unexpected me body: %s", me.Body.String())
	}
}

func TestMeRequiresLogin(t *testing.T) {
	h := newHarness(t, &stubRepo{})

	res := h.do(t, http.MethodGet, "/api/me", "", nil)
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
}
