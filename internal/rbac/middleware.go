package rbac

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/odyssey-erp/kpir/internal/platform/httpx"
	"github.com/odyssey-erp/kpir/internal/shared"
)

// PrincipalLoader resolves the current state of a user. Role changes take
// effect on the next request.
type PrincipalLoader interface {
	LoadPrincipal(ctx context.Context, userID int64) (Principal, error)
}

// Middleware wires authentication and role checks for HTTP handlers.
type Middleware struct {
	Loader PrincipalLoader
	Logger *slog.Logger
}

type principalContextKey struct{}

// WithPrincipal stores the principal in ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext returns the principal attached by Authenticate.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(Principal)
	return p, ok
}

// Authenticate rejects requests without a logged-in user and attaches the
// principal to the request context.
func (m Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := m.currentUserID(r)
		if !ok {
			httpx.RespondError(w, shared.ErrUnauthenticated)
			return
		}
		principal, err := m.Loader.LoadPrincipal(r.Context(), userID)
		if err != nil {
			if errors.Is(err, httpx.ErrNotFound) {
				httpx.RespondError(w, shared.ErrUnauthenticated)
				return
			}
			httpx.RespondErrorLog(w, m.Logger, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
	})
}

// RequireRoles ensures the principal holds at least one of roles.
func RequireRoles(roles ...Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				httpx.RespondError(w, shared.ErrUnauthenticated)
				return
			}
			if !p.HasRole(roles...) {
				httpx.RespondError(w, ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m Middleware) currentUserID(r *http.Request) (int64, bool) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return 0, false
	}
	raw := strings.TrimSpace(sess.User())
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Error("rbac parse user id", slog.String("value", raw))
		}
		return 0, false
	}
	return id, true
}
