package app

import (
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/odyssey-erp/kpir/internal/audit"
	"github.com/odyssey-erp/kpir/internal/auth"
	"github.com/odyssey-erp/kpir/internal/ledger"
	"github.com/odyssey-erp/kpir/internal/masterdata"
	"github.com/odyssey-erp/kpir/internal/observability"
	"github.com/odyssey-erp/kpir/internal/platform/httpx"
	"github.com/odyssey-erp/kpir/internal/rbac"
	"github.com/odyssey-erp/kpir/internal/reports"
	"github.com/odyssey-erp/kpir/internal/shared"
	"github.com/odyssey-erp/kpir/internal/users"
	"github.com/odyssey-erp/kpir/jobs"
	"github.com/odyssey-erp/kpir/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	RBACMiddleware rbac.Middleware
	Metrics        *observability.Metrics

	AuthHandler       *auth.Handler
	AuditHandler      *audit.Handler
	UsersHandler      *users.Handler
	MasterDataHandler *masterdata.Handler
	LedgerHandler     *ledger.Handler
	ReportsHandler    *reports.Handler
	JobHandler        *jobs.Handler
}

// NewRouter constructs the chi.Router with the application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}
	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	var origins []string
	if params.Config != nil {
		origins = params.Config.CORSAllowedOrigins
	}
	r.Route("/api", func(r chi.Router) {
		r.Use(CORSMiddleware(origins))
		r.Use(SessionMiddleware(params.Logger, params.SessionManager))
		r.Use(CSRFMiddleware(params.Logger, params.CSRFManager))

		params.AuthHandler.MountRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(params.RBACMiddleware.Authenticate)
			if params.UsersHandler != nil {
				r.Route("/admin/users", func(r chi.Router) {
					r.Use(rbac.RequireRoles(rbac.RoleSystemAdmin))
					params.UsersHandler.MountRoutes(r)
				})
			}
			if params.AuditHandler != nil {
				params.AuditHandler.MountRoutes(r)
			}
			if params.MasterDataHandler != nil {
				params.MasterDataHandler.MountRoutes(r)
			}
			if params.LedgerHandler != nil {
				params.LedgerHandler.MountRoutes(r)
			}
			if params.ReportsHandler != nil {
				params.ReportsHandler.MountRoutes(r)
			}
		})

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			httpx.Error(w, http.StatusNotFound, "Not found", "")
		})
	})

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
		return r
	}
	r.Get("/*", spaHandler(staticFS))
	return r
}

// spaHandler serves embedded assets and falls back to index.html so client
// side routes survive a reload.
func spaHandler(static fs.FS) http.HandlerFunc {
	files := http.FileServer(http.FS(static))
	return func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
		if name != "" {
			if _, err := fs.Stat(static, name); err == nil {
				if strings.HasPrefix(name, "assets/") {
					w.Header().Set("Cache-Control", "public, max-age=3600")
				}
				files.ServeHTTP(w, r)
				return
			}
		}
		w.Header().Set("Cache-Control", "no-cache")
		http.ServeFileFS(w, r, static, "index.html")
	}
}
