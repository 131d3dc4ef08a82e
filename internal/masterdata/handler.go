package masterdata

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/kpir/internal/masterdata/categories"
	"github.com/odyssey-erp/kpir/internal/masterdata/companies"
	"github.com/odyssey-erp/kpir/internal/masterdata/contractors"
	"github.com/odyssey-erp/kpir/internal/rbac"
)

// Handler groups the master data endpoints.
type Handler struct {
	companies   *companies.Handler
	categories  *categories.Handler
	contractors *contractors.Handler
}

// NewHandler wires the master data packages against the pool.
func NewHandler(logger *slog.Logger, pool *pgxpool.Pool) *Handler {
	return &Handler{
		companies:   companies.NewHandler(logger, companies.NewService(companies.NewRepository(pool), logger)),
		categories:  categories.NewHandler(logger, categories.NewService(categories.NewRepository(pool))),
		contractors: contractors.NewHandler(logger, contractors.NewService(contractors.NewRepository(pool))),
	}
}

// MountRoutes registers master data routes below an authenticated /api router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/admin/companies", func(r chi.Router) {
		r.Use(rbac.RequireRoles(rbac.RoleSystemAdmin))
		h.companies.MountRoutes(r)
	})
	r.Route("/categories", h.categories.MountRoutes)
	r.Route("/contractors", h.contractors.MountRoutes)
}
