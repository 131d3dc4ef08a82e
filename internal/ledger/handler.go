package ledger

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/kpir/internal/platform/httpx"
	"github.com/odyssey-erp/kpir/internal/rbac"
)

// Handler serves the document and ledger endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers /documents and /ledger on an authenticated router.
// System administrators have no access to documents.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(rbac.RequireRoles(rbac.RoleEmployee, rbac.RoleManager))
		r.Get("/documents", h.list)
		r.Post("/documents", h.create)
		r.Get("/documents/{id}", h.show)
		r.Get("/ledger", h.ledger)
		r.With(rbac.RequireRoles(rbac.RoleManager)).Post("/documents/{id}/book", h.book)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	principal, _ := rbac.PrincipalFromContext(r.Context())
	q := r.URL.Query()
	filter, err := ParseListFilter(q.Get("type"), q.Get("status"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	docs, err := h.service.List(r.Context(), principal, filter)
	if err != nil {
		httpx.RespondErrorLog(w, h.logger, err)
		return
	}
	out := make([]DocumentView, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.View())
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	principal, _ := rbac.PrincipalFromContext(r.Context())
	var req CreateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	in, err := req.Parse()
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	doc, err := h.service.Create(r.Context(), principal, in)
	if err != nil {
		httpx.RespondErrorLog(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]int64{"id": doc.ID})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	principal, _ := rbac.PrincipalFromContext(r.Context())
	id, err := httpx.PathInt64(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	doc, err := h.service.Get(r.Context(), principal, id)
	if err != nil {
		httpx.RespondErrorLog(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc.View())
}

func (h *Handler) book(w http.ResponseWriter, r *http.Request) {
	principal, _ := rbac.PrincipalFromContext(r.Context())
	id, err := httpx.PathInt64(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	number, err := h.service.Book(r.Context(), principal, id)
	if err != nil {
		httpx.RespondErrorLog(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int64{"ledgerNumber": number})
}

func (h *Handler) ledger(w http.ResponseWriter, r *http.Request) {
	principal, _ := rbac.PrincipalFromContext(r.Context())
	docs, err := h.service.Ledger(r.Context(), principal)
	if err != nil {
		httpx.RespondErrorLog(w, h.logger, err)
		return
	}
	out := make([]LedgerEntryView, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.LedgerEntry())
	}
	httpx.JSON(w, http.StatusOK, out)
}
