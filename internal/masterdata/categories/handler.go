package categories

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/kpir/internal/platform/httpx"
	"github.com/odyssey-erp/kpir/internal/rbac"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers category routes; the router has already
// authenticated the principal.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Group(func(r chi.Router) {
		r.Use(rbac.RequireRoles(rbac.RoleSystemAdmin))
		r.Post("/", h.Create)
		r.Patch("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

type inUseBody struct {
	Message         string `json:"message"`
	Code            string `json:"code"`
	UsedInDocuments int    `json:"usedInDocuments"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	principal, _ := rbac.PrincipalFromContext(r.Context())
	var companyID *int64
	if raw := r.URL.Query().Get("companyId"); raw != "" {
		id, err := httpx.PathInt64(raw)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		companyID = &id
	}
	categories, err := h.service.List(r.Context(), principal, r.URL.Query().Get("type"), companyID)
	if err != nil {
		httpx.RespondErrorLog(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, categories)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	category, err := h.service.Create(r.Context(), req)
	if err != nil {
		httpx.RespondErrorLog(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]int64{"id": category.ID})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathInt64(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req UpdateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	category, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		httpx.RespondErrorLog(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int64{"id": category.ID})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathInt64(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		var inUse *InUseError
		if errors.As(err, &inUse) {
			httpx.JSON(w, http.StatusConflict, inUseBody{Message: inUse.Error(), Code: CodeCategoryInUse, UsedInDocuments: inUse.Count})
			return
		}
		httpx.RespondErrorLog(w, h.logger, err)
		return
	}
	httpx.NoContent(w)
}
