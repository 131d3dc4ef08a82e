package shared

import (
	"net/http"
	"strconv"
	"strings"
)

// ListFilters represents standard list filters
type ListFilters struct {
	Search   string
	SortBy   string
	SortDir  string
	IsActive *bool

	// Entity specific filters
	CompanyID *int64
	Type      string
}

// FiltersFromQuery reads q, sort, dir and active query parameters.
func FiltersFromQuery(r *http.Request) ListFilters {
	q := r.URL.Query()
	filters := ListFilters{
		Search:  strings.TrimSpace(q.Get("q")),
		SortBy:  q.Get("sort"),
		SortDir: SortAsc,
	}
	if strings.EqualFold(q.Get("dir"), SortDesc) {
		filters.SortDir = SortDesc
	}
	if raw := q.Get("active"); raw != "" {
		if active, err := strconv.ParseBool(raw); err == nil {
			filters.IsActive = &active
		}
	}
	return filters
}

// Direction returns the SQL keyword for the sort direction.
func (f ListFilters) Direction() string {
	if f.SortDir == SortDesc {
		return "DESC"
	}
	return "ASC"
}
