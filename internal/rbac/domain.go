package rbac

import (
	"strings"

	"github.com/odyssey-erp/kpir/internal/platform/httpx"
)

// Role is the persisted authority of a user. Values carry the ROLE_ prefix.
type Role string

const (
	RoleSystemAdmin Role = "ROLE_SYSTEM_ADMIN"
	RoleManager     Role = "ROLE_MANAGER"
	RoleEmployee    Role = "ROLE_EMPLOYEE"
)

var (
	// ErrInvalidRole is returned for role names outside the known set.
	ErrInvalidRole = httpx.NewError(httpx.ErrValidation, "Invalid role")
	// ErrForbidden is returned when the principal lacks the required role.
	ErrForbidden = httpx.NewError(httpx.ErrForbidden, "Access denied")
	// ErrNoCompany is returned when a company-scoped operation is attempted by
	// a principal without a company.
	ErrNoCompany = httpx.NewError(httpx.ErrForbidden, "User is not assigned to a company")
)

var roleAliases = map[string]Role{
	"SYSTEM_ADMIN":      RoleSystemAdmin,
	"ROLE_SYSTEM_ADMIN": RoleSystemAdmin,
	"ADMIN":             RoleSystemAdmin,
	"MANAGER":           RoleManager,
	"ROLE_MANAGER":      RoleManager,
	"EMPLOYEE":          RoleEmployee,
	"ROLE_EMPLOYEE":     RoleEmployee,
}

// ParseRole normalises user supplied role names. Matching is case
// insensitive and the ROLE_ prefix is optional.
func ParseRole(raw string) (Role, error) {
	role, ok := roleAliases[strings.ToUpper(strings.TrimSpace(raw))]
	if !ok {
		return "", ErrInvalidRole
	}
	return role, nil
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSystemAdmin, RoleManager, RoleEmployee:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// Principal describes the authenticated actor of a request.
type Principal struct {
	UserID    int64
	CompanyID *int64
	Role      Role
}

// IsAdmin reports whether the principal is a system administrator.
func (p Principal) IsAdmin() bool { return p.Role == RoleSystemAdmin }

// HasRole reports whether the principal holds any of roles.
func (p Principal) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}

// DocumentCompany returns the company whose documents the principal may
// operate on. System administrators have no document access.
func (p Principal) DocumentCompany() (int64, error) {
	if p.IsAdmin() {
		return 0, ErrForbidden
	}
	if p.CompanyID == nil {
		return 0, ErrNoCompany
	}
	return *p.CompanyID, nil
}
