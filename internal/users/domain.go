package users

import (
	"github.com/odyssey-erp/kpir/internal/masterdata/shared"
	"github.com/odyssey-erp/kpir/internal/rbac"
)

// User represents a user account for management.
type User struct {
	ID        int64     `json:"id"`
	CompanyID *int64    `json:"companyId"`
	Email     string    `json:"email"`
	FirstName *string   `json:"firstName"`
	LastName  *string   `json:"lastName"`
	Role      rbac.Role `json:"role"`
}

// Roles mirrors the role list shape of the login payload.
func (u User) Roles() []string {
	return []string{u.Role.String()}
}

// CreateRequest is the payload of POST /api/admin/users.
type CreateRequest struct {
	Email     string  `json:"email" validate:"required,email"`
	Password  string  `json:"password" validate:"required,min=8"`
	Role      string  `json:"role"`
	CompanyID *int64  `json:"companyId"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
}

// UpdateRequest is a partial update of an account. Password is only changed
// when non-empty.
type UpdateRequest struct {
	Email     shared.Nullable[string] `json:"email"`
	Password  shared.Nullable[string] `json:"password"`
	Role      shared.Nullable[string] `json:"role"`
	CompanyID shared.Nullable[int64]  `json:"companyId"`
	FirstName shared.Nullable[string] `json:"firstName"`
	LastName  shared.Nullable[string] `json:"lastName"`
}

type userView struct {
	User
	Roles []string `json:"roles"`
}

func viewOf(u User) userView {
	return userView{User: u, Roles: u.Roles()}
}
