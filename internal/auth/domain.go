package auth

import (
	"github.com/odyssey-erp/kpir/internal/rbac"
)

// User represents an account able to sign in.
type User struct {
	ID           int64
	CompanyID    *int64
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         rbac.Role
}

// Principal converts the account into the request principal.
func (u User) Principal() rbac.Principal {
	return rbac.Principal{UserID: u.ID, CompanyID: u.CompanyID, Role: u.Role}
}

// UserView is the JSON representation returned by login and me.
type UserView struct {
	ID        int64    `json:"id"`
	Email     string   `json:"email"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Role      string   `json:"role"`
	Roles     []string `json:"roles"`
	CompanyID *int64   `json:"companyId"`
	CSRFToken string   `json:"csrfToken,omitempty"`
}

// View builds the public representation of u.
func (u User) View() UserView {
	return UserView{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role.String(),
		Roles:     []string{u.Role.String()},
		CompanyID: u.CompanyID,
	}
}
