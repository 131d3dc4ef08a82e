package companies

import (
	"time"
)

// Company represents a tenant keeping its own ledger.
type Company struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	TaxID     *string   `json:"taxId"`
	Address   *string   `json:"address"`
	Active    bool      `json:"active"`
	VATActive bool      `json:"vatActive"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// CompanyUser is the listing shape of a user assigned to a company.
type CompanyUser struct {
	ID        int64    `json:"id"`
	Email     string   `json:"email"`
	FirstName *string  `json:"firstName"`
	LastName  *string  `json:"lastName"`
	Role      string   `json:"role"`
	Roles     []string `json:"roles"`
}
