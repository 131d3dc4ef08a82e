package companies

import "github.com/odyssey-erp/kpir/internal/masterdata/shared"

// CreateRequest is the payload of POST /api/admin/companies.
type CreateRequest struct {
	Name      string  `json:"name"`
	TaxID     *string `json:"taxId"`
	Address   *string `json:"address"`
	Active    *bool   `json:"active"`
	VATActive *bool   `json:"vatActive"`
}

// UpdateRequest is a partial update; absent fields are left untouched.
type UpdateRequest struct {
	Name      shared.Nullable[string] `json:"name"`
	TaxID     shared.Nullable[string] `json:"taxId"`
	Address   shared.Nullable[string] `json:"address"`
	Active    shared.Nullable[bool]   `json:"active"`
	VATActive shared.Nullable[bool]   `json:"vatActive"`
}
