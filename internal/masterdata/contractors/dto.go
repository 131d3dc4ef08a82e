package contractors

import "github.com/odyssey-erp/kpir/internal/masterdata/shared"

// UpdateRequest is a partial update; null clears optional fields.
type UpdateRequest struct {
	Name    shared.Nullable[string] `json:"name"`
	TaxID   shared.Nullable[string] `json:"taxId"`
	Address shared.Nullable[string] `json:"address"`
}
