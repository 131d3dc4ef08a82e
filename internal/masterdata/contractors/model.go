package contractors

// Contractor is a counterparty of a company's documents.
type Contractor struct {
	ID        int64   `json:"id"`
	CompanyID int64   `json:"companyId"`
	Name      string  `json:"name"`
	TaxID     *string `json:"taxId"`
	Address   *string `json:"address"`
}

// CreateRequest is the payload of POST /api/contractors.
type CreateRequest struct {
	Name    string  `json:"name"`
	TaxID   *string `json:"taxId"`
	Address *string `json:"address"`
}
