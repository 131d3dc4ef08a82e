package categories

// Category classifies documents of a company as revenue or expense items.
type Category struct {
	ID        int64  `json:"id"`
	CompanyID int64  `json:"companyId"`
	Name      string `json:"name"`
	Type      string `json:"type"`
}

// CreateRequest is the payload of POST /api/categories.
type CreateRequest struct {
	CompanyID int64  `json:"companyId"`
	Name      string `json:"name"`
	Type      string `json:"type"`
}

// UpdateRequest is a partial update.
type UpdateRequest struct {
	Name *string `json:"name"`
	Type *string `json:"type"`
}
