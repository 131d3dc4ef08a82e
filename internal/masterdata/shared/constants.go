package shared

const (
	// Sort directions
	SortAsc  = "asc"
	SortDesc = "desc"
)

// Document types a category may be assigned to.
const (
	TypeIncome = "INCOME"
	TypeCost   = "COST"
)
