package categories

import (
	"fmt"

	"github.com/odyssey-erp/kpir/internal/platform/httpx"
)

// CodeCategoryInUse marks a delete rejected because documents reference the
// category.
const CodeCategoryInUse = "CATEGORY_IN_USE"

var (
	ErrCategoryNotFound = httpx.NewError(httpx.ErrNotFound, "Not found")
	ErrCompanyRequired  = httpx.NewError(httpx.ErrValidation, `Field "companyId" is required`)
	ErrCompanyNotFound  = httpx.NewError(httpx.ErrNotFound, "Company not found")
)

// InUseError reports how many documents still reference a category.
type InUseError struct {
	Count int
}

func (e *InUseError) Error() string {
	return fmt.Sprintf("The category cannot be deleted because it is used in documents. (count: %d)", e.Count)
}

func (e *InUseError) Unwrap() error { return httpx.ErrConflict }
