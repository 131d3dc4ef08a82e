package shared

import (
	"strings"

	"github.com/odyssey-erp/kpir/internal/platform/httpx"
)

var (
	ErrInvalidName = httpx.NewError(httpx.ErrValidation, "Invalid name")
	ErrInvalidType = httpx.NewError(httpx.ErrValidation, "Invalid type")
	ErrNoCompany   = httpx.NewError(httpx.ErrValidation, "User has no company")
)

// NormalizeType upper-cases and validates a document type.
func NormalizeType(raw string) (string, error) {
	t := strings.ToUpper(strings.TrimSpace(raw))
	if t != TypeIncome && t != TypeCost {
		return "", ErrInvalidType
	}
	return t, nil
}

// OptionalString trims s and maps empty values to nil.
func OptionalString(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
