package ledger

import "github.com/odyssey-erp/kpir/internal/platform/httpx"

// CodeAlreadyBooked marks a booking attempt on a booked document.
const CodeAlreadyBooked = "ALREADY_BOOKED"

var (
	ErrDocumentNotFound  = httpx.NewError(httpx.ErrNotFound, "Document not found")
	ErrForbidden         = httpx.NewError(httpx.ErrForbidden, "Document belongs to another company")
	ErrAlreadyBooked     = httpx.NewCodedError(httpx.ErrValidation, CodeAlreadyBooked, "Document is already booked")
	ErrInvalidContractor = httpx.NewError(httpx.ErrValidation, "Invalid contractorId (not in your company)")
	ErrInvalidCategory   = httpx.NewError(httpx.ErrValidation, "Invalid categoryId (not in your company)")
	ErrNumberConflict    = httpx.NewError(httpx.ErrConflict, "Ledger number already assigned, retry booking")
	ErrInvalidType       = httpx.NewError(httpx.ErrValidation, "Invalid type")
	ErrInvalidStatus     = httpx.NewError(httpx.ErrValidation, "Invalid status")
	ErrInvalidDate       = httpx.NewError(httpx.ErrValidation, "Invalid date format. Use YYYY-MM-DD")
	ErrAmountOutOfRange  = httpx.NewError(httpx.ErrValidation, "Amount out of range")
)
