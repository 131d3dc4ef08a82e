package ledger

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/kpir/internal/platform/httpx"
)

// maxAmount is the exclusive bound of a NUMERIC(12,2) column.
var maxAmount = decimal.New(1, 10)

// CreateRequest is the JSON payload of POST /api/documents. Amounts accept
// JSON numbers or strings and are decoded without passing through float64.
type CreateRequest struct {
	Type          string           `json:"type" validate:"required"`
	IssueDate     string           `json:"issueDate" validate:"required"`
	EventDate     string           `json:"eventDate" validate:"required"`
	Description   *string          `json:"description" validate:"omitempty,max=255"`
	InvoiceNumber *string          `json:"invoiceNumber" validate:"omitempty,max=128"`
	NetAmount     *decimal.Decimal `json:"netAmount" validate:"required"`
	VATAmount     *decimal.Decimal `json:"vatAmount" validate:"required"`
	GrossAmount   *decimal.Decimal `json:"grossAmount" validate:"required"`
	CategoryID    *int64           `json:"categoryId"`
	ContractorID  *int64           `json:"contractorId"`
}

// CreateInput is a validated document draft.
type CreateInput struct {
	Type          DocumentType
	IssueDate     time.Time
	EventDate     time.Time
	Description   *string
	InvoiceNumber *string
	NetAmount     decimal.Decimal
	VATAmount     decimal.Decimal
	GrossAmount   decimal.Decimal
	CategoryID    *int64
	ContractorID  *int64
}

var requestValidator = validator.New()

// Parse validates the request and normalises it into a CreateInput.
func (r CreateRequest) Parse() (CreateInput, error) {
	if err := requestValidator.Struct(r); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			if fe.Tag() == "required" {
				return CreateInput{}, httpx.Validationf("Missing field: %s", jsonField(fe.Field()))
			}
			return CreateInput{}, httpx.Validationf("Invalid field: %s", jsonField(fe.Field()))
		}
		return CreateInput{}, httpx.NewError(httpx.ErrValidation, "Invalid request")
	}

	docType := DocumentType(strings.ToUpper(strings.TrimSpace(r.Type)))
	if !docType.Valid() {
		return CreateInput{}, ErrInvalidType
	}
	issue, err := ParseDate(r.IssueDate)
	if err != nil {
		return CreateInput{}, err
	}
	event, err := ParseDate(r.EventDate)
	if err != nil {
		return CreateInput{}, err
	}

	in := CreateInput{
		Type:          docType,
		IssueDate:     issue,
		EventDate:     event,
		Description:   r.Description,
		InvoiceNumber: trimmedOrNil(r.InvoiceNumber),
		CategoryID:    positiveOrNil(r.CategoryID),
		ContractorID:  positiveOrNil(r.ContractorID),
	}
	for _, a := range []struct {
		src *decimal.Decimal
		dst *decimal.Decimal
	}{
		{r.NetAmount, &in.NetAmount},
		{r.VATAmount, &in.VATAmount},
		{r.GrossAmount, &in.GrossAmount},
	} {
		v, err := NormalizeAmount(*a.src)
		if err != nil {
			return CreateInput{}, err
		}
		*a.dst = v
	}
	return in, nil
}

// NormalizeAmount rounds half away from zero to two fraction digits and
// rejects values that do not fit the storage column.
func NormalizeAmount(v decimal.Decimal) (decimal.Decimal, error) {
	rounded := v.Round(2)
	if rounded.Abs().GreaterThanOrEqual(maxAmount) {
		return decimal.Decimal{}, ErrAmountOutOfRange
	}
	return rounded, nil
}

// ParseDate parses a YYYY-MM-DD calendar date as UTC midnight.
func ParseDate(raw string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(raw), time.UTC)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// ParseListFilter validates optional type and status query values.
func ParseListFilter(rawType, rawStatus string) (ListFilter, error) {
	var f ListFilter
	if rawType != "" {
		f.Type = DocumentType(strings.ToUpper(rawType))
		if !f.Type.Valid() {
			return ListFilter{}, ErrInvalidType
		}
	}
	if rawStatus != "" {
		f.Status = Status(strings.ToUpper(rawStatus))
		if !f.Status.Valid() {
			return ListFilter{}, ErrInvalidStatus
		}
	}
	return f, nil
}

// DocumentView is the JSON shape of a document. Amounts are rendered as
// fixed two-digit strings.
type DocumentView struct {
	ID            int64   `json:"id"`
	InvoiceNumber *string `json:"invoiceNumber"`
	Type          string  `json:"type"`
	IssueDate     string  `json:"issueDate"`
	EventDate     string  `json:"eventDate"`
	Description   *string `json:"description"`
	NetAmount     string  `json:"netAmount"`
	VATAmount     string  `json:"vatAmount"`
	GrossAmount   string  `json:"grossAmount"`
	Status        string  `json:"status"`
	LedgerNumber  *int64  `json:"ledgerNumber"`
	CategoryID    *int64  `json:"categoryId"`
	ContractorID  *int64  `json:"contractorId"`
}

// View converts d into its JSON representation.
func (d Document) View() DocumentView {
	return DocumentView{
		ID:            d.ID,
		InvoiceNumber: d.InvoiceNumber,
		Type:          string(d.Type),
		IssueDate:     d.IssueDate.Format(DateLayout),
		EventDate:     d.EventDate.Format(DateLayout),
		Description:   d.Description,
		NetAmount:     d.NetAmount.StringFixed(2),
		VATAmount:     d.VATAmount.StringFixed(2),
		GrossAmount:   d.GrossAmount.StringFixed(2),
		Status:        string(d.Status),
		LedgerNumber:  d.LedgerNumber,
		CategoryID:    d.CategoryID,
		ContractorID:  d.ContractorID,
	}
}

// LedgerEntryView is a row of the booked ledger listing.
type LedgerEntryView struct {
	LedgerNumber int64   `json:"ledgerNumber"`
	EventDate    string  `json:"eventDate"`
	Description  *string `json:"description"`
	Type         string  `json:"type"`
	NetAmount    string  `json:"netAmount"`
	GrossAmount  string  `json:"grossAmount"`
}

// LedgerEntry converts a booked document into a ledger listing row.
func (d Document) LedgerEntry() LedgerEntryView {
	var number int64
	if d.LedgerNumber != nil {
		number = *d.LedgerNumber
	}
	return LedgerEntryView{
		LedgerNumber: number,
		EventDate:    d.EventDate.Format(DateLayout),
		Description:  d.Description,
		Type:         string(d.Type),
		NetAmount:    d.NetAmount.StringFixed(2),
		GrossAmount:  d.GrossAmount.StringFixed(2),
	}
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func positiveOrNil(id *int64) *int64 {
	if id == nil || *id <= 0 {
		return nil
	}
	return id
}

func jsonField(structField string) string {
	if structField == "" {
		return structField
	}
	switch structField {
	case "VATAmount":
		return "vatAmount"
	}
	return strings.ToLower(structField[:1]) + structField[1:]
}
