package reports

import (
	"time"

	"github.com/shopspring/decimal"
)

// Document types as stored on documents.type.
const (
	TypeIncome = "INCOME"
	TypeCost   = "COST"
)

// Entry is a booked document joined with its contractor, the input of both
// reports.
type Entry struct {
	DocumentID        int64           `json:"documentId"`
	LedgerNumber      int64           `json:"ledgerNumber"`
	Type              string          `json:"type"`
	EventDate         time.Time       `json:"eventDate"`
	InvoiceNumber     string          `json:"invoiceNumber"`
	Description       string          `json:"description"`
	NetAmount         decimal.Decimal `json:"netAmount"`
	VATAmount         decimal.Decimal `json:"vatAmount"`
	GrossAmount       decimal.Decimal `json:"grossAmount"`
	ContractorID      *int64          `json:"contractorId,omitempty"`
	ContractorName    string          `json:"contractorName"`
	ContractorAddress string          `json:"contractorAddress"`
	ContractorTaxID   string          `json:"contractorTaxId"`
}

// HasContractor reports whether the document references a contractor.
func (e Entry) HasContractor() bool {
	return e.ContractorID != nil
}

// CompanyHeader is printed at the top of every report.
type CompanyHeader struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	TaxID   string `json:"taxId"`
}
