// Package ledger implements the document lifecycle of the KPIR ledger:
// documents are created in a buffer and receive a per-company sequential
// ledger number when booked.
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentType distinguishes revenue from expense documents.
type DocumentType string

const (
	TypeIncome DocumentType = "INCOME"
	TypeCost   DocumentType = "COST"
)

// Valid reports whether t is a known type.
func (t DocumentType) Valid() bool {
	return t == TypeIncome || t == TypeCost
}

// Status is the lifecycle state of a document.
type Status string

const (
	StatusBuffer Status = "BUFFER"
	StatusBooked Status = "BOOKED"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusBuffer || s == StatusBooked
}

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// Document is a single ledger entry. LedgerNumber is set if and only if the
// document is booked.
type Document struct {
	ID            int64
	CompanyID     int64
	CategoryID    *int64
	ContractorID  *int64
	CreatedByID   *int64
	Type          DocumentType
	IssueDate     time.Time
	EventDate     time.Time
	Description   *string
	InvoiceNumber *string
	NetAmount     decimal.Decimal
	VATAmount     decimal.Decimal
	GrossAmount   decimal.Decimal
	Status        Status
	LedgerNumber  *int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Booked reports whether the document already carries a ledger number.
func (d Document) Booked() bool {
	return d.Status == StatusBooked
}

// ListFilter narrows document listings.
type ListFilter struct {
	Type   DocumentType
	Status Status
}
