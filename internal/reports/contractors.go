package reports

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/kpir/internal/platform/httpx"
)

// NoContractorLabel groups documents without a contractor.
const NoContractorLabel = "— (brak kontrahenta)"

var (
	ErrNoTypeSelected = httpx.NewError(httpx.ErrValidation, "At least one of includeIncome/includeCost must be true")
	ErrInvalidRange   = httpx.NewError(httpx.ErrValidation, "Invalid dateFrom/dateTo. Use YYYY-MM-DD")
)

// ContractorRequest is the JSON payload of the contractor report.
type ContractorRequest struct {
	DateFrom      string `json:"dateFrom" validate:"required"`
	DateTo        string `json:"dateTo" validate:"required"`
	IncludeIncome *bool  `json:"includeIncome"`
	IncludeCost   *bool  `json:"includeCost"`
	ContractorID  *int64 `json:"contractorId"`
}

// ContractorQuery selects documents for the contractor report. DateTo is
// inclusive.
type ContractorQuery struct {
	DateFrom      time.Time
	DateTo        time.Time
	IncludeIncome bool
	IncludeCost   bool
	ContractorID  *int64
}

// Query validates the request. Both include flags default to true.
func (r ContractorRequest) Query() (ContractorQuery, error) {
	q := ContractorQuery{IncludeIncome: true, IncludeCost: true}
	if r.IncludeIncome != nil {
		q.IncludeIncome = *r.IncludeIncome
	}
	if r.IncludeCost != nil {
		q.IncludeCost = *r.IncludeCost
	}
	if !q.IncludeIncome && !q.IncludeCost {
		return ContractorQuery{}, ErrNoTypeSelected
	}
	from, err := time.ParseInLocation(dateLayout, strings.TrimSpace(r.DateFrom), time.UTC)
	if err != nil {
		return ContractorQuery{}, ErrInvalidRange
	}
	to, err := time.ParseInLocation(dateLayout, strings.TrimSpace(r.DateTo), time.UTC)
	if err != nil || to.Before(from) {
		return ContractorQuery{}, ErrInvalidRange
	}
	q.DateFrom, q.DateTo = from, to
	if r.ContractorID != nil && *r.ContractorID > 0 {
		q.ContractorID = r.ContractorID
	}
	return q, nil
}

// Bounds returns the half-open range covering DateFrom..DateTo inclusive.
func (q ContractorQuery) Bounds() (time.Time, time.Time) {
	return q.DateFrom, q.DateTo.AddDate(0, 0, 1)
}

// Types lists the selected document types.
func (q ContractorQuery) Types() []string {
	types := make([]string, 0, 2)
	if q.IncludeIncome {
		types = append(types, TypeIncome)
	}
	if q.IncludeCost {
		types = append(types, TypeCost)
	}
	return types
}

// Label renders the period for report headers.
func (q ContractorQuery) Label() string {
	return q.DateFrom.Format(dateLayout) + " do " + q.DateTo.Format(dateLayout)
}

// ContractorGroup sums the documents of one contractor and type.
type ContractorGroup struct {
	Contractor string          `json:"contractor"`
	TaxID      string          `json:"taxId"`
	Type       string          `json:"type"`
	Count      int             `json:"count"`
	Net        decimal.Decimal `json:"net"`
	VAT        decimal.Decimal `json:"vat"`
	Gross      decimal.Decimal `json:"gross"`
}

// TypeLabel is the Polish name of the group's document type.
func (g ContractorGroup) TypeLabel() string {
	switch g.Type {
	case TypeIncome:
		return "Przychód"
	case TypeCost:
		return "Koszt"
	}
	return g.Type
}

type groupKey struct {
	name, taxID, docType string
}

// AggregateContractors groups entries by contractor name, tax id and type.
// Groups keep the order in which their first entry was seen.
func AggregateContractors(entries []Entry) []ContractorGroup {
	index := make(map[groupKey]int)
	groups := make([]ContractorGroup, 0)
	for _, e := range entries {
		name, taxID := e.ContractorName, e.ContractorTaxID
		if !e.HasContractor() {
			name, taxID = NoContractorLabel, ""
		}
		key := groupKey{name: name, taxID: taxID, docType: e.Type}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, ContractorGroup{
				Contractor: name,
				TaxID:      taxID,
				Type:       e.Type,
				Net:        decimal.Zero,
				VAT:        decimal.Zero,
				Gross:      decimal.Zero,
			})
		}
		g := &groups[i]
		g.Count++
		g.Net = g.Net.Add(e.NetAmount)
		g.VAT = g.VAT.Add(e.VATAmount)
		g.Gross = g.Gross.Add(e.GrossAmount)
	}
	return groups
}
