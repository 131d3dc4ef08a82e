package reports

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Amounts holds the money columns of the KPIR register. Columns 15 (R&D
// description) and 17 (remarks) are text and live on KPIRLine.
type Amounts struct {
	SalesRevenue    decimal.Decimal `json:"col7"`
	OtherRevenue    decimal.Decimal `json:"col8"`
	TotalRevenue    decimal.Decimal `json:"col9"`
	GoodsPurchases  decimal.Decimal `json:"col10"`
	IncidentalCosts decimal.Decimal `json:"col11"`
	Salaries        decimal.Decimal `json:"col12"`
	OtherExpenses   decimal.Decimal `json:"col13"`
	TotalExpenses   decimal.Decimal `json:"col14"`
	RDValue         decimal.Decimal `json:"col16"`
}

// Add returns the column-wise sum of a and b.
func (a Amounts) Add(b Amounts) Amounts {
	return Amounts{
		SalesRevenue:    a.SalesRevenue.Add(b.SalesRevenue),
		OtherRevenue:    a.OtherRevenue.Add(b.OtherRevenue),
		TotalRevenue:    a.TotalRevenue.Add(b.TotalRevenue),
		GoodsPurchases:  a.GoodsPurchases.Add(b.GoodsPurchases),
		IncidentalCosts: a.IncidentalCosts.Add(b.IncidentalCosts),
		Salaries:        a.Salaries.Add(b.Salaries),
		OtherExpenses:   a.OtherExpenses.Add(b.OtherExpenses),
		TotalExpenses:   a.TotalExpenses.Add(b.TotalExpenses),
		RDValue:         a.RDValue.Add(b.RDValue),
	}
}

// KPIRLine is one row of the register.
type KPIRLine struct {
	Ordinal           int    `json:"lp"`
	DocumentID        int64  `json:"documentId"`
	LedgerNumber      int64  `json:"ledgerNumber"`
	EventDate         string `json:"eventDate"`
	ProofNumber       string `json:"proofNumber"`
	ContractorName    string `json:"contractorName"`
	ContractorAddress string `json:"contractorAddress"`
	Description       string `json:"description"`
	Amounts
	RDDescription string `json:"col15"`
	Remarks       string `json:"col17"`
}

// KPIRRegister is the tax revenue and expense ledger for one period.
type KPIRRegister struct {
	Company CompanyHeader `json:"company"`
	Period  Period        `json:"period"`
	Lines   []KPIRLine    `json:"lines"`
	Totals  Amounts       `json:"totals"`
}

// BuildKPIR lays booked entries out in register columns. Income goes to
// columns 7 and 9, costs to columns 13 and 14, always at the gross amount.
// Lines follow ledger number, then event date, then document id.
func BuildKPIR(company CompanyHeader, period Period, entries []Entry) KPIRRegister {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.LedgerNumber != b.LedgerNumber {
			return a.LedgerNumber < b.LedgerNumber
		}
		if !a.EventDate.Equal(b.EventDate) {
			return a.EventDate.Before(b.EventDate)
		}
		return a.DocumentID < b.DocumentID
	})

	reg := KPIRRegister{
		Company: company,
		Period:  period,
		Lines:   make([]KPIRLine, 0, len(sorted)),
		Totals:  zeroAmounts(),
	}
	for i, e := range sorted {
		amounts := zeroAmounts()
		switch e.Type {
		case TypeIncome:
			amounts.SalesRevenue = e.GrossAmount
			amounts.TotalRevenue = e.GrossAmount
		case TypeCost:
			amounts.OtherExpenses = e.GrossAmount
			amounts.TotalExpenses = e.GrossAmount
		}
		reg.Lines = append(reg.Lines, KPIRLine{
			Ordinal:           i + 1,
			DocumentID:        e.DocumentID,
			LedgerNumber:      e.LedgerNumber,
			EventDate:         e.EventDate.Format(dateLayout),
			ProofNumber:       e.InvoiceNumber,
			ContractorName:    e.ContractorName,
			ContractorAddress: e.ContractorAddress,
			Description:       e.Description,
			Amounts:           amounts,
		})
		reg.Totals = reg.Totals.Add(amounts)
	}
	return reg
}

func zeroAmounts() Amounts {
	z := decimal.Zero
	return Amounts{z, z, z, z, z, z, z, z, z}
}

const dateLayout = "2006-01-02"
