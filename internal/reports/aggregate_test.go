package reports

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr(v int64) *int64 { return &v }

func december() Period {
	p, _ := ResolvePeriod(ModeMonth, PeriodParams{Month: 12}, 2025)
	return p
}

func TestBuildKPIRDecemberScenario(t *testing.T) {
	entries := []Entry{
		{DocumentID: 2, LedgerNumber: 2, Type: TypeCost, EventDate: date("2025-12-10"),
			NetAmount: money("500.00"), VATAmount: money("115.00"), GrossAmount: money("615.00")},
		{DocumentID: 1, LedgerNumber: 1, Type: TypeIncome, EventDate: date("2025-12-05"),
			NetAmount: money("1000.00"), VATAmount: money("230.00"), GrossAmount: money("1230.00"),
			ContractorID: ptr(4), ContractorName: "Beta SA", ContractorAddress: "Kraków"},
	}
	reg := BuildKPIR(CompanyHeader{Name: "Alfa"}, december(), entries)

	require.Len(t, reg.Lines, 2)
	assert.Equal(t, 1, reg.Lines[0].Ordinal)
	assert.Equal(t, int64(1), reg.Lines[0].LedgerNumber)
	assert.Equal(t, "1230.00", reg.Lines[0].SalesRevenue.StringFixed(2))
	assert.Equal(t, "1230.00", reg.Lines[0].TotalRevenue.StringFixed(2))
	assert.True(t, reg.Lines[0].TotalExpenses.IsZero())
	assert.Equal(t, "615.00", reg.Lines[1].OtherExpenses.StringFixed(2))
	assert.Equal(t, "615.00", reg.Lines[1].TotalExpenses.StringFixed(2))
	assert.True(t, reg.Lines[1].TotalRevenue.IsZero())

	assert.Equal(t, "1230.00", reg.Totals.TotalRevenue.StringFixed(2))
	assert.Equal(t, "615.00", reg.Totals.TotalExpenses.StringFixed(2))
	assert.True(t, reg.Totals.RDValue.IsZero())
}

func TestBuildKPIRTotalsEqualSumOfLines(t *testing.T) {
	var entries []Entry
	for i, gross := range []string{"0.10", "0.20", "19.99", "1000.01", "3.33", "7.77"} {
		typ := TypeIncome
		if i%2 == 1 {
			typ = TypeCost
		}
		entries = append(entries, Entry{DocumentID: int64(i + 1), LedgerNumber: int64(6 - i), Type: typ,
			EventDate: date("2025-12-01"), GrossAmount: money(gross)})
	}
	reg := BuildKPIR(CompanyHeader{}, december(), entries)

	sum := zeroAmounts()
	for _, l := range reg.Lines {
		sum = sum.Add(l.Amounts)
	}
	assert.True(t, sum.TotalRevenue.Equal(reg.Totals.TotalRevenue))
	assert.True(t, sum.TotalExpenses.Equal(reg.Totals.TotalExpenses))
	assert.Equal(t, "23.42", reg.Totals.TotalRevenue.StringFixed(2))
	assert.Equal(t, "23.42", reg.Totals.SalesRevenue.StringFixed(2))
	assert.Equal(t, "1007.98", reg.Totals.TotalExpenses.StringFixed(2))

	for i, l := range reg.Lines {
		assert.Equal(t, int64(i+1), l.LedgerNumber)
	}
}

func TestBuildKPIROrderTieBreak(t *testing.T) {
	entries := []Entry{
		{DocumentID: 9, LedgerNumber: 1, Type: TypeIncome, EventDate: date("2025-12-03"), GrossAmount: money("1")},
		{DocumentID: 5, LedgerNumber: 1, Type: TypeIncome, EventDate: date("2025-12-03"), GrossAmount: money("1")},
		{DocumentID: 7, LedgerNumber: 1, Type: TypeIncome, EventDate: date("2025-12-02"), GrossAmount: money("1")},
	}
	reg := BuildKPIR(CompanyHeader{}, december(), entries)
	ids := []int64{}
	for _, l := range reg.Lines {
		ids = append(ids, l.DocumentID)
	}
	assert.Equal(t, []int64{7, 5, 9}, ids)
	assert.Equal(t, "2025-12-02", reg.Lines[0].EventDate)
}

func TestAggregateContractors(t *testing.T) {
	entries := []Entry{
		{Type: TypeCost, ContractorID: ptr(1), ContractorName: "Gamma", ContractorTaxID: "5260250274",
			NetAmount: money("100.10"), VATAmount: money("23.02"), GrossAmount: money("123.12")},
		{Type: TypeIncome, NetAmount: money("10"), VATAmount: money("0"), GrossAmount: money("10")},
		{Type: TypeCost, ContractorID: ptr(1), ContractorName: "Gamma", ContractorTaxID: "5260250274",
			NetAmount: money("0.20"), VATAmount: money("0.05"), GrossAmount: money("0.25")},
		{Type: TypeIncome, ContractorID: ptr(1), ContractorName: "Gamma", ContractorTaxID: "5260250274",
			NetAmount: money("1"), VATAmount: money("0.23"), GrossAmount: money("1.23")},
		{Type: TypeIncome, NetAmount: money("5"), VATAmount: money("0"), GrossAmount: money("5")},
	}
	groups := AggregateContractors(entries)
	require.Len(t, groups, 3)

	assert.Equal(t, "Gamma", groups[0].Contractor)
	assert.Equal(t, TypeCost, groups[0].Type)
	assert.Equal(t, 2, groups[0].Count)
	assert.Equal(t, "100.30", groups[0].Net.StringFixed(2))
	assert.Equal(t, "23.07", groups[0].VAT.StringFixed(2))
	assert.Equal(t, "123.37", groups[0].Gross.StringFixed(2))
	assert.Equal(t, "Koszt", groups[0].TypeLabel())

	assert.Equal(t, NoContractorLabel, groups[1].Contractor)
	assert.Equal(t, "", groups[1].TaxID)
	assert.Equal(t, 2, groups[1].Count)
	assert.Equal(t, "15.00", groups[1].Gross.StringFixed(2))

	assert.Equal(t, TypeIncome, groups[2].Type)
	assert.Equal(t, 1, groups[2].Count)
	assert.Equal(t, "Przychód", groups[2].TypeLabel())
}

func TestContractorRequestQuery(t *testing.T) {
	no := false
	q, err := ContractorRequest{DateFrom: "2025-12-01", DateTo: "2025-12-30", IncludeCost: &no}.Query()
	require.NoError(t, err)
	from, to := q.Bounds()
	assert.Equal(t, date("2025-12-01"), from)
	assert.Equal(t, date("2025-12-31"), to)
	assert.Equal(t, []string{TypeIncome}, q.Types())
	assert.Equal(t, "raport-kontrahenci-2025-12-01_2025-12-30.xlsx", ContractorsFilename(q))

	_, err = ContractorRequest{DateFrom: "2025-12-01", DateTo: "2025-12-30", IncludeIncome: &no, IncludeCost: &no}.Query()
	assert.ErrorIs(t, err, ErrNoTypeSelected)

	_, err = ContractorRequest{DateFrom: "2025-13-01", DateTo: "2025-12-30"}.Query()
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = ContractorRequest{DateFrom: "2025-12-30", DateTo: "2025-12-01"}.Query()
	assert.ErrorIs(t, err, ErrInvalidRange)
}
