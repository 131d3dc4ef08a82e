// Package reports builds the KPIR register and the contractor summary from
// booked documents and renders them as PDF and XLSX downloads.
package reports

import (
	"fmt"
	"strings"
	"time"

	"github.com/odyssey-erp/kpir/internal/platform/httpx"
)

// Mode selects the length of a reporting period.
type Mode string

const (
	ModeMonth   Mode = "month"
	ModeQuarter Mode = "quarter"
	ModeYear    Mode = "year"
)

const (
	minYear = 2000
	maxYear = 2100
)

// Invalid argument errors. All of them map to 400.
var (
	ErrInvalidMode    = httpx.NewError(httpx.ErrValidation, "Invalid mode. Allowed: month|quarter|year")
	ErrInvalidYear    = httpx.NewError(httpx.ErrValidation, "Invalid year")
	ErrInvalidMonth   = httpx.NewError(httpx.ErrValidation, "Invalid month (1-12)")
	ErrInvalidQuarter = httpx.NewError(httpx.ErrValidation, "Invalid quarter (1-4)")
)

var polishMonths = [...]string{
	"Styczeń", "Luty", "Marzec", "Kwiecień", "Maj", "Czerwiec",
	"Lipiec", "Sierpień", "Wrzesień", "Październik", "Listopad", "Grudzień",
}

// PeriodParams carries the mode specific selector.
type PeriodParams struct {
	Month   int
	Quarter int
}

// Period is the half-open range [From, To) with a human readable title.
type Period struct {
	From  time.Time `json:"from"`
	To    time.Time `json:"to"`
	Title string    `json:"title"`
}

// Contains reports whether t falls inside the period.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.From) && t.Before(p.To)
}

// Key identifies the period in cache keys.
func (p Period) Key() string {
	return p.From.Format("20060102") + "-" + p.To.Format("20060102")
}

// ResolvePeriod converts a reporting mode into a date range in UTC.
func ResolvePeriod(mode Mode, params PeriodParams, year int) (Period, error) {
	mode = Mode(strings.ToLower(strings.TrimSpace(string(mode))))
	switch mode {
	case ModeMonth, ModeQuarter, ModeYear:
	default:
		return Period{}, ErrInvalidMode
	}
	if year < minYear || year > maxYear {
		return Period{}, ErrInvalidYear
	}

	switch mode {
	case ModeMonth:
		if params.Month < 1 || params.Month > 12 {
			return Period{}, ErrInvalidMonth
		}
		from := time.Date(year, time.Month(params.Month), 1, 0, 0, 0, 0, time.UTC)
		return Period{
			From:  from,
			To:    from.AddDate(0, 1, 0),
			Title: fmt.Sprintf("%s %d", polishMonths[params.Month-1], year),
		}, nil
	case ModeQuarter:
		if params.Quarter < 1 || params.Quarter > 4 {
			return Period{}, ErrInvalidQuarter
		}
		from := time.Date(year, time.Month((params.Quarter-1)*3+1), 1, 0, 0, 0, 0, time.UTC)
		return Period{
			From:  from,
			To:    from.AddDate(0, 3, 0),
			Title: fmt.Sprintf("Kwartał %d %d", params.Quarter, year),
		}, nil
	default:
		from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		return Period{
			From:  from,
			To:    from.AddDate(1, 0, 0),
			Title: fmt.Sprintf("Rok %d", year),
		}, nil
	}
}
