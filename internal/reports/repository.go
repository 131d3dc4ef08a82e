package reports

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/kpir/internal/platform/httpx"
)

// ErrCompanyNotFound is returned when the principal's company vanished.
var ErrCompanyNotFound = httpx.NewError(httpx.ErrNotFound, "Company not found")

// Repository loads report inputs. Only BOOKED documents are returned.
type Repository interface {
	Company(ctx context.Context, companyID int64) (CompanyHeader, error)
	BookedEntries(ctx context.Context, companyID int64, from, to time.Time) ([]Entry, error)
	ContractorEntries(ctx context.Context, companyID int64, q ContractorQuery) ([]Entry, error)
}

const entrySelect = `SELECT d.id, d.ledger_number::bigint, d.type, d.event_date,
	COALESCE(d.invoice_number, ''), COALESCE(d.description, ''),
	d.net_amount::text, d.vat_amount::text, d.gross_amount::text,
	c.id, COALESCE(c.name, ''), COALESCE(c.address, ''), COALESCE(c.tax_id, '')
	FROM documents d
	LEFT JOIN contractors c ON c.id = d.contractor_id`

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a Postgres backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Company(ctx context.Context, companyID int64) (CompanyHeader, error) {
	h := CompanyHeader{ID: companyID}
	err := r.pool.QueryRow(ctx, `SELECT name, COALESCE(address, ''), COALESCE(tax_id, '') FROM companies WHERE id = $1`, companyID).
		Scan(&h.Name, &h.Address, &h.TaxID)
	if errors.Is(err, pgx.ErrNoRows) {
		return CompanyHeader{}, ErrCompanyNotFound
	}
	return h, err
}

func (r *repository) BookedEntries(ctx context.Context, companyID int64, from, to time.Time) ([]Entry, error) {
	return r.query(ctx, entrySelect+`
		WHERE d.company_id = $1 AND d.status = 'BOOKED' AND d.event_date >= $2 AND d.event_date < $3
		ORDER BY d.ledger_number ASC, d.event_date ASC, d.id ASC`, companyID, from, to)
}

func (r *repository) ContractorEntries(ctx context.Context, companyID int64, q ContractorQuery) ([]Entry, error) {
	from, to := q.Bounds()
	var sb strings.Builder
	args := []any{companyID, from, to, q.Types()}
	sb.WriteString(entrySelect)
	sb.WriteString(` WHERE d.company_id = $1 AND d.status = 'BOOKED' AND d.event_date >= $2 AND d.event_date < $3 AND d.type = ANY($4)`)
	if q.ContractorID != nil {
		args = append(args, *q.ContractorID)
		sb.WriteString(" AND d.contractor_id = $" + strconv.Itoa(len(args)))
	}
	sb.WriteString(" ORDER BY d.event_date ASC, d.ledger_number ASC, d.id ASC")
	return r.query(ctx, sb.String(), args...)
}

func (r *repository) query(ctx context.Context, sql string, args ...any) ([]Entry, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Entry{}
	for rows.Next() {
		var (
			e               Entry
			net, vat, gross string
		)
		if err := rows.Scan(&e.DocumentID, &e.LedgerNumber, &e.Type, &e.EventDate, &e.InvoiceNumber, &e.Description,
			&net, &vat, &gross, &e.ContractorID, &e.ContractorName, &e.ContractorAddress, &e.ContractorTaxID); err != nil {
			return nil, err
		}
		if e.NetAmount, err = decimal.NewFromString(net); err != nil {
			return nil, fmt.Errorf("reports: parse net amount: %w", err)
		}
		if e.VATAmount, err = decimal.NewFromString(vat); err != nil {
			return nil, fmt.Errorf("reports: parse vat amount: %w", err)
		}
		if e.GrossAmount, err = decimal.NewFromString(gross); err != nil {
			return nil, fmt.Errorf("reports: parse gross amount: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
