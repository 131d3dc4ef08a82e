package ledger

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/kpir/internal/platform/db"
)

// Repository encapsulates document persistence.
type Repository interface {
	List(ctx context.Context, companyID int64, filter ListFilter) ([]Document, error)
	Ledger(ctx context.Context, companyID int64) ([]Document, error)
	Get(ctx context.Context, id int64) (Document, error)
	ContractorCompany(ctx context.Context, contractorID int64) (int64, error)
	CategoryCompany(ctx context.Context, categoryID int64) (int64, error)
	Insert(ctx context.Context, doc Document) (Document, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes the operations of the booking transaction.
type TxRepository interface {
	GetForUpdate(ctx context.Context, id int64) (Document, error)
	LockCompany(ctx context.Context, companyID int64) error
	NextLedgerNumber(ctx context.Context, companyID int64) (int64, error)
	MarkBooked(ctx context.Context, id, number int64) error
}

const uniqueLedgerNumber = "uq_documents_company_ledger_number"

const documentColumns = `id, company_id, category_id, contractor_id, created_by_id, type, issue_date, event_date,
	description, invoice_number, net_amount::text, vat_amount::text, gross_amount::text, status, ledger_number,
	created_at, updated_at`

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a Postgres backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) List(ctx context.Context, companyID int64, filter ListFilter) ([]Document, error) {
	var (
		sb   strings.Builder
		args = []any{companyID}
	)
	sb.WriteString(`SELECT ` + documentColumns + ` FROM documents WHERE company_id = $1`)
	if filter.Type != "" {
		args = append(args, string(filter.Type))
		sb.WriteString(" AND type = $" + strconv.Itoa(len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		sb.WriteString(" AND status = $" + strconv.Itoa(len(args)))
	}
	sb.WriteString(" ORDER BY event_date ASC, id ASC")
	return r.query(ctx, sb.String(), args...)
}

func (r *repository) Ledger(ctx context.Context, companyID int64) ([]Document, error) {
	return r.query(ctx, `SELECT `+documentColumns+` FROM documents
		WHERE company_id = $1 AND status = 'BOOKED'
		ORDER BY event_date ASC, ledger_number ASC`, companyID)
}

func (r *repository) Get(ctx context.Context, id int64) (Document, error) {
	doc, err := scanDocument(r.pool.QueryRow(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Document{}, ErrDocumentNotFound
	}
	return doc, err
}

func (r *repository) ContractorCompany(ctx context.Context, contractorID int64) (int64, error) {
	return r.ownerOf(ctx, `SELECT company_id FROM contractors WHERE id = $1`, contractorID, ErrInvalidContractor)
}

func (r *repository) CategoryCompany(ctx context.Context, categoryID int64) (int64, error) {
	return r.ownerOf(ctx, `SELECT company_id FROM categories WHERE id = $1`, categoryID, ErrInvalidCategory)
}

func (r *repository) ownerOf(ctx context.Context, sql string, id int64, missing error) (int64, error) {
	var companyID int64
	err := r.pool.QueryRow(ctx, sql, id).Scan(&companyID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, missing
	}
	return companyID, err
}

func (r *repository) Insert(ctx context.Context, doc Document) (Document, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO documents (company_id, category_id, contractor_id, created_by_id, type,
		issue_date, event_date, description, invoice_number, net_amount, vat_amount, gross_amount, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10::numeric, $11::numeric, $12::numeric, 'BUFFER')
		RETURNING id, status, created_at, updated_at`,
		doc.CompanyID, doc.CategoryID, doc.ContractorID, doc.CreatedByID, string(doc.Type),
		doc.IssueDate, doc.EventDate, doc.Description, doc.InvoiceNumber,
		toNumeric(doc.NetAmount), toNumeric(doc.VATAmount), toNumeric(doc.GrossAmount)).
		Scan(&doc.ID, &doc.Status, &doc.CreatedAt, &doc.UpdatedAt)
	if db.IsForeignKeyViolation(err) {
		switch db.ConstraintName(err) {
		case "documents_category_id_fkey":
			return Document{}, ErrInvalidCategory
		case "documents_contractor_id_fkey":
			return Document{}, ErrInvalidContractor
		}
	}
	if err != nil {
		return Document{}, fmt.Errorf("ledger: insert document: %w", err)
	}
	return doc, nil
}

// WithTx runs fn in a ReadCommitted transaction. Statements issued after a
// row lock is granted see rows committed by the previous holder, which the
// MAX+1 read relies on.
func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTxOptions(ctx, r.pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

func (r *repository) query(ctx context.Context, sql string, args ...any) ([]Document, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) GetForUpdate(ctx context.Context, id int64) (Document, error) {
	doc, err := scanDocument(r.tx.QueryRow(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Document{}, ErrDocumentNotFound
	}
	return doc, err
}

func (r *txRepository) LockCompany(ctx context.Context, companyID int64) error {
	var id int64
	err := r.tx.QueryRow(ctx, `SELECT id FROM companies WHERE id = $1 FOR UPDATE`, companyID).Scan(&id)
	if err != nil {
		return fmt.Errorf("ledger: lock company %d: %w", companyID, err)
	}
	return nil
}

func (r *txRepository) NextLedgerNumber(ctx context.Context, companyID int64) (int64, error) {
	return NextLedgerNumber(ctx, r.tx, companyID)
}

func (r *txRepository) MarkBooked(ctx context.Context, id, number int64) error {
	tag, err := r.tx.Exec(ctx, `UPDATE documents SET status = 'BOOKED', ledger_number = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'BUFFER'`, id, number)
	if err != nil {
		if db.IsUniqueViolation(err, uniqueLedgerNumber) {
			return ErrNumberConflict
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyBooked
	}
	return nil
}

func scanDocument(row pgx.Row) (Document, error) {
	var (
		d               Document
		docType, status string
		net, vat, gross string
	)
	err := row.Scan(&d.ID, &d.CompanyID, &d.CategoryID, &d.ContractorID, &d.CreatedByID, &docType,
		&d.IssueDate, &d.EventDate, &d.Description, &d.InvoiceNumber, &net, &vat, &gross, &status,
		&d.LedgerNumber, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return Document{}, err
	}
	d.Type = DocumentType(docType)
	d.Status = Status(status)
	if d.NetAmount, err = decimal.NewFromString(net); err != nil {
		return Document{}, fmt.Errorf("ledger: parse net amount: %w", err)
	}
	if d.VATAmount, err = decimal.NewFromString(vat); err != nil {
		return Document{}, fmt.Errorf("ledger: parse vat amount: %w", err)
	}
	if d.GrossAmount, err = decimal.NewFromString(gross); err != nil {
		return Document{}, fmt.Errorf("ledger: parse gross amount: %w", err)
	}
	return d, nil
}

func toNumeric(v decimal.Decimal) string {
	return v.StringFixed(2)
}
