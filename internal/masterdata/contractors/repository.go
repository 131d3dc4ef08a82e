package contractors

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/kpir/internal/platform/db"
	"github.com/odyssey-erp/kpir/internal/platform/httpx"
)

var (
	ErrContractorNotFound = httpx.NewError(httpx.ErrNotFound, "Not found")
	ErrContractorInUse    = httpx.NewError(httpx.ErrConflict, "The contractor cannot be deleted because it is used in documents.")
)

type Repository interface {
	ListByCompany(ctx context.Context, companyID int64) ([]Contractor, error)
	Get(ctx context.Context, id int64) (Contractor, error)
	Create(ctx context.Context, contractor Contractor) (Contractor, error)
	Update(ctx context.Context, contractor Contractor) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) ListByCompany(ctx context.Context, companyID int64) ([]Contractor, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, company_id, name, tax_id, address
		FROM contractors WHERE company_id = $1 ORDER BY name ASC, id ASC`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Contractor{}
	for rows.Next() {
		var c Contractor
		if err := rows.Scan(&c.ID, &c.CompanyID, &c.Name, &c.TaxID, &c.Address); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Contractor, error) {
	var c Contractor
	err := r.pool.QueryRow(ctx, `SELECT id, company_id, name, tax_id, address FROM contractors WHERE id = $1`, id).
		Scan(&c.ID, &c.CompanyID, &c.Name, &c.TaxID, &c.Address)
	if errors.Is(err, pgx.ErrNoRows) {
		return Contractor{}, ErrContractorNotFound
	}
	return c, err
}

func (r *repository) Create(ctx context.Context, c Contractor) (Contractor, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO contractors (company_id, name, tax_id, address)
		VALUES ($1, $2, $3, $4) RETURNING id`, c.CompanyID, c.Name, c.TaxID, c.Address).Scan(&c.ID)
	return c, err
}

func (r *repository) Update(ctx context.Context, c Contractor) error {
	tag, err := r.pool.Exec(ctx, `UPDATE contractors SET name = $2, tax_id = $3, address = $4 WHERE id = $1`,
		c.ID, c.Name, c.TaxID, c.Address)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrContractorNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM contractors WHERE id = $1`, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return ErrContractorInUse
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrContractorNotFound
	}
	return nil
}
