package companies

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/kpir/internal/masterdata/shared"
	"github.com/odyssey-erp/kpir/internal/platform/db"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Company, error)
	Get(ctx context.Context, id int64) (Company, error)
	TaxIDExists(ctx context.Context, taxID string, excludeID int64) (bool, error)
	Create(ctx context.Context, company Company) (Company, error)
	Update(ctx context.Context, company Company) error
	Delete(ctx context.Context, id int64) error
	Users(ctx context.Context, companyID int64) ([]CompanyUser, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const companyColumns = `id, name, tax_id, address, active, vat_active, created_at, updated_at`

// List uses a dynamic query due to filter complexity
func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE 1=1`
	args := []any{}
	argCount := 0

	if filters.Search != "" {
		argCount++
		query += ` AND (name ILIKE $` + strconv.Itoa(argCount) + ` OR tax_id ILIKE $` + strconv.Itoa(argCount) + `)`
		args = append(args, "%"+filters.Search+"%")
	}
	if filters.IsActive != nil {
		argCount++
		query += ` AND active = $` + strconv.Itoa(argCount)
		args = append(args, *filters.IsActive)
	}

	query += " ORDER BY " + sortOrder(filters.SortBy, filters.Direction()) + ", id ASC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	companies := []Company{}
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Company, error) {
	c, err := scanCompany(r.pool.QueryRow(ctx, `SELECT `+companyColumns+` FROM companies WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Company{}, ErrCompanyNotFound
	}
	return c, err
}

func (r *repository) TaxIDExists(ctx context.Context, taxID string, excludeID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM companies WHERE tax_id = $1 AND id <> $2)`, taxID, excludeID).Scan(&exists)
	return exists, err
}

func (r *repository) Create(ctx context.Context, company Company) (Company, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO companies (name, tax_id, address, active, vat_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+companyColumns,
		company.Name, company.TaxID, company.Address, company.Active, company.VATActive)
	created, err := scanCompany(row)
	if err != nil {
		if db.IsUniqueViolation(err, "uq_companies_tax_id") {
			return Company{}, ErrDuplicateNIP
		}
		return Company{}, err
	}
	return created, nil
}

func (r *repository) Update(ctx context.Context, company Company) error {
	tag, err := r.pool.Exec(ctx, `UPDATE companies
		SET name = $2, tax_id = $3, address = $4, active = $5, vat_active = $6, updated_at = NOW()
		WHERE id = $1`,
		company.ID, company.Name, company.TaxID, company.Address, company.Active, company.VATActive)
	if err != nil {
		if db.IsUniqueViolation(err, "uq_companies_tax_id") {
			return ErrDuplicateNIP
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCompanyNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM companies WHERE id = $1`, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return ErrCompanyInUse
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCompanyNotFound
	}
	return nil
}

func (r *repository) Users(ctx context.Context, companyID int64) ([]CompanyUser, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, email, first_name, last_name, role
		FROM users WHERE company_id = $1 ORDER BY id`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []CompanyUser{}
	for rows.Next() {
		var u CompanyUser
		if err := rows.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.Role); err != nil {
			return nil, err
		}
		u.Roles = []string{u.Role}
		users = append(users, u)
	}
	return users, rows.Err()
}

func scanCompany(row pgx.Row) (Company, error) {
	var c Company
	err := row.Scan(&c.ID, &c.Name, &c.TaxID, &c.Address, &c.Active, &c.VATActive, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func sortOrder(sortBy, dir string) string {
	switch sortBy {
	case "id":
		return "id " + dir
	case "taxId":
		return "tax_id " + dir
	case "active":
		return "active " + dir
	default:
		return "name " + dir
	}
}
