package categories

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
	List(ctx context.Context, filters shared.ListFilters) ([]Category, error)
	Get(ctx context.Context, id int64) (Category, error)
	Create(ctx context.Context, category Category) (Category, error)
	Update(ctx context.Context, category Category) error
	Delete(ctx context.Context, id int64) error
	CountDocuments(ctx context.Context, id int64) (int, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Category, error) {
	query := `SELECT id, company_id, name, type FROM categories WHERE 1=1`
	args := []any{}

	if filters.CompanyID != nil {
		args = append(args, *filters.CompanyID)
		query += ` AND company_id = $` + strconv.Itoa(len(args))
	}
	if filters.Type != "" {
		args = append(args, filters.Type)
		query += ` AND type = $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY name ASC, id ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []Category{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.CompanyID, &c.Name, &c.Type); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Category, error) {
	var c Category
	err := r.pool.QueryRow(ctx, `SELECT id, company_id, name, type FROM categories WHERE id = $1`, id).
		Scan(&c.ID, &c.CompanyID, &c.Name, &c.Type)
	if errors.Is(err, pgx.ErrNoRows) {
		return Category{}, ErrCategoryNotFound
	}
	return c, err
}

func (r *repository) Create(ctx context.Context, category Category) (Category, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO categories (company_id, name, type) VALUES ($1, $2, $3) RETURNING id`,
		category.CompanyID, category.Name, category.Type).Scan(&category.ID)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return Category{}, ErrCompanyNotFound
		}
		return Category{}, err
	}
	return category, nil
}

func (r *repository) Update(ctx context.Context, category Category) error {
	tag, err := r.pool.Exec(ctx, `UPDATE categories SET name = $2, type = $3 WHERE id = $1`,
		category.ID, category.Name, category.Type)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			count, countErr := r.CountDocuments(ctx, id)
			if countErr != nil {
				return countErr
			}
			return &InUseError{Count: count}
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func (r *repository) CountDocuments(ctx context.Context, id int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM documents WHERE category_id = $1`, id).Scan(&count)
	return count, err
}
