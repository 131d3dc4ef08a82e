package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/kpir/internal/platform/httpx"
	"github.com/odyssey-erp/kpir/internal/rbac"
)

// ErrUserNotFound indicates the account does not exist.
var ErrUserNotFound = httpx.NewError(httpx.ErrNotFound, "User not found")

// Repository defines persistence operations for auth module.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const userColumns = `id, company_id, email, password_hash, first_name, last_name, role`

// FindByEmail fetches a user by email.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
	return scanUser(row)
}

// FindByID fetches a user by id.
func (r *PGRepository) FindByID(ctx context.Context, id int64) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func scanUser(row pgx.Row) (*User, error) {
	var (
		user      User
		companyID pgtype.Int8
		firstName pgtype.Text
		lastName  pgtype.Text
		role      string
	)
	if err := row.Scan(&user.ID, &companyID, &user.Email, &user.PasswordHash, &firstName, &lastName, &role); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if companyID.Valid {
		id := companyID.Int64
		user.CompanyID = &id
	}
	user.FirstName = firstName.String
	user.LastName = lastName.String
	user.Role = rbac.Role(role)
	return &user, nil
}

var _ Repository = (*PGRepository)(nil)
