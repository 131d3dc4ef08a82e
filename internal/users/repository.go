package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/kpir/internal/platform/db"
	"github.com/odyssey-erp/kpir/internal/rbac"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, company_id, email, first_name, last_name, role`

// ListUsers returns all users.
func (r *Repository) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY email`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// GetUser loads one account.
func (r *Repository) GetUser(ctx context.Context, id int64) (User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	return u, err
}

// EmailTaken reports whether another account uses email.
func (r *Repository) EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error) {
	var taken bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE lower(email) = lower($1) AND id <> $2)`, email, excludeID).Scan(&taken)
	return taken, err
}

// CompanyExists reports whether the company is known.
func (r *Repository) CompanyExists(ctx context.Context, companyID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM companies WHERE id = $1)`, companyID).Scan(&exists)
	return exists, err
}

// CreateUser inserts an account with an already hashed password.
func (r *Repository) CreateUser(ctx context.Context, u User, passwordHash string) (User, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO users (company_id, email, password_hash, first_name, last_name, role)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		u.CompanyID, u.Email, passwordHash, u.FirstName, u.LastName, string(u.Role)).Scan(&u.ID)
	if err != nil {
		if db.IsUniqueViolation(err, "uq_users_email") {
			return User{}, ErrEmailTaken
		}
		return User{}, err
	}
	return u, nil
}

// UpdateUser persists account fields; a nil hash keeps the password.
func (r *Repository) UpdateUser(ctx context.Context, u User, passwordHash *string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users
		SET company_id = $2, email = $3, first_name = $4, last_name = $5, role = $6,
		    password_hash = COALESCE($7, password_hash), updated_at = NOW()
		WHERE id = $1`,
		u.ID, u.CompanyID, u.Email, u.FirstName, u.LastName, string(u.Role), passwordHash)
	if err != nil {
		if db.IsUniqueViolation(err, "uq_users_email") {
			return ErrEmailTaken
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// DeleteUser removes an account.
func (r *Repository) DeleteUser(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (User, error) {
	var (
		u    User
		role string
	)
	if err := row.Scan(&u.ID, &u.CompanyID, &u.Email, &u.FirstName, &u.LastName, &role); err != nil {
		return User{}, err
	}
	u.Role = rbac.Role(role)
	return u, nil
}
