package users

import (
	"context"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/odyssey-erp/kpir/internal/platform/httpx"
	"github.com/odyssey-erp/kpir/internal/rbac"
)

var (
	ErrUserNotFound    = httpx.NewError(httpx.ErrNotFound, "User not found")
	ErrEmailTaken      = httpx.NewError(httpx.ErrConflict, "User with this email already exists")
	ErrCompanyNotFound = httpx.NewError(httpx.ErrNotFound, "Company not found")
	ErrInvalidInput    = httpx.NewError(httpx.ErrValidation, "Email and password (min. 8 characters) are required")
)

// Store is the persistence contract of the service.
type Store interface {
	ListUsers(ctx context.Context) ([]User, error)
	GetUser(ctx context.Context, id int64) (User, error)
	EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error)
	CompanyExists(ctx context.Context, companyID int64) (bool, error)
	CreateUser(ctx context.Context, u User, passwordHash string) (User, error)
	UpdateUser(ctx context.Context, u User, passwordHash *string) error
	DeleteUser(ctx context.Context, id int64) error
}

// Service coordinates user management.
type Service struct {
	store    Store
	validate *validator.Validate
	logger   *slog.Logger
	cost     int
}

// NewService constructs the user service.
func NewService(store Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, validate: validator.New(), logger: logger, cost: bcrypt.DefaultCost}
}

// WithHashCost overrides the bcrypt cost, used by tests.
func (s *Service) WithHashCost(cost int) *Service {
	s.cost = cost
	return s
}

// ListUsers returns all users.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.store.ListUsers(ctx)
}

// CreateUser registers an account. Role defaults to employee.
func (s *Service) CreateUser(ctx context.Context, req CreateRequest) (User, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validate.Struct(req); err != nil {
		return User{}, ErrInvalidInput
	}
	role := rbac.RoleEmployee
	if strings.TrimSpace(req.Role) != "" {
		parsed, err := rbac.ParseRole(req.Role)
		if err != nil {
			return User{}, err
		}
		role = parsed
	}
	taken, err := s.store.EmailTaken(ctx, req.Email, 0)
	if err != nil {
		return User{}, err
	}
	if taken {
		return User{}, ErrEmailTaken
	}
	if err := s.ensureCompany(ctx, req.CompanyID); err != nil {
		return User{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return User{}, err
	}
	created, err := s.store.CreateUser(ctx, User{
		CompanyID: req.CompanyID,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      role,
	}, string(hash))
	if err != nil {
		return User{}, err
	}
	s.logger.Info("user created", slog.Int64("user_id", created.ID), slog.String("role", created.Role.String()))
	return created, nil
}

// UpdateUser applies a partial update.
func (s *Service) UpdateUser(ctx context.Context, id int64, req UpdateRequest) (User, error) {
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		return User{}, err
	}
	if req.Email.Set {
		email := strings.TrimSpace(req.Email.Value)
		if err := s.validate.Var(email, "required,email"); err != nil {
			return User{}, httpx.NewError(httpx.ErrValidation, "Invalid email")
		}
		taken, err := s.store.EmailTaken(ctx, email, id)
		if err != nil {
			return User{}, err
		}
		if taken {
			return User{}, ErrEmailTaken
		}
		user.Email = email
	}
	if req.Role.Set {
		if user.Role, err = rbac.ParseRole(req.Role.Value); err != nil {
			return User{}, err
		}
	}
	if req.FirstName.Set {
		user.FirstName = req.FirstName.Ptr()
	}
	if req.LastName.Set {
		user.LastName = req.LastName.Ptr()
	}
	if req.CompanyID.Set {
		companyID := req.CompanyID.Ptr()
		if err := s.ensureCompany(ctx, companyID); err != nil {
			return User{}, err
		}
		user.CompanyID = companyID
	}
	var hash *string
	if req.Password.Set && req.Password.Value != "" {
		raw, err := bcrypt.GenerateFromPassword([]byte(req.Password.Value), s.cost)
		if err != nil {
			return User{}, err
		}
		h := string(raw)
		hash = &h
	}
	if err := s.store.UpdateUser(ctx, user, hash); err != nil {
		return User{}, err
	}
	return user, nil
}

// DeleteUser removes an account.
func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	return s.store.DeleteUser(ctx, id)
}

func (s *Service) ensureCompany(ctx context.Context, companyID *int64) error {
	if companyID == nil {
		return nil
	}
	exists, err := s.store.CompanyExists(ctx, *companyID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrCompanyNotFound
	}
	return nil
}
