package auth

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/odyssey-erp/kpir/internal/platform/httpx"
	"github.com/odyssey-erp/kpir/internal/rbac"
	"github.com/odyssey-erp/kpir/internal/shared"
)

// Service wraps authentication business rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return nil, shared.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// User returns the account with the given id.
func (s *Service) User(ctx context.Context, id int64) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

// LoadPrincipal implements rbac.PrincipalLoader.
func (s *Service) LoadPrincipal(ctx context.Context, userID int64) (rbac.Principal, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return rbac.Principal{}, err
	}
	return user.Principal(), nil
}

var _ rbac.PrincipalLoader = (*Service)(nil)
