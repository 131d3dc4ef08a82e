package categories

import (
	"context"
	"strings"

	"github.com/odyssey-erp/kpir/internal/masterdata/shared"
	"github.com/odyssey-erp/kpir/internal/rbac"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns categories visible to the principal. Company users only see
// their own company; administrators may narrow with companyID.
func (s *Service) List(ctx context.Context, principal rbac.Principal, rawType string, companyID *int64) ([]Category, error) {
	filters := shared.ListFilters{}
	if rawType != "" {
		t, err := shared.NormalizeType(rawType)
		if err != nil {
			return nil, err
		}
		filters.Type = t
	}
	if principal.IsAdmin() {
		filters.CompanyID = companyID
	} else {
		if principal.CompanyID == nil {
			return nil, shared.ErrNoCompany
		}
		filters.CompanyID = principal.CompanyID
	}
	return s.repo.List(ctx, filters)
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return Category{}, shared.ErrInvalidName
	}
	t, err := shared.NormalizeType(req.Type)
	if err != nil {
		return Category{}, err
	}
	if req.CompanyID <= 0 {
		return Category{}, ErrCompanyRequired
	}
	return s.repo.Create(ctx, Category{CompanyID: req.CompanyID, Name: name, Type: t})
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateRequest) (Category, error) {
	category, err := s.repo.Get(ctx, id)
	if err != nil {
		return Category{}, err
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return Category{}, shared.ErrInvalidName
		}
		category.Name = name
	}
	if req.Type != nil {
		if category.Type, err = shared.NormalizeType(*req.Type); err != nil {
			return Category{}, err
		}
	}
	if err := s.repo.Update(ctx, category); err != nil {
		return Category{}, err
	}
	return category, nil
}

// Delete refuses to remove categories referenced by documents.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	count, err := s.repo.CountDocuments(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return &InUseError{Count: count}
	}
	return s.repo.Delete(ctx, id)
}
