package contractors

import (
	"context"
	"strings"

	"github.com/odyssey-erp/kpir/internal/masterdata/shared"
	"github.com/odyssey-erp/kpir/internal/platform/httpx"
	"github.com/odyssey-erp/kpir/internal/rbac"
)

var ErrNameRequired = httpx.NewError(httpx.ErrValidation, "Name is required")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, principal rbac.Principal) ([]Contractor, error) {
	companyID, err := companyOf(principal)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByCompany(ctx, companyID)
}

func (s *Service) Create(ctx context.Context, principal rbac.Principal, req CreateRequest) (Contractor, error) {
	companyID, err := companyOf(principal)
	if err != nil {
		return Contractor{}, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return Contractor{}, ErrNameRequired
	}
	return s.repo.Create(ctx, Contractor{
		CompanyID: companyID,
		Name:      name,
		TaxID:     shared.OptionalString(req.TaxID),
		Address:   req.Address,
	})
}

func (s *Service) Update(ctx context.Context, principal rbac.Principal, id int64, req UpdateRequest) (Contractor, error) {
	contractor, err := s.owned(ctx, principal, id)
	if err != nil {
		return Contractor{}, err
	}
	if req.Name.Set {
		name := strings.TrimSpace(req.Name.Value)
		if !req.Name.Valid || name == "" {
			return Contractor{}, shared.ErrInvalidName
		}
		contractor.Name = name
	}
	if req.TaxID.Set {
		contractor.TaxID = shared.OptionalString(req.TaxID.Ptr())
	}
	if req.Address.Set {
		contractor.Address = req.Address.Ptr()
	}
	if err := s.repo.Update(ctx, contractor); err != nil {
		return Contractor{}, err
	}
	return contractor, nil
}

func (s *Service) Delete(ctx context.Context, principal rbac.Principal, id int64) error {
	if _, err := s.owned(ctx, principal, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) owned(ctx context.Context, principal rbac.Principal, id int64) (Contractor, error) {
	companyID, err := companyOf(principal)
	if err != nil {
		return Contractor{}, err
	}
	contractor, err := s.repo.Get(ctx, id)
	if err != nil {
		return Contractor{}, err
	}
	if contractor.CompanyID != companyID {
		return Contractor{}, rbac.ErrForbidden
	}
	return contractor, nil
}

func companyOf(principal rbac.Principal) (int64, error) {
	if principal.CompanyID == nil {
		return 0, shared.ErrNoCompany
	}
	return *principal.CompanyID, nil
}
