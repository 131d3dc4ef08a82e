package companies

import (
	"context"
	"log/slog"

	"github.com/odyssey-erp/kpir/internal/masterdata/shared"
	"github.com/odyssey-erp/kpir/internal/platform/httpx"
)

var (
	ErrCompanyNotFound = httpx.NewError(httpx.ErrNotFound, "Company not found")
	ErrNameRequired    = httpx.NewError(httpx.ErrValidation, `Field "name" is required`)
	ErrInvalidNIP      = httpx.NewError(httpx.ErrValidation, "Invalid NIP (taxId)")
	ErrDuplicateNIP    = httpx.NewError(httpx.ErrConflict, "Company with this NIP already exists")
	ErrCompanyInUse    = httpx.NewCodedError(httpx.ErrConflict, "COMPANY_IN_USE", "The company cannot be deleted because it is still referenced.")
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Company, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Company, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (Company, error) {
	name, err := s.validateName(req.Name)
	if err != nil {
		return Company{}, err
	}
	company := Company{
		Name:    name,
		Address: req.Address,
		Active:  true,
	}
	if req.Active != nil {
		company.Active = *req.Active
	}
	if req.VATActive != nil {
		company.VATActive = *req.VATActive
	}
	if company.TaxID, err = s.checkNIP(ctx, req.TaxID, 0); err != nil {
		return Company{}, err
	}
	created, err := s.repo.Create(ctx, company)
	if err != nil {
		return Company{}, err
	}
	s.logger.Info("company created", slog.Int64("company_id", created.ID))
	return created, nil
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateRequest) (Company, error) {
	company, err := s.repo.Get(ctx, id)
	if err != nil {
		return Company{}, err
	}
	if req.Name.Set {
		if company.Name, err = s.validateName(req.Name.Value); err != nil {
			return Company{}, err
		}
	}
	if req.TaxID.Set {
		if company.TaxID, err = s.checkNIP(ctx, req.TaxID.Ptr(), id); err != nil {
			return Company{}, err
		}
	}
	if req.Address.Set {
		company.Address = req.Address.Ptr()
	}
	if req.Active.Set {
		company.Active = req.Active.Valid && req.Active.Value
	}
	if req.VATActive.Set {
		company.VATActive = req.VATActive.Valid && req.VATActive.Value
	}
	if err := s.repo.Update(ctx, company); err != nil {
		return Company{}, err
	}
	return company, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("company deleted", slog.Int64("company_id", id))
	return nil
}

func (s *Service) Users(ctx context.Context, id int64) ([]CompanyUser, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.Users(ctx, id)
}

func (s *Service) checkNIP(ctx context.Context, raw *string, excludeID int64) (*string, error) {
	nip := NormalizeNIP(raw)
	if !ValidNIP(nip) {
		return nil, ErrInvalidNIP
	}
	if nip == nil {
		return nil, nil
	}
	exists, err := s.repo.TaxIDExists(ctx, *nip, excludeID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateNIP
	}
	return nip, nil
}
