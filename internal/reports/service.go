package reports

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/odyssey-erp/kpir/internal/platform/httpx"
	"github.com/odyssey-erp/kpir/internal/rbac"
)

// KPIRRequest is the JSON payload of the KPIR PDF endpoint.
type KPIRRequest struct {
	Mode    string `json:"mode"`
	Year    int    `json:"year"`
	Month   int    `json:"month"`
	Quarter int    `json:"quarter"`
}

// Period resolves the request into a date range.
func (r KPIRRequest) Period() (Period, error) {
	return ResolvePeriod(Mode(r.Mode), PeriodParams{Month: r.Month, Quarter: r.Quarter}, r.Year)
}

// Renderer abstracts the KPIR PDF backend.
type Renderer interface {
	Render(ctx context.Context, reg KPIRRegister) (File, error)
	Ping(ctx context.Context) error
}

// Observer counts generated reports.
type Observer interface {
	ObserveReport(kind string, err error)
}

var requestValidator = validator.New()

// buildTimeout bounds a shared report build once it is detached from its
// caller.
const buildTimeout = 2 * time.Minute

// Service assembles report data and renders downloads.
type Service struct {
	repo     Repository
	cache    *Cache
	renderer Renderer
	observer Observer
	logger   *slog.Logger
	group    singleflight.Group
}

// NewService wires the report service. cache may be nil.
func NewService(repo Repository, cache *Cache, renderer Renderer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: cache, renderer: renderer, logger: logger}
}

// WithObserver registers report instrumentation.
func (s *Service) WithObserver(o Observer) {
	s.observer = o
}

// Register builds the KPIR register of the principal's company for a
// period. Results are cached per ledger version and concurrent identical
// builds share one database round trip.
func (s *Service) Register(ctx context.Context, companyID int64, period Period) (KPIRRegister, error) {
	key, err := s.cache.BuildKey(ctx, companyID, "kpir", period.Key())
	if err != nil {
		return KPIRRegister{}, err
	}
	v, err := s.shared(ctx, key, func(ctx context.Context) (any, error) {
		var reg KPIRRegister
		err := s.cache.FetchJSON(ctx, key, &reg, func(ctx context.Context) (any, error) {
			company, entries, err := s.load(ctx, companyID, func(ctx context.Context) ([]Entry, error) {
				return s.repo.BookedEntries(ctx, companyID, period.From, period.To)
			})
			if err != nil {
				return nil, err
			}
			return BuildKPIR(company, period, entries), nil
		})
		return reg, err
	})
	if err != nil {
		return KPIRRegister{}, err
	}
	return v.(KPIRRegister), nil
}

// shared runs fn once per key for all concurrent callers. fn runs detached
// from the caller that started it; each caller stops waiting when its own
// ctx ends.
func (s *Service) shared(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	ch := s.group.DoChan(key, func() (any, error) {
		buildCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), buildTimeout)
		defer cancel()
		return fn(buildCtx)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.Val, res.Err
	}
}

// KPIR renders the register PDF for the principal's company.
func (s *Service) KPIR(ctx context.Context, p rbac.Principal, req KPIRRequest) (File, error) {
	file, err := s.kpir(ctx, p, req)
	s.observe("kpir", err)
	return file, err
}

func (s *Service) kpir(ctx context.Context, p rbac.Principal, req KPIRRequest) (File, error) {
	companyID, err := p.DocumentCompany()
	if err != nil {
		return File{}, err
	}
	period, err := req.Period()
	if err != nil {
		return File{}, err
	}
	reg, err := s.Register(ctx, companyID, period)
	if err != nil {
		return File{}, err
	}
	return s.renderer.Render(ctx, reg)
}

// Contractors returns the grouped contractor summary for the company.
func (s *Service) Contractors(ctx context.Context, companyID int64, q ContractorQuery) (CompanyHeader, []ContractorGroup, error) {
	key, err := s.cache.BuildKey(ctx, companyID, "contractors", contractorKey(q))
	if err != nil {
		return CompanyHeader{}, nil, err
	}
	type result struct {
		Company CompanyHeader     `json:"company"`
		Groups  []ContractorGroup `json:"groups"`
	}
	v, err := s.shared(ctx, key, func(ctx context.Context) (any, error) {
		var res result
		err := s.cache.FetchJSON(ctx, key, &res, func(ctx context.Context) (any, error) {
			company, entries, err := s.load(ctx, companyID, func(ctx context.Context) ([]Entry, error) {
				return s.repo.ContractorEntries(ctx, companyID, q)
			})
			if err != nil {
				return nil, err
			}
			return result{Company: company, Groups: AggregateContractors(entries)}, nil
		})
		return res, err
	})
	if err != nil {
		return CompanyHeader{}, nil, err
	}
	res := v.(result)
	return res.Company, res.Groups, nil
}

// ContractorsXLSX renders the contractor summary workbook.
func (s *Service) ContractorsXLSX(ctx context.Context, p rbac.Principal, req ContractorRequest) (File, error) {
	file, err := s.contractorsXLSX(ctx, p, req)
	s.observe("contractors_xlsx", err)
	return file, err
}

func (s *Service) contractorsXLSX(ctx context.Context, p rbac.Principal, req ContractorRequest) (File, error) {
	companyID, err := p.DocumentCompany()
	if err != nil {
		return File{}, err
	}
	if err := validate(req); err != nil {
		return File{}, err
	}
	q, err := req.Query()
	if err != nil {
		return File{}, err
	}
	company, groups, err := s.Contractors(ctx, companyID, q)
	if err != nil {
		return File{}, err
	}
	return RenderContractorsXLSX(company, q, groups)
}

// Warm builds and caches the register of the month containing at.
func (s *Service) Warm(ctx context.Context, companyID int64, at time.Time) error {
	period, err := ResolvePeriod(ModeMonth, PeriodParams{Month: int(at.Month())}, at.Year())
	if err != nil {
		return err
	}
	_, err = s.Register(ctx, companyID, period)
	return err
}

// RendererHealth pings the PDF backend.
func (s *Service) RendererHealth(ctx context.Context) error {
	return s.renderer.Ping(ctx)
}

// load fetches the company header and the entries in parallel.
func (s *Service) load(ctx context.Context, companyID int64, entries func(context.Context) ([]Entry, error)) (CompanyHeader, []Entry, error) {
	var (
		company CompanyHeader
		rows    []Entry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		company, err = s.repo.Company(gctx, companyID)
		return err
	})
	g.Go(func() error {
		var err error
		rows, err = entries(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return CompanyHeader{}, nil, err
	}
	return company, rows, nil
}

func (s *Service) observe(kind string, err error) {
	if s.observer != nil {
		s.observer.ObserveReport(kind, err)
	}
	if err != nil {
		s.logger.Debug("report failed", slog.String("kind", kind), slog.Any("error", err))
	}
}

func validate(v any) error {
	if err := requestValidator.Struct(v); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
			name := fieldErrs[0].Field()
			return httpx.Validationf("Missing field: %s", strings.ToLower(name[:1])+name[1:])
		}
		return httpx.NewError(httpx.ErrValidation, "Invalid request")
	}
	return nil
}

func contractorKey(q ContractorQuery) string {
	parts := []string{q.DateFrom.Format("20060102"), q.DateTo.Format("20060102"), strings.Join(q.Types(), "+")}
	if q.ContractorID != nil {
		parts = append(parts, "c"+strconv.FormatInt(*q.ContractorID, 10))
	}
	return strings.Join(parts, ":")
}
