package ledger

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/odyssey-erp/kpir/internal/rbac"
	"github.com/odyssey-erp/kpir/internal/shared"
)

// Booking outcomes reported to the BookingObserver.
const (
	OutcomeBooked        = "booked"
	OutcomeAlreadyBooked = "already_booked"
	OutcomeConflict      = "conflict"
	OutcomeRejected      = "rejected"
	OutcomeError         = "error"
)

// AuditPort records business events.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// CacheInvalidator drops cached reports derived from a company's ledger.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, companyID int64) error
}

// BookingObserver counts booking attempts by outcome.
type BookingObserver interface {
	ObserveBooking(outcome string)
}

// Service implements the document lifecycle.
type Service struct {
	repo                Repository
	audit               AuditPort
	logger              *slog.Logger
	invalidator         CacheInvalidator
	observer            BookingObserver
	categorySameCompany bool
	now                 func() time.Time
}

// NewService constructs a Service. Category ownership is enforced by default.
func NewService(repo Repository, audit AuditPort, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, audit: audit, logger: logger, categorySameCompany: true, now: time.Now}
}

// WithNow overrides the clock stamped on audit records.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// WithCacheInvalidator registers the report cache dropped after bookings.
func (s *Service) WithCacheInvalidator(inv CacheInvalidator) {
	s.invalidator = inv
}

// WithBookingObserver registers booking instrumentation.
func (s *Service) WithBookingObserver(obs BookingObserver) {
	s.observer = obs
}

// WithCategoryScope toggles the check that a document's category belongs to
// the document's company.
func (s *Service) WithCategoryScope(sameCompany bool) {
	s.categorySameCompany = sameCompany
}

// Create stores a new BUFFER document for the principal's company.
func (s *Service) Create(ctx context.Context, p rbac.Principal, in CreateInput) (Document, error) {
	companyID, err := p.DocumentCompany()
	if err != nil {
		return Document{}, err
	}
	if in.ContractorID != nil {
		owner, err := s.repo.ContractorCompany(ctx, *in.ContractorID)
		if err != nil {
			return Document{}, err
		}
		if owner != companyID {
			return Document{}, ErrInvalidContractor
		}
	}
	if in.CategoryID != nil && s.categorySameCompany {
		owner, err := s.repo.CategoryCompany(ctx, *in.CategoryID)
		if err != nil {
			return Document{}, err
		}
		if owner != companyID {
			return Document{}, ErrInvalidCategory
		}
	}

	createdBy := p.UserID
	doc, err := s.repo.Insert(ctx, Document{
		CompanyID:     companyID,
		CategoryID:    in.CategoryID,
		ContractorID:  in.ContractorID,
		CreatedByID:   &createdBy,
		Type:          in.Type,
		IssueDate:     in.IssueDate,
		EventDate:     in.EventDate,
		Description:   in.Description,
		InvoiceNumber: in.InvoiceNumber,
		NetAmount:     in.NetAmount,
		VATAmount:     in.VATAmount,
		GrossAmount:   in.GrossAmount,
		Status:        StatusBuffer,
	})
	if err != nil {
		return Document{}, err
	}
	s.record(ctx, p.UserID, "document.create", doc.ID, map[string]any{
		"company_id": companyID,
		"type":       string(doc.Type),
		"gross":      doc.GrossAmount.StringFixed(2),
	})
	return doc, nil
}

// Book assigns the next ledger number of the document's company. The
// document and company rows stay locked until commit, so concurrent bookings
// within one company are serialised and never share a number.
func (s *Service) Book(ctx context.Context, p rbac.Principal, documentID int64) (int64, error) {
	companyID, err := p.DocumentCompany()
	if err != nil {
		s.observe(OutcomeRejected)
		return 0, err
	}

	var number int64
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		doc, err := tx.GetForUpdate(ctx, documentID)
		if err != nil {
			return err
		}
		if doc.CompanyID != companyID {
			return ErrForbidden
		}
		if doc.Booked() {
			return ErrAlreadyBooked
		}
		if err := tx.LockCompany(ctx, companyID); err != nil {
			return err
		}
		next, err := tx.NextLedgerNumber(ctx, companyID)
		if err != nil {
			return err
		}
		if err := tx.MarkBooked(ctx, documentID, next); err != nil {
			return err
		}
		number = next
		return nil
	})
	if err != nil {
		s.observe(bookingOutcome(err))
		return 0, err
	}
	s.observe(OutcomeBooked)

	if s.invalidator != nil {
		if err := s.invalidator.Invalidate(ctx, companyID); err != nil {
			s.logger.Warn("invalidate report cache", slog.Int64("company_id", companyID), slog.Any("error", err))
		}
	}
	s.record(ctx, p.UserID, "document.book", documentID, map[string]any{
		"company_id":    companyID,
		"ledger_number": number,
	})
	return number, nil
}

// Get returns a single document of the principal's company.
func (s *Service) Get(ctx context.Context, p rbac.Principal, id int64) (Document, error) {
	companyID, err := p.DocumentCompany()
	if err != nil {
		return Document{}, err
	}
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return Document{}, err
	}
	if doc.CompanyID != companyID {
		return Document{}, ErrForbidden
	}
	return doc, nil
}

// List returns the principal's company documents ordered by event date.
func (s *Service) List(ctx context.Context, p rbac.Principal, filter ListFilter) ([]Document, error) {
	companyID, err := p.DocumentCompany()
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, companyID, filter)
}

// Ledger returns the booked documents of the principal's company.
func (s *Service) Ledger(ctx context.Context, p rbac.Principal) ([]Document, error) {
	companyID, err := p.DocumentCompany()
	if err != nil {
		return nil, err
	}
	return s.repo.Ledger(ctx, companyID)
}

func (s *Service) record(ctx context.Context, actorID int64, action string, documentID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "document",
		EntityID: strconv.FormatInt(documentID, 10),
		Meta:     meta,
		At:       s.now(),
	})
	if err != nil {
		s.logger.Warn("audit record failed", slog.String("action", action), slog.Any("error", err))
	}
}

func (s *Service) observe(outcome string) {
	if s.observer != nil {
		s.observer.ObserveBooking(outcome)
	}
}

func bookingOutcome(err error) string {
	switch {
	case errors.Is(err, ErrAlreadyBooked):
		return OutcomeAlreadyBooked
	case errors.Is(err, ErrNumberConflict):
		return OutcomeConflict
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrDocumentNotFound):
		return OutcomeRejected
	}
	return OutcomeError
}
