package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	jobmetrics "github.com/odyssey-erp/kpir/internal/jobs"
)

// Violation kinds reported by the integrity scan.
const (
	ViolationGap       = "gap"
	ViolationDuplicate = "duplicate"
	ViolationStatus    = "status"
)

// CompanyNumbering summarises the booked ledger numbers of one company.
type CompanyNumbering struct {
	CompanyID int64
	Booked    int64
	Distinct  int64
	Min       int64
	Max       int64
}

// Violation describes one broken ledger invariant.
type Violation struct {
	CompanyID  int64  `json:"companyId"`
	Kind       string `json:"kind"`
	DocumentID int64  `json:"documentId,omitempty"`
	Detail     string `json:"detail"`
}

// IntegrityStore loads the numbering facts the scan checks.
type IntegrityStore interface {
	Numbering(ctx context.Context, companyID int64) ([]CompanyNumbering, error)
	StatusMismatches(ctx context.Context, companyID int64) ([]Violation, error)
}

// PGIntegrityStore reads numbering facts from Postgres.
type PGIntegrityStore struct {
	pool *pgxpool.Pool
}

// NewPGIntegrityStore returns a store over pool.
func NewPGIntegrityStore(pool *pgxpool.Pool) *PGIntegrityStore {
	return &PGIntegrityStore{pool: pool}
}

// Numbering aggregates booked numbers per company. companyID 0 selects all.
func (s *PGIntegrityStore) Numbering(ctx context.Context, companyID int64) ([]CompanyNumbering, error) {
	rows, err := s.pool.Query(ctx, `
SELECT company_id, COUNT(*), COUNT(DISTINCT ledger_number),
       COALESCE(MIN(ledger_number), 0), COALESCE(MAX(ledger_number), 0)
FROM documents
WHERE status = 'BOOKED' AND ($1::bigint = 0 OR company_id = $1)
GROUP BY company_id
ORDER BY company_id`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []CompanyNumbering
	for rows.Next() {
		var n CompanyNumbering
		if err := rows.Scan(&n.CompanyID, &n.Booked, &n.Distinct, &n.Min, &n.Max); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// StatusMismatches lists documents whose status disagrees with their number.
func (s *PGIntegrityStore) StatusMismatches(ctx context.Context, companyID int64) ([]Violation, error) {
	rows, err := s.pool.Query(ctx, `
SELECT company_id, id, status
FROM documents
WHERE (status = 'BOOKED') <> (ledger_number IS NOT NULL)
  AND ($1::bigint = 0 OR company_id = $1)
ORDER BY company_id, id`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Violation
	for rows.Next() {
		var (
			v      Violation
			status string
		)
		if err := rows.Scan(&v.CompanyID, &v.DocumentID, &status); err != nil {
			return nil, err
		}
		v.Kind = ViolationStatus
		v.Detail = fmt.Sprintf("status %s does not match ledger number presence", status)
		out = append(out, v)
	}
	return out, rows.Err()
}

// CheckNumbering reports gaps and duplicates. A valid company holds exactly
// the numbers 1..N for N booked documents.
func CheckNumbering(n CompanyNumbering) []Violation {
	if n.Booked == 0 {
		return nil
	}
	var out []Violation
	if n.Distinct != n.Booked {
		out = append(out, Violation{
			CompanyID: n.CompanyID,
			Kind:      ViolationDuplicate,
			Detail:    fmt.Sprintf("%d booked documents share %d numbers", n.Booked, n.Distinct),
		})
	}
	if n.Min != 1 || n.Max != n.Distinct {
		out = append(out, Violation{
			CompanyID: n.CompanyID,
			Kind:      ViolationGap,
			Detail:    fmt.Sprintf("numbers span %d..%d for %d distinct values", n.Min, n.Max, n.Distinct),
		})
	}
	return out
}

// LedgerIntegrityJob verifies the ledger numbering invariants.
type LedgerIntegrityJob struct {
	store   IntegrityStore
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

// NewLedgerIntegrityJob wires dependencies for the scan.
func NewLedgerIntegrityJob(store IntegrityStore, logger *slog.Logger, metrics *jobmetrics.Metrics) *LedgerIntegrityJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &LedgerIntegrityJob{store: store, logger: logger, metrics: metrics}
}

// Run scans one company, or all when companyID is zero.
func (j *LedgerIntegrityJob) Run(ctx context.Context, companyID int64) (violations []Violation, err error) {
	if j == nil || j.store == nil {
		return nil, errors.New("ledger integrity: job not configured")
	}
	tracker := j.metrics.Track(TaskLedgerIntegrity)
	defer func() { err = tracker.End(err) }()

	stats, err := j.store.Numbering(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("ledger integrity: numbering: %w", err)
	}
	for _, n := range stats {
		violations = append(violations, CheckNumbering(n)...)
	}
	mismatches, err := j.store.StatusMismatches(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("ledger integrity: status: %w", err)
	}
	violations = append(violations, mismatches...)

	for _, v := range violations {
		j.metrics.AddViolations(v.Kind, v.CompanyID, 1)
		j.logger.Error("ledger integrity violation",
			slog.Int64("company_id", v.CompanyID),
			slog.String("kind", v.Kind),
			slog.Int64("document_id", v.DocumentID),
			slog.String("detail", v.Detail))
	}
	j.logger.Info("ledger integrity scan finished",
		slog.Int("companies", len(stats)),
		slog.Int("violations", len(violations)))
	return violations, nil
}

// Handle processes TaskLedgerIntegrity tasks. Violations are logged and
// counted, not retried.
func (j *LedgerIntegrityJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload LedgerIntegrityPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("ledger integrity: decode payload: %v: %w", err, asynq.SkipRetry)
		}
	}
	_, err := j.Run(ctx, payload.CompanyID)
	return err
}
