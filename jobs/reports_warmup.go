package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	jobmetrics "github.com/odyssey-erp/kpir/internal/jobs"
)

// ReportWarmer rebuilds the cached register of a company.
type ReportWarmer interface {
	Warm(ctx context.Context, companyID int64, at time.Time) error
}

// CompanyLister lists companies eligible for warmup.
type CompanyLister interface {
	ActiveCompanyIDs(ctx context.Context) ([]int64, error)
}

// PGCompanyLister reads active companies from Postgres.
type PGCompanyLister struct {
	pool *pgxpool.Pool
}

// NewPGCompanyLister returns a lister over pool.
func NewPGCompanyLister(pool *pgxpool.Pool) *PGCompanyLister {
	return &PGCompanyLister{pool: pool}
}

// ActiveCompanyIDs returns ids of active companies in ascending order.
func (l *PGCompanyLister) ActiveCompanyIDs(ctx context.Context) ([]int64, error) {
	rows, err := l.pool.Query(ctx, `SELECT id FROM companies WHERE active ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ReportsWarmupJob pre-populates the KPIR cache for the current month.
type ReportsWarmupJob struct {
	warmer    ReportWarmer
	companies CompanyLister
	logger    *slog.Logger
	metrics   *jobmetrics.Metrics
	clock     func() time.Time
}

// NewReportsWarmupJob wires dependencies for the warmup handler.
func NewReportsWarmupJob(warmer ReportWarmer, companies CompanyLister, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReportsWarmupJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportsWarmupJob{
		warmer:    warmer,
		companies: companies,
		logger:    logger,
		metrics:   metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes TaskReportsWarmup tasks.
func (j *ReportsWarmupJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.warmer == nil {
		return errors.New("reports warmup: handler not configured")
	}
	var payload ReportsWarmupPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("reports warmup: decode payload: %v: %w", err, asynq.SkipRetry)
		}
	}
	at := payload.At
	if at.IsZero() {
		at = j.clock()
	}

	tracker := j.metrics.Track(TaskReportsWarmup)
	defer func() { err = tracker.End(err) }()

	ids := []int64{payload.CompanyID}
	if payload.CompanyID == 0 {
		if j.companies == nil {
			return errors.New("reports warmup: company lister not configured")
		}
		if ids, err = j.companies.ActiveCompanyIDs(ctx); err != nil {
			return fmt.Errorf("reports warmup: list companies: %w", err)
		}
	}

	var errs []error
	for _, id := range ids {
		if err := j.warmer.Warm(ctx, id, at); err != nil {
			j.logger.Warn("reports warmup failed", slog.Int64("company_id", id), slog.Any("error", err))
			errs = append(errs, err)
			continue
		}
		j.logger.Debug("reports warmed", slog.Int64("company_id", id))
	}
	return errors.Join(errs...)
}
