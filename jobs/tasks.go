package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLedgerIntegrity scans ledger numbering for every or one company.
	TaskLedgerIntegrity = "ledger:integrity"
	// TaskReportsWarmup rebuilds the cached KPIR register of a company.
	TaskReportsWarmup = "reports:warmup"
)

// LedgerIntegrityPayload selects the companies to scan. Zero means all.
type LedgerIntegrityPayload struct {
	CompanyID int64  `json:"company_id,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// ReportsWarmupPayload identifies the company whose cache should be rebuilt.
// Zero means every active company.
type ReportsWarmupPayload struct {
	CompanyID int64     `json:"company_id,omitempty"`
	At        time.Time `json:"at,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
}

// NewLedgerIntegrityTask constructs an integrity scan task.
func NewLedgerIntegrityTask(payload LedgerIntegrityPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLedgerIntegrity, data, asynq.MaxRetry(3), asynq.Timeout(10*time.Minute)), nil
}

// NewReportsWarmupTask constructs a cache warmup task.
func NewReportsWarmupTask(payload ReportsWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportsWarmup, data, asynq.MaxRetry(2), asynq.Timeout(2*time.Minute)), nil
}
