package cli

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"

	"github.com/odyssey-erp/kpir/jobs"
)

// JobsCLI wraps manual management helpers for Asynq jobs.
type JobsCLI struct {
	client    *jobs.Client
	inspector *asynq.Inspector
}

// NewJobsCLI initialises the CLI helpers for the given Redis options.
func NewJobsCLI(opts asynq.RedisClientOpt) *JobsCLI {
	return &JobsCLI{client: jobs.NewClient(opts), inspector: asynq.NewInspector(opts)}
}

// Close releases underlying resources.
func (c *JobsCLI) Close() error {
	var errs []error
	if c.inspector != nil {
		errs = append(errs, c.inspector.Close())
	}
	if c.client != nil {
		errs = append(errs, c.client.Close())
	}
	return errors.Join(errs...)
}

// Trigger enqueues a supported job by task type.
func (c *JobsCLI) Trigger(ctx context.Context, name string, companyID int64) (*asynq.TaskInfo, error) {
	if c == nil || c.client == nil {
		return nil, errors.New("jobs cli: client not configured")
	}
	switch name {
	case jobs.TaskLedgerIntegrity:
		return c.client.EnqueueLedgerIntegrity(ctx, companyID)
	case jobs.TaskReportsWarmup:
		return c.client.EnqueueReportsWarmup(ctx, companyID)
	default:
		return nil, fmt.Errorf("jobs cli: unsupported job %s", name)
	}
}

// QueueStats summarises the current queue state.
type QueueStats struct {
	Queue     string
	Pending   int
	Active    int
	Scheduled int
	Retry     int
	Archived  int
}

// InspectQueue reports the queue metrics for the default queue.
func (c *JobsCLI) InspectQueue() (QueueStats, error) {
	if c == nil || c.inspector == nil {
		return QueueStats{}, errors.New("jobs cli: inspector not configured")
	}
	stats := QueueStats{Queue: jobs.QueueDefault}
	info, err := c.inspector.GetQueueInfo(jobs.QueueDefault)
	if errors.Is(err, asynq.ErrQueueNotFound) {
		return stats, nil
	}
	if err != nil {
		return QueueStats{}, err
	}
	stats.Pending = info.Pending
	stats.Active = info.Active
	stats.Scheduled = info.Scheduled
	stats.Retry = info.Retry
	stats.Archived = info.Archived
	return stats, nil
}

// ListScheduled returns scheduled task infos for observability.
func (c *JobsCLI) ListScheduled(size int) ([]*asynq.TaskInfo, error) {
	if c == nil || c.inspector == nil {
		return nil, errors.New("jobs cli: inspector not configured")
	}
	if size <= 0 {
		size = 10
	}
	return c.inspector.ListScheduledTasks(jobs.QueueDefault, asynq.PageSize(size), asynq.Page(1))
}

func newJobsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Trigger and inspect background jobs",
	}

	var companyID int64
	trigger := &cobra.Command{
		Use:       "trigger <task>",
		Short:     "Enqueue a job (ledger:integrity, reports:warmup)",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{jobs.TaskLedgerIntegrity, jobs.TaskReportsWarmup},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withJobsCLI(func(c *JobsCLI) error {
				info, err := c.Trigger(cmd.Context(), args[0], companyID)
				if err != nil {
					return err
				}
				if info == nil {
					fmt.Fprintln(cmd.OutOrStdout(), "already queued")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "enqueued %s id=%s queue=%s\n", info.Type, info.ID, info.Queue)
				return nil
			})
		},
	}
	trigger.Flags().Int64Var(&companyID, "company", 0, "limit the job to one company (0 = all)")

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Print queue statistics and scheduled tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withJobsCLI(func(c *JobsCLI) error {
				s, err := c.InspectQueue()
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "QUEUE\tPENDING\tACTIVE\tSCHEDULED\tRETRY\tARCHIVED")
				fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%d\n", s.Queue, s.Pending, s.Active, s.Scheduled, s.Retry, s.Archived)
				if err := w.Flush(); err != nil {
					return err
				}
				scheduled, err := c.ListScheduled(10)
				if err != nil && !errors.Is(err, asynq.ErrQueueNotFound) {
					return err
				}
				for _, t := range scheduled {
					fmt.Fprintf(cmd.OutOrStdout(), "scheduled %s at %s\n", t.Type, t.NextProcessAt.Format("2006-01-02 15:04:05"))
				}
				return nil
			})
		},
	}

	cmd.AddCommand(trigger, stats)
	return cmd
}

func withJobsCLI(fn func(*JobsCLI) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	c := NewJobsCLI(asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	defer func() { _ = c.Close() }()
	return fn(c)
}
