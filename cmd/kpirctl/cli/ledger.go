package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/odyssey-erp/kpir/internal/platform/db"
	"github.com/odyssey-erp/kpir/jobs"
)

// ErrLedgerViolations is returned by ledger verify when the scan finds problems.
var ErrLedgerViolations = fmt.Errorf("ledger verify: violations found")

func newLedgerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger maintenance commands",
	}
	var companyID int64
	verify := &cobra.Command{
		Use:   "verify",
		Short: "Check that booked ledger numbers are exactly 1..N per company",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			pool, err := db.New(cmd.Context(), cfg.PGDSN, db.PoolOptions{MaxConns: 2})
			if err != nil {
				return err
			}
			defer pool.Close()
			job := jobs.NewLedgerIntegrityJob(jobs.NewPGIntegrityStore(pool), logger(), nil)
			return verifyLedger(cmd.Context(), cmd.OutOrStdout(), job, companyID)
		},
	}
	verify.Flags().Int64Var(&companyID, "company", 0, "verify one company (0 = all)")
	cmd.AddCommand(verify)
	return cmd
}

func verifyLedger(ctx context.Context, out io.Writer, job *jobs.LedgerIntegrityJob, companyID int64) error {
	violations, err := job.Run(ctx, companyID)
	if err != nil {
		return err
	}
	if len(violations) == 0 {
		fmt.Fprintln(out, "ledger OK")
		return nil
	}
	for _, v := range violations {
		if v.DocumentID > 0 {
			fmt.Fprintf(out, "company=%d kind=%s document=%d %s\n", v.CompanyID, v.Kind, v.DocumentID, v.Detail)
			continue
		}
		fmt.Fprintf(out, "company=%d kind=%s %s\n", v.CompanyID, v.Kind, v.Detail)
	}
	return fmt.Errorf("%w: %d", ErrLedgerViolations, len(violations))
}
