package ledger

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// RowQuerier is satisfied by pgx.Tx and *pgxpool.Pool.
type RowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// NextNumber returns the number following the current maximum. A missing or
// zero maximum yields 1.
func NextNumber(currentMax *int64) int64 {
	if currentMax == nil || *currentMax <= 0 {
		return 1
	}
	return *currentMax + 1
}

// NextLedgerNumber reads the company's highest assigned ledger number and
// returns its successor. It must run inside the booking transaction after the
// company row has been locked; otherwise two callers can observe the same
// maximum.
func NextLedgerNumber(ctx context.Context, q RowQuerier, companyID int64) (int64, error) {
	var currentMax *int64
	err := q.QueryRow(ctx, `SELECT MAX(ledger_number)::bigint FROM documents WHERE company_id = $1 AND ledger_number IS NOT NULL`, companyID).
		Scan(&currentMax)
	if err != nil {
		return 0, fmt.Errorf("ledger: read max number: %w", err)
	}
	return NextNumber(currentMax), nil
}
