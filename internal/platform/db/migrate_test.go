package db

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@db:5432/kpir?sslmode=disable", MigrateURL("postgres://u:p@db:5432/kpir?sslmode=disable"))
	assert.Equal(t, "pgx5://u@db/kpir", MigrateURL("postgresql://u@db/kpir"))
	assert.Equal(t, "pgx5://already", MigrateURL("pgx5://already"))
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(migrationFS, "migrations")
	require.NoError(t, err)
	ups, downs := 0, 0
	for _, e := range entries {
		switch {
		case strings.HasSuffix(e.Name(), ".up.sql"):
			ups++
		case strings.HasSuffix(e.Name(), ".down.sql"):
			downs++
		}
	}
	require.NotZero(t, ups)
	assert.Equal(t, ups, downs)
}

func TestSchemaEnforcesLedgerInvariant(t *testing.T) {
	raw, err := fs.ReadFile(migrationFS, "migrations/000001_init.up.sql")
	require.NoError(t, err)
	schema := string(raw)
	assert.Contains(t, schema, "(status = 'BOOKED') = (ledger_number IS NOT NULL)")
	assert.Contains(t, schema, "uq_documents_company_ledger_number")
}
