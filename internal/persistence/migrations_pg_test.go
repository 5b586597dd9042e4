package persistence_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/smartcommunity/portal/internal/persistence"
	"github.com/smartcommunity/portal/internal/persistence/testhelper"
)

func TestRunMigrations_Postgres(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	ctx := context.Background()

	// The helper already applied every file once; a restart applies them again.
	require.NoError(t, persistence.RunMigrations(ctx, pool, testhelper.MigrationsDir(), zap.NewNop()))

	var tables []string
	rows, err := pool.Query(ctx, `
        SELECT table_name FROM information_schema.tables
        WHERE table_schema = 'public' ORDER BY table_name`)
	require.NoError(t, err)
	defer rows.Close()
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		tables = append(tables, name)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"users", "visitors"}, tables)
}
