package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcommunity/portal/internal/persistence/testhelper"
)

func TestVisitorsEntryStampConstraint(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	users := NewUserRepository(pool)
	visitors := NewVisitorRepository(pool)
	resident := newResident(t, users)
	v := newVisitor(t, visitors, resident.ID, "VISITOR-1-a", rosterDay)

	_, err := pool.Exec(context.Background(), `UPDATE visitors SET entry_time = NOW() WHERE id = $1`, v.ID)
	var pgErr *pgconn.PgError
	require.True(t, errors.As(err, &pgErr), "err = %v", err)
	assert.Equal(t, "23514", pgErr.Code)
	assert.Equal(t, "visitors_entry_stamp", pgErr.ConstraintName)
}
