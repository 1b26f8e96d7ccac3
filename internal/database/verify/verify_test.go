package verify

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVerifier(t *testing.T) (*Verifier, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	v := New(db)
	v.tables = []string{"agencies", "messages", "profiles"}
	v.indexes = []string{"idx_agencies_slug", "idx_messages_conversation_created_at"}
	return v, mock
}

func TestConnection(t *testing.T) {
	ctx := context.Background()

	t.Run("reachable", func(t *testing.T) {
		v, mock := newVerifier(t)
		mock.ExpectPing()
		mock.ExpectQuery("SELECT version\\(\\), current_database\\(\\)").
			WillReturnRows(sqlmock.NewRows([]string{"version", "current_database"}).AddRow("PostgreSQL 15.6", "postgres"))

		r, err := v.Connection(ctx)
		require.NoError(t, err)
		assert.True(t, r.OK())
		assert.Equal(t, "postgres on PostgreSQL 15.6", r.Checks[1].Detail)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ping fails", func(t *testing.T) {
		v, mock := newVerifier(t)
		mock.ExpectPing().WillReturnError(errors.New("connection refused"))

		r, err := v.Connection(ctx)
		require.NoError(t, err)
		assert.False(t, r.OK())
		assert.Equal(t, "connection refused", r.Checks[0].Detail)
	})
}

func TestRLS(t *testing.T) {
	ctx := context.Background()

	t.Run("reports each table", func(t *testing.T) {
		v, mock := newVerifier(t)
		mock.ExpectQuery("SELECT t.tablename, t.rowsecurity, COUNT\\(p.policyname\\)").
			WithArgs(sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"tablename", "rowsecurity", "count"}).
				AddRow("agencies", true, 2).
				AddRow("messages", false, 0))

		r, err := v.RLS(ctx)
		require.NoError(t, err)
		assert.False(t, r.OK())
		assert.Equal(t, []Check{
			{Name: "agencies", OK: true, Detail: "2 policies"},
			{Name: "messages", Detail: "row level security disabled"},
			{Name: "profiles", Detail: "table missing"},
		}, r.Checks)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query error", func(t *testing.T) {
		v, mock := newVerifier(t)
		mock.ExpectQuery("SELECT t.tablename").WillReturnError(errors.New("permission denied"))

		_, err := v.RLS(ctx)
		assert.ErrorContains(t, err, "failed to query pg_tables")
	})
}

func TestIndexes(t *testing.T) {
	v, mock := newVerifier(t)
	mock.ExpectQuery("SELECT indexname FROM pg_indexes").
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"indexname"}).AddRow("idx_agencies_slug"))

	r, err := v.Indexes(context.Background())
	require.NoError(t, err)
	assert.False(t, r.OK())
	assert.True(t, r.Checks[0].OK)
	assert.Equal(t, "index missing", r.Checks[1].Detail)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewUsesMigrationLists(t *testing.T) {
	v := New(nil)
	assert.Contains(t, v.tables, "conversations")
	assert.Contains(t, v.indexes, "idx_claim_requests_open_unique")
}
