package migration

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sentinelQuery = "SELECT to_regclass('public.conversations') IS NOT NULL"

func TestEnsureMigrated(t *testing.T) {
	ctx := context.Background()

	t.Run("skips when schema exists", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
		require.NoError(t, err)
		defer db.Close()
		log, hook := test.NewNullLogger()

		mock.ExpectQuery(sentinelQuery).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		require.NoError(t, EnsureMigrated(ctx, db, log, "localhost"))
		assert.NoError(t, mock.ExpectationsWereMet())
		assert.Equal(t, "db_migration_skip", hook.LastEntry().Data["event"])
	})

	t.Run("applies every step in order", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
		require.NoError(t, err)
		defer db.Close()
		log, hook := test.NewNullLogger()

		mock.ExpectQuery(sentinelQuery).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		for _, s := range Steps() {
			mock.ExpectExec(s.SQL).WillReturnResult(sqlmock.NewResult(0, 0))
		}

		require.NoError(t, EnsureMigrated(ctx, db, log, "localhost"))
		assert.NoError(t, mock.ExpectationsWereMet())
		assert.Equal(t, "db_migration_success", hook.LastEntry().Data["event"])
	})

	t.Run("stops at failing step", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
		require.NoError(t, err)
		defer db.Close()
		log, _ := test.NewNullLogger()

		all := Steps()
		mock.ExpectQuery(sentinelQuery).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectExec(all[0].SQL).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(all[1].SQL).WillReturnError(errors.New("permission denied"))

		err = EnsureMigrated(ctx, db, log, "localhost")
		require.Error(t, err)
		assert.Contains(t, err.Error(), all[1].Name)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("sentinel query error", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
		require.NoError(t, err)
		defer db.Close()
		log, _ := test.NewNullLogger()

		mock.ExpectQuery(sentinelQuery).WillReturnError(errors.New("connection reset"))

		err = EnsureMigrated(ctx, db, log, "localhost")
		assert.ErrorContains(t, err, "failed to check sentinel table")
	})
}

func TestStepsCoverRLSAndIndexes(t *testing.T) {
	names := map[string]bool{}
	sqlText := ""
	for _, s := range Steps() {
		assert.False(t, names[s.Name], "duplicate step %s", s.Name)
		names[s.Name] = true
		sqlText += s.SQL
	}

	for _, table := range RLSTables {
		assert.True(t, names["enable_rls_"+table], "missing rls step for %s", table)
	}
	for _, idx := range ExpectedIndexes {
		assert.Contains(t, sqlText, idx)
	}
	assert.Contains(t, sqlText, "create_conversation_with_participants")
}
