// Package postgres implements the repository interfaces with database/sql and
// parameterized queries against the Supabase Postgres database.
package postgres

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// rollback is deferred after BeginTx; it is a no-op once the transaction committed.
func rollback(tx *sql.Tx) {
	_ = tx.Rollback()
}

// affectedOrNoRows converts a zero-row update into sql.ErrNoRows.
func affectedOrNoRows(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
