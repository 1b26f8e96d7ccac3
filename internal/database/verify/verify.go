// Package verify checks a live database against what the API expects:
// reachability, row-level security and the indexes its queries rely on.
package verify

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"staffingapi/internal/database/migration"
)

// Check is the outcome of a single verification.
type Check struct {
	Name   string `json:"name"`
	OK     bool   `json:"ok"`
	Detail string `json:"detail,omitempty"`
}

// Report groups the checks of one verification run.
type Report struct {
	Checks []Check `json:"checks"`
}

// OK reports whether every check passed.
func (r Report) OK() bool {
	for _, c := range r.Checks {
		if !c.OK {
			return false
		}
	}
	return true
}

// Verifier runs diagnostics against a Postgres database.
type Verifier struct {
	db      *sql.DB
	tables  []string
	indexes []string
}

// New returns a verifier that expects the tables and indexes created by the migrations.
func New(db *sql.DB) *Verifier {
	return &Verifier{db: db, tables: migration.RLSTables, indexes: migration.ExpectedIndexes}
}

// Connection pings the database and reports the server version.
func (v *Verifier) Connection(ctx context.Context) (Report, error) {
	if err := v.db.PingContext(ctx); err != nil {
		return Report{Checks: []Check{{Name: "ping", Detail: err.Error()}}}, nil
	}

	var version, dbName string
	err := v.db.QueryRowContext(ctx, `SELECT version(), current_database()`).Scan(&version, &dbName)
	if err != nil {
		return Report{}, fmt.Errorf("failed to query server version: %w", err)
	}
	return Report{Checks: []Check{
		{Name: "ping", OK: true},
		{Name: "server", OK: true, Detail: fmt.Sprintf("%s on %s", dbName, version)},
	}}, nil
}

const rlsQuery = `
	SELECT t.tablename, t.rowsecurity, COUNT(p.policyname)
	FROM pg_tables t
	LEFT JOIN pg_policies p ON p.schemaname = t.schemaname AND p.tablename = t.tablename
	WHERE t.schemaname = 'public' AND t.tablename = ANY($1)
	GROUP BY t.tablename, t.rowsecurity`

// RLS checks that every expected table exists with row-level security enabled,
// and reports its policy count.
func (v *Verifier) RLS(ctx context.Context) (Report, error) {
	rows, err := v.db.QueryContext(ctx, rlsQuery, pq.Array(v.tables))
	if err != nil {
		return Report{}, fmt.Errorf("failed to query pg_tables: %w", err)
	}
	defer rows.Close()

	type tableState struct {
		rls      bool
		policies int
	}
	found := make(map[string]tableState, len(v.tables))
	for rows.Next() {
		var (
			name string
			st   tableState
		)
		if err := rows.Scan(&name, &st.rls, &st.policies); err != nil {
			return Report{}, fmt.Errorf("failed to scan pg_tables row: %w", err)
		}
		found[name] = st
	}
	if err := rows.Err(); err != nil {
		return Report{}, fmt.Errorf("failed to read pg_tables: %w", err)
	}

	var r Report
	for _, table := range v.tables {
		st, ok := found[table]
		switch {
		case !ok:
			r.Checks = append(r.Checks, Check{Name: table, Detail: "table missing"})
		case !st.rls:
			r.Checks = append(r.Checks, Check{Name: table, Detail: "row level security disabled"})
		default:
			r.Checks = append(r.Checks, Check{Name: table, OK: true, Detail: fmt.Sprintf("%d policies", st.policies)})
		}
	}
	return r, nil
}

// Indexes checks that every expected index exists in the public schema.
func (v *Verifier) Indexes(ctx context.Context) (Report, error) {
	rows, err := v.db.QueryContext(ctx,
		`SELECT indexname FROM pg_indexes WHERE schemaname = 'public' AND indexname = ANY($1)`,
		pq.Array(v.indexes))
	if err != nil {
		return Report{}, fmt.Errorf("failed to query pg_indexes: %w", err)
	}
	defer rows.Close()

	present := map[string]bool{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return Report{}, fmt.Errorf("failed to scan pg_indexes row: %w", err)
		}
		present[name] = true
	}
	if err := rows.Err(); err != nil {
		return Report{}, fmt.Errorf("failed to read pg_indexes: %w", err)
	}

	var r Report
	for _, idx := range v.indexes {
		c := Check{Name: idx, OK: present[idx]}
		if !c.OK {
			c.Detail = "index missing"
		}
		r.Checks = append(r.Checks, c)
	}
	return r, nil
}
