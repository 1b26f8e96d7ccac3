package postgres

import (
	"context"
	"database/sql"
	"strings"

	"github.com/lib/pq"

	"staffingapi/internal/model"
	"staffingapi/internal/repository"
)

// AgencyPostgres is a PostgreSQL implementation of repository.AgencyRepository.
type AgencyPostgres struct {
	db *sql.DB
}

// NewAgencyPostgres creates a new AgencyPostgres repository.
func NewAgencyPostgres(db *sql.DB) *AgencyPostgres {
	return &AgencyPostgres{db: db}
}

var _ repository.AgencyRepository = (*AgencyPostgres)(nil)

const agencyColumns = `a.id, a.name, a.slug, a.description, a.logo_url, a.website, a.phone, a.email,
		a.headquarters, a.founded_year, a.employee_count, a.is_claimed, a.claimed_by,
		a.is_active, a.verified, a.created_at, a.updated_at`

// Unset filters are passed as empty values and short-circuit their predicate.
const agencyFilter = `
		WHERE a.is_active
		  AND ($1::text = '' OR a.name ILIKE '%' || $1 || '%' OR a.description ILIKE '%' || $1 || '%')
		  AND (cardinality($2::text[]) = 0 OR EXISTS (
		        SELECT 1 FROM agency_trades at JOIN trades t ON t.id = at.trade_id
		        WHERE at.agency_id = a.id AND t.slug = ANY($2::text[])))
		  AND (cardinality($3::text[]) = 0 OR EXISTS (
		        SELECT 1 FROM agency_regions ar JOIN regions r ON r.id = ar.region_id
		        WHERE ar.agency_id = a.id AND r.state_code = ANY($3::text[])))
		  AND ($4::boolean IS NULL OR a.is_claimed = $4)`

func scanAgency(s rowScanner) (*model.Agency, error) {
	var a model.Agency
	if err := s.Scan(
		&a.ID,
		&a.Name,
		&a.Slug,
		&a.Description,
		&a.LogoURL,
		&a.Website,
		&a.Phone,
		&a.Email,
		&a.Headquarters,
		&a.FoundedYear,
		&a.EmployeeCount,
		&a.IsClaimed,
		&a.ClaimedBy,
		&a.IsActive,
		&a.Verified,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &a, nil
}

// escapeLike escapes ILIKE wildcards so search text matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// Search returns active agencies matching the filter using LIMIT/OFFSET pagination and a total count.
func (r *AgencyPostgres) Search(ctx context.Context, f repository.AgencyFilter, pg repository.PageQuery) (*repository.PageResult[model.Agency], error) {
	args := []any{
		escapeLike(f.Search),
		pq.Array(nonNil(f.Trades)),
		pq.Array(nonNil(f.States)),
		f.Claimed,
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM agencies a`+agencyFilter, args...).Scan(&total); err != nil {
		return nil, err
	}

	qList := `SELECT ` + agencyColumns + ` FROM agencies a` + agencyFilter + `
		ORDER BY a.verified DESC, a.name ASC, a.id ASC
		LIMIT $5 OFFSET $6`
	rows, err := r.db.QueryContext(ctx, qList, append(args, pg.Limit, pg.Offset)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Agency, 0)
	for rows.Next() {
		a, err := scanAgency(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Agency]{Items: items, Total: total}, nil
}

// FindBySlug fetches an active agency by slug.
func (r *AgencyPostgres) FindBySlug(ctx context.Context, slug string) (*model.Agency, error) {
	q := `SELECT ` + agencyColumns + ` FROM agencies a WHERE a.slug = $1 AND a.is_active`
	return scanAgency(r.db.QueryRowContext(ctx, q, slug))
}

// FindByOwner fetches the agency claimed by the user.
func (r *AgencyPostgres) FindByOwner(ctx context.Context, userID string) (*model.Agency, error) {
	q := `SELECT ` + agencyColumns + ` FROM agencies a WHERE a.claimed_by = $1 ORDER BY a.claimed_at DESC NULLS LAST LIMIT 1`
	return scanAgency(r.db.QueryRowContext(ctx, q, userID))
}

// TradesFor returns the trades of each agency.
func (r *AgencyPostgres) TradesFor(ctx context.Context, agencyIDs []string) (map[string][]model.Trade, error) {
	const q = `
		SELECT at.agency_id, t.id, t.name, t.slug
		FROM agency_trades at
		JOIN trades t ON t.id = at.trade_id
		WHERE at.agency_id = ANY($1::uuid[])
		ORDER BY t.name
	`
	rows, err := r.db.QueryContext(ctx, q, pq.Array(agencyIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]model.Trade)
	for rows.Next() {
		var agencyID string
		var t model.Trade
		if err := rows.Scan(&agencyID, &t.ID, &t.Name, &t.Slug); err != nil {
			return nil, err
		}
		out[agencyID] = append(out[agencyID], t)
	}
	return out, rows.Err()
}

// RegionsFor returns the regions of each agency.
func (r *AgencyPostgres) RegionsFor(ctx context.Context, agencyIDs []string) (map[string][]model.Region, error) {
	const q = `
		SELECT ar.agency_id, r.id, r.name, r.slug, r.state_code
		FROM agency_regions ar
		JOIN regions r ON r.id = ar.region_id
		WHERE ar.agency_id = ANY($1::uuid[])
		ORDER BY r.state_code, r.name
	`
	rows, err := r.db.QueryContext(ctx, q, pq.Array(agencyIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]model.Region)
	for rows.Next() {
		var agencyID string
		var rg model.Region
		if err := rows.Scan(&agencyID, &rg.ID, &rg.Name, &rg.Slug, &rg.StateCode); err != nil {
			return nil, err
		}
		out[agencyID] = append(out[agencyID], rg)
	}
	return out, rows.Err()
}

func (r *AgencyPostgres) ListTrades(ctx context.Context) ([]model.Trade, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, slug FROM trades ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Trade, 0)
	for rows.Next() {
		var t model.Trade
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *AgencyPostgres) ListRegions(ctx context.Context) ([]model.Region, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, slug, state_code FROM regions ORDER BY state_code, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Region, 0)
	for rows.Next() {
		var rg model.Region
		if err := rows.Scan(&rg.ID, &rg.Name, &rg.Slug, &rg.StateCode); err != nil {
			return nil, err
		}
		out = append(out, rg)
	}
	return out, rows.Err()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
