package postgres

import (
	"context"
	"database/sql"
	"time"

	"staffingapi/internal/model"
	"staffingapi/internal/repository"
)

// CompliancePostgres is a PostgreSQL implementation of repository.ComplianceRepository.
type CompliancePostgres struct {
	db *sql.DB
}

// NewCompliancePostgres creates a new CompliancePostgres repository.
func NewCompliancePostgres(db *sql.DB) *CompliancePostgres {
	return &CompliancePostgres{db: db}
}

var _ repository.ComplianceRepository = (*CompliancePostgres)(nil)

// document_url holds the object storage key, not a public URL.
const complianceColumns = `c.id, c.agency_id, c.compliance_type, c.is_active, c.document_url,
		c.expiration_date, c.verified, c.notes, c.created_at, c.updated_at`

func complianceDest(c *model.ComplianceItem) []any {
	return []any{
		&c.ID,
		&c.AgencyID,
		&c.Type,
		&c.IsActive,
		&c.DocumentKey,
		&c.ExpirationDate,
		&c.Verified,
		&c.Notes,
		&c.CreatedAt,
		&c.UpdatedAt,
	}
}

// ListByAgency returns the agency's compliance items in type order.
func (r *CompliancePostgres) ListByAgency(ctx context.Context, agencyID string, activeOnly bool) ([]model.ComplianceItem, error) {
	const q = `
		SELECT ` + complianceColumns + `
		FROM agency_compliance c
		WHERE c.agency_id = $1 AND (NOT $2::boolean OR c.is_active)
		ORDER BY c.compliance_type
	`
	rows, err := r.db.QueryContext(ctx, q, agencyID, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.ComplianceItem, 0)
	for rows.Next() {
		var c model.ComplianceItem
		if err := rows.Scan(complianceDest(&c)...); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Upsert writes every item in one transaction.
func (r *CompliancePostgres) Upsert(ctx context.Context, agencyID string, items []model.ComplianceItem) ([]model.ComplianceItem, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer rollback(tx)

	const q = `
		INSERT INTO agency_compliance AS c (agency_id, compliance_type, is_active, expiration_date, notes)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (agency_id, compliance_type) DO UPDATE
		SET is_active = EXCLUDED.is_active,
		    expiration_date = EXCLUDED.expiration_date,
		    notes = EXCLUDED.notes,
		    updated_at = now()
		RETURNING ` + complianceColumns

	out := make([]model.ComplianceItem, 0, len(items))
	for _, it := range items {
		var c model.ComplianceItem
		if err := tx.QueryRowContext(ctx, q,
			agencyID,
			it.Type,
			it.IsActive,
			it.ExpirationDate,
			it.Notes,
		).Scan(complianceDest(&c)...); err != nil {
			return nil, err
		}
		out = append(out, c)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return out, nil
}

// SetDocument records the document key on the (agency, type) record.
func (r *CompliancePostgres) SetDocument(ctx context.Context, agencyID, complianceType, key string) (*model.ComplianceItem, error) {
	const q = `
		INSERT INTO agency_compliance AS c (agency_id, compliance_type, document_url)
		VALUES ($1, $2, $3)
		ON CONFLICT (agency_id, compliance_type) DO UPDATE
		SET document_url = EXCLUDED.document_url, updated_at = now()
		RETURNING ` + complianceColumns
	var c model.ComplianceItem
	if err := r.db.QueryRowContext(ctx, q, agencyID, complianceType, key).Scan(complianceDest(&c)...); err != nil {
		return nil, err
	}
	return &c, nil
}

// ListExpiring returns active items of claimed agencies expiring on or before cutoff, grouped by agency.
func (r *CompliancePostgres) ListExpiring(ctx context.Context, cutoff time.Time) ([]model.ComplianceReminder, error) {
	const q = `
		SELECT a.id, a.name, pr.email, pr.full_name, ` + complianceColumns + `
		FROM agency_compliance c
		JOIN agencies a ON a.id = c.agency_id
		JOIN profiles pr ON pr.id = a.claimed_by
		WHERE a.is_claimed AND a.is_active
		  AND c.is_active
		  AND c.expiration_date IS NOT NULL
		  AND c.expiration_date <= $1
		ORDER BY a.id, c.expiration_date, c.compliance_type
	`
	rows, err := r.db.QueryContext(ctx, q, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.ComplianceReminder, 0)
	for rows.Next() {
		var rem model.ComplianceReminder
		dest := append([]any{&rem.AgencyID, &rem.AgencyName, &rem.OwnerEmail, &rem.OwnerName}, complianceDest(&rem.Item)...)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		out = append(out, rem)
	}
	return out, rows.Err()
}
