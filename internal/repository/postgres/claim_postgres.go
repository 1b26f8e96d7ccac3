package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"staffingapi/internal/model"
	"staffingapi/internal/repository"
)

// ClaimPostgres is a PostgreSQL implementation of repository.ClaimRepository.
type ClaimPostgres struct {
	db *sql.DB
}

// NewClaimPostgres creates a new ClaimPostgres repository.
func NewClaimPostgres(db *sql.DB) *ClaimPostgres {
	return &ClaimPostgres{db: db}
}

var _ repository.ClaimRepository = (*ClaimPostgres)(nil)

const claimColumns = `c.id, c.agency_id, c.user_id, c.status, c.business_email, c.phone_number,
		c.position_title, c.verification_method, c.additional_notes, c.email_domain_verified,
		c.rejection_reason, c.reviewed_by, c.reviewed_at, c.created_at, c.updated_at`

const openClaimStatuses = `('pending', 'under_review')`

func scanClaim(s rowScanner, withAgency bool) (*model.ClaimRequest, error) {
	var c model.ClaimRequest
	dest := []any{
		&c.ID,
		&c.AgencyID,
		&c.UserID,
		&c.Status,
		&c.BusinessEmail,
		&c.PhoneNumber,
		&c.PositionTitle,
		&c.VerificationMethod,
		&c.AdditionalNotes,
		&c.EmailDomainVerified,
		&c.RejectionReason,
		&c.ReviewedBy,
		&c.ReviewedAt,
		&c.CreatedAt,
		&c.UpdatedAt,
	}
	if withAgency {
		dest = append(dest, &c.AgencyName, &c.AgencySlug)
	}
	if err := s.Scan(dest...); err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a claim request and returns the stored row.
func (r *ClaimPostgres) Create(ctx context.Context, c *model.ClaimRequest) (*model.ClaimRequest, error) {
	const q = `
		INSERT INTO agency_claim_requests AS c (agency_id, user_id, status, business_email, phone_number,
			position_title, verification_method, additional_notes, email_domain_verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		RETURNING ` + claimColumns
	out, err := scanClaim(r.db.QueryRowContext(ctx, q,
		c.AgencyID,
		c.UserID,
		c.Status,
		c.BusinessEmail,
		c.PhoneNumber,
		c.PositionTitle,
		c.VerificationMethod,
		c.AdditionalNotes,
		c.EmailDomainVerified,
		c.CreatedAt,
	), false)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrDuplicate
		}
		return nil, err
	}
	return out, nil
}

// FindByID fetches a claim with its agency name and slug.
func (r *ClaimPostgres) FindByID(ctx context.Context, id string) (*model.ClaimRequest, error) {
	const q = `
		SELECT ` + claimColumns + `, a.name, a.slug
		FROM agency_claim_requests c
		JOIN agencies a ON a.id = c.agency_id
		WHERE c.id = $1
	`
	return scanClaim(r.db.QueryRowContext(ctx, q, id), true)
}

// LatestForUser fetches the user's newest claim for the agency.
func (r *ClaimPostgres) LatestForUser(ctx context.Context, agencyID, userID string) (*model.ClaimRequest, error) {
	const q = `
		SELECT ` + claimColumns + `
		FROM agency_claim_requests c
		WHERE c.agency_id = $1 AND c.user_id = $2
		ORDER BY c.created_at DESC, c.id DESC
		LIMIT 1
	`
	return scanClaim(r.db.QueryRowContext(ctx, q, agencyID, userID), false)
}

// List returns claims using LIMIT/OFFSET pagination and a total count.
func (r *ClaimPostgres) List(ctx context.Context, status string, pg repository.PageQuery) (*repository.PageResult[model.ClaimRequest], error) {
	const qCount = `SELECT COUNT(*) FROM agency_claim_requests c WHERE ($1::text = '' OR c.status = $1)`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, status).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + claimColumns + `, a.name, a.slug
		FROM agency_claim_requests c
		JOIN agencies a ON a.id = c.agency_id
		WHERE ($1::text = '' OR c.status = $1)
		ORDER BY c.created_at ASC, c.id ASC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, qList, status, pg.Limit, pg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.ClaimRequest, 0)
	for rows.Next() {
		c, err := scanClaim(rows, true)
		if err != nil {
			return nil, err
		}
		items = append(items, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &repository.PageResult[model.ClaimRequest]{Items: items, Total: total}, nil
}

// Approve decides the claim and transfers the agency to the claimant.
func (r *ClaimPostgres) Approve(ctx context.Context, id, reviewerID string, at time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer rollback(tx)

	const qDecide = `
		UPDATE agency_claim_requests
		SET status = 'approved', reviewed_by = $2, reviewed_at = $3, updated_at = $3
		WHERE id = $1 AND status IN ` + openClaimStatuses + `
		RETURNING agency_id, user_id
	`
	var agencyID, userID string
	if err := tx.QueryRowContext(ctx, qDecide, id, reviewerID, at).Scan(&agencyID, &userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return repository.ErrNotUpdated
		}
		return err
	}

	const qAgency = `
		UPDATE agencies
		SET is_claimed = true, claimed_by = $2, claimed_at = $3, updated_at = $3
		WHERE id = $1 AND NOT is_claimed
	`
	res, err := tx.ExecContext(ctx, qAgency, agencyID, userID, at)
	if err != nil {
		return err
	}
	if err := affectedOrNoRows(res); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return repository.ErrNotUpdated
		}
		return err
	}

	const qRole = `UPDATE profiles SET role = 'agency_owner', updated_at = $2 WHERE id = $1 AND role <> 'admin'`
	if _, err := tx.ExecContext(ctx, qRole, userID, at); err != nil {
		return err
	}

	return tx.Commit()
}

// Reject decides the claim with a reason.
func (r *ClaimPostgres) Reject(ctx context.Context, id, reviewerID, reason string, at time.Time) error {
	const q = `
		UPDATE agency_claim_requests
		SET status = 'rejected', rejection_reason = $3, reviewed_by = $2, reviewed_at = $4, updated_at = $4
		WHERE id = $1 AND status IN ` + openClaimStatuses
	res, err := r.db.ExecContext(ctx, q, id, reviewerID, reason, at)
	if err != nil {
		return err
	}
	if err := affectedOrNoRows(res); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return repository.ErrNotUpdated
		}
		return err
	}
	return nil
}
