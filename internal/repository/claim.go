package repository

import (
	"context"
	"time"

	"staffingapi/internal/model"
)

// ClaimRepository defines data access for agency claim requests.
type ClaimRepository interface {
	// Create inserts a claim. It returns ErrDuplicate when the user already has an open claim.
	Create(ctx context.Context, c *model.ClaimRequest) (*model.ClaimRequest, error)

	// FindByID returns a claim joined with its agency name and slug.
	FindByID(ctx context.Context, id string) (*model.ClaimRequest, error)

	// LatestForUser returns the user's most recent claim for the agency.
	LatestForUser(ctx context.Context, agencyID, userID string) (*model.ClaimRequest, error)

	// List returns claims with the given status (all when empty), oldest first.
	List(ctx context.Context, status string, pq PageQuery) (*PageResult[model.ClaimRequest], error)

	// Approve marks an open claim approved, hands the agency to the claimant and
	// promotes the claimant to agency owner in one transaction.
	// It returns ErrNotUpdated when the claim is no longer open.
	Approve(ctx context.Context, id, reviewerID string, at time.Time) error

	// Reject marks an open claim rejected. It returns ErrNotUpdated when the claim is no longer open.
	Reject(ctx context.Context, id, reviewerID, reason string, at time.Time) error
}
