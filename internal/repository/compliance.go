package repository

import (
	"context"
	"time"

	"staffingapi/internal/model"
)

// ComplianceRepository defines data access for agency compliance records.
type ComplianceRepository interface {
	ListByAgency(ctx context.Context, agencyID string, activeOnly bool) ([]model.ComplianceItem, error)

	// Upsert writes the items keyed by (agency, type) in one transaction and returns the stored rows.
	Upsert(ctx context.Context, agencyID string, items []model.ComplianceItem) ([]model.ComplianceItem, error)

	// SetDocument records the object key of an uploaded document, creating the record if needed.
	SetDocument(ctx context.Context, agencyID, complianceType, key string) (*model.ComplianceItem, error)

	// ListExpiring returns active items of claimed agencies expiring on or before the cutoff.
	ListExpiring(ctx context.Context, cutoff time.Time) ([]model.ComplianceReminder, error)
}
