package repository

import (
	"context"

	"staffingapi/internal/model"
)

// AgencyFilter narrows a directory search. Empty fields do not filter.
type AgencyFilter struct {
	Search  string
	Trades  []string
	States  []string
	Claimed *bool
}

// AgencyRepository defines read access to the agency directory.
type AgencyRepository interface {
	// Search returns active agencies matching the filter, ordered by verification and name.
	Search(ctx context.Context, f AgencyFilter, pq PageQuery) (*PageResult[model.Agency], error)

	// FindBySlug returns an active agency.
	FindBySlug(ctx context.Context, slug string) (*model.Agency, error)

	// FindByOwner returns the agency claimed by the user.
	FindByOwner(ctx context.Context, userID string) (*model.Agency, error)

	// TradesFor returns trades keyed by agency id.
	TradesFor(ctx context.Context, agencyIDs []string) (map[string][]model.Trade, error)

	// RegionsFor returns regions keyed by agency id.
	RegionsFor(ctx context.Context, agencyIDs []string) (map[string][]model.Region, error)

	ListTrades(ctx context.Context) ([]model.Trade, error)
	ListRegions(ctx context.Context) ([]model.Region, error)
}
