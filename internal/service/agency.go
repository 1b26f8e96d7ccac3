package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"staffingapi/internal/model"
	"staffingapi/internal/repository"
)

// AgencySearchInput filters the agency directory.
type AgencySearchInput struct {
	Search  string
	Trades  []string
	States  []string
	Claimed *bool
	Limit   int
	Offset  int
}

// AgencyPage is a page of agencies with trades and regions attached.
type AgencyPage struct {
	Items []model.Agency
	Total int
}

// AgencyService defines the read-only directory use cases.
type AgencyService interface {
	Search(ctx context.Context, in AgencySearchInput) (*AgencyPage, error)

	// GetBySlug returns an active agency with trades, regions and active compliance items.
	GetBySlug(ctx context.Context, slug string) (*model.Agency, error)

	Trades(ctx context.Context) ([]model.Trade, error)
	Regions(ctx context.Context) ([]model.Region, error)
}

type agencyService struct {
	agencies   repository.AgencyRepository
	compliance repository.ComplianceRepository
	windowDays int
	now        func() time.Time
}

// NewAgencyService constructs an AgencyService. windowDays is the reminder
// window used to flag compliance items as expiring soon.
func NewAgencyService(agencies repository.AgencyRepository, compliance repository.ComplianceRepository, windowDays int) AgencyService {
	return &agencyService{
		agencies:   agencies,
		compliance: compliance,
		windowDays: windowDays,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *agencyService) Search(ctx context.Context, in AgencySearchInput) (*AgencyPage, error) {
	page, err := s.agencies.Search(ctx, repository.AgencyFilter{
		Search:  in.Search,
		Trades:  in.Trades,
		States:  in.States,
		Claimed: in.Claimed,
	}, normalizePage(in.Limit, in.Offset, DefaultConversationLimit))
	if err != nil {
		return nil, dbError("search agencies", err)
	}
	if err := s.attachTaxonomy(ctx, page.Items); err != nil {
		return nil, err
	}
	return &AgencyPage{Items: page.Items, Total: page.Total}, nil
}

func (s *agencyService) GetBySlug(ctx context.Context, slug string) (*model.Agency, error) {
	agency, err := findAgency(ctx, s.agencies, slug)
	if err != nil {
		return nil, err
	}

	list := []model.Agency{*agency}
	if err := s.attachTaxonomy(ctx, list); err != nil {
		return nil, err
	}
	out := list[0]

	items, err := s.compliance.ListByAgency(ctx, out.ID, true)
	if err != nil {
		return nil, dbError("list compliance", err)
	}
	now := s.now()
	for i := range items {
		items[i].Status = complianceStatus(items[i].ExpirationDate, now, s.windowDays)
	}
	out.Compliance = items
	return &out, nil
}

func (s *agencyService) Trades(ctx context.Context) ([]model.Trade, error) {
	out, err := s.agencies.ListTrades(ctx)
	if err != nil {
		return nil, dbError("list trades", err)
	}
	return out, nil
}

func (s *agencyService) Regions(ctx context.Context) ([]model.Region, error) {
	out, err := s.agencies.ListRegions(ctx)
	if err != nil {
		return nil, dbError("list regions", err)
	}
	return out, nil
}

// attachTaxonomy fills Trades and Regions in place with two batched queries.
func (s *agencyService) attachTaxonomy(ctx context.Context, agencies []model.Agency) error {
	if len(agencies) == 0 {
		return nil
	}
	ids := make([]string, len(agencies))
	for i, a := range agencies {
		ids[i] = a.ID
	}

	trades, err := s.agencies.TradesFor(ctx, ids)
	if err != nil {
		return dbError("load agency trades", err)
	}
	regions, err := s.agencies.RegionsFor(ctx, ids)
	if err != nil {
		return dbError("load agency regions", err)
	}

	for i := range agencies {
		agencies[i].Trades = trades[agencies[i].ID]
		if agencies[i].Trades == nil {
			agencies[i].Trades = []model.Trade{}
		}
		agencies[i].Regions = regions[agencies[i].ID]
		if agencies[i].Regions == nil {
			agencies[i].Regions = []model.Region{}
		}
	}
	return nil
}

func findAgency(ctx context.Context, repo repository.AgencyRepository, slug string) (*model.Agency, error) {
	agency, err := repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &NotFoundError{Resource: "agency"}
		}
		return nil, dbError("find agency", err)
	}
	return agency, nil
}
