package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"staffingapi/internal/model"
	"staffingapi/internal/repository"
)

type MockAgencyRepository struct {
	mock.Mock
}

func (m *MockAgencyRepository) Search(ctx context.Context, f repository.AgencyFilter, pq repository.PageQuery) (*repository.PageResult[model.Agency], error) {
	args := m.Called(ctx, f, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Agency]), args.Error(1)
}

func (m *MockAgencyRepository) FindBySlug(ctx context.Context, slug string) (*model.Agency, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Agency), args.Error(1)
}

func (m *MockAgencyRepository) FindByOwner(ctx context.Context, userID string) (*model.Agency, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Agency), args.Error(1)
}

func (m *MockAgencyRepository) TradesFor(ctx context.Context, agencyIDs []string) (map[string][]model.Trade, error) {
	args := m.Called(ctx, agencyIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]model.Trade), args.Error(1)
}

func (m *MockAgencyRepository) RegionsFor(ctx context.Context, agencyIDs []string) (map[string][]model.Region, error) {
	args := m.Called(ctx, agencyIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]model.Region), args.Error(1)
}

func (m *MockAgencyRepository) ListTrades(ctx context.Context) ([]model.Trade, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Trade), args.Error(1)
}

func (m *MockAgencyRepository) ListRegions(ctx context.Context) ([]model.Region, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Region), args.Error(1)
}

type MockClaimRepository struct {
	mock.Mock
}

func (m *MockClaimRepository) Create(ctx context.Context, c *model.ClaimRequest) (*model.ClaimRequest, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ClaimRequest), args.Error(1)
}

func (m *MockClaimRepository) FindByID(ctx context.Context, id string) (*model.ClaimRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ClaimRequest), args.Error(1)
}

func (m *MockClaimRepository) LatestForUser(ctx context.Context, agencyID, userID string) (*model.ClaimRequest, error) {
	args := m.Called(ctx, agencyID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ClaimRequest), args.Error(1)
}

func (m *MockClaimRepository) List(ctx context.Context, status string, pq repository.PageQuery) (*repository.PageResult[model.ClaimRequest], error) {
	args := m.Called(ctx, status, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.ClaimRequest]), args.Error(1)
}

func (m *MockClaimRepository) Approve(ctx context.Context, id, reviewerID string, at time.Time) error {
	args := m.Called(ctx, id, reviewerID, at)
	return args.Error(0)
}

func (m *MockClaimRepository) Reject(ctx context.Context, id, reviewerID, reason string, at time.Time) error {
	args := m.Called(ctx, id, reviewerID, reason, at)
	return args.Error(0)
}

type MockComplianceRepository struct {
	mock.Mock
}

func (m *MockComplianceRepository) ListByAgency(ctx context.Context, agencyID string, activeOnly bool) ([]model.ComplianceItem, error) {
	args := m.Called(ctx, agencyID, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ComplianceItem), args.Error(1)
}

func (m *MockComplianceRepository) Upsert(ctx context.Context, agencyID string, items []model.ComplianceItem) ([]model.ComplianceItem, error) {
	args := m.Called(ctx, agencyID, items)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ComplianceItem), args.Error(1)
}

func (m *MockComplianceRepository) SetDocument(ctx context.Context, agencyID, complianceType, key string) (*model.ComplianceItem, error) {
	args := m.Called(ctx, agencyID, complianceType, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ComplianceItem), args.Error(1)
}

func (m *MockComplianceRepository) ListExpiring(ctx context.Context, cutoff time.Time) ([]model.ComplianceReminder, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ComplianceReminder), args.Error(1)
}
