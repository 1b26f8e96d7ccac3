package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"staffingapi/internal/model"
	"staffingapi/internal/service"
)

type MockAgencyService struct {
	mock.Mock
}

func (m *MockAgencyService) Search(ctx context.Context, in service.AgencySearchInput) (*service.AgencyPage, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AgencyPage), args.Error(1)
}

func (m *MockAgencyService) GetBySlug(ctx context.Context, slug string) (*model.Agency, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Agency), args.Error(1)
}

func (m *MockAgencyService) Trades(ctx context.Context) ([]model.Trade, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Trade), args.Error(1)
}

func (m *MockAgencyService) Regions(ctx context.Context) ([]model.Region, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Region), args.Error(1)
}

type MockClaimService struct {
	mock.Mock
}

func (m *MockClaimService) Submit(ctx context.Context, in service.SubmitClaimInput) (*model.ClaimRequest, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ClaimRequest), args.Error(1)
}

func (m *MockClaimService) Status(ctx context.Context, userID, agencySlug string) (*model.ClaimRequest, error) {
	args := m.Called(ctx, userID, agencySlug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ClaimRequest), args.Error(1)
}

func (m *MockClaimService) List(ctx context.Context, adminID, status string, limit, offset int) (*service.ClaimPage, error) {
	args := m.Called(ctx, adminID, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ClaimPage), args.Error(1)
}

func (m *MockClaimService) Approve(ctx context.Context, adminID, claimID string) (*model.ClaimRequest, error) {
	args := m.Called(ctx, adminID, claimID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ClaimRequest), args.Error(1)
}

func (m *MockClaimService) Reject(ctx context.Context, adminID, claimID, reason string) (*model.ClaimRequest, error) {
	args := m.Called(ctx, adminID, claimID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ClaimRequest), args.Error(1)
}

type MockComplianceService struct {
	mock.Mock
}

func (m *MockComplianceService) ListPublic(ctx context.Context, agencySlug string) ([]model.ComplianceItem, error) {
	args := m.Called(ctx, agencySlug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ComplianceItem), args.Error(1)
}

func (m *MockComplianceService) ListForOwner(ctx context.Context, userID string) ([]model.ComplianceItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ComplianceItem), args.Error(1)
}

func (m *MockComplianceService) Update(ctx context.Context, userID string, items []service.ComplianceUpdate) ([]model.ComplianceItem, error) {
	args := m.Called(ctx, userID, items)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ComplianceItem), args.Error(1)
}

func (m *MockComplianceService) UploadDocument(ctx context.Context, userID, complianceType string, up service.DocumentUpload) (*model.ComplianceItem, error) {
	args := m.Called(ctx, userID, complianceType, up)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ComplianceItem), args.Error(1)
}

func (m *MockComplianceService) SendReminders(ctx context.Context) (*service.ReminderResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ReminderResult), args.Error(1)
}
