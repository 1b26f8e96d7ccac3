package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"staffingapi/internal/model"
	"staffingapi/internal/repository"
	repoMocks "staffingapi/internal/repository/mocks"
)

func newAgencyService(agencies *repoMocks.MockAgencyRepository, compliance *repoMocks.MockComplianceRepository) *agencyService {
	svc := NewAgencyService(agencies, compliance, 30).(*agencyService)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestAgencyService_Search(t *testing.T) {
	ctx := context.Background()

	t.Run("attaches trades and regions", func(t *testing.T) {
		agencies := new(repoMocks.MockAgencyRepository)
		claimed := true
		agencies.On("Search", ctx, repository.AgencyFilter{Search: "acme", States: []string{"TX"}, Claimed: &claimed}, repository.PageQuery{Limit: 20}).
			Return(&repository.PageResult[model.Agency]{Items: []model.Agency{{ID: "a1"}, {ID: "a2"}}, Total: 2}, nil)
		agencies.On("TradesFor", ctx, []string{"a1", "a2"}).
			Return(map[string][]model.Trade{"a1": {{ID: "t1", Slug: "welder"}}}, nil)
		agencies.On("RegionsFor", ctx, []string{"a1", "a2"}).
			Return(map[string][]model.Region{"a2": {{ID: "r1", StateCode: "TX"}}}, nil)

		page, err := newAgencyService(agencies, nil).Search(ctx, AgencySearchInput{Search: "acme", States: []string{"TX"}, Claimed: &claimed})

		require.NoError(t, err)
		assert.Equal(t, 2, page.Total)
		assert.Len(t, page.Items[0].Trades, 1)
		assert.NotNil(t, page.Items[0].Regions)
		assert.Empty(t, page.Items[0].Regions)
		assert.Equal(t, "TX", page.Items[1].Regions[0].StateCode)
		agencies.AssertExpectations(t)
	})

	t.Run("search failure", func(t *testing.T) {
		agencies := new(repoMocks.MockAgencyRepository)
		agencies.On("Search", ctx, mock.Anything, mock.Anything).Return(nil, errors.New("boom"))

		_, err := newAgencyService(agencies, nil).Search(ctx, AgencySearchInput{})

		var dbErr *DBError
		assert.ErrorAs(t, err, &dbErr)
	})
}

func TestAgencyService_GetBySlug(t *testing.T) {
	ctx := context.Background()

	t.Run("missing", func(t *testing.T) {
		agencies := new(repoMocks.MockAgencyRepository)
		agencies.On("FindBySlug", ctx, "ghost").Return(nil, sql.ErrNoRows)

		_, err := newAgencyService(agencies, nil).GetBySlug(ctx, "ghost")

		assert.ErrorIs(t, err, ErrNotFound)
		assert.EqualError(t, err, "agency not found")
	})

	t.Run("with active compliance", func(t *testing.T) {
		agencies := new(repoMocks.MockAgencyRepository)
		compliance := new(repoMocks.MockComplianceRepository)
		soon := fixedNow.AddDate(0, 0, 10)
		agencies.On("FindBySlug", ctx, "acme").Return(&model.Agency{ID: "a1", Slug: "acme"}, nil)
		agencies.On("TradesFor", ctx, []string{"a1"}).Return(map[string][]model.Trade{}, nil)
		agencies.On("RegionsFor", ctx, []string{"a1"}).Return(map[string][]model.Region{}, nil)
		compliance.On("ListByAgency", ctx, "a1", true).Return([]model.ComplianceItem{
			{Type: model.ComplianceBonding, IsActive: true, ExpirationDate: &soon},
			{Type: model.ComplianceOSHA, IsActive: true},
		}, nil)

		a, err := newAgencyService(agencies, compliance).GetBySlug(ctx, "acme")

		require.NoError(t, err)
		require.Len(t, a.Compliance, 2)
		assert.Equal(t, model.ComplianceExpiringSoon, a.Compliance[0].Status)
		assert.Equal(t, model.ComplianceNoExpiration, a.Compliance[1].Status)
		agencies.AssertExpectations(t)
		compliance.AssertExpectations(t)
	})
}

func TestAgencyService_Lookups(t *testing.T) {
	ctx := context.Background()
	agencies := new(repoMocks.MockAgencyRepository)
	agencies.On("ListTrades", ctx).Return([]model.Trade{{Slug: "welder"}}, nil)
	agencies.On("ListRegions", ctx).Return(nil, errors.New("down"))

	svc := newAgencyService(agencies, nil)

	trades, err := svc.Trades(ctx)
	require.NoError(t, err)
	assert.Len(t, trades, 1)

	_, err = svc.Regions(ctx)
	var dbErr *DBError
	assert.ErrorAs(t, err, &dbErr)
}
