package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staffingapi/internal/repository"
)

var agencyCols = []string{"id", "name", "slug", "description", "logo_url", "website", "phone", "email",
	"headquarters", "founded_year", "employee_count", "is_claimed", "claimed_by", "is_active", "verified",
	"created_at", "updated_at"}

func agencyRow(rows *sqlmock.Rows, id, slug string, now time.Time) *sqlmock.Rows {
	return rows.AddRow(id, "Acme Staffing", slug, "Industrial crews", nil, "https://www.acme.com", nil, nil,
		"Houston, TX", 1998, "50-100", false, nil, true, true, now, now)
}

func TestAgencyPostgres_Search(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	claimed := false
	f := repository.AgencyFilter{Search: "50%_off", Trades: []string{"welder"}, Claimed: &claimed}

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM agencies a").
		WithArgs(`50\%\_off`, sqlmock.AnyArg(), sqlmock.AnyArg(), false).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT (.+) FROM agencies a (.+) ORDER BY a.verified DESC").
		WithArgs(`50\%\_off`, sqlmock.AnyArg(), sqlmock.AnyArg(), false, 20, 0).
		WillReturnRows(agencyRow(sqlmock.NewRows(agencyCols), "a1", "acme", now))

	res, err := NewAgencyPostgres(db).Search(context.Background(), f, repository.PageQuery{Limit: 20})

	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	require.Len(t, res.Items, 1)
	require.NotNil(t, res.Items[0].FoundedYear)
	assert.Equal(t, 1998, *res.Items[0].FoundedYear)
	assert.Nil(t, res.Items[0].LogoURL)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAgencyPostgres_FindBySlug(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewAgencyPostgres(db)

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM agencies a WHERE a.slug = \\$1 AND a.is_active").
			WithArgs("acme").
			WillReturnRows(agencyRow(sqlmock.NewRows(agencyCols), "a1", "acme", time.Now()))

		a, err := repo.FindBySlug(context.Background(), "acme")
		require.NoError(t, err)
		assert.Equal(t, "a1", a.ID)
	})

	t.Run("missing", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM agencies a WHERE a.slug").
			WithArgs("nope").
			WillReturnError(sql.ErrNoRows)

		a, err := repo.FindBySlug(context.Background(), "nope")
		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, a)
	})
}

func TestAgencyPostgres_TradesAndRegionsFor(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewAgencyPostgres(db)

	mock.ExpectQuery("SELECT at.agency_id, t.id, t.name, t.slug FROM agency_trades at").
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"agency_id", "id", "name", "slug"}).
			AddRow("a1", "t1", "Electrician", "electrician").
			AddRow("a1", "t2", "Welder", "welder").
			AddRow("a2", "t2", "Welder", "welder"))
	mock.ExpectQuery("SELECT ar.agency_id, r.id, r.name, r.slug, r.state_code FROM agency_regions ar").
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"agency_id", "id", "name", "slug", "state_code"}).
			AddRow("a2", "r1", "Gulf Coast", "gulf-coast", "TX"))

	trades, err := repo.TradesFor(context.Background(), []string{"a1", "a2"})
	require.NoError(t, err)
	assert.Len(t, trades["a1"], 2)
	assert.Len(t, trades["a2"], 1)

	regions, err := repo.RegionsFor(context.Background(), []string{"a1", "a2"})
	require.NoError(t, err)
	assert.Empty(t, regions["a1"])
	assert.Equal(t, "TX", regions["a2"][0].StateCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAgencyPostgres_Lookups(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewAgencyPostgres(db)

	mock.ExpectQuery("SELECT id, name, slug FROM trades").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slug"}).AddRow("t1", "Welder", "welder"))
	mock.ExpectQuery("SELECT id, name, slug, state_code FROM regions").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slug", "state_code"}))

	trades, err := repo.ListTrades(context.Background())
	require.NoError(t, err)
	assert.Len(t, trades, 1)

	regions, err := repo.ListRegions(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, regions)
	assert.Empty(t, regions)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `a\%b\_c\\d`, escapeLike(`a%b_c\d`))
	assert.Equal(t, "plain", escapeLike("plain"))
}
