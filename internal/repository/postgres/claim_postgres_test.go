package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staffingapi/internal/model"
	"staffingapi/internal/repository"
)

var claimCols = []string{"id", "agency_id", "user_id", "status", "business_email", "phone_number",
	"position_title", "verification_method", "additional_notes", "email_domain_verified",
	"rejection_reason", "reviewed_by", "reviewed_at", "created_at", "updated_at"}

func TestClaimPostgres_Create(t *testing.T) {
	now := time.Now().UTC()
	in := &model.ClaimRequest{
		AgencyID:            "a1",
		UserID:              "u1",
		Status:              model.ClaimPending,
		BusinessEmail:       "jo@acme.com",
		PhoneNumber:         "+1 555 0100",
		PositionTitle:       "Owner",
		VerificationMethod:  model.VerifyByEmail,
		EmailDomainVerified: true,
		CreatedAt:           now,
	}

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("INSERT INTO agency_claim_requests").
			WithArgs("a1", "u1", "pending", "jo@acme.com", "+1 555 0100", "Owner", "email", nil, true, now).
			WillReturnRows(sqlmock.NewRows(claimCols).
				AddRow("cl1", "a1", "u1", "pending", "jo@acme.com", "+1 555 0100", "Owner", "email", nil, true, nil, nil, nil, now, now))

		out, err := NewClaimPostgres(db).Create(context.Background(), in)

		require.NoError(t, err)
		assert.Equal(t, "cl1", out.ID)
		assert.True(t, out.EmailDomainVerified)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("open claim already exists", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("INSERT INTO agency_claim_requests").
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_claim_requests_open_unique"})

		out, err := NewClaimPostgres(db).Create(context.Background(), in)

		assert.ErrorIs(t, err, repository.ErrDuplicate)
		assert.Nil(t, out)
	})
}

func TestClaimPostgres_FindAndList(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewClaimPostgres(db)
	now := time.Now().UTC()
	withAgency := append(append([]string{}, claimCols...), "name", "slug")

	mock.ExpectQuery("SELECT (.+) FROM agency_claim_requests c JOIN agencies a (.+) WHERE c.id").
		WithArgs("cl1").
		WillReturnRows(sqlmock.NewRows(withAgency).
			AddRow("cl1", "a1", "u1", "pending", "jo@acme.com", "1", "Owner", "manual", "call me", false, nil, nil, nil, now, now, "Acme", "acme"))

	c, err := repo.FindByID(context.Background(), "cl1")
	require.NoError(t, err)
	assert.Equal(t, "Acme", c.AgencyName)
	require.NotNil(t, c.AdditionalNotes)
	assert.Equal(t, "call me", *c.AdditionalNotes)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM agency_claim_requests c").
		WithArgs("pending").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("SELECT (.+) FROM agency_claim_requests c JOIN agencies a (.+) ORDER BY c.created_at ASC").
		WithArgs("pending", 20, 0).
		WillReturnRows(sqlmock.NewRows(withAgency))

	res, err := repo.List(context.Background(), "pending", repository.PageQuery{Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Total)
	assert.NotNil(t, res.Items)

	mock.ExpectQuery("SELECT (.+) FROM agency_claim_requests c WHERE c.agency_id = \\$1 AND c.user_id = \\$2").
		WithArgs("a1", "u2").
		WillReturnError(sql.ErrNoRows)
	_, err = repo.LatestForUser(context.Background(), "a1", "u2")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimPostgres_Approve(t *testing.T) {
	now := time.Now().UTC()

	t.Run("transfers agency and promotes claimant", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery("UPDATE agency_claim_requests SET status = 'approved'").
			WithArgs("cl1", "admin1", now).
			WillReturnRows(sqlmock.NewRows([]string{"agency_id", "user_id"}).AddRow("a1", "u1"))
		mock.ExpectExec("UPDATE agencies SET is_claimed = true").
			WithArgs("a1", "u1", now).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE profiles SET role = 'agency_owner'").
			WithArgs("u1", now).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, NewClaimPostgres(db).Approve(context.Background(), "cl1", "admin1", now))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("claim no longer open", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery("UPDATE agency_claim_requests SET status = 'approved'").
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		err = NewClaimPostgres(db).Approve(context.Background(), "cl1", "admin1", now)
		assert.ErrorIs(t, err, repository.ErrNotUpdated)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("agency claimed meanwhile", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery("UPDATE agency_claim_requests SET status = 'approved'").
			WillReturnRows(sqlmock.NewRows([]string{"agency_id", "user_id"}).AddRow("a1", "u1"))
		mock.ExpectExec("UPDATE agencies SET is_claimed = true").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err = NewClaimPostgres(db).Approve(context.Background(), "cl1", "admin1", now)
		assert.ErrorIs(t, err, repository.ErrNotUpdated)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestClaimPostgres_Reject(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewClaimPostgres(db)
	now := time.Now().UTC()

	mock.ExpectExec("UPDATE agency_claim_requests SET status = 'rejected'").
		WithArgs("cl1", "admin1", "Website domain does not match", now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.Reject(context.Background(), "cl1", "admin1", "Website domain does not match", now))

	mock.ExpectExec("UPDATE agency_claim_requests SET status = 'rejected'").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Reject(context.Background(), "cl1", "admin1", "again and again", now), repository.ErrNotUpdated)

	assert.NoError(t, mock.ExpectationsWereMet())
}
