package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staffingapi/internal/repository"
)

var conversationCols = []string{"id", "context_type", "context_id", "created_by", "created_at", "updated_at", "last_message_at"}
var messageCols = []string{"id", "conversation_id", "sender_id", "content", "created_at", "edited_at"}

func TestConversationPostgres_ListForUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewConversationPostgres(db)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM conversation_participants WHERE user_id").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery("SELECT (.+) FROM conversations c JOIN conversation_participants p (.+) LIMIT").
		WithArgs("u1", 2, 0).
		WillReturnRows(sqlmock.NewRows(conversationCols).
			AddRow("c1", "general", nil, "u1", now, now, now).
			AddRow("c2", "agency_inquiry", "a1", "u2", now, now, nil))

	res, err := repo.ListForUser(context.Background(), "u1", repository.PageQuery{Limit: 2, Offset: 0})

	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	require.Len(t, res.Items, 2)
	assert.Nil(t, res.Items[0].ContextID)
	require.NotNil(t, res.Items[1].ContextID)
	assert.Equal(t, "a1", *res.Items[1].ContextID)
	assert.Nil(t, res.Items[1].LastMessageAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConversationPostgres_Participants(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewConversationPostgres(db)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT (.+) FROM conversation_participants p LEFT JOIN profiles pr").
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"conversation_id", "user_id", "joined_at", "last_read_at", "full_name", "email", "role"}).
			AddRow("c1", "u1", now, now, "Ana", "ana@example.com", "contractor").
			AddRow("c1", "u2", now, nil, "", "", ""))

	out, err := repo.Participants(context.Background(), []string{"c1"})

	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "Ana", out[0].FullName)
	assert.Nil(t, out[1].LastReadAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConversationPostgres_LatestMessagesAndStamps(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewConversationPostgres(db)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT DISTINCT ON \\(conversation_id\\)").
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(messageCols).AddRow("m1", "c1", "u1", "hi", now, nil))
	mock.ExpectQuery("SELECT conversation_id, created_at FROM messages").
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"conversation_id", "created_at"}).
			AddRow("c1", now).
			AddRow("c1", now.Add(time.Minute)))

	latest, err := repo.LatestMessages(context.Background(), []string{"c1"})
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, "hi", latest[0].Content)

	stamps, err := repo.MessageStamps(context.Background(), []string{"c1"})
	require.NoError(t, err)
	assert.Len(t, stamps, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConversationPostgres_FindBetween(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewConversationPostgres(db)

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery("SELECT a.conversation_id FROM conversation_participants a").
			WithArgs("u1", "u2").
			WillReturnRows(sqlmock.NewRows([]string{"conversation_id"}).AddRow("c9"))

		id, err := repo.FindBetween(context.Background(), "u1", "u2")
		require.NoError(t, err)
		assert.Equal(t, "c9", id)
	})

	t.Run("none", func(t *testing.T) {
		mock.ExpectQuery("SELECT a.conversation_id FROM conversation_participants a").
			WithArgs("u1", "u3").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.FindBetween(context.Background(), "u1", "u3")
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})
}

func TestConversationPostgres_Create(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	nc := repository.NewConversation{
		CreatedBy:      "u1",
		ParticipantIDs: []string{"u1", "u2"},
		ContextType:    "general",
		InitialMessage: "Hello there",
		SentAt:         now,
	}

	t.Run("commits procedure, message and read marker", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT create_conversation_with_participants").
			WithArgs("u1", sqlmock.AnyArg(), "general", nil).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("c1"))
		mock.ExpectQuery("INSERT INTO messages").
			WithArgs("c1", "u1", "Hello there", now).
			WillReturnRows(sqlmock.NewRows(messageCols).AddRow("m1", "c1", "u1", "Hello there", now, nil))
		mock.ExpectQuery("UPDATE conversations c SET last_message_at").
			WithArgs("c1", now).
			WillReturnRows(sqlmock.NewRows(conversationCols).AddRow("c1", "general", nil, "u1", now, now, now))
		mock.ExpectExec("UPDATE conversation_participants SET last_read_at").
			WithArgs("c1", "u1", now).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		conv, msg, err := NewConversationPostgres(db).Create(context.Background(), nc)

		require.NoError(t, err)
		assert.Equal(t, "c1", conv.ID)
		require.NotNil(t, conv.LastMessageAt)
		assert.Equal(t, now, *conv.LastMessageAt)
		assert.Equal(t, "m1", msg.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when the message insert fails", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT create_conversation_with_participants").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("c1"))
		mock.ExpectQuery("INSERT INTO messages").
			WillReturnError(errors.New("check constraint"))
		mock.ExpectRollback()

		conv, msg, err := NewConversationPostgres(db).Create(context.Background(), nc)

		assert.Error(t, err)
		assert.Nil(t, conv)
		assert.Nil(t, msg)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestConversationPostgres_MarkRead(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewConversationPostgres(db)
	now := time.Now().UTC()

	mock.ExpectExec("UPDATE conversation_participants SET last_read_at").
		WithArgs("c1", "u1", now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.MarkRead(context.Background(), "c1", "u1", now))

	mock.ExpectExec("UPDATE conversation_participants SET last_read_at").
		WithArgs("c1", "stranger", now).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.MarkRead(context.Background(), "c1", "stranger", now), sql.ErrNoRows)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConversationPostgres_FindForUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM conversations c JOIN conversation_participants p (.+) WHERE c.id = \\$1 AND p.user_id = \\$2").
		WithArgs("c1", "u3").
		WillReturnError(sql.ErrNoRows)

	conv, err := NewConversationPostgres(db).FindForUser(context.Background(), "c1", "u3")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.Nil(t, conv)
}
