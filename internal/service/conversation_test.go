package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"staffingapi/internal/model"
	"staffingapi/internal/notify"
	notifyMocks "staffingapi/internal/notify/mocks"
	"staffingapi/internal/repository"
	repoMocks "staffingapi/internal/repository/mocks"
)

var fixedNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

type conversationFixture struct {
	conv     *repoMocks.MockConversationRepository
	msgs     *repoMocks.MockMessageRepository
	profiles *repoMocks.MockProfileRepository
	notifier *notifyMocks.MockNotifier
	mailer   *Mailer
	svc      *conversationService
}

func newConversationFixture(t *testing.T) *conversationFixture {
	t.Helper()
	log, _ := test.NewNullLogger()
	f := &conversationFixture{
		conv:     new(repoMocks.MockConversationRepository),
		msgs:     new(repoMocks.MockMessageRepository),
		profiles: new(repoMocks.MockProfileRepository),
		notifier: new(notifyMocks.MockNotifier),
	}
	f.mailer = NewMailer(f.notifier, log)
	f.svc = NewConversationService(f.conv, f.msgs, f.profiles, f.mailer).(*conversationService)
	f.svc.now = func() time.Time { return fixedNow }
	return f
}

func (f *conversationFixture) assertExpectations(t *testing.T) {
	f.mailer.Wait()
	f.conv.AssertExpectations(t)
	f.msgs.AssertExpectations(t)
	f.profiles.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
}

func ptrTime(t time.Time) *time.Time { return &t }

func TestConversationService_List(t *testing.T) {
	ctx := context.Background()
	readAt := fixedNow.Add(-time.Hour)

	pageItems := []model.Conversation{
		{ID: "c1", ContextType: model.ContextGeneral, LastMessageAt: ptrTime(fixedNow)},
		{ID: "c2", ContextType: model.ContextAgencyInquiry, LastMessageAt: ptrTime(fixedNow.Add(-2 * time.Hour))},
		{ID: "c3", ContextType: model.ContextJobInquiry},
	}
	participants := []model.Participant{
		{ConversationID: "c1", UserID: "me", LastReadAt: &readAt},
		{ConversationID: "c1", UserID: "ana", FullName: "Ana Builder", Email: "ana@acme.com"},
		{ConversationID: "c2", UserID: "me"},
		{ConversationID: "c2", UserID: "bo", FullName: "Bo Welder", Email: "bo@weld.io"},
		{ConversationID: "c3", UserID: "me", LastReadAt: &readAt},
	}
	latest := []model.Message{
		{ID: "m3", ConversationID: "c1", SenderID: "ana", Content: strings.Repeat("x", 250), CreatedAt: fixedNow},
		{ID: "m5", ConversationID: "c2", SenderID: "bo", Content: "Need 4 welders on Monday", CreatedAt: fixedNow.Add(-2 * time.Hour)},
	}
	stamps := []model.MessageStamp{
		{ConversationID: "c1", CreatedAt: readAt.Add(-time.Minute)},
		{ConversationID: "c1", CreatedAt: readAt},
		{ConversationID: "c1", CreatedAt: fixedNow},
		{ConversationID: "c2", CreatedAt: fixedNow.Add(-3 * time.Hour)},
		{ConversationID: "c2", CreatedAt: fixedNow.Add(-2 * time.Hour)},
	}
	ids := []string{"c1", "c2", "c3"}

	setup := func(f *conversationFixture) {
		f.conv.On("ListForUser", mock.Anything, "me", repository.PageQuery{Limit: 20, Offset: 0}).
			Return(&repository.PageResult[model.Conversation]{Items: append([]model.Conversation(nil), pageItems...), Total: 42}, nil)
		f.conv.On("Participants", mock.Anything, ids).Return(participants, nil)
		f.conv.On("LatestMessages", mock.Anything, ids).Return(latest, nil)
		f.conv.On("MessageStamps", mock.Anything, ids).Return(stamps, nil)
	}

	t.Run("assembles participants, previews and unread counts", func(t *testing.T) {
		f := newConversationFixture(t)
		setup(f)

		page, err := f.svc.List(ctx, ListConversationsInput{UserID: "me", Filter: FilterAll})

		require.NoError(t, err)
		assert.Equal(t, 42, page.Total)
		require.Len(t, page.Items, 3)

		c1 := page.Items[0]
		assert.Len(t, c1.Participants, 2)
		require.NotNil(t, c1.LastMessage)
		assert.Len(t, c1.LastMessage.Content, model.PreviewLength)
		assert.Equal(t, 1, c1.UnreadCount, "only messages strictly after last_read_at count")

		c2 := page.Items[1]
		assert.Equal(t, 2, c2.UnreadCount, "nil last_read_at counts every message")

		c3 := page.Items[2]
		assert.Nil(t, c3.LastMessage)
		assert.Equal(t, 0, c3.UnreadCount)
		assert.NotNil(t, c3.Participants)
		f.assertExpectations(t)
	})

	t.Run("unread filter and search apply to the page", func(t *testing.T) {
		f := newConversationFixture(t)
		setup(f)

		page, err := f.svc.List(ctx, ListConversationsInput{UserID: "me", Filter: FilterUnread, Search: "WELD"})

		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, "c2", page.Items[0].ID)
		assert.Equal(t, 42, page.Total)
	})

	t.Run("empty page skips follow-up queries", func(t *testing.T) {
		f := newConversationFixture(t)
		f.conv.On("ListForUser", mock.Anything, "me", repository.PageQuery{Limit: 5, Offset: 10}).
			Return(&repository.PageResult[model.Conversation]{Items: []model.Conversation{}, Total: 3}, nil)

		page, err := f.svc.List(ctx, ListConversationsInput{UserID: "me", Limit: 5, Offset: 10})

		require.NoError(t, err)
		assert.NotNil(t, page.Items)
		assert.Empty(t, page.Items)
		assert.Equal(t, 3, page.Total)
		f.assertExpectations(t)
	})

	t.Run("database failure", func(t *testing.T) {
		f := newConversationFixture(t)
		f.conv.On("ListForUser", mock.Anything, "me", mock.Anything).Return(nil, errors.New("connection refused"))

		_, err := f.svc.List(ctx, ListConversationsInput{UserID: "me"})

		var dbErr *DBError
		require.ErrorAs(t, err, &dbErr)
		assert.Equal(t, "list conversations", dbErr.Op)
	})

	t.Run("participants failure", func(t *testing.T) {
		f := newConversationFixture(t)
		f.conv.On("ListForUser", mock.Anything, "me", mock.Anything).
			Return(&repository.PageResult[model.Conversation]{Items: pageItems, Total: 3}, nil)
		f.conv.On("Participants", mock.Anything, ids).Return(nil, errors.New("timeout"))

		_, err := f.svc.List(ctx, ListConversationsInput{UserID: "me"})

		var dbErr *DBError
		require.ErrorAs(t, err, &dbErr)
		assert.Equal(t, "load participants", dbErr.Op)
	})
}

func TestConversationService_Create(t *testing.T) {
	ctx := context.Background()
	in := CreateConversationInput{
		SenderID:       "me",
		RecipientID:    "ana",
		ContextType:    model.ContextAgencyInquiry,
		InitialMessage: "Do you staff electricians in Austin?",
	}
	recipient := &model.Profile{ID: "ana", Email: "ana@acme.com", FullName: "Ana Builder"}

	t.Run("self recipient", func(t *testing.T) {
		f := newConversationFixture(t)
		bad := in
		bad.RecipientID = "me"

		_, err := f.svc.Create(ctx, bad)

		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "recipient_id", vErr.Field)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("unknown recipient", func(t *testing.T) {
		f := newConversationFixture(t)
		f.profiles.On("FindByID", mock.Anything, "ana").Return(nil, sql.ErrNoRows)

		_, err := f.svc.Create(ctx, in)

		assert.ErrorIs(t, err, ErrNotFound)
		assert.EqualError(t, err, "recipient not found")
	})

	t.Run("duplicate conversation", func(t *testing.T) {
		f := newConversationFixture(t)
		f.profiles.On("FindByID", mock.Anything, "ana").Return(recipient, nil)
		f.conv.On("FindBetween", mock.Anything, "me", "ana").Return("c-existing", nil)

		_, err := f.svc.Create(ctx, in)

		var cErr *ConflictError
		require.ErrorAs(t, err, &cErr)
		assert.Equal(t, "c-existing", cErr.Details["conversation_id"])
		assert.ErrorIs(t, err, ErrConflict)
		f.conv.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("creates and notifies the recipient", func(t *testing.T) {
		f := newConversationFixture(t)
		f.profiles.On("FindByID", mock.Anything, "ana").Return(recipient, nil)
		f.conv.On("FindBetween", mock.Anything, "me", "ana").Return("", sql.ErrNoRows)
		f.conv.On("Create", mock.Anything, repository.NewConversation{
			CreatedBy:      "me",
			ParticipantIDs: []string{"me", "ana"},
			ContextType:    model.ContextAgencyInquiry,
			InitialMessage: in.InitialMessage,
			SentAt:         fixedNow,
		}).Return(
			&model.Conversation{ID: "c-new", ContextType: model.ContextAgencyInquiry, CreatedBy: "me", LastMessageAt: ptrTime(fixedNow)},
			&model.Message{ID: "m1", ConversationID: "c-new", SenderID: "me", Content: in.InitialMessage, CreatedAt: fixedNow},
			nil,
		)
		f.conv.On("Participants", mock.Anything, []string{"c-new"}).Return([]model.Participant{
			{ConversationID: "c-new", UserID: "me", FullName: "Max Contractor", LastReadAt: ptrTime(fixedNow)},
			{ConversationID: "c-new", UserID: "ana", FullName: "Ana Builder"},
		}, nil)
		f.notifier.On("NewMessage", mock.Anything, notify.NewMessage{
			RecipientEmail: "ana@acme.com",
			RecipientName:  "Ana Builder",
			SenderName:     "Max Contractor",
			Content:        in.InitialMessage,
			ConversationID: "c-new",
		}).Return(nil)

		conv, err := f.svc.Create(ctx, in)

		require.NoError(t, err)
		assert.Equal(t, "c-new", conv.ID)
		assert.Len(t, conv.Participants, 2)
		require.NotNil(t, conv.LastMessage)
		assert.Equal(t, "m1", conv.LastMessage.ID)
		assert.Equal(t, 0, conv.UnreadCount)
		f.assertExpectations(t)
	})

	t.Run("email failure does not fail the request", func(t *testing.T) {
		f := newConversationFixture(t)
		f.profiles.On("FindByID", mock.Anything, "ana").Return(recipient, nil)
		f.conv.On("FindBetween", mock.Anything, "me", "ana").Return("", sql.ErrNoRows)
		f.conv.On("Create", mock.Anything, mock.Anything).Return(
			&model.Conversation{ID: "c-new"},
			&model.Message{ID: "m1", ConversationID: "c-new", Content: "hi"},
			nil,
		)
		f.conv.On("Participants", mock.Anything, []string{"c-new"}).Return([]model.Participant{}, nil)
		f.notifier.On("NewMessage", mock.Anything, mock.Anything).Return(errors.New("resend down"))

		conv, err := f.svc.Create(ctx, in)

		require.NoError(t, err)
		assert.NotNil(t, conv)
		f.assertExpectations(t)
	})

	t.Run("procedure failure", func(t *testing.T) {
		f := newConversationFixture(t)
		f.profiles.On("FindByID", mock.Anything, "ana").Return(recipient, nil)
		f.conv.On("FindBetween", mock.Anything, "me", "ana").Return("", sql.ErrNoRows)
		f.conv.On("Create", mock.Anything, mock.Anything).Return(nil, nil, errors.New("function does not exist"))

		_, err := f.svc.Create(ctx, in)

		var dbErr *DBError
		require.ErrorAs(t, err, &dbErr)
		assert.Equal(t, "create conversation", dbErr.Op)
	})
}

func TestConversationService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("not a participant", func(t *testing.T) {
		f := newConversationFixture(t)
		f.conv.On("FindForUser", mock.Anything, "c1", "me").Return(nil, sql.ErrNoRows)

		_, err := f.svc.Get(ctx, "me", "c1", 0, 0)

		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("thread with messages", func(t *testing.T) {
		f := newConversationFixture(t)
		f.conv.On("FindForUser", mock.Anything, "c1", "me").Return(&model.Conversation{ID: "c1"}, nil)
		f.conv.On("Participants", mock.Anything, []string{"c1"}).Return([]model.Participant{{ConversationID: "c1", UserID: "me"}}, nil)
		f.conv.On("LatestMessages", mock.Anything, []string{"c1"}).Return([]model.Message{}, nil)
		f.conv.On("MessageStamps", mock.Anything, []string{"c1"}).Return([]model.MessageStamp{{ConversationID: "c1", CreatedAt: fixedNow}}, nil)
		f.msgs.On("ListByConversation", mock.Anything, "c1", repository.PageQuery{Limit: 50, Offset: 0}).
			Return(&repository.PageResult[model.Message]{Items: []model.Message{{ID: "m1"}}, Total: 1}, nil)

		thread, err := f.svc.Get(ctx, "me", "c1", 0, -4)

		require.NoError(t, err)
		assert.Equal(t, 1, thread.Conversation.UnreadCount)
		assert.Len(t, thread.Messages, 1)
		assert.Equal(t, 1, thread.Total)
		f.assertExpectations(t)
	})
}

func TestConversationService_SendMessage(t *testing.T) {
	ctx := context.Background()

	f := newConversationFixture(t)
	f.conv.On("FindForUser", mock.Anything, "c1", "me").Return(&model.Conversation{ID: "c1"}, nil)
	f.msgs.On("Create", mock.Anything, &model.Message{ConversationID: "c1", SenderID: "me", Content: "On my way", CreatedAt: fixedNow}).
		Return(&model.Message{ID: "m9", ConversationID: "c1", SenderID: "me", Content: "On my way", CreatedAt: fixedNow}, nil)
	f.conv.On("Participants", mock.Anything, []string{"c1"}).Return([]model.Participant{
		{ConversationID: "c1", UserID: "me", Email: "me@x.io"},
		{ConversationID: "c1", UserID: "ana", Email: "ana@acme.com", FullName: "Ana"},
		{ConversationID: "c1", UserID: "bo", Email: "bo@weld.io", FullName: "Bo"},
	}, nil)
	f.notifier.On("NewMessage", mock.Anything, mock.MatchedBy(func(n notify.NewMessage) bool {
		return n.RecipientEmail == "ana@acme.com" && n.SenderName == "me@x.io"
	})).Return(nil).Once()
	f.notifier.On("NewMessage", mock.Anything, mock.MatchedBy(func(n notify.NewMessage) bool {
		return n.RecipientEmail == "bo@weld.io"
	})).Return(nil).Once()

	msg, err := f.svc.SendMessage(ctx, "me", "c1", "On my way")

	require.NoError(t, err)
	assert.Equal(t, "m9", msg.ID)
	f.assertExpectations(t)
}

func TestConversationService_MarkReadAndUnread(t *testing.T) {
	ctx := context.Background()
	f := newConversationFixture(t)

	f.conv.On("MarkRead", mock.Anything, "c1", "me", fixedNow).Return(nil)
	f.conv.On("MarkRead", mock.Anything, "c2", "me", fixedNow).Return(sql.ErrNoRows)
	f.msgs.On("UnreadTotal", mock.Anything, "me").Return(5, nil)

	receipt, err := f.svc.MarkRead(ctx, "me", "c1")
	require.NoError(t, err)
	assert.Equal(t, ReadReceipt{ConversationID: "c1", LastReadAt: fixedNow}, *receipt)

	_, err = f.svc.MarkRead(ctx, "me", "c2")
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := f.svc.UnreadTotal(ctx, "me")
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	f.assertExpectations(t)
}

func TestCountUnread(t *testing.T) {
	read := fixedNow
	stamps := []model.MessageStamp{
		{ConversationID: "a", CreatedAt: fixedNow.Add(-time.Second)},
		{ConversationID: "a", CreatedAt: fixedNow},
		{ConversationID: "a", CreatedAt: fixedNow.Add(time.Nanosecond)},
		{ConversationID: "b", CreatedAt: fixedNow},
		{ConversationID: "stranger", CreatedAt: fixedNow},
	}

	got := countUnread(stamps, map[string]*time.Time{"a": &read, "b": nil})

	assert.Equal(t, map[string]int{"a": 1, "b": 1}, got)
}

func TestNormalizePage(t *testing.T) {
	assert.Equal(t, repository.PageQuery{Limit: 20, Offset: 0}, normalizePage(0, -1, 20))
	assert.Equal(t, repository.PageQuery{Limit: 100, Offset: 5}, normalizePage(500, 5, 20))
}
