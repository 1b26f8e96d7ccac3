package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"staffingapi/internal/model"
	"staffingapi/internal/repository"
)

type MockConversationRepository struct {
	mock.Mock
}

func (m *MockConversationRepository) ListForUser(ctx context.Context, userID string, pq repository.PageQuery) (*repository.PageResult[model.Conversation], error) {
	args := m.Called(ctx, userID, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Conversation]), args.Error(1)
}

func (m *MockConversationRepository) Participants(ctx context.Context, conversationIDs []string) ([]model.Participant, error) {
	args := m.Called(ctx, conversationIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Participant), args.Error(1)
}

func (m *MockConversationRepository) LatestMessages(ctx context.Context, conversationIDs []string) ([]model.Message, error) {
	args := m.Called(ctx, conversationIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Message), args.Error(1)
}

func (m *MockConversationRepository) MessageStamps(ctx context.Context, conversationIDs []string) ([]model.MessageStamp, error) {
	args := m.Called(ctx, conversationIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.MessageStamp), args.Error(1)
}

func (m *MockConversationRepository) FindBetween(ctx context.Context, userA, userB string) (string, error) {
	args := m.Called(ctx, userA, userB)
	return args.String(0), args.Error(1)
}

func (m *MockConversationRepository) Create(ctx context.Context, nc repository.NewConversation) (*model.Conversation, *model.Message, error) {
	args := m.Called(ctx, nc)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*model.Conversation), args.Get(1).(*model.Message), args.Error(2)
}

func (m *MockConversationRepository) FindForUser(ctx context.Context, id, userID string) (*model.Conversation, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Conversation), args.Error(1)
}

func (m *MockConversationRepository) MarkRead(ctx context.Context, id, userID string, at time.Time) error {
	args := m.Called(ctx, id, userID, at)
	return args.Error(0)
}

type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) ListByConversation(ctx context.Context, conversationID string, pq repository.PageQuery) (*repository.PageResult[model.Message], error) {
	args := m.Called(ctx, conversationID, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Message]), args.Error(1)
}

func (m *MockMessageRepository) Create(ctx context.Context, msg *model.Message) (*model.Message, error) {
	args := m.Called(ctx, msg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Message), args.Error(1)
}

func (m *MockMessageRepository) UnreadTotal(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) FindByID(ctx context.Context, id string) (*model.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Profile), args.Error(1)
}
