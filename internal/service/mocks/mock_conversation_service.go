package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"staffingapi/internal/model"
	"staffingapi/internal/service"
)

type MockConversationService struct {
	mock.Mock
}

func (m *MockConversationService) List(ctx context.Context, in service.ListConversationsInput) (*service.ConversationPage, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ConversationPage), args.Error(1)
}

func (m *MockConversationService) Create(ctx context.Context, in service.CreateConversationInput) (*model.Conversation, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Conversation), args.Error(1)
}

func (m *MockConversationService) Get(ctx context.Context, userID, conversationID string, limit, offset int) (*service.ConversationThread, error) {
	args := m.Called(ctx, userID, conversationID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ConversationThread), args.Error(1)
}

func (m *MockConversationService) SendMessage(ctx context.Context, userID, conversationID, content string) (*model.Message, error) {
	args := m.Called(ctx, userID, conversationID, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Message), args.Error(1)
}

func (m *MockConversationService) MarkRead(ctx context.Context, userID, conversationID string) (*service.ReadReceipt, error) {
	args := m.Called(ctx, userID, conversationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ReadReceipt), args.Error(1)
}

func (m *MockConversationService) UnreadTotal(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}
