package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"staffingapi/internal/notify"
)

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NewMessage(ctx context.Context, n notify.NewMessage) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotifier) ClaimSubmitted(ctx context.Context, n notify.ClaimNotice) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotifier) ClaimDecided(ctx context.Context, n notify.ClaimNotice) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotifier) ComplianceDigest(ctx context.Context, n notify.ComplianceDigest) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}
