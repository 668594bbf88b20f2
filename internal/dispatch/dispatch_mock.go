package dispatch

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockMessageSender is a mock implementation of the MessageSender interface
type MockMessageSender struct {
	mock.Mock
}

func (m *MockMessageSender) SendMessage(ctx context.Context, recipientID int64, text, formatMode string) error {
	args := m.Called(ctx, recipientID, text, formatMode)
	return args.Error(0)
}
