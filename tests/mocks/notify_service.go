package mocks

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"
)

type NotifyService struct {
	mock.Mock
}

func (m *NotifyService) Enqueue(ctx context.Context, notificationID string, details json.RawMessage) error {
	args := m.Called(ctx, notificationID, details)
	return args.Error(0)
}
