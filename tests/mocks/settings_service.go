package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"flock-server/internal/domain"
)

type SettingsService struct {
	mock.Mock
}

func (m *SettingsService) Get(ctx context.Context) (domain.NotificationSettings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.NotificationSettings), args.Error(1)
}

func (m *SettingsService) SetEnabled(ctx context.Context, notificationID string, enabled bool) (bool, error) {
	args := m.Called(ctx, notificationID, enabled)
	return args.Bool(0), args.Error(1)
}
