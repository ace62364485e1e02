package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"flock-server/internal/domain"
)

type SettingsRepository struct {
	mock.Mock
}

func (m *SettingsRepository) Get(ctx context.Context) (domain.NotificationSettings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.NotificationSettings), args.Error(1)
}

func (m *SettingsRepository) Save(ctx context.Context, settings domain.NotificationSettings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

func (m *SettingsRepository) Refresh(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
