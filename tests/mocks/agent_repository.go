package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"flock-server/internal/domain"
)

type AgentRepository struct {
	mock.Mock
}

func (m *AgentRepository) Create(ctx context.Context, agent *domain.Agent) error {
	args := m.Called(ctx, agent)
	return args.Error(0)
}

func (m *AgentRepository) GetByUsername(ctx context.Context, username string) (*domain.Agent, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Agent), args.Error(1)
}

func (m *AgentRepository) GetByCredentials(ctx context.Context, username, token string) (*domain.Agent, error) {
	args := m.Called(ctx, username, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Agent), args.Error(1)
}

func (m *AgentRepository) List(ctx context.Context) ([]domain.Agent, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Agent), args.Error(1)
}

func (m *AgentRepository) UpdateName(ctx context.Context, username, name string) error {
	args := m.Called(ctx, username, name)
	return args.Error(0)
}

func (m *AgentRepository) UpdateCheckIn(ctx context.Context, username string, osVersion *string, seenAt time.Time) error {
	args := m.Called(ctx, username, osVersion, seenAt)
	return args.Error(0)
}

func (m *AgentRepository) Delete(ctx context.Context, username string) error {
	args := m.Called(ctx, username)
	return args.Error(0)
}

func (m *AgentRepository) Refresh(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
