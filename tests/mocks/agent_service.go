package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"flock-server/internal/domain"
)

type AgentService struct {
	mock.Mock
}

func (m *AgentService) Register(ctx context.Context, input domain.RegisterAgentInput) (*domain.Agent, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Agent), args.Error(1)
}

func (m *AgentService) Authenticate(ctx context.Context, username, token string) (*domain.Agent, error) {
	args := m.Called(ctx, username, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Agent), args.Error(1)
}

func (m *AgentService) GetByUsername(ctx context.Context, username string) (*domain.Agent, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Agent), args.Error(1)
}

func (m *AgentService) List(ctx context.Context) ([]domain.Agent, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Agent), args.Error(1)
}

func (m *AgentService) Rename(ctx context.Context, username, name string) error {
	args := m.Called(ctx, username, name)
	return args.Error(0)
}

func (m *AgentService) Delete(ctx context.Context, username string) error {
	args := m.Called(ctx, username)
	return args.Error(0)
}

func (m *AgentService) CheckIn(ctx context.Context, username string, osVersion *string) error {
	args := m.Called(ctx, username, osVersion)
	return args.Error(0)
}
