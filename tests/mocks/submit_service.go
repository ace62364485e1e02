package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"flock-server/internal/domain"
)

type SubmitService struct {
	mock.Mock
}

func (m *SubmitService) Submit(ctx context.Context, a *domain.Agent, body []byte) (int, error) {
	args := m.Called(ctx, a, body)
	return args.Int(0), args.Error(1)
}

func (m *SubmitService) SubmitFlockLogs(ctx context.Context, a *domain.Agent, body []byte) (int, error) {
	args := m.Called(ctx, a, body)
	return args.Int(0), args.Error(1)
}
