package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"flock-server/internal/chat"
)

type ChatTransport struct {
	mock.Mock
}

func (m *ChatTransport) Self() string {
	args := m.Called()
	return args.String(0)
}

func (m *ChatTransport) Send(ctx context.Context, ch chat.Channel, text string) error {
	args := m.Called(ctx, ch, text)
	return args.Error(0)
}

func (m *ChatTransport) Listen(ctx context.Context) (<-chan chat.Message, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan chat.Message), args.Error(1)
}
