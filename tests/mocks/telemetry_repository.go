package mocks

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"
)

type TelemetryRepository struct {
	mock.Mock
}

func (m *TelemetryRepository) ArchiveBatch(ctx context.Context, index string, docs []json.RawMessage) error {
	args := m.Called(ctx, index, docs)
	return args.Error(0)
}
