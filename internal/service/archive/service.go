package archive

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"

	"flock-server/internal/config"
	"flock-server/internal/domain"
)

// Service keeps raw submission bodies in object storage, partitioned by
// day the same way the telemetry table is. The snapshots are an audit
// trail; the queryable copy lives in Postgres.
type Service interface {
	SnapshotBatch(ctx context.Context, username string, body []byte) error
}

type service struct {
	client *minio.Client
	bucket string
}

// NewService returns nil when object storage is unavailable; callers
// treat a nil Service as "snapshots disabled".
func NewService(client *minio.Client, cfg *config.Config) Service {
	if client == nil {
		return nil
	}
	return &service{
		client: client,
		bucket: cfg.MinIOBucket,
	}
}

func (s *service) SnapshotBatch(ctx context.Context, username string, body []byte) error {
	key := fmt.Sprintf("%s/%s/%s.json", domain.TelemetryIndex(time.Now()), username, uuid.New())

	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("failed to snapshot batch to %s: %w", key, err)
	}
	return nil
}
