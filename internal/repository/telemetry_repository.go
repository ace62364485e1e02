package repository

import (
	"context"
	"encoding/json"

	"github.com/jmoiron/sqlx"
)

type TelemetryRepository interface {
	// ArchiveBatch stores every document of a submission under the given
	// day partition in a single transaction.
	ArchiveBatch(ctx context.Context, index string, docs []json.RawMessage) error
}

type telemetryRepository struct {
	db *sqlx.DB
}

func NewTelemetryRepository(db *sqlx.DB) TelemetryRepository {
	return &telemetryRepository{db: db}
}

func (r *telemetryRepository) ArchiveBatch(ctx context.Context, index string, docs []json.RawMessage) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `INSERT INTO telemetry (day_index, doc) VALUES ($1, $2)`
	for _, doc := range docs {
		if _, err := tx.ExecContext(ctx, query, index, doc); err != nil {
			return err
		}
	}
	return tx.Commit()
}
