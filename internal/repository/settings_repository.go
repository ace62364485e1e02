package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/jmoiron/sqlx"

	"flock-server/internal/domain"
)

type SettingsRepository interface {
	// Get returns the persisted mapping, or nil if no record exists yet.
	Get(ctx context.Context) (domain.NotificationSettings, error)
	Save(ctx context.Context, settings domain.NotificationSettings) error

	// Refresh forces visibility of prior writes; no-op for Postgres.
	Refresh(ctx context.Context) error
}

type settingsRepository struct {
	db *sqlx.DB
}

func NewSettingsRepository(db *sqlx.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) Get(ctx context.Context) (domain.NotificationSettings, error) {
	var value []byte
	query := `SELECT value FROM settings WHERE key = $1`

	err := r.db.GetContext(ctx, &value, query, domain.SettingsKey)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var settings domain.NotificationSettings
	if err := json.Unmarshal(value, &settings); err != nil {
		// A corrupt record heals the same way a missing one does.
		return nil, nil
	}
	return settings, nil
}

func (r *settingsRepository) Save(ctx context.Context, settings domain.NotificationSettings) error {
	value, err := json.Marshal(settings)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO settings (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`

	_, err = r.db.ExecContext(ctx, query, domain.SettingsKey, value)
	return err
}

func (r *settingsRepository) Refresh(ctx context.Context) error {
	return nil
}
