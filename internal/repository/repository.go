package repository

import (
	"github.com/jmoiron/sqlx"
)

type Repositories struct {
	Agent        AgentRepository
	Settings     SettingsRepository
	Notification NotificationRepository
	Telemetry    TelemetryRepository
}

func NewRepositories(db *sqlx.DB) *Repositories {
	return &Repositories{
		Agent:        NewAgentRepository(db),
		Settings:     NewSettingsRepository(db),
		Notification: NewNotificationRepository(db),
		Telemetry:    NewTelemetryRepository(db),
	}
}
