package notify

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"flock-server/internal/domain"
	"flock-server/internal/repository"
	"flock-server/internal/service/settings"
)

type Service interface {
	// Enqueue appends a pending notification for later delivery.
	// Notifications disabled in the settings, or whose id is unknown to
	// the catalog, are silently dropped.
	Enqueue(ctx context.Context, notificationID string, details json.RawMessage) error
}

type service struct {
	notifRepo   repository.NotificationRepository
	settingsSvc settings.Service
}

func NewService(notifRepo repository.NotificationRepository, settingsSvc settings.Service) Service {
	return &service{
		notifRepo:   notifRepo,
		settingsSvc: settingsSvc,
	}
}

func (s *service) Enqueue(ctx context.Context, notificationID string, details json.RawMessage) error {
	if _, ok := domain.CatalogEntryByID(notificationID); !ok {
		return nil
	}

	prefs, err := s.settingsSvc.Get(ctx)
	if err != nil {
		return err
	}
	if !prefs[notificationID] {
		return nil
	}

	notif := &domain.PendingNotification{
		ID:             uuid.New(),
		NotificationID: notificationID,
		Details:        details,
	}
	return s.notifRepo.Create(ctx, notif)
}
