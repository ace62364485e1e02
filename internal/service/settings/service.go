package settings

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"flock-server/internal/domain"
	"flock-server/internal/repository"
)

const (
	cacheKey = "flock:notification_prefs"
	cacheTTL = 5 * time.Minute
)

type Service interface {
	// Get returns the enabled/disabled mapping for every catalog entry.
	// The returned key set always equals the catalog's id set exactly.
	Get(ctx context.Context) (domain.NotificationSettings, error)

	// SetEnabled flips one notification's flag. It reports whether
	// anything changed: already-in-state and ids unknown to the catalog
	// are no-ops.
	SetEnabled(ctx context.Context, notificationID string, enabled bool) (bool, error)
}

type service struct {
	settingsRepo repository.SettingsRepository
	redis        *redis.Client
}

func NewService(settingsRepo repository.SettingsRepository, redisClient *redis.Client) Service {
	return &service{
		settingsRepo: settingsRepo,
		redis:        redisClient,
	}
}

func (s *service) Get(ctx context.Context) (domain.NotificationSettings, error) {
	if cached := s.fromCache(ctx); cached != nil {
		return cached, nil
	}

	settings, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	s.toCache(ctx, settings)
	return settings, nil
}

func (s *service) SetEnabled(ctx context.Context, notificationID string, enabled bool) (bool, error) {
	if _, ok := domain.CatalogEntryByID(notificationID); !ok {
		return false, nil
	}

	// Bypass the cache: this is a read-modify-write on the stored record.
	settings, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	if settings[notificationID] == enabled {
		return false, nil
	}

	settings[notificationID] = enabled
	if err := s.settingsRepo.Save(ctx, settings); err != nil {
		return false, err
	}
	if err := s.settingsRepo.Refresh(ctx); err != nil {
		return false, err
	}

	s.invalidate(ctx)
	return true, nil
}

// load reads the stored record and reconciles it against the catalog,
// persisting the corrected mapping when the catalog has drifted since the
// record was written.
func (s *service) load(ctx context.Context) (domain.NotificationSettings, error) {
	stored, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, err
	}

	settings, changed := domain.ReconcileSettings(domain.CatalogIDs(), stored)
	if changed {
		if err := s.settingsRepo.Save(ctx, settings); err != nil {
			return nil, err
		}
		if err := s.settingsRepo.Refresh(ctx); err != nil {
			return nil, err
		}
	}
	return settings, nil
}

func (s *service) fromCache(ctx context.Context) domain.NotificationSettings {
	if s.redis == nil {
		return nil
	}

	data, err := s.redis.Get(ctx, cacheKey).Bytes()
	if err != nil {
		return nil
	}

	var settings domain.NotificationSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil
	}

	// A cached mapping from before a catalog change is stale; fall
	// through to a reconciled load instead of serving it.
	if _, changed := domain.ReconcileSettings(domain.CatalogIDs(), settings); changed {
		return nil
	}
	return settings
}

func (s *service) toCache(ctx context.Context, settings domain.NotificationSettings) {
	if s.redis == nil {
		return
	}

	data, err := json.Marshal(settings)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, cacheKey, data, cacheTTL).Err(); err != nil {
		log.Printf("settings: cache write failed: %v", err)
	}
}

func (s *service) invalidate(ctx context.Context) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, cacheKey).Err(); err != nil {
		log.Printf("settings: cache invalidation failed: %v", err)
	}
}
