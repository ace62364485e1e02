package service

import (
	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"

	"flock-server/internal/config"
	"flock-server/internal/repository"
	"flock-server/internal/service/agent"
	"flock-server/internal/service/archive"
	"flock-server/internal/service/email"
	"flock-server/internal/service/notify"
	"flock-server/internal/service/settings"
	"flock-server/internal/service/submit"
)

type Services struct {
	Agent    agent.Service
	Settings settings.Service
	Notify   notify.Service
	Submit   submit.Service
	Archive  archive.Service
	Email    email.Service
}

func NewServices(repos *repository.Repositories, redisClient *redis.Client, minioClient *minio.Client, cfg *config.Config) *Services {
	emailService := email.NewService(cfg)
	archiveService := archive.NewService(minioClient, cfg)
	settingsService := settings.NewService(repos.Settings, redisClient)
	notifyService := notify.NewService(repos.Notification, settingsService)
	agentService := agent.NewService(repos.Agent, notifyService)
	submitService := submit.NewService(repos.Telemetry, agentService, notifyService, archiveService)

	return &Services{
		Agent:    agentService,
		Settings: settingsService,
		Notify:   notifyService,
		Submit:   submitService,
		Archive:  archiveService,
		Email:    emailService,
	}
}
