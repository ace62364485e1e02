package main

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"flock-server/internal/bot"
	"flock-server/internal/chat"
	"flock-server/internal/config"
	"flock-server/internal/handler"
	"flock-server/internal/middleware"
	"flock-server/internal/repository"
	"flock-server/internal/service"
	"flock-server/internal/service/notify"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	db, err := config.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	redis, err := config.NewRedisClient(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redis.Close()

	minioClient, err := config.NewMinIOClient(cfg)
	if err != nil {
		log.Printf("Warning: Failed to connect to MinIO: %v (raw batch snapshots disabled)", err)
		minioClient = nil
	}

	if cfg.KeybaseUsername == "" || cfg.KeybasePaperKey == "" || cfg.KeybaseTeam == "" {
		log.Fatal("KEYBASE_USERNAME, KEYBASE_PAPERKEY, and KEYBASE_TEAM must be set")
	}
	transport, err := chat.NewKeybase(cfg.KeybaseUsername, cfg.KeybasePaperKey)
	if err != nil {
		log.Fatalf("Failed to start Keybase: %v", err)
	}
	channel := chat.Channel{Team: cfg.KeybaseTeam, Topic: cfg.KeybaseChannel}

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, redis, minioClient, cfg)
	handlers := handler.NewHandlers(services)

	ctx := context.Background()

	deliverer := notify.NewDeliverer(repos.Notification, transport, channel,
		services.Email, cfg.DeliveryInterval, cfg.ChatSendTimeout)
	go deliverer.Run(ctx)

	commandBot := bot.New(transport, channel, cfg.KeybaseAdmins,
		services.Agent, services.Settings, cfg.ChatSendTimeout)
	go func() {
		if err := commandBot.Run(ctx); err != nil {
			log.Printf("Command bot stopped: %v", err)
		}
	}()

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/health"
		},
	}))

	setupRoutes(app, handlers, services)

	log.Printf("Server starting on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func setupRoutes(app *fiber.App, h *handler.Handlers, services *service.Services) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Post("/register", h.Agent.Register)

	authed := app.Group("", middleware.BasicAuth(services.Agent))
	authed.Get("/ping", h.Agent.Ping)
	authed.Post("/submit", h.Submit.Submit)
	authed.Post("/submit_flock_logs", h.Submit.SubmitFlockLogs)
}
