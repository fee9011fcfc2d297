package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/labshare/server/internal/config"
	"github.com/labshare/server/internal/database"
	"github.com/labshare/server/internal/directory"
	"github.com/labshare/server/internal/handlers"
	"github.com/labshare/server/internal/middleware"
	"github.com/labshare/server/internal/services"
	"github.com/labshare/server/internal/storage"
	"github.com/labshare/server/pkg/logger"
	"github.com/labshare/server/pkg/utils"
)

func main() {
	logger.Init()

	cfg := config.Load()
	utils.ConfigureJWT(cfg.JWT.Secret, cfg.JWT.ExpirationHours)

	db, err := database.Connect(cfg.DB)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	storageClient, err := newStorageClient(cfg)
	if err != nil {
		log.Fatalf("storage initialization failed: %v", err)
	}

	dir := directory.New(db, cfg.Auth.EnforcePassword)
	auditService := services.NewAuditService(db)
	sharingService := services.NewSharingService(db, storageClient, dir)

	authHandler := handlers.NewAuthHandler(dir, auditService)
	usersHandler := handlers.NewUsersHandler(db)
	filesHandler := handlers.NewFilesHandler(sharingService, auditService)
	notificationsHandler := handlers.NewNotificationsHandler(db)
	auditHandler := handlers.NewAuditHandler(db)

	authMiddleware := middleware.NewAuthMiddleware(db)

	app := fiber.New(fiber.Config{BodyLimit: 100 * 1024 * 1024})
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(middleware.CORS())
	app.Use(middleware.RequestLogger())
	app.Use(middleware.SecurityLogger())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	authRoutes := api.Group("/auth")
	authRoutes.Post("/register", authHandler.Register)
	authRoutes.Post("/login", authHandler.Login)
	authRoutes.Get("/me", authMiddleware.RequireAuth, authHandler.Me)

	api.Get("/users/recipients", authMiddleware.RequireAuth, middleware.ResearcherOnly, usersHandler.Recipients)

	fileRoutes := api.Group("/files", authMiddleware.RequireAuth)
	fileRoutes.Post("/", middleware.ResearcherOnly, filesHandler.Upload)
	fileRoutes.Get("/outbox", middleware.ResearcherOnly, filesHandler.Outbox)
	fileRoutes.Get("/inbox", middleware.RecipientOnly, filesHandler.Inbox)
	fileRoutes.Get("/inbox/:sender", middleware.RecipientOnly, filesHandler.Conversation)
	fileRoutes.Get("/unread-count", middleware.RecipientOnly, filesHandler.UnreadCount)
	fileRoutes.Patch("/:id/read", middleware.RecipientOnly, filesHandler.MarkRead)
	fileRoutes.Get("/:id/download", middleware.RecipientOnly, filesHandler.Download)

	notificationRoutes := api.Group("/notifications", authMiddleware.RequireAuth)
	notificationRoutes.Get("/", notificationsHandler.List)
	notificationRoutes.Get("/unread-count", notificationsHandler.UnreadCount)
	notificationRoutes.Put("/read-all", notificationsHandler.MarkAllRead)
	notificationRoutes.Put("/:id/read", notificationsHandler.MarkRead)

	api.Get("/audit-log/export", authMiddleware.RequireAuth, auditHandler.ExportMyLog)

	listenAddr := fmt.Sprintf(":%s", cfg.Server.Port)

	logger.Info("server_starting", map[string]interface{}{
		"port":           cfg.Server.Port,
		"address":        listenAddr,
		"db_driver":      cfg.DB.Driver,
		"storage_driver": cfg.Storage.Driver,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(listenAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Printf("shutting down server due to signal: %s", sig)
		shutdownDone := make(chan struct{})
		go func() {
			_ = app.Shutdown()
			auditService.Close()
			close(shutdownDone)
		}()
		select {
		case <-shutdownDone:
		case <-time.After(10 * time.Second):
			log.Print("forced shutdown timeout reached")
		}
	case err := <-errCh:
		if err != nil {
			log.Fatalf("server error: %v", err)
		}
	}
}

func newStorageClient(cfg *config.Config) (storage.Client, error) {
	switch cfg.Storage.Driver {
	case "memory":
		return storage.NewMemoryClient(), nil
	case "minio":
		client, err := storage.NewMinIOClient(cfg.MinIO)
		if err != nil {
			return nil, err
		}
		if err := client.EnsureBucket(context.Background()); err != nil {
			return nil, fmt.Errorf("failed ensuring bucket: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
