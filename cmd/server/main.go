package main

import (
	"fmt"
	"log"
	"net/http"

	"hookstash/internal/api"
	"hookstash/internal/api/handlers"
	"hookstash/internal/api/middleware"
	"hookstash/internal/engine/tasks"
	"hookstash/internal/pkg/logger"
	"hookstash/internal/platform/audit"
	"hookstash/internal/platform/auth"
	"hookstash/internal/platform/config"
	"hookstash/internal/platform/database"
	"hookstash/internal/platform/oidc"
	"hookstash/internal/platform/repositories"
)

func main() {
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.Logging)

	db, err := database.New(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	broker := tasks.NewRedisBroker(cfg.Redis, cfg.Tasks)

	// Repositories
	userRepo := repositories.NewUserRepository(db)
	webhookRepo := repositories.NewWebhookRepository(db)

	// Services
	tokenSvc := auth.NewTokenService(cfg.JWT)
	oidcClient := oidc.NewClient(cfg.OIDC)
	auditLog := audit.NewLogger(db)

	// Handlers
	authHandler := handlers.NewAuthHandler(userRepo, tokenSvc, oidcClient, auditLog)
	webhookHandler := handlers.NewWebhookHandler(webhookRepo, broker, auditLog)
	taskHandler := handlers.NewTaskHandler(broker)
	healthHandler := handlers.NewHealthHandler(db, broker)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(tokenSvc)
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit)

	router := api.NewRouter(&api.Dependencies{
		AuthHandler:    authHandler,
		WebhookHandler: webhookHandler,
		TaskHandler:    taskHandler,
		HealthHandler:  healthHandler,
		AuthMiddleware: authMiddleware,
		RateLimiter:    rateLimiter,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	log.Printf("Server starting on %s", addr)
	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
