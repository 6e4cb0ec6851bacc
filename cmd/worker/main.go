package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"hookstash/internal/engine/cleanup"
	"hookstash/internal/engine/tasks"
	"hookstash/internal/pkg/logger"
	"hookstash/internal/platform/config"
	"hookstash/internal/platform/database"
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	broker := tasks.NewRedisBroker(cfg.Redis, cfg.Tasks)
	executor := tasks.NewExecutor(cfg.Tasks)

	runner := tasks.NewRunner(broker, executor, cfg.Tasks.WorkerCount)
	runner.Start(ctx)

	webhookRepo := repositories.NewWebhookRepository(db)
	sweeper := cleanup.NewSweeper(webhookRepo, cfg.Retention.MaxAge)
	go sweeper.Run(ctx, cfg.Retention.SweepInterval)

	log.Println("Workers started")
	<-ctx.Done()
	log.Println("Shutting down")
}
