package main

import (
	"context"
	"log"

	"github.com/MrSnakeDoc/marks/internal/app"
	"github.com/MrSnakeDoc/marks/internal/config"
	"github.com/MrSnakeDoc/marks/internal/logger"
)

func main() {
	config.LoadDotEnv()
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)
	defer func() { _ = loggerClient.Sync() }()

	a, err := app.New(context.Background(), cfg, loggerClient)
	if err != nil {
		log.Fatalf("❌ marks failed to start: %v", err)
	}
	if err := a.Run(); err != nil {
		log.Fatalf("❌ marks stopped with error: %v", err)
	}
}
