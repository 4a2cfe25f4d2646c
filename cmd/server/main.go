package main

import (
	"log"

	"go.uber.org/zap"

	_ "taskflow/docs"
	"taskflow/internal/config"
	"taskflow/internal/logger"
	"taskflow/internal/server"
)

// @title           Taskflow API
// @version         1.0
// @description     Projects, ordered sections and tasks with heuristic effort and priority suggestions.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @schemes http
func main() {
	cfg := config.Load()

	zl, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		log.Fatalf("❌ Logger initialization failed: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	s, err := server.Init(cfg, zl)
	if err != nil {
		zl.Fatal("Server initialization failed", zap.Error(err))
	}

	s.Run()
}
