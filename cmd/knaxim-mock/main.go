package main

import (
	"log"

	"knaxim-client/internal/config"
	"knaxim-client/internal/mockserver"
	"knaxim-client/internal/pkg/logger"
)

func main() {
	cfg := config.Load()
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction(), cfg.App.Debug)
	defer sysLogger.Sync()

	srv := mockserver.New(mockserver.Default(), cfg.Mock.JWTSecret, sysLogger)
	log.Printf("✅ Mock backend is running on http://localhost:%s/api", cfg.Mock.Port)
	log.Fatal(srv.Listen(":" + cfg.Mock.Port))
}
