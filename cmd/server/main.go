package main

import (
	"log"
	"log/slog"
	"net/http"

	"multiverse-server/internal/middleware"
	"multiverse-server/internal/server"
	"multiverse-server/internal/shared/config"
	"multiverse-server/internal/shared/database"
	"multiverse-server/internal/shared/logger"
	"multiverse-server/internal/shared/redis"
	"multiverse-server/internal/simulation"
)

func main() {
	if err := config.Init(); err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}
	cfg := config.GlobalConfig

	logger.Init()

	db, err := database.Connect()
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		log.Fatal("Failed to run migrations: ", err)
	}

	cache, err := redis.Connect()
	if err != nil {
		// The cache is optional; run without it rather than refusing to start.
		slog.Warn("Redis unavailable, continuing without stats cache", "error", err)
		cache = nil
	}
	defer cache.Close()

	simulationRepo := simulation.NewRepository(db, slog.With("component", "simulation_repository"))
	simulationService := simulation.NewService(simulationRepo, cache, slog.With("component", "simulation_service"))

	routes := server.NewRoutes(db, simulationService, slog.With("component", "routes"))
	mux := routes.Setup()

	corsMiddleware := middleware.NewCORS()
	rateLimiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		BurstSize:         cfg.RateLimit.BurstSize,
		Enabled:           cfg.RateLimit.Enabled,
	})

	handler := corsMiddleware.Middleware(rateLimiter.Middleware(mux))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	slog.Info("Multiverse server starting",
		"port", cfg.Server.Port,
		"environment", cfg.Server.Environment,
	)

	log.Fatal(srv.ListenAndServe())
}
