package server

import (
	"log/slog"
	"net/http"

	authHandlers "multiverse-server/internal/auth/handlers"
	"multiverse-server/internal/middleware"
	serverHandlers "multiverse-server/internal/server/handlers"
	"multiverse-server/internal/shared/database"
	"multiverse-server/internal/simulation"
	simulationHandlers "multiverse-server/internal/simulation/handlers"
)

type Routes struct {
	db                *database.DB
	simulationService *simulation.Service
	logger            *slog.Logger
}

func NewRoutes(db *database.DB, simulationService *simulation.Service, logger *slog.Logger) *Routes {
	return &Routes{
		db:                db,
		simulationService: simulationService,
		logger:            logger,
	}
}

func (r *Routes) Setup() *http.ServeMux {
	logger := slog.With("component", "routes", "operation", "setup")
	logger.Debug("Setting up application routes")

	mux := http.NewServeMux()

	healthHandler := serverHandlers.NewHealthHandler(r.db)
	tokenHandler := authHandlers.NewTokenHandler()
	simulationHandler := simulationHandlers.NewSimulationHandler(r.simulationService)

	// Public endpoints
	mux.Handle("/api/server/health", healthHandler)
	mux.Handle("/auth/token", tokenHandler)
	mux.HandleFunc("GET /api/simulations", simulationHandler.GetSimulations)
	mux.HandleFunc("GET /api/simulations/{id}", simulationHandler.GetSimulation)
	mux.HandleFunc("GET /api/simulations/{id}/stats", simulationHandler.GetStats)
	mux.HandleFunc("GET /api/simulations/{id}/universes", simulationHandler.GetUniverses)
	mux.HandleFunc("GET /api/simulations/{id}/graph", simulationHandler.GetGraph)
	mux.HandleFunc("GET /api/simulations/{id}/collapses", simulationHandler.GetCollapses)

	// Admin-only endpoints (every mutation of a simulation)
	mux.Handle("POST /api/simulations", middleware.RequireAdmin(http.HandlerFunc(simulationHandler.CreateSimulation)))
	mux.Handle("POST /api/simulations/{id}/step", middleware.RequireAdmin(http.HandlerFunc(simulationHandler.Step)))
	mux.Handle("POST /api/simulations/{id}/feedback", middleware.RequireAdmin(http.HandlerFunc(simulationHandler.Feedback)))
	mux.Handle("POST /api/simulations/{id}/merge", middleware.RequireAdmin(http.HandlerFunc(simulationHandler.Merge)))

	logger.Info("Routes configured successfully",
		"public_endpoints", []string{
			"/api/server/health", "/auth/token", "/api/simulations",
			"/api/simulations/{id}", "/api/simulations/{id}/stats",
			"/api/simulations/{id}/universes", "/api/simulations/{id}/graph",
			"/api/simulations/{id}/collapses",
		},
		"admin_endpoints", []string{
			"/api/simulations", "/api/simulations/{id}/step",
			"/api/simulations/{id}/feedback", "/api/simulations/{id}/merge",
		},
	)

	return mux
}
