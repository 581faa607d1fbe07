// cmd/server/server.go
package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/arenahq/arenagrid/internal/api"
	"github.com/arenahq/arenagrid/internal/api/gridapi"
	"github.com/arenahq/arenagrid/internal/config"
	"github.com/arenahq/arenagrid/internal/ratelimit"
	"github.com/arenahq/arenagrid/internal/store"
)

func newServer(cfg *config.Config, st *store.Store, limiter *ratelimit.Limiter) *http.Server {
	router := http.NewServeMux()

	trustProxy := cfg.App.Environment == "production"

	// Setup middleware chain
	handler := api.ChainMiddleware(
		router,
		api.WithLogging,
		api.WithRecovery,
		api.WithRateLimit(limiter, trustProxy),
		api.WithRequestID,
	)

	gridapi.InitHandlers(st, cfg.Grid.MaxRangeDays)
	registerRoutes(router)

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func registerRoutes(mux *http.ServeMux) {
	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Availability grid routes
	mux.HandleFunc("GET /api/v1/venues/{id}/grid", gridapi.HandleGrid)
	mux.HandleFunc("POST /api/v1/venues/{id}/bookings", gridapi.HandleCreateBooking)
}
