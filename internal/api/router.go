package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mcoot/rajamantri/internal/api/apierr"
	"github.com/mcoot/rajamantri/internal/api/handler"
	"github.com/mcoot/rajamantri/internal/api/middleware"
	"github.com/mcoot/rajamantri/internal/services/roster"
	"github.com/mcoot/rajamantri/internal/services/round"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger           *slog.Logger
	RosterController *roster.Controller
	RoundController  *round.Controller
	// Registerer receives HTTP request metrics (optional)
	Registerer prometheus.Registerer
	// MetricsHandler is served at /metrics when set
	MetricsHandler http.Handler
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(notFoundHandler)

	// Create handlers
	roomHandler := handler.NewRoomHandler(cfg.RosterController, cfg.RoundController)

	// Create middleware
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)
	httpMetrics := middleware.NewHTTPMetrics(cfg.Registerer)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)
	api.Use(httpMetrics.Middleware)

	// Room routes; /rooms/join is registered before /rooms/{room_id} patterns
	api.HandleFunc("/rooms", roomHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/rooms/join", roomHandler.Join).Methods(http.MethodPost)
	api.HandleFunc("/rooms/{room_id}", roomHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{room_id}/players", roomHandler.Players).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{room_id}/assign", roomHandler.Assign).Methods(http.MethodPost)
	api.HandleFunc("/rooms/{room_id}/role/{player_id}", roomHandler.Role).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{room_id}/guess", roomHandler.Guess).Methods(http.MethodPost)
	api.HandleFunc("/rooms/{room_id}/result", roomHandler.Result).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{room_id}/leaderboard", roomHandler.Leaderboard).Methods(http.MethodGet)

	// Health check endpoints
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)
	r.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler).Methods(http.MethodGet)
	}

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	apierr.WriteError(w, apierr.NewNotFoundError())
}
