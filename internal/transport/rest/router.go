package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"matchroom/internal/service"
	"matchroom/internal/transport/rest/handler"
	"matchroom/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	MatchService *service.MatchService
	WSHub        *ws.Hub
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	gameHandler := handler.NewGameHandler(c.MatchService)
	wsHandler := ws.NewHandler(c.WSHub)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Game catalog
	v1.HandleFunc("/games", gameHandler.ListKinds).Methods("GET", "OPTIONS")
	v1.HandleFunc("/games/{kind}", gameHandler.GetKind).Methods("GET", "OPTIONS")

	// Match lifecycle
	v1.HandleFunc("/matches/{matchId}/game", gameHandler.Create).Methods("POST", "OPTIONS")
	v1.HandleFunc("/matches/{matchId}/game", gameHandler.Get).Methods("GET", "OPTIONS")
	v1.HandleFunc("/matches/{matchId}/game", gameHandler.Delete).Methods("DELETE", "OPTIONS")
	v1.HandleFunc("/matches/{matchId}/game/move", gameHandler.Move).Methods("POST", "OPTIONS")
	v1.HandleFunc("/matches/{matchId}/game/forfeit", gameHandler.Forfeit).Methods("POST", "OPTIONS")
	v1.HandleFunc("/matches/{matchId}/game/leave", gameHandler.Leave).Methods("POST", "OPTIONS")
	v1.HandleFunc("/matches/{matchId}/game/timing", gameHandler.Timing).Methods("GET", "OPTIONS")

	// WebSocket stream (participant in query param)
	v1.HandleFunc("/ws/matches/{matchId}", wsHandler.MatchWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		allowedMethods := os.Getenv("CORS_ALLOWED_METHODS")
		if allowedMethods == "" {
			allowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
		}

		allowedHeaders := os.Getenv("CORS_ALLOWED_HEADERS")
		if allowedHeaders == "" {
			allowedHeaders = "Content-Type, Authorization"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
