package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"triviamon/internal/battle"
	"triviamon/internal/service"
	"triviamon/internal/transport/rest/handler"
	"triviamon/internal/transport/rest/middleware"
	"triviamon/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService        *service.AuthService
	MatchmakingService *service.MatchmakingService
	ResultsService     *service.ResultsService
	Manager            *battle.Manager
	WSHub              *ws.Hub
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	mmHandler := handler.NewMatchmakingHandler(c.MatchmakingService)
	matchHandler := handler.NewMatchHandler(c.Manager, c.ResultsService)
	wsHandler := ws.NewHandler(c.WSHub, c.Manager, c.AuthService)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/guest", authHandler.GuestLogin).Methods("POST", "OPTIONS")

	// WebSocket routes (public with token in query param)
	v1.HandleFunc("/ws/matches/{id}", wsHandler.MatchWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Player routes (require player auth)
	playerRoutes := v1.NewRoute().Subrouter()
	playerRoutes.Use(authMW.RequirePlayer)

	playerRoutes.HandleFunc("/matchmaking/queue", mmHandler.Join).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/matchmaking/queue", mmHandler.Leave).Methods("DELETE", "OPTIONS")
	playerRoutes.HandleFunc("/matchmaking/queue", mmHandler.Status).Methods("GET", "OPTIONS")
	playerRoutes.HandleFunc("/matches/{id}", matchHandler.Get).Methods("GET", "OPTIONS")
	playerRoutes.HandleFunc("/matches/{id}/forfeit", matchHandler.Forfeit).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/matches/{id}/leaderboard", matchHandler.Leaderboard).Methods("GET", "OPTIONS")
	playerRoutes.HandleFunc("/players/me/matches", matchHandler.History).Methods("GET", "OPTIONS")
	playerRoutes.HandleFunc("/leaderboard", matchHandler.GlobalLeaderboard).Methods("GET", "OPTIONS")

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
