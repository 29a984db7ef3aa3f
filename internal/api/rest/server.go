// Package rest serves the normalized data over HTTP.
package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// Options configures the router.
type Options struct {
	CORSAllowOrigins []string
	RateLimitRPS     float64
	// Slates is mounted at /ws/slates when set.
	Slates http.Handler
	Logger *zap.Logger
}

// Server represents the REST API server
type Server struct {
	server *http.Server
}

// NewRouter builds the route table and middleware chain.
func NewRouter(handler *Handler, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := mux.NewRouter()
	router.Use(RecoveryMiddleware(logger))
	router.Use(LoggingMiddleware(logger))

	router.HandleFunc("/health", handler.HealthCheck).Methods(http.MethodGet)
	if opts.Slates != nil {
		router.Handle("/ws/slates", opts.Slates)
	}

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(RateLimitMiddleware(opts.RateLimitRPS))

	// Games
	api.HandleFunc("/games", handler.GetGames).Methods(http.MethodGet)
	api.HandleFunc("/games/{gameID}", handler.GetGame).Methods(http.MethodGet)

	// Teams
	api.HandleFunc("/teams", handler.GetTeams).Methods(http.MethodGet)
	api.HandleFunc("/teams/{code}/stats", handler.GetTeamStats).Methods(http.MethodGet)
	api.HandleFunc("/teams/{teamID}/roster", handler.GetTeamRoster).Methods(http.MethodGet)

	// League statistics
	api.HandleFunc("/stats/teams", handler.GetTeamStatistics).Methods(http.MethodGet)
	api.HandleFunc("/stats/players", handler.GetPlayerStatistics).Methods(http.MethodGet)

	api.HandleFunc("/parlays", handler.SuggestParlays).Methods(http.MethodPost)

	c := cors.New(cors.Options{
		AllowedOrigins: opts.CORSAllowOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
	})
	return c.Handler(router)
}

// NewServer creates a new REST API server
func NewServer(port string, handler *Handler, opts Options) *Server {
	return &Server{
		server: &http.Server{
			Addr:              fmt.Sprintf(":%s", port),
			Handler:           NewRouter(handler, opts),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Start starts the REST API server
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
