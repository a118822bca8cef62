// Package api serves projected grants to the chart front end.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/todmy/grantmap/internal/auth"
)

// ServerConfig holds the server's collaborators
type ServerConfig struct {
	Source PointSource
	// Auth guards /api/v1 when set
	Auth auth.Validator
	// StaticDir holds the chart front end, served at the root when set
	StaticDir string
}

type Server struct {
	router *chi.Mux
	source PointSource
}

func NewServer(config ServerConfig) *Server {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:*", "https://*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	s := &Server{router: r, source: config.Source}
	s.setupRoutes(config)

	return s
}

func (s *Server) setupRoutes(config ServerConfig) {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api/v1", func(r chi.Router) {
		if config.Auth != nil {
			r.Use(auth.Middleware(config.Auth))
		}

		r.Get("/points", s.handleLatestPoints)
		r.Get("/funders", s.handleLatestFunders)
		r.Get("/runs/{runID}/points", s.handleRunPoints)
		r.Get("/runs/{runID}/funders", s.handleRunFunders)
		r.Get("/runs/{runID}/grants/{grantID}/similar", s.handleSimilar)
	})

	if config.StaticDir != "" {
		s.router.Handle("/*", http.FileServer(http.Dir(config.StaticDir)))
	}
}

// ServeHTTP makes the server usable as an http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) Run(addr string) error {
	return http.ListenAndServe(addr, s.router)
}

// Helper to send JSON responses
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
