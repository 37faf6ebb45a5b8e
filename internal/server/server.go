package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/redlinehq/redline/internal/db"
	"github.com/redlinehq/redline/internal/document"
	"github.com/redlinehq/redline/internal/review"
	"github.com/redlinehq/redline/internal/search"
)

// Config holds server configuration.
type Config struct {
	Port     int
	DataDir  string   // directory for the SQLite DB and data files
	AllowAll bool     // allow all CORS origins (dev mode)
	Palette  []string // highlight color allow-list; nil for the default
}

// Server is the redline review API server.
type Server struct {
	cfg        Config
	db         *db.DB
	docs       *document.Store
	reviews    *review.Service
	hub        *review.Hub
	index      *search.Index
	router     chi.Router
	httpServer *http.Server
}

// New wires the feature stores and services onto one router. index may be
// nil when comment search is not configured.
func New(cfg Config, database *db.DB, index *search.Index) *Server {
	s := &Server{
		cfg:   cfg,
		db:    database,
		docs:  document.NewStore(database),
		hub:   review.NewHub(),
		index: index,
	}

	var commentIndex review.CommentIndex
	if index != nil {
		commentIndex = index
	}
	s.reviews = review.NewService(s.docs, review.NewStore(database), s.hub, commentIndex, cfg.Palette)

	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	document.RegisterRoutes(r, s.docs)
	review.RegisterRoutes(r, s.reviews, s.hub)
	search.RegisterRoutes(r, s.index)

	return r
}

// Router returns the chi router, mainly for tests.
func (s *Server) Router() chi.Router { return s.router }

// Documents returns the document store.
func (s *Server) Documents() *document.Store { return s.docs }

// Reviews returns the review service.
func (s *Server) Reviews() *review.Service { return s.reviews }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("redline server listening on %s", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
