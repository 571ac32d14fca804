// Package api provides the HTTP API server for the booking reconciliation
// backend.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/multipark/booking-recon-backend/internal/api/handlers"
	"github.com/multipark/booking-recon-backend/internal/api/middleware"
	"github.com/multipark/booking-recon-backend/internal/application/service"
	"github.com/multipark/booking-recon-backend/internal/domain/finance"
	"github.com/multipark/booking-recon-backend/internal/infrastructure/storage"
)

// Config holds API server configuration.
type Config struct {
	Port           int
	AllowedOrigins []string
}

// DefaultConfig returns sensible defaults for the API server.
func DefaultConfig() Config {
	return Config{
		Port:           8080,
		AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
	}
}

// Server is the HTTP API server.
type Server struct {
	config     Config
	router     *gin.Engine
	httpServer *http.Server
	logger     *slog.Logger
	repo       storage.Repository
	importer   *service.ImportService
	calculator *finance.Calculator
}

// NewServer creates a new API server.
// If importer is nil, the upload endpoint will not be available.
func NewServer(cfg Config, repo storage.Repository, importer *service.ImportService, calc *finance.Calculator, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if calc == nil {
		calc = finance.New(finance.DefaultConfig())
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	s := &Server{
		config:     cfg,
		router:     router,
		logger:     logger,
		repo:       repo,
		importer:   importer,
		calculator: calc,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures global middleware.
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.Logging(s.logger))

	s.router.Use(cors.New(cors.Config{
		AllowOrigins:     s.config.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check (no /api prefix - for load balancers)
	healthHandler := handlers.NewHealthHandler()
	s.router.GET("/health", healthHandler.Check)

	api := s.router.Group("/api")
	{
		bookingsHandler := handlers.NewBookingsHandler(s.repo)
		api.GET("/bookings", bookingsHandler.List)
		api.GET("/bookings/:id", bookingsHandler.Get)
		api.PATCH("/bookings/:id/approve", bookingsHandler.Approve)

		statsHandler := handlers.NewStatsHandler(s.repo)
		api.GET("/stats", statsHandler.Get)

		reportsHandler := handlers.NewReportsHandler(s.repo, s.calculator)
		api.GET("/reports/financial", reportsHandler.Financial)

		if s.importer != nil {
			uploadsHandler := handlers.NewUploadsHandler(s.repo, s.importer)
			api.POST("/uploads", uploadsHandler.Create)
			api.GET("/uploads", uploadsHandler.List)
		}
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting API server", "addr", addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")

	if s.httpServer == nil {
		return nil
	}

	return s.httpServer.Shutdown(ctx)
}

// Router returns the gin engine for testing.
func (s *Server) Router() *gin.Engine {
	return s.router
}
