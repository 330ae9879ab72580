package http

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jack-ai/jackal-core/internal/core/ports/driving"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	version    string

	// Services
	chatService   driving.ChatService
	ingestService driving.IngestService

	// Infrastructure
	store Pinger // knowledge store health check

	adminKey       string
	allowedOrigins []string
}

// Config holds server configuration
type Config struct {
	Host           string
	Port           int
	Version        string
	AdminKey       string
	AllowedOrigins []string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:           "0.0.0.0",
		Port:           8080,
		Version:        "dev",
		AllowedOrigins: []string{"*"},
	}
}

// NewServer creates a new HTTP server
func NewServer(
	cfg Config,
	chatService driving.ChatService,
	ingestService driving.IngestService,
	store Pinger,
) *Server {
	s := &Server{
		router:         http.NewServeMux(),
		version:        cfg.Version,
		chatService:    chatService,
		ingestService:  ingestService,
		store:          store,
		adminKey:       cfg.AdminKey,
		allowedOrigins: cfg.AllowedOrigins,
	}

	var handler http.Handler = s.router
	handler = NewLoggingMiddleware().Handler(handler)
	handler = NewRecoveryMiddleware().Handler(handler)
	handler = NewCORSMiddleware(cfg.AllowedOrigins).Handler(handler)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // bulk loads embed every chunk
		IdleTimeout:  60 * time.Second,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	adminAuth := NewAdminAuthMiddleware(s.adminKey)

	// Health endpoints (no auth)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)

	// Chat endpoint (public)
	s.router.HandleFunc("POST /api/v1/chat", s.handleChat)

	// Admin endpoints (pre-shared key)
	s.router.Handle("POST /api/v1/admin/load-data",
		adminAuth.Authenticate(http.HandlerFunc(s.handleLoadData)))
	s.router.Handle("GET /api/v1/admin/documents",
		adminAuth.Authenticate(http.HandlerFunc(s.handleListDocuments)))
}

// Start starts the HTTP server with graceful shutdown
func (s *Server) Start() error {
	// Channel to listen for OS signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		log.Printf("Starting server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-stop
	log.Println("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Attempt graceful shutdown
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
