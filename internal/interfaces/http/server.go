// Package http provides the HTTP adapter for the workflow engine.
// This is a thin layer that translates requests into application service calls.
package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/plantdocs/formflow/internal/application/service"
	"github.com/plantdocs/formflow/internal/domain/entity"
	"github.com/plantdocs/formflow/internal/infrastructure/audit"
)

// Logger interface for logging operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// AuditReader reads back the audit trail for one submission
type AuditReader interface {
	ListByResource(ctx context.Context, resourceID string) ([]*audit.Entry, error)
}

// RegisterExporter writes a submission register workbook
type RegisterExporter interface {
	WriteRegister(submissions []*entity.Submission, w io.Writer) error
}

// CertificateExporter renders an approved submission as a PDF
type CertificateExporter interface {
	WriteCertificate(sub *entity.Submission, w io.Writer) error
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	engine     service.WorkflowEngine
	auditTrail AuditReader
	register   RegisterExporter
	certified  CertificateExporter
	logger     Logger
}

// NewServer creates a new HTTP server around the workflow engine
func NewServer(
	config ServerConfig,
	engine service.WorkflowEngine,
	auditTrail AuditReader,
	register RegisterExporter,
	certified CertificateExporter,
	logger Logger,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	server := &Server{
		config:     config,
		router:     router,
		engine:     engine,
		auditTrail: auditTrail,
		register:   register,
		certified:  certified,
		logger:     logger,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures middleware for the router
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
}

// loggingMiddleware creates a logging middleware
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		s.logger.Info("HTTP request",
			"method", method,
			"path", path,
			"status", status,
			"latency", latency.String(),
			"client_ip", c.ClientIP(),
		)
	}
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	handlers := NewHandlers(s.engine, s.auditTrail, s.register, s.certified, s.logger)

	// Health check
	s.router.GET("/health", handlers.HealthCheck)

	api := s.router.Group("/api")
	{
		api.POST("/submissions", handlers.CreateSubmission)
		api.GET("/submissions", handlers.ListSubmissions)
		api.GET("/submissions/export", handlers.ExportRegister)
		api.GET("/submissions/:id", handlers.GetSubmission)
		api.GET("/submissions/:id/history", handlers.GetHistory)
		api.GET("/submissions/:id/audit", handlers.GetAuditTrail)
		api.GET("/submissions/:id/certificate", handlers.ExportCertificate)

		// Workflow actions
		api.POST("/submissions/:id/submit", handlers.Submit)
		api.POST("/submissions/:id/start-verification", handlers.StartVerification)
		api.POST("/submissions/:id/complete-verification", handlers.CompleteVerification)
		api.POST("/submissions/:id/approve", handlers.Approve)
		api.POST("/submissions/:id/reject", handlers.Reject)
		api.POST("/submissions/:id/clone", handlers.CloneRejected)
	}
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", "address", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", "error", err)
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Stopping HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}
