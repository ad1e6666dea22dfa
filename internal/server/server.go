// file: internal/server/server.go
// version: 1.0.0
// guid: ae85aa3a-1a04-4ca6-af51-3412c475da20

package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jdfalk/calibre-api/internal/calibre"
	"github.com/jdfalk/calibre-api/internal/config"
	"github.com/jdfalk/calibre-api/internal/metrics"
	"github.com/jdfalk/calibre-api/internal/server/middleware"
)

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *gin.Engine

	tools        *calibre.Tools
	libraryPath  string
	workDir      string
	buildVersion string
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Options wires the server's dependencies.
type Options struct {
	Tools        *calibre.Tools
	LibraryPath  string // default calibredb library; per-request override via `library`
	WorkDir      string // uploads and produced artifacts live here
	BuildVersion string
}

// NewServer creates a new server instance
func NewServer(opts Options) *Server {
	router := gin.New()

	// Set up middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Metrics())
	router.Use(corsMiddleware())
	router.Use(middleware.BasicAuth())
	limiter := middleware.NewIPRateLimiter(
		config.AppConfig.RateLimit.RPS, config.AppConfig.RateLimit.Burst)
	router.Use(limiter.Middleware())
	router.Use(middleware.MaxRequestBodySize(
		int64(config.AppConfig.MaxUploadMB) * 1024 * 1024))

	// Register metrics (idempotent)
	metrics.Register()

	workDir := opts.WorkDir
	if workDir == "" {
		workDir = os.TempDir()
	}

	server := &Server{
		router:       router,
		tools:        opts.Tools,
		libraryPath:  opts.LibraryPath,
		workDir:      workDir,
		buildVersion: opts.BuildVersion,
	}

	server.setupRoutes()

	return server
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start(cfg ServerConfig) error {
	s.httpServer = &http.Server{
		Addr:           fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Handler:        s.router,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: 1 << 20, // 1MB
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Give outstanding requests a deadline for completion. Child processes
	// already running are not killed; their runner owns the timeout.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("Server exited")
	return nil
}

// setupRoutes configures all the routes
func (s *Server) setupRoutes() {
	// Prometheus metrics endpoint (standard path)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check endpoint
	s.router.GET("/health", s.healthCheck)

	// API routes
	api := s.router.Group("/api/v1")
	{
		// Tool status routes
		api.GET("/version", s.getVersion)
		api.GET("/doctor", s.getDoctor)

		// Library routes
		api.GET("/books", s.listBooks)
		api.POST("/books", s.addBook)
		api.DELETE("/books/:id", s.removeBook)
		api.PUT("/books/:id/metadata", s.setBookMetadata)
		api.POST("/books/check", s.checkBook)

		// Conversion routes
		api.POST("/convert", s.convertBook)
		api.POST("/polish", s.polishBook)
		api.POST("/lrf2lrs", s.lrfToLRS)
		api.POST("/lrs2lrf", s.lrsToLRF)

		// Standalone file metadata routes
		api.POST("/metadata/file", s.readFileMetadata)
		api.PUT("/metadata/file", s.writeFileMetadata)
		api.POST("/metadata/cover", s.extractCover)
		api.POST("/metadata/fetch", s.fetchMetadata)

		// Recipe generation
		api.POST("/recipes", s.generateRecipe)

		// Plugin and debug routes
		api.GET("/plugins", s.listPlugins)
		api.POST("/debug/test-build", s.debugTestBuild)

		// Email route
		api.POST("/smtp/send", s.sendMail)

		// Produced artifact downloads
		api.GET("/downloads/:name", s.downloadArtifact)
	}
}

// corsMiddleware adds CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	report := s.tools.Doctor()
	status := "ok"
	if !report.AllFound {
		status = "degraded"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    status,
		"timestamp": time.Now().Unix(),
		"version":   s.buildVersion,
		"calibre": gin.H{
			"all_found": report.AllFound,
			"version":   report.CalibreVersion,
			"binaries":  report.Binaries,
		},
	})
}

// libraryFor resolves the Calibre library for a request: an explicit
// `library` query or form value overrides the configured default.
func (s *Server) libraryFor(c *gin.Context) *calibre.Library {
	path := c.Query("library")
	if path == "" {
		path = c.PostForm("library")
	}
	if path == "" {
		path = s.libraryPath
	}
	return calibre.NewLibrary(s.tools, path)
}
