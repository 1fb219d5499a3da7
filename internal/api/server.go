package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/amaumene/postarr/internal/api/handlers"
	"github.com/amaumene/postarr/internal/api/middleware"
	"github.com/amaumene/postarr/internal/config"
	"github.com/amaumene/postarr/internal/controllers"
	"github.com/amaumene/postarr/internal/models"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Controllers groups what the HTTP handlers delegate to
type Controllers struct {
	Search   *controllers.SearchController
	Gallery  *controllers.GalleryController
	Download *controllers.DownloadController
}

// Server represents the HTTP server
type Server struct {
	server *http.Server
	db     *models.Database
	ctrls  Controllers
	apiKey handlers.KeyFunc
	logger *logrus.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, db *models.Database, ctrls Controllers, apiKey handlers.KeyFunc, logger *logrus.Logger) *Server {
	s := &Server{
		db:     db,
		ctrls:  ctrls,
		apiKey: apiKey,
		logger: logger,
	}

	mux := http.NewServeMux()
	s.setupRoutes(mux, cfg)

	// downloads fetch originals from the CDN before answering
	writeTimeout := cfg.HTTPTimeout + 30*time.Second

	s.server = &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      middleware.Logging(mux, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler exposes the routed handler, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(mux *http.ServeMux, cfg *config.Config) {
	healthHandler := handlers.NewHealthHandler(s.logger)
	mux.HandleFunc("/health", healthHandler.ServeHTTP)

	statusHandler := handlers.NewStatusHandler(s.db, s.logger)
	mux.HandleFunc("/status", statusHandler.ServeHTTP)

	mux.Handle("/metrics", promhttp.Handler())

	searchHandler := handlers.NewSearchHandler(s.ctrls.Search, s.apiKey, s.logger)
	mux.HandleFunc("/api/search", searchHandler.ServeHTTP)

	imagesHandler := handlers.NewImagesHandler(s.ctrls.Gallery, s.apiKey, s.logger)
	mux.HandleFunc("/api/images", imagesHandler.ServeHTTP)
	mux.HandleFunc("/api/preview", imagesHandler.ServePreview)

	destination := models.DownloadDestination{
		Primary: cfg.DownloadPath,
		Backup:  cfg.DownloadPathBackup,
	}
	downloadHandler := handlers.NewDownloadHandler(s.ctrls.Download, destination, s.logger)
	mux.HandleFunc("/api/download", downloadHandler.ServeHTTP)
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	s.logger.WithField("port", s.server.Addr).Info("Starting HTTP server")

	errChan := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}
