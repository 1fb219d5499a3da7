package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/amaumene/postarr/internal/config"
	"github.com/amaumene/postarr/internal/controllers"
	"github.com/amaumene/postarr/internal/credentials"
	"github.com/amaumene/postarr/internal/models"
	"github.com/amaumene/postarr/internal/notify"
	"github.com/amaumene/postarr/internal/observability"
	"github.com/amaumene/postarr/internal/services/tmdb"
	"github.com/amaumene/postarr/internal/storage"
	"github.com/amaumene/postarr/internal/utils"
	"github.com/sirupsen/logrus"
)

// app holds everything a command needs, built once per invocation
type app struct {
	cfg       *config.Config
	logger    *logrus.Logger
	out       io.Writer
	creds     credentials.Store
	clipboard notify.ClipboardSink

	db       *models.Database
	client   *tmdb.Client
	search   *controllers.SearchController
	gallery  *controllers.GalleryController
	download *controllers.DownloadController
	cleanup  *controllers.CleanupController

	stopTracing observability.Shutdown
}

// newApp loads configuration and sets up logging and the credential store
func newApp(out io.Writer) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := utils.NewLogger(cfg.LogLevel)
	logger.WithField("config_dir", filepath.Dir(cfg.DatabaseFile)).Debug("Configuration loaded")

	return &app{
		cfg:       cfg,
		logger:    logger,
		out:       out,
		creds:     credentials.NewFileStore(cfg.CredentialsFile),
		clipboard: notify.NewWriterClipboard(out),
	}, nil
}

// open initializes tracing, the database, the TMDB client and controllers
func (a *app) open(ctx context.Context) error {
	stop, err := observability.SetupTracing(ctx, a.cfg.OTLPEndpoint, a.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	a.stopTracing = stop

	db, err := models.NewDatabase(a.cfg.DatabaseFile)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	a.db = db
	a.logger.Debug("Database initialized")

	client, err := tmdb.NewClient(a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize TMDB client: %w", err)
	}
	a.client = client

	a.search = controllers.NewSearchController(client, db, a.cfg.MaxHistoryItems, a.logger)
	a.gallery = controllers.NewGalleryController(client, a.cfg.Languages, a.logger)
	a.download = controllers.NewDownloadController(client, storage.NewWriter(a.logger), db, notify.NewLogNotifier(a.logger), a.logger)
	a.cleanup = controllers.NewCleanupController(db, a.cfg.DownloadRetentionDays, a.logger)
	a.logger.Debug("Controllers initialized")

	return nil
}

// close releases what open acquired
func (a *app) close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.WithError(err).Warn("Failed to close database")
		}
	}
	if a.stopTracing != nil {
		if err := a.stopTracing(context.Background()); err != nil {
			a.logger.WithError(err).Warn("Failed to flush traces")
		}
	}
}

// apiKey resolves the TMDB key from the environment or the credential store
func (a *app) apiKey() (string, error) {
	key, err := credentials.Resolve(a.creds)
	if err != nil {
		return "", fmt.Errorf("%w: set %s or run 'postarr key set'", controllers.ErrMissingAPIKey, credentials.EnvAPIKey)
	}
	return key, nil
}

func (a *app) destination() models.DownloadDestination {
	return models.DownloadDestination{
		Primary: a.cfg.DownloadPath,
		Backup:  a.cfg.DownloadPathBackup,
	}
}
