package controllers

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/amaumene/postarr/internal/imaging"
	"github.com/amaumene/postarr/internal/models"
	"github.com/amaumene/postarr/internal/notify"
	"github.com/amaumene/postarr/internal/observability"
	"github.com/amaumene/postarr/internal/storage"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	// ErrFetchFailed means the original image could not be downloaded
	ErrFetchFailed = errors.New("fetch failed")

	// ErrPartialReplication means the primary copy was written but the
	// backup was not; the download as a whole is a failure
	ErrPartialReplication = errors.New("backup replication failed")
)

// ImageFetcher downloads raw image bytes from the CDN
type ImageFetcher interface {
	FetchImage(ctx context.Context, path string, tier models.SizeTier) ([]byte, error)
}

// DownloadLog records download attempts
type DownloadLog interface {
	CreateDownload(record *models.DownloadRecord) error
}

// DownloadResult describes what a download wrote
type DownloadResult struct {
	PrimaryPath      string
	BackupPath       string
	BackupConfigured bool
	Bytes            int
	Status           models.DownloadStatus
}

// Success reports whether every configured destination was written
func (r DownloadResult) Success() bool {
	return r.Status == models.DownloadStatusCompleted
}

// DownloadController runs the artwork download pipeline
type DownloadController struct {
	fetcher   ImageFetcher
	writer    *storage.Writer
	downloads DownloadLog
	notifier  notify.NotificationSink
	openDir   func(root string) storage.DirectoryHandle
	tracer    trace.Tracer
	logger    *logrus.Logger
}

// NewDownloadController creates a new download controller
func NewDownloadController(fetcher ImageFetcher, writer *storage.Writer, downloads DownloadLog, notifier notify.NotificationSink, logger *logrus.Logger) *DownloadController {
	return &DownloadController{
		fetcher:   fetcher,
		writer:    writer,
		downloads: downloads,
		notifier:  notifier,
		openDir: func(root string) storage.DirectoryHandle {
			return storage.NewLocalDirectory(root)
		},
		tracer: observability.Tracer(),
		logger: logger,
	}
}

// Download fetches the original image, optionally mirrors it, and writes it
// under the primary destination and then, with the same bytes, under the
// backup. Nothing is retried. The result is a success only when every
// configured destination was written; a failed backup yields
// ErrPartialReplication even though the primary file stays on disk.
func (c *DownloadController) Download(ctx context.Context, req models.DownloadRequest, dest models.DownloadDestination) (DownloadResult, error) {
	start := time.Now()
	ctx, span := c.tracer.Start(ctx, "download", trace.WithAttributes(
		attribute.String("download.source", req.SourcePath),
		attribute.String("download.subfolder", req.Subfolder),
		attribute.Bool("download.flip", req.Flip),
		attribute.Bool("download.backup", dest.HasBackup()),
	))
	defer span.End()

	c.logger.WithFields(logrus.Fields{
		"source":    req.SourcePath,
		"subfolder": req.Subfolder,
		"filename":  req.Filename,
		"flip":      req.Flip,
	}).Info("Starting download")

	result := DownloadResult{
		BackupConfigured: dest.HasBackup(),
		Status:           models.DownloadStatusFailed,
	}
	err := c.run(ctx, req, dest, &result)
	switch {
	case err == nil:
		result.Status = models.DownloadStatusCompleted
	case errors.Is(err, ErrPartialReplication):
		result.Status = models.DownloadStatusPartial
	}

	observability.DownloadsTotal.WithLabelValues(string(result.Status)).Inc()
	observability.DownloadDuration.Observe(time.Since(start).Seconds())
	if result.PrimaryPath != "" {
		observability.DownloadBytesTotal.Add(float64(result.Bytes))
	}

	c.record(req, result, err)

	title := path.Join(req.Subfolder, req.Filename)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.WithError(err).WithFields(logrus.Fields{
			"source":  req.SourcePath,
			"primary": result.PrimaryPath,
			"status":  result.Status,
		}).Error("Download failed")
		c.notifier.Notify(notify.Event{Success: false, Title: title, Detail: err.Error()})
		return result, err
	}

	c.logger.WithFields(logrus.Fields{
		"primary": result.PrimaryPath,
		"backup":  result.BackupPath,
		"bytes":   result.Bytes,
	}).Info("Download completed")
	c.notifier.Notify(notify.Event{Success: true, Title: title, Detail: result.PrimaryPath})
	return result, nil
}

func (c *DownloadController) run(ctx context.Context, req models.DownloadRequest, dest models.DownloadDestination, result *DownloadResult) error {
	if strings.TrimSpace(req.SourcePath) == "" {
		return fmt.Errorf("%w: no source path", ErrFetchFailed)
	}
	if strings.TrimSpace(req.Filename) == "" {
		return fmt.Errorf("%w: no filename", storage.ErrWriteFailed)
	}

	data, err := c.fetcher.FetchImage(ctx, req.SourcePath, models.SizeOriginal)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	if req.Flip {
		// a failed flip must not fall back to the unflipped bytes
		data, err = imaging.FlipHorizontal(data)
		if err != nil {
			return err
		}
	}
	result.Bytes = len(data)

	primary, err := c.writer.WriteUnique(ctx, c.openDir(dest.Primary), req.Subfolder, req.Filename, data)
	if err != nil {
		return fmt.Errorf("primary: %w", err)
	}
	result.PrimaryPath = primary

	if !dest.HasBackup() {
		return nil
	}

	backup, err := c.writer.WriteUnique(ctx, c.openDir(dest.Backup), req.Subfolder, req.Filename, data)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPartialReplication, err)
	}
	result.BackupPath = backup
	return nil
}

func (c *DownloadController) record(req models.DownloadRequest, result DownloadResult, err error) {
	if c.downloads == nil {
		return
	}

	entry := &models.DownloadRecord{
		SourcePath:  req.SourcePath,
		Subfolder:   req.Subfolder,
		Filename:    req.Filename,
		Flip:        req.Flip,
		PrimaryPath: result.PrimaryPath,
		BackupPath:  result.BackupPath,
		Status:      result.Status,
		Bytes:       result.Bytes,
	}
	if err != nil {
		entry.FailureReason = err.Error()
	}

	if err := c.downloads.CreateDownload(entry); err != nil {
		c.logger.WithError(err).Warn("Failed to record download")
	}
}
