package controllers

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// DownloadPruner removes old download log entries
type DownloadPruner interface {
	DeleteDownloadsBefore(cutoff time.Time) (int, error)
}

// CleanupController prunes the download log
type CleanupController struct {
	downloads     DownloadPruner
	retentionDays int
	now           func() time.Time
	logger        *logrus.Logger
}

// NewCleanupController creates a new cleanup controller
func NewCleanupController(downloads DownloadPruner, retentionDays int, logger *logrus.Logger) *CleanupController {
	return &CleanupController{
		downloads:     downloads,
		retentionDays: retentionDays,
		now:           time.Now,
		logger:        logger,
	}
}

// PruneDownloadLog deletes log entries older than the retention window
func (c *CleanupController) PruneDownloadLog(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cutoff := c.now().AddDate(0, 0, -c.retentionDays)
	c.logger.WithField("cutoff", cutoff.Format(time.RFC3339)).Info("Starting download log cleanup")

	removed, err := c.downloads.DeleteDownloadsBefore(cutoff)
	if err != nil {
		return fmt.Errorf("failed to prune download log: %w", err)
	}

	c.logger.WithField("removed", removed).Info("Download log cleanup completed")
	return nil
}
