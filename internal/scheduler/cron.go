package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// CleanupSpec runs the download log sweep daily at 03:00
const CleanupSpec = "0 3 * * *"

// LogPruner removes expired download log entries
type LogPruner interface {
	PruneDownloadLog(ctx context.Context) error
}

// Scheduler manages scheduled tasks
type Scheduler struct {
	cron    *cron.Cron
	cleanup LogPruner
	logger  *logrus.Logger
}

// NewScheduler creates a new scheduler
func NewScheduler(cleanup LogPruner, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		cleanup: cleanup,
		logger:  logger,
	}
}

// Start registers the jobs, starts the cron loop and runs one sweep
// immediately in the background
func (s *Scheduler) Start() error {
	s.logger.Info("Starting scheduler")

	if _, err := s.cron.AddFunc(CleanupSpec, s.runCleanup); err != nil {
		return fmt.Errorf("failed to add cleanup job: %w", err)
	}

	s.cron.Start()
	s.logger.WithField("jobs", len(s.cron.Entries())).Info("Scheduler started")

	go s.runCleanup()

	return nil
}

// Stop stops the scheduler and waits for a running job to finish
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	<-s.cron.Stop().Done()
}

// runCleanup executes the download log sweep
func (s *Scheduler) runCleanup() {
	s.logger.Info("Running scheduled download log cleanup")

	if err := s.cleanup.PruneDownloadLog(context.Background()); err != nil {
		s.logger.WithError(err).Error("Cleanup job failed")
		return
	}
	s.logger.Info("Cleanup job completed successfully")
}
