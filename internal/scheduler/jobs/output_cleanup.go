package jobs

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"stocklens/pkg/logger"
)

// OutputCleanupJob prunes exported run directories past their retention.
type OutputCleanupJob struct {
	outDir string
	maxAge time.Duration
	logger *logger.Logger
}

// NewOutputCleanupJob creates a new output cleanup job
func NewOutputCleanupJob(outDir string, maxAge time.Duration, log *logger.Logger) *OutputCleanupJob {
	return &OutputCleanupJob{
		outDir: outDir,
		maxAge: maxAge,
		logger: log,
	}
}

// Name returns the job name
func (j *OutputCleanupJob) Name() string {
	return "output_cleanup"
}

// Schedule returns the cron schedule (daily at 03:00)
func (j *OutputCleanupJob) Schedule() string {
	return "0 0 3 * * *"
}

// Run removes run directories older than the retention window
func (j *OutputCleanupJob) Run(ctx context.Context) error {
	entries, err := os.ReadDir(j.outDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	cutoff := time.Now().Add(-j.maxAge)
	removed := 0

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(j.outDir, entry.Name())); err != nil {
			j.logger.WithError(err).WithField("dir", entry.Name()).Warn("Failed to remove run directory")
			continue
		}
		removed++
	}

	if removed > 0 {
		j.logger.WithField("removed", removed).Info("Output cleanup completed")
	}

	return nil
}
