package jobs

import (
	"context"
	"fmt"
	"time"

	"stocklens/internal/pipeline"
	"stocklens/internal/report"
	"stocklens/pkg/config"
	"stocklens/pkg/logger"
)

// DailyBatchJob runs the indicator pipeline for the configured symbols
// after market close and exports the results.
type DailyBatchJob struct {
	orchestrator *pipeline.Orchestrator
	exporter     *report.Exporter
	config       *config.Config
	logger       *logger.Logger
}

// NewDailyBatchJob creates a new daily batch job
func NewDailyBatchJob(orch *pipeline.Orchestrator, exp *report.Exporter, cfg *config.Config, log *logger.Logger) *DailyBatchJob {
	return &DailyBatchJob{
		orchestrator: orch,
		exporter:     exp,
		config:       cfg,
		logger:       log,
	}
}

// Name returns the job name
func (j *DailyBatchJob) Name() string {
	return "daily_batch"
}

// Schedule returns the cron schedule. The configured spec is
// minute-resolution; the scheduler runs with seconds enabled.
func (j *DailyBatchJob) Schedule() string {
	return "0 " + j.config.Schedule.DailyCron
}

// Run executes the batch for the configured symbols
func (j *DailyBatchJob) Run(ctx context.Context) error {
	symbols := j.config.Schedule.Symbols
	if len(symbols) == 0 {
		j.logger.Warn("Daily batch skipped: no symbols configured")
		return nil
	}

	j.logger.WithField("symbols", len(symbols)).Info("Starting scheduled daily batch")

	// 18 months of calendar history covers the longest default windows
	to := time.Now()
	from := to.AddDate(0, -18, 0)

	batch, err := j.orchestrator.Run(ctx, symbols, from, to)
	if err != nil {
		return fmt.Errorf("run batch: %w", err)
	}

	paths, err := j.exporter.Export(batch)
	if err != nil {
		return fmt.Errorf("export batch %s: %w", batch.RunID, err)
	}

	j.logger.WithFields(map[string]interface{}{
		"run_id":    batch.RunID,
		"succeeded": batch.Succeeded,
		"failed":    batch.Failed,
		"files":     len(paths),
	}).Info("Scheduled daily batch completed")

	return nil
}
