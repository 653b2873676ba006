package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"stocklens/internal/report"
	"stocklens/internal/scheduler"
	"stocklens/internal/scheduler/jobs"
)

// scheduleCmd represents the schedule command
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Start the batch scheduler",
	Long: `Starts the cron scheduler daemon.

Registered jobs:
  daily_batch    - post-close pipeline run for SCHEDULE_SYMBOLS
  output_cleanup - prunes exported runs past retention (daily 03:00)

Example:
  SCHEDULE_ENABLED=true SCHEDULE_SYMBOLS=00700.HK,600519 go run ./cmd/stocklens schedule`,
	RunE: runScheduler,
}

var retentionDays int

func init() {
	rootCmd.AddCommand(scheduleCmd)

	scheduleCmd.Flags().IntVar(&retentionDays, "retention-days", 30, "days to keep exported runs")
}

func runScheduler(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	if !rt.cfg.Schedule.Enabled {
		return fmt.Errorf("scheduler disabled; set SCHEDULE_ENABLED=true")
	}

	orch := rt.orchestrator(nil)
	exporter := report.NewExporter(rt.cfg.Pipeline.OutputDir, rt.log)

	sched := scheduler.New(rt.log)

	batchJob := jobs.NewDailyBatchJob(orch, exporter, rt.cfg, rt.log)
	if err := sched.AddJob(batchJob); err != nil {
		return fmt.Errorf("register %s: %w", batchJob.Name(), err)
	}

	cleanupJob := jobs.NewOutputCleanupJob(rt.cfg.Pipeline.OutputDir, time.Duration(retentionDays)*24*time.Hour, rt.log)
	if err := sched.AddJob(cleanupJob); err != nil {
		return fmt.Errorf("register %s: %w", cleanupJob.Name(), err)
	}

	sched.Start()
	defer sched.Stop()

	fmt.Println("Scheduler running:")
	for _, name := range sched.GetAllJobs() {
		next, err := sched.NextRun(name)
		if err != nil {
			continue
		}
		fmt.Printf("  %-16s next run %s\n", name, next.Format(time.RFC3339))
	}
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	return nil
}
