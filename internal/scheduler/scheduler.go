package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"stocklens/pkg/logger"
)

// registration ties a job to its cron entry so removal actually
// unschedules it.
type registration struct {
	job     Job
	entry   cron.EntryID
	history *JobHistory
}

// Scheduler runs the post-close batch jobs on their cron schedules and
// keeps a bounded execution history per job.
type Scheduler struct {
	cron   *cron.Cron
	logger *logger.Logger

	mu   sync.RWMutex
	regs map[string]*registration
	done chan struct{}

	retryAttempts int
	retryDelay    time.Duration
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithRetryPolicy sets how many times a failed job is retried and the
// wait between attempts. A daily batch that misses its window is better
// retried a few minutes later than skipped until the next close.
func WithRetryPolicy(attempts int, delay time.Duration) Option {
	return func(s *Scheduler) {
		s.retryAttempts = attempts
		s.retryDelay = delay
	}
}

// New creates a scheduler. Schedules use the 6-field form with seconds.
func New(log *logger.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		cron:          cron.New(cron.WithSeconds()),
		logger:        log,
		regs:          make(map[string]*registration),
		done:          make(chan struct{}),
		retryAttempts: 3,
		retryDelay:    1 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddJob registers a job under its cron schedule. Job names are unique.
func (s *Scheduler) AddJob(job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := job.Name()
	if _, exists := s.regs[name]; exists {
		return fmt.Errorf("job %s already exists", name)
	}

	entry, err := s.cron.AddFunc(job.Schedule(), func() {
		s.runJob(job)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", name, err)
	}

	s.regs[name] = &registration{job: job, entry: entry, history: &JobHistory{}}

	s.logger.WithFields(map[string]interface{}{
		"job":      name,
		"schedule": job.Schedule(),
	}).Info("Job registered")

	return nil
}

// RemoveJob unschedules a job and drops its registration.
func (s *Scheduler) RemoveJob(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reg, exists := s.regs[name]
	if !exists {
		return fmt.Errorf("job %s not found", name)
	}

	s.cron.Remove(reg.entry)
	delete(s.regs, name)
	s.logger.WithField("job", name).Info("Job removed")

	return nil
}

// Start begins firing jobs on their schedules.
func (s *Scheduler) Start() {
	s.logger.Info("Starting scheduler")
	s.cron.Start()
}

// Stop halts the cron loop, waits for running jobs, and aborts any
// pending retry waits.
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	close(s.done)
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Scheduler stopped")
}

// RunJob fires a registered job immediately, off-schedule.
func (s *Scheduler) RunJob(name string) error {
	s.mu.RLock()
	reg, exists := s.regs[name]
	s.mu.RUnlock()

	if !exists {
		return fmt.Errorf("job %s not found", name)
	}

	go s.runJob(reg.job)
	return nil
}

// NextRun reports when a job will next fire. The zero time means the
// scheduler has not been started yet.
func (s *Scheduler) NextRun(name string) (time.Time, error) {
	s.mu.RLock()
	reg, exists := s.regs[name]
	s.mu.RUnlock()

	if !exists {
		return time.Time{}, fmt.Errorf("job %s not found", name)
	}

	return s.cron.Entry(reg.entry).Next, nil
}

// runJob executes a job, retrying failures per the retry policy, and
// records the outcome.
func (s *Scheduler) runJob(job Job) {
	name := job.Name()
	start := time.Now()

	s.logger.WithField("job", name).Info("Job started")

	var lastErr error
	success := false

	for attempt := 0; attempt <= s.retryAttempts; attempt++ {
		if err := job.Run(context.Background()); err == nil {
			success = true
			break
		} else {
			lastErr = err
		}

		s.logger.WithFields(map[string]interface{}{
			"job":     name,
			"attempt": attempt + 1,
			"error":   lastErr.Error(),
		}).Warn("Job execution failed")

		if attempt == s.retryAttempts {
			break
		}
		select {
		case <-time.After(s.retryDelay):
		case <-s.done:
			s.record(name, JobResult{
				JobName:   name,
				StartTime: start,
				EndTime:   time.Now(),
				Duration:  time.Since(start),
				Success:   false,
				Error:     lastErr.Error(),
			})
			return
		}
	}

	end := time.Now()
	result := JobResult{
		JobName:   name,
		StartTime: start,
		EndTime:   end,
		Duration:  end.Sub(start),
		Success:   success,
	}
	if !success {
		result.Error = lastErr.Error()
	}
	s.record(name, result)

	if success {
		s.logger.WithFields(map[string]interface{}{
			"job":      name,
			"duration": result.Duration,
		}).Info("Job completed")
	} else {
		s.logger.WithFields(map[string]interface{}{
			"job":      name,
			"duration": result.Duration,
			"error":    result.Error,
		}).Error("Job failed after all retries")
	}
}

func (s *Scheduler) record(name string, result JobResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if reg, exists := s.regs[name]; exists {
		reg.history.AddResult(result)
	}
}

// GetJobHistory returns the bounded execution history for a job.
func (s *Scheduler) GetJobHistory(name string) (*JobHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reg, exists := s.regs[name]
	if !exists {
		return nil, fmt.Errorf("job %s not found", name)
	}
	return reg.history, nil
}

// GetAllJobs returns the registered job names, sorted.
func (s *Scheduler) GetAllJobs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.regs))
	for name := range s.regs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// JobStats summarizes a job's execution record.
type JobStats struct {
	JobName      string     `json:"job_name"`
	Schedule     string     `json:"schedule"`
	TotalRuns    int        `json:"total_runs"`
	SuccessCount int        `json:"success_count"`
	FailureCount int        `json:"failure_count"`
	SuccessRate  float64    `json:"success_rate"`
	LastRun      *time.Time `json:"last_run,omitempty"`
	LastSuccess  *time.Time `json:"last_success,omitempty"`
	LastFailure  *time.Time `json:"last_failure,omitempty"`
}

// GetJobStats returns per-job execution statistics.
func (s *Scheduler) GetJobStats() map[string]JobStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := make(map[string]JobStats, len(s.regs))
	for name, reg := range s.regs {
		failed := reg.history.GetFailedResults()

		st := JobStats{
			JobName:      name,
			Schedule:     reg.job.Schedule(),
			TotalRuns:    len(reg.history.Results),
			SuccessCount: len(reg.history.Results) - len(failed),
			FailureCount: len(failed),
			SuccessRate:  reg.history.GetSuccessRate(),
		}

		if latest := reg.history.GetLatestResults(1); len(latest) > 0 {
			last := latest[0]
			st.LastRun = &last.StartTime
			if last.Success {
				st.LastSuccess = &last.StartTime
			} else {
				st.LastFailure = &last.StartTime
			}
		}

		stats[name] = st
	}
	return stats
}
