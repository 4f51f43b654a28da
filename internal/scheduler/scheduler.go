// Package scheduler runs the periodic maintenance jobs on cron specs.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"tcw1/internal/logger"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

const (
	JobMembershipRenewal = "membership-renewal"
	JobListingExpiry     = "listing-expiry"
	JobApprovalExpiry    = "approval-expiry"

	jobTimeout = 5 * time.Minute
)

var ErrUnknownJob = errors.New("unknown job")

// Job is a named unit of work run on a cron spec.
type Job struct {
	Name string
	Spec string
	Run  func(ctx context.Context) error
}

type MetricsCollector interface {
	RecordJobRun(job, result string)
}

type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordJobRun(string, string) {}

type Scheduler struct {
	cron    *cron.Cron
	metrics MetricsCollector

	mu   sync.Mutex
	jobs map[string]Job
}

func New(metrics MetricsCollector) *Scheduler {
	if metrics == nil {
		metrics = NoopMetricsCollector{}
	}
	log := cronLogger{}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(log),
			cron.WithChain(cron.Recover(log), cron.SkipIfStillRunning(log)),
		),
		metrics: metrics,
		jobs:    make(map[string]Job),
	}
}

// Add registers a job. An empty spec registers it for RunOnce only.
func (s *Scheduler) Add(job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[job.Name]; exists {
		return fmt.Errorf("job %q already registered", job.Name)
	}
	if job.Spec != "" {
		if _, err := s.cron.AddFunc(job.Spec, func() { _ = s.run(context.Background(), job) }); err != nil {
			return fmt.Errorf("schedule %s: %w", job.Name, err)
		}
	}
	s.jobs[job.Name] = job
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	logger.Log.Infow("⏰ Scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop waits for running jobs to finish or for ctx to end.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunOnce runs a registered job immediately.
func (s *Scheduler) RunOnce(ctx context.Context, name string) error {
	s.mu.Lock()
	job, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	return s.run(ctx, job)
}

func (s *Scheduler) run(ctx context.Context, job Job) error {
	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	runID := uuid.NewString()
	start := time.Now()
	err := job.Run(ctx)
	if err != nil {
		s.metrics.RecordJobRun(job.Name, "error")
		logger.Log.Errorw("Job failed", "job", job.Name, "run_id", runID, "error", err)
		return err
	}
	s.metrics.RecordJobRun(job.Name, "success")
	logger.Log.Debugw("Job finished", "job", job.Name, "run_id", runID, "took", time.Since(start))
	return nil
}

// cronLogger routes cron's internal logging to zap.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Log.Debugw(msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Log.Errorw(msg, append(keysAndValues, "error", err)...)
}
