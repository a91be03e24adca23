package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"PairFeed/internal/model"
	"PairFeed/internal/notifier"
)

// Job is one pipeline pass.
type Job interface {
	Run(ctx context.Context) (*model.RunSummary, error)
}

// Scheduler runs a Job on a cron schedule and answers chat commands about it.
type Scheduler struct {
	Cron *cron.Cron
	Job  Job
	Ctx  context.Context

	running atomic.Bool

	mu   sync.Mutex
	last *model.RunSummary

	logger zerolog.Logger
}

// NewScheduler creates a Scheduler with second-resolution cron specs.
// Only one run is active at a time, whether started by cron, RunNow or /run.
func NewScheduler(ctx context.Context, job Job, logger zerolog.Logger) *Scheduler {
	l := logger.With().Str("component", "scheduler").Logger()
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cronLogger{l})),
		),
		Job:    job,
		Ctx:    ctx,
		logger: l,
	}
}

// Register schedules the job under spec.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, func() { s.RunNow() }); err != nil {
		return fmt.Errorf("register run task %q: %w", spec, err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.logger.Info().Int("entries", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.logger.Info().Msg("scheduler stopped")
}

// RunNow executes the job immediately and remembers its summary.
// It returns nil without running when another run is in progress.
func (s *Scheduler) RunNow() *model.RunSummary {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Warn().Msg("run already in progress, skipping")
		return nil
	}
	return s.run()
}

// run executes the job and releases the running flag.
func (s *Scheduler) run() *model.RunSummary {
	defer s.running.Store(false)

	s.logger.Info().Msg("running pipeline")
	sum, err := s.Job.Run(s.Ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("pipeline run failed")
	}
	if sum != nil {
		s.mu.Lock()
		s.last = sum
		s.mu.Unlock()
	}
	return sum
}

// Last returns the summary of the most recent run, or nil.
func (s *Scheduler) Last() *model.RunSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	switch command {
	case "/run":
		if !s.running.CompareAndSwap(false, true) {
			return "⏳ run already in progress"
		}
		// The job reports its own summary.
		go s.run()
		return "⏳ run started"
	case "/status":
		last := s.Last()
		if last == nil {
			return "no run yet"
		}
		return notifier.FormatRunReport(last)
	default:
		return "Available commands:\n• /run\n• /status"
	}
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct{ l zerolog.Logger }

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug().Fields(keysAndValues).Msg(msg)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
