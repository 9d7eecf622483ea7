// Package schedule runs pipelines and maintenance jobs on cron schedules.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dukex/cognipipe/pkg/events"
	"github.com/dukex/cognipipe/pkg/hclpipeline"
	"github.com/dukex/cognipipe/pkg/models"
	"github.com/dukex/cognipipe/pkg/pipeline"
)

var (
	ErrNoSchedule      = errors.New("pipeline has no schedule")
	ErrInvalidSchedule = errors.New("invalid cron expression")
	ErrDuplicateJob    = errors.New("job already scheduled")
)

// Runner executes a pipeline request. *pipeline.Executor implements it.
type Runner interface {
	Run(ctx context.Context, meta pipeline.Metadata, req models.PipelineRequest) (*pipeline.Outcome, error)
}

// JobFunc is scheduled work. Errors are logged, the job keeps its schedule.
type JobFunc func(ctx context.Context) error

// Scheduler owns one cron instance. A job never overlaps with its previous
// run and a panicking job does not stop the others.
type Scheduler struct {
	runner Runner
	logger *slog.Logger
	cron   *cron.Cron
	jobs   map[string]cron.EntryID
	mutex  sync.RWMutex
	ctx    context.Context
	cancel context.CancelFunc
}

func NewScheduler(runner Runner, logger *slog.Logger) *Scheduler {
	logger = logger.With("module", "scheduler")
	cronLog := cronLogger{logger}

	return &Scheduler{
		runner: runner,
		logger: logger,
		cron: cron.New(cron.WithLogger(cronLog), cron.WithChain(
			cron.SkipIfStillRunning(cronLog),
			cron.Recover(cronLog),
		)),
		jobs: make(map[string]cron.EntryID),
		ctx:  context.Background(),
	}
}

// AddPipeline schedules p on its own cron spec.
func (s *Scheduler) AddPipeline(p *hclpipeline.Pipeline) error {
	if p.Schedule == "" {
		return fmt.Errorf("%w: %s", ErrNoSchedule, p.Name)
	}

	meta := pipeline.Metadata{Pipeline: p.Name, Source: events.SourceSchedule}

	return s.AddFunc(p.Name, p.Schedule, func(ctx context.Context) error {
		outcome, err := s.runner.Run(ctx, meta, p.Request)
		if err != nil {
			return err
		}

		s.logger.InfoContext(ctx, "Scheduled pipeline completed", "pipeline", p.Name, "run_id", outcome.RunID)

		return nil
	})
}

// AddFunc schedules fn under name. spec is a standard five field cron
// expression or a descriptor such as "@hourly" or "@every 10m".
func (s *Scheduler) AddFunc(name, spec string, fn JobFunc) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("%w %q for %s: %w", ErrInvalidSchedule, spec, name, err)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.jobs[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateJob, name)
	}

	logger := s.logger.With("job", name)

	entryID, err := s.cron.AddFunc(spec, func() {
		ctx := s.context()
		started := time.Now()

		if err := fn(ctx); err != nil {
			logger.ErrorContext(ctx, "Scheduled job failed", "error", err, "duration", time.Since(started))

			return
		}

		logger.DebugContext(ctx, "Scheduled job finished", "duration", time.Since(started))
	})
	if err != nil {
		return fmt.Errorf("failed to add cron job %s: %w", name, err)
	}

	s.jobs[name] = entryID
	logger.Info("Added cron job", "cron", spec, "entry_id", entryID)

	return nil
}

// Jobs returns the scheduled job names in lexical order.
func (s *Scheduler) Jobs() []string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// Next returns the next activation time of job name.
func (s *Scheduler) Next(name string) (time.Time, bool) {
	s.mutex.RLock()
	id, ok := s.jobs[name]
	s.mutex.RUnlock()

	if !ok {
		return time.Time{}, false
	}

	return s.cron.Entry(id).Next, true
}

// Start begins running jobs. Jobs receive a context derived from ctx that is
// cancelled by Stop.
func (s *Scheduler) Start(ctx context.Context) {
	s.mutex.Lock()
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mutex.Unlock()

	s.logger.Info("Starting scheduler", "jobs", len(s.Jobs()))
	s.cron.Start()
}

// Stop halts the scheduler and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.logger.Info("Stopping scheduler")

	s.mutex.RLock()
	cancel := s.cancel
	s.mutex.RUnlock()

	if cancel != nil {
		cancel()
	}

	select {
	case <-s.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) context() context.Context {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.ctx
}

// cronLogger routes cron's own logging through slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
