// Package scheduler runs named jobs on cron specs. A job whose previous run
// has not finished is skipped, never queued.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// specParser accepts five-field specs and descriptors such as @hourly or
// @every 5m.
var specParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// ParseSpec validates a cron spec and returns its schedule.
func ParseSpec(spec string) (cron.Schedule, error) {
	s, err := specParser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return s, nil
}

// Job is invoked with the scheduler's context, bounded by Timeout when set.
type Job func(ctx context.Context)

type Scheduler struct {
	Logger  *zap.Logger
	Timeout time.Duration

	mu      sync.Mutex
	entries []entry
	loc     *time.Location
}

type entry struct {
	name      string
	spec      string
	immediate bool
	job       Job
}

func New(logger *zap.Logger, loc *time.Location, timeout time.Duration) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{Logger: logger, Timeout: timeout, loc: loc}
}

// Add registers job under spec. When immediate is set the job also runs once
// as soon as Run starts.
func (s *Scheduler) Add(name, spec string, immediate bool, job Job) error {
	if _, err := ParseSpec(spec); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry{name: name, spec: spec, immediate: immediate, job: job})
	return nil
}

// Run blocks until ctx is cancelled, then waits for running jobs to return.
func (s *Scheduler) Run(ctx context.Context) error {
	s.mu.Lock()
	entries := append([]entry(nil), s.entries...)
	s.mu.Unlock()

	if len(entries) == 0 {
		s.Logger.Info("scheduler_disabled")
		return nil
	}

	clog := cronLogger{s.Logger}
	c := cron.New(
		cron.WithLocation(s.loc),
		cron.WithParser(specParser),
		cron.WithLogger(clog),
		cron.WithChain(cron.Recover(clog)),
	)

	var immediate sync.WaitGroup
	for _, e := range entries {
		// one guard per entry so the immediate pass and ticks share it
		wrapped := cron.NewChain(cron.SkipIfStillRunning(clog)).Then(s.wrap(ctx, e))
		if _, err := c.AddJob(e.spec, wrapped); err != nil {
			return fmt.Errorf("schedule %s: %w", e.name, err)
		}
		s.Logger.Info("job_scheduled", zap.String("job", e.name), zap.String("spec", e.spec))
		if e.immediate {
			immediate.Add(1)
			go func() {
				defer immediate.Done()
				wrapped.Run()
			}()
		}
	}

	c.Start()
	<-ctx.Done()
	s.Logger.Info("scheduler_stopping")
	<-c.Stop().Done()
	immediate.Wait()
	s.Logger.Info("scheduler_stopped")
	return nil
}

func (s *Scheduler) wrap(ctx context.Context, e entry) cron.Job {
	return cron.FuncJob(func() {
		if ctx.Err() != nil {
			return
		}
		jctx := ctx
		if s.Timeout > 0 {
			var cancel context.CancelFunc
			jctx, cancel = context.WithTimeout(ctx, s.Timeout)
			defer cancel()
		}
		start := time.Now()
		e.job(jctx)
		s.Logger.Debug("job_finished",
			zap.String("job", e.name),
			zap.Duration("took", time.Since(start)),
		)
	})
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct{ l *zap.Logger }

func (c cronLogger) Info(msg string, kv ...interface{}) {
	c.l.Debug("cron_"+msg, zap.Any("kv", kv))
}

func (c cronLogger) Error(err error, msg string, kv ...interface{}) {
	c.l.Warn("cron_"+msg, zap.Error(err), zap.Any("kv", kv))
}
