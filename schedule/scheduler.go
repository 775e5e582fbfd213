// Package schedule triggers probe cycles on a fixed interval.
//
// The scheduler runs one job: a cycle that probes every registered
// endpoint. A cycle that overruns its interval is never overlapped by the
// next tick; the tick is skipped and logged. An optional eager run fires
// the job once at startup without waiting for the first tick.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jonwraymond/probeops/observe"
)

// DefaultInterval is the probe cycle interval.
const DefaultInterval = 30 * time.Minute

// Sentinel errors for scheduler lifecycle.
var (
	ErrAlreadyStarted = errors.New("schedule: scheduler already started")
	ErrNotStarted     = errors.New("schedule: scheduler not started")
)

// Job is the work triggered on every tick. The context is canceled when
// the scheduler stops.
type Job func(ctx context.Context)

// Config configures the scheduler.
type Config struct {
	// Interval between job runs.
	// Default: 30 minutes
	Interval time.Duration

	// Spec is an optional cron expression (standard five-field syntax or
	// @every syntax) that overrides Interval when set.
	Spec string

	// Eager runs the job once at Start, before the first tick.
	Eager bool

	// Logger receives scheduler logs. If nil, logging is disabled.
	Logger observe.Logger
}

// Scheduler runs a job on a fixed schedule with overlap protection.
type Scheduler struct {
	cron  *cron.Cron
	job   cron.Job
	eager bool

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	started bool
	eagerWG sync.WaitGroup
}

// New creates a scheduler for the given job. Spec errors are reported at
// construction, not first tick.
func New(job Job, config Config) (*Scheduler, error) {
	if job == nil {
		return nil, errors.New("schedule: job is required")
	}
	if config.Interval <= 0 {
		config.Interval = DefaultInterval
	}
	if config.Logger == nil {
		config.Logger = observe.NopLogger()
	}

	var sched cron.Schedule
	if config.Spec != "" {
		parsed, err := cron.ParseStandard(config.Spec)
		if err != nil {
			return nil, fmt.Errorf("schedule: parsing spec %q: %w", config.Spec, err)
		}
		sched = parsed
	} else {
		sched = cron.Every(config.Interval)
	}

	s := &Scheduler{eager: config.Eager}

	// SkipIfStillRunning drops ticks while a cycle is in flight; an
	// overrunning cycle must finish before the next one starts
	cronLog := cronLogger{logger: config.Logger}
	s.job = cron.NewChain(cron.SkipIfStillRunning(cronLog)).Then(cron.FuncJob(func() {
		s.mu.Lock()
		ctx := s.ctx
		s.mu.Unlock()
		if ctx == nil || ctx.Err() != nil {
			return
		}
		job(ctx)
	}))

	s.cron = cron.New(cron.WithLogger(cronLog))
	s.cron.Schedule(sched, s.job)
	return s, nil
}

// Start begins scheduling. When Eager is set, the job also runs once
// immediately in the background, sharing the overlap guard with scheduled
// ticks.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return ErrAlreadyStarted
	}
	s.started = true
	s.ctx, s.cancel = context.WithCancel(context.Background())

	if s.eager {
		s.eagerWG.Add(1)
		go func() {
			defer s.eagerWG.Done()
			s.job.Run()
		}()
	}

	s.cron.Start()
	return nil
}

// Stop cancels the job context, stops scheduling and waits for any
// in-flight run to finish, bounded by ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return ErrNotStarted
	}
	s.started = false
	cancel := s.cancel
	s.mu.Unlock()

	cancel()
	stopped := s.cron.Stop()

	done := make(chan struct{})
	go func() {
		<-stopped.Done()
		s.eagerWG.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger adapts observe.Logger to the cron logging interface.
type cronLogger struct {
	logger observe.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(context.Background(), msg, kvFields(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	fields := append(kvFields(keysAndValues), observe.Field{Key: "error", Value: err.Error()})
	l.logger.Error(context.Background(), msg, fields...)
}

func kvFields(keysAndValues []interface{}) []observe.Field {
	fields := make([]observe.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields = append(fields, observe.Field{
			Key:   fmt.Sprint(keysAndValues[i]),
			Value: keysAndValues[i+1],
		})
	}
	return fields
}
