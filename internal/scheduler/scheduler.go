package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"StockCast/pkg/config"
	applogger "StockCast/pkg/logger"

	"github.com/robfig/cron/v3"
)

// Job is a unit of scheduled work. Run must report its own failures.
type Job interface {
	Run(ctx context.Context)
}

// JobFunc adapts a function to Job.
type JobFunc func(ctx context.Context)

func (f JobFunc) Run(ctx context.Context) { f(ctx) }

// Scheduler triggers a job once a day at a fixed local wall-clock time.
type Scheduler struct {
	cron *cron.Cron
	job  Job
	l    *applogger.Logger

	spec       string
	entry      cron.EntryID
	loc        *time.Location
	runOnStart bool

	mu      sync.Mutex
	ctx     context.Context
	started sync.WaitGroup
}

type Option func(*Scheduler)

// WithLocation evaluates the trigger time in loc instead of time.Local.
func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) { s.loc = loc }
}

// WithRunOnStart runs the job once as soon as Start is called.
func WithRunOnStart(enabled bool) Option {
	return func(s *Scheduler) { s.runOnStart = enabled }
}

// New builds a daily scheduler firing at clock ("HH:MM").
func New(clock string, job Job, l *applogger.Logger, opts ...Option) (*Scheduler, error) {
	hour, minute, err := config.ParseClock(clock)
	if err != nil {
		return nil, err
	}
	if l == nil {
		l = applogger.Nop()
	}

	s := &Scheduler{
		job:  job,
		l:    l,
		spec: DailySpec(hour, minute),
		ctx:  context.Background(),
		loc:  time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.cron = newCron(s.loc, l)
	s.entry, err = s.cron.AddFunc(s.spec, s.fire)
	if err != nil {
		return nil, fmt.Errorf("register daily job: %w", err)
	}
	return s, nil
}

func newCron(loc *time.Location, l *applogger.Logger) *cron.Cron {
	cl := cronLogger{l: l}
	return cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
}

// DailySpec is the five-field cron expression for hour:minute every day.
func DailySpec(hour, minute int) string {
	return fmt.Sprintf("%d %d * * *", minute, hour)
}

// Spec returns the registered cron expression.
func (s *Scheduler) Spec() string { return s.spec }

// Next reports when the job fires next. Zero before Start.
func (s *Scheduler) Next() time.Time {
	return s.cron.Entry(s.entry).Next
}

// Start begins triggering. ctx is handed to each run with its cancellation
// detached, so Stop can let an in-flight run finish.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx = context.WithoutCancel(ctx)
	s.mu.Unlock()

	s.cron.Start()
	s.l.Info("scheduler started",
		applogger.String("spec", s.spec),
		applogger.String("next", s.Next().Format(time.RFC3339)),
	)

	if s.runOnStart {
		s.l.Info("running job on start")
		// same chain as triggered runs: recovered and never overlapping
		job := s.cron.Entry(s.entry).WrappedJob
		s.started.Add(1)
		go func() {
			defer s.started.Done()
			job.Run()
		}()
	}
}

// Stop halts new triggers and waits for a running job, or until ctx ends.
func (s *Scheduler) Stop(ctx context.Context) error {
	cronDone := s.cron.Stop()
	done := make(chan struct{})
	go func() {
		<-cronDone.Done()
		s.started.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.l.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler stop: %w", ctx.Err())
	}
}

// Run starts the scheduler and blocks until ctx is cancelled, then stops.
func (s *Scheduler) Run(ctx context.Context, stopTimeout time.Duration) error {
	s.Start(ctx)
	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	return s.Stop(stopCtx)
}

func (s *Scheduler) fire() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	s.job.Run(ctx)
}

// cronLogger routes cron's internal logging through applogger.
type cronLogger struct {
	l *applogger.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug("cron: "+msg, kvFields(keysAndValues)...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error("cron: "+msg, append(kvFields(keysAndValues), applogger.Error(err))...)
}

func kvFields(kv []interface{}) []applogger.Field {
	fields := make([]applogger.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			k = fmt.Sprint(kv[i])
		}
		fields = append(fields, applogger.Any(k, kv[i+1]))
	}
	return fields
}
