// Package scheduler runs background jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// JobFunc is a unit of scheduled work. The context is cancelled on Stop.
type JobFunc func(ctx context.Context) error

// Scheduler wraps a cron runner whose jobs log start, finish and failure.
type Scheduler struct {
	cron   *cron.Cron
	log    logrus.FieldLogger
	ctx    context.Context
	cancel context.CancelFunc
}

// New builds a scheduler evaluating specs in loc. Panicking jobs are recovered
// and a job still running when its next tick fires is skipped.
func New(log logrus.FieldLogger, loc *time.Location) *Scheduler {
	cl := cronLogger{log: log}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Add registers a named job. Specs use the standard five-field format or
// descriptors such as "@every 10m".
func (s *Scheduler) Add(name, spec string, job JobFunc) error {
	if _, err := s.cron.AddFunc(spec, func() { s.run(name, job) }); err != nil {
		return fmt.Errorf("schedule %s (%q): %w", name, spec, err)
	}
	s.log.WithFields(logrus.Fields{"event": "job_scheduled", "job": name, "spec": spec}).Info("job scheduled")
	return nil
}

func (s *Scheduler) run(name string, job JobFunc) {
	start := time.Now()
	err := job(s.ctx)
	fields := logrus.Fields{
		"event":       "job_finished",
		"job":         name,
		"duration_ms": float64(time.Since(start).Microseconds()) / 1000,
	}
	if err != nil {
		fields["event"] = "job_failed"
		fields["error"] = err.Error()
		s.log.WithFields(fields).Error("scheduled job failed")
		return
	}
	s.log.WithFields(fields).Info("scheduled job finished")
}

// Len reports how many jobs are registered.
func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop cancels running jobs and waits for them until ctx expires.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.cancel()
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger adapts logrus to cron.Logger.
type cronLogger struct {
	log logrus.FieldLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.WithFields(kvFields(keysAndValues)).Debug("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	fields := kvFields(keysAndValues)
	fields["error"] = err.Error()
	l.log.WithFields(fields).Error("cron: " + msg)
}

func kvFields(kv []interface{}) logrus.Fields {
	fields := logrus.Fields{}
	for i := 0; i+1 < len(kv); i += 2 {
		fields[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return fields
}
