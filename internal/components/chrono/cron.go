package chrono

import (
	"context"
	"fmt"
	"kabinet-assist/internal/components/telemetry"
	"time"

	"github.com/robfig/cron/v3"
)

const report_cron_job = "cron.job"

// CronAPI runs callbacks on a cron schedule.
//
// note: fault injection point
type CronAPI interface {
	Cron(spec string, callback func()) error
}

// StandardCron runs jobs with robfig/cron, a job still running when its
// next tick comes is skipped and a panicking job is reported, not fatal.
type StandardCron struct {
	cron *cron.Cron
}

// NewStandardCron starts a scheduler that evaluates specs in `location`,
// specs are the 5 field kind or descriptors like "@daily".
func NewStandardCron(tel telemetry.API, location *time.Location) StandardCron {
	logger := cronLogger{tel: telemetry.NewScopedAPI("chrono", tel)}
	scheduler := cron.New(
		cron.WithLocation(location),
		cron.WithLogger(logger),
		cron.WithChain(
			cron.Recover(logger),
			cron.SkipIfStillRunning(logger),
		),
	)
	scheduler.Start()
	return StandardCron{cron: scheduler}
}

func (s StandardCron) Cron(spec string, callback func()) error {
	_, err := s.cron.AddFunc(spec, callback)
	if err != nil {
		return fmt.Errorf("schedule %q: %w", spec, err)
	}
	return nil
}

// Stop stops the scheduler, the returned context is done once running
// jobs have finished.
func (s StandardCron) Stop() context.Context {
	return s.cron.Stop()
}

// cronLogger forwards robfig/cron logs as telemetry reports.
type cronLogger struct {
	tel telemetry.API
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.tel.ReportDebug("cron "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.tel.ReportBroken(report_cron_job, append([]any{fmt.Errorf("%s: %w", msg, err)}, keysAndValues...)...)
}
