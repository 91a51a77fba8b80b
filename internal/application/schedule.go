package application

import (
	"context"
	"fmt"
	"kabinet-assist/internal/components/chrono"
	"kabinet-assist/internal/components/telemetry"
	"kabinet-assist/internal/grades"
	"kabinet-assist/internal/scrapers/kabinet"
	"kabinet-assist/internal/service"
	"kabinet-assist/pkg/textutil"
	"time"
)

const (
	report_schedule_fetch = "schedule.fetch"
	report_schedule_mail  = "schedule.mail"
)

// scheduledRunTimeout bounds a single scheduled run.
const scheduledRunTimeout = 10 * time.Minute

// ReportMailer is the part of report.Mailer a scheduled report needs.
//
// note: fault injection point
type ReportMailer interface {
	SendReport(to, yearLabel, semesterLabel string, courses []grades.EnrichedCourse) error
}

// ScheduledReport fetches a fixed selection and mails its report.
type ScheduledReport struct {
	api    service.API
	mailer ReportMailer
	cfg    ScheduleConfig
	tel    telemetry.API
}

func NewScheduledReport(api service.API, mailer ReportMailer, cfg ScheduleConfig, tel telemetry.API) (ScheduledReport, error) {
	if cfg.Year == "" || cfg.Semester == "" {
		return ScheduledReport{}, grades.ErrMissingSelection
	}
	if cfg.MailTo == "" {
		return ScheduledReport{}, fmt.Errorf("a scheduled report needs a recipient")
	}
	return ScheduledReport{
		api:    api,
		mailer: mailer,
		cfg:    cfg,
		tel:    telemetry.NewScopedAPI("application", tel),
	}, nil
}

// Register adds the report to `cron` under its configured spec.
func (r ScheduledReport) Register(cron chrono.CronAPI) error {
	return cron.Cron(r.cfg.Cron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), scheduledRunTimeout)
		defer cancel()
		r.Run(ctx)
	})
}

func labelOf(options []kabinet.Option, query string) (string, string) {
	option, ok := textutil.ResolveOption(query, options, textutil.DefaultResolveThreshold)
	if !ok {
		return query, query
	}
	return option.Value, option.Text
}

// Run performs one scheduled report, the year and semester may be given
// either as values or as labels.
func (r ScheduledReport) Run(ctx context.Context) error {
	year, yearLabel := r.cfg.Year, r.cfg.Year
	years := r.api.FetchAcademicYears(ctx)
	if years.Success {
		year, yearLabel = labelOf(years.Data, r.cfg.Year)
	}
	semester, semesterLabel := r.cfg.Semester, r.cfg.Semester
	semesters := r.api.FetchSemesters(ctx, year)
	if semesters.Success {
		semester, semesterLabel = labelOf(semesters.Data, r.cfg.Semester)
	}

	res := r.api.FetchCourseData(ctx, year, semester)
	if !res.Success {
		err := fmt.Errorf("%s", res.Error)
		r.tel.ReportWarning(report_schedule_fetch, err, year, semester)
		return err
	}

	err := r.mailer.SendReport(r.cfg.MailTo, yearLabel, semesterLabel, res.Data)
	if err != nil {
		r.tel.ReportBroken(report_schedule_mail, err, r.cfg.MailTo)
		return err
	}
	r.tel.ReportDebug("scheduled report sent", "to", r.cfg.MailTo, "courses", len(res.Data))
	return nil
}
