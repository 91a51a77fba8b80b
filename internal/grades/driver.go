package grades

import (
	"context"
	"errors"
	"fmt"
	"kabinet-assist/internal/components/assert"
	"kabinet-assist/internal/components/chrono"
	"kabinet-assist/internal/components/telemetry"
	"kabinet-assist/internal/scrapers/kabinet"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	report_driver_fetch_listing = "driver.fetch-listing"
	report_driver_extract       = "driver.extract-listing"
	report_driver_fetch_detail  = "driver.fetch-detail"
	report_driver_course_count  = "driver.course-count"
	report_driver_metrics       = "driver.metrics"
)

// DefaultInterRequestDelay is the pause between two detail requests.
const DefaultInterRequestDelay = 200 * time.Millisecond

// ErrMissingSelection means either the year or the semester was not chosen.
var ErrMissingSelection = errors.New("both an academic year and a semester must be selected")

// EnrichedCourse is a listing entry merged with its detail and the derived absence count.
type EnrichedCourse struct {
	kabinet.CourseListingEntry
	kabinet.CourseDetail
	AbsenceCount string `json:"absenceCount"`
}

// Portal is the part of the portal client the driver needs.
//
// note: fault injection point
type Portal interface {
	FetchListing(ctx context.Context, year, semester string) (string, error)
	FetchDetail(ctx context.Context, req kabinet.DetailRequest) (string, error)
}

// Driver runs the scraping-and-aggregation pipeline for one selection at a time.
type Driver struct {
	portal         Portal
	tel            telemetry.API
	time           chrono.API
	delay          time.Duration
	detailFailures metric.Int64Counter
}

type driverCfg struct {
	tel   telemetry.API
	time  chrono.API
	delay *time.Duration
}

type DriverOption func(cfg *driverCfg)

func WithCustomTelemetryAPI(tel telemetry.API) DriverOption {
	return func(cfg *driverCfg) {
		cfg.tel = tel
	}
}

func WithCustomTimeAPI(time chrono.API) DriverOption {
	return func(cfg *driverCfg) {
		cfg.time = time
	}
}

// WithInterRequestDelay sets the pause between two detail requests, zero disables it.
func WithInterRequestDelay(delay time.Duration) DriverOption {
	return func(cfg *driverCfg) {
		cfg.delay = &delay
	}
}

func NewDriver(portal Portal, opts ...DriverOption) (Driver, error) {
	assert.NotNil(portal, "portal")

	var cfg driverCfg
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.tel == nil {
		cfg.tel = telemetry.SlogAPI{}
	}
	if cfg.time == nil {
		impl, err := chrono.NewStandardImpl()
		if err != nil {
			return Driver{}, err
		}
		cfg.time = impl
	}
	delay := DefaultInterRequestDelay
	if cfg.delay != nil {
		delay = *cfg.delay
	}

	tel := telemetry.NewScopedAPI("grades", cfg.tel)

	detailFailures, err := otel.Meter("kabinet-assist/grades").Int64Counter(
		"detail_failures",
		metric.WithDescription("course detail requests that failed and were replaced by sentinels"),
	)
	if err != nil {
		tel.ReportWarning(report_driver_metrics, err)
	}

	return Driver{
		portal:         portal,
		tel:            tel,
		time:           cfg.time,
		delay:          delay,
		detailFailures: detailFailures,
	}, nil
}

// FetchCourseData fetches the listing of a year and semester and enriches
// every course with its detail, one request at a time.
//
// a failed detail request only affects its own course, a failed listing
// request, an unrecognizable listing page or a lost session fails the whole call.
func (d Driver) FetchCourseData(ctx context.Context, year, semester string) ([]EnrichedCourse, error) {
	year = strings.TrimSpace(year)
	semester = strings.TrimSpace(semester)
	if year == "" || semester == "" {
		return nil, ErrMissingSelection
	}

	d.tel.ReportDebug("fetching listing", "state", "FetchingListing", "year", year, "semester", semester)
	page, err := d.portal.FetchListing(ctx, year, semester)
	if err != nil {
		d.tel.ReportWarning(report_driver_fetch_listing, err, year, semester)
		return nil, fmt.Errorf("fetch listing: %w", err)
	}

	d.tel.ReportDebug("extracting rows", "state", "ExtractingRows")
	listing, err := kabinet.ExtractListing(page)
	if err != nil {
		d.tel.ReportWarning(report_driver_extract, err, year, semester)
		return nil, fmt.Errorf("extract listing: %w", err)
	}
	if listing.Skipped > 0 {
		d.tel.ReportDebug("skipped rows", "count", listing.Skipped)
	}
	if len(listing.Entries) == 0 {
		if !listing.SessionMarkers {
			d.tel.ReportWarning(report_driver_extract, kabinet.ErrNotAuthenticated, year, semester)
			return nil, fmt.Errorf("extract listing: no courses and no session markers: %w", kabinet.ErrNotAuthenticated)
		}
		d.tel.ReportDebug("listing is empty", "state", "RowsEmptyButValid")
		return []EnrichedCourse{}, nil
	}

	d.tel.ReportDebug("fetching details", "state", "FetchingDetailsSequentially", "count", len(listing.Entries))
	d.tel.ReportCount(report_driver_course_count, int64(len(listing.Entries)))

	courses := make([]EnrichedCourse, 0, len(listing.Entries))
	for i, entry := range listing.Entries {
		detail, err := d.fetchDetail(ctx, entry, year, semester)
		if err != nil {
			return nil, err
		}
		courses = append(courses, EnrichedCourse{
			CourseListingEntry: entry,
			CourseDetail:       detail,
			AbsenceCount:       ComputeAbsenceCount(detail.AbsencePercent, entry.Credits),
		})

		if i == len(listing.Entries)-1 {
			break
		}
		err = d.time.Sleep(ctx, d.delay)
		if err != nil {
			return nil, err
		}
	}

	d.tel.ReportDebug("done", "state", "Done", "count", len(courses))
	return courses, nil
}

// fetchDetail returns the detail of one course, substituting the error detail
// on failure, the only error it returns is the context's.
func (d Driver) fetchDetail(ctx context.Context, entry kabinet.CourseListingEntry, year, semester string) (kabinet.CourseDetail, error) {
	payload, err := d.portal.FetchDetail(ctx, kabinet.DetailRequest{
		LessonId:  entry.LessonId,
		EduFormId: entry.EduFormId,
		Year:      year,
		Semester:  semester,
	})
	if ctxErr := ctx.Err(); ctxErr != nil {
		return kabinet.CourseDetail{}, ctxErr
	}
	if err != nil {
		d.tel.ReportWarning(report_driver_fetch_detail, err, entry.Name, entry.LessonId)
		if d.detailFailures != nil {
			d.detailFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("lesson_id", entry.LessonId)))
		}
		return kabinet.ErrorDetail(), nil
	}

	detail := kabinet.ParseDetail(payload)
	if detail == kabinet.MissingDetail() {
		d.tel.ReportDebug("no plausible detail", "lesson", entry.LessonId)
	}
	return detail, nil
}
