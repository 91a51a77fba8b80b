package service

import (
	"context"
	"kabinet-assist/internal/components/assert"
	"kabinet-assist/internal/components/chrono"
	"kabinet-assist/internal/components/telemetry"
	"kabinet-assist/internal/grades"
	"kabinet-assist/internal/scrapers/kabinet"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	report_fetch_years     = "fetch-years"
	report_fetch_semesters = "fetch-semesters"
	report_fetch_courses   = "fetch-courses"
)

// YearsCacheTTL is how long the offered academic years are reused.
const YearsCacheTTL = 15 * time.Minute

const yearsCacheKey = "years"

// API is the request/response boundary between a UI and the portal.
// every method resolves to a Result, it never returns an error.
type API interface {
	FetchAcademicYears(ctx context.Context) Result[[]kabinet.Option]
	FetchSemesters(ctx context.Context, year string) Result[[]kabinet.Option]
	FetchCourseData(ctx context.Context, year, semester string) Result[[]grades.EnrichedCourse]
}

// OptionsSource lists the selectable years and semesters.
//
// note: fault injection point
type OptionsSource interface {
	FetchAcademicYears(ctx context.Context) ([]kabinet.Option, error)
	FetchSemesters(ctx context.Context, year string) ([]kabinet.Option, error)
}

// CoursesSource runs the scraping pipeline for a selection.
//
// note: fault injection point
type CoursesSource interface {
	FetchCourseData(ctx context.Context, year, semester string) ([]grades.EnrichedCourse, error)
}

// Service implements API in process.
type Service struct {
	options OptionsSource
	courses CoursesSource
	years   *expirable.LRU[string, []kabinet.Option]
	time    chrono.API
	tel     telemetry.API
}

type serviceCfg struct {
	tel  telemetry.API
	time chrono.API
}

type ServiceOption func(cfg *serviceCfg)

func WithCustomTelemetryAPI(tel telemetry.API) ServiceOption {
	return func(cfg *serviceCfg) {
		cfg.tel = tel
	}
}

func WithCustomTimeAPI(time chrono.API) ServiceOption {
	return func(cfg *serviceCfg) {
		cfg.time = time
	}
}

func NewService(options OptionsSource, courses CoursesSource, opts ...ServiceOption) (Service, error) {
	assert.NotNil(options, "options source")
	assert.NotNil(courses, "courses source")

	var cfg serviceCfg
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.tel == nil {
		cfg.tel = telemetry.SlogAPI{}
	}
	if cfg.time == nil {
		impl, err := chrono.NewStandardImpl()
		if err != nil {
			return Service{}, err
		}
		cfg.time = impl
	}

	return Service{
		options: options,
		courses: courses,
		years:   expirable.NewLRU[string, []kabinet.Option](1, nil, YearsCacheTTL),
		time:    cfg.time,
		tel:     telemetry.NewScopedAPI("service", cfg.tel),
	}, nil
}

func ok[T any](s Service, data T) Result[T] {
	return Result[T]{
		Success:   true,
		Data:      data,
		FetchedAt: s.time.Now().UnixMilli(),
	}
}

func fail[T any](s Service, err error) Result[T] {
	return Result[T]{
		Success:   false,
		Error:     UserMessage(err),
		FetchedAt: s.time.Now().UnixMilli(),
	}
}

func (s Service) FetchAcademicYears(ctx context.Context) Result[[]kabinet.Option] {
	if years, hit := s.years.Get(yearsCacheKey); hit {
		return ok(s, years)
	}
	years, err := s.options.FetchAcademicYears(ctx)
	if err != nil {
		s.tel.ReportWarning(report_fetch_years, err)
		return fail[[]kabinet.Option](s, err)
	}
	s.years.Add(yearsCacheKey, years)
	return ok(s, years)
}

// FetchSemesters is never cached, the semesters change with the year.
func (s Service) FetchSemesters(ctx context.Context, year string) Result[[]kabinet.Option] {
	if strings.TrimSpace(year) == "" {
		return ok(s, []kabinet.Option{})
	}
	semesters, err := s.options.FetchSemesters(ctx, year)
	if err != nil {
		s.tel.ReportWarning(report_fetch_semesters, err, year)
		return fail[[]kabinet.Option](s, err)
	}
	return ok(s, semesters)
}

func (s Service) FetchCourseData(ctx context.Context, year, semester string) Result[[]grades.EnrichedCourse] {
	courses, err := s.courses.FetchCourseData(ctx, year, semester)
	if err != nil {
		s.tel.ReportWarning(report_fetch_courses, err, year, semester)
		return fail[[]grades.EnrichedCourse](s, err)
	}
	return ok(s, courses)
}
