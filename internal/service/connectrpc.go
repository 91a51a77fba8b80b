package service

import (
	"context"
	"encoding/json"
	"errors"
	"kabinet-assist/internal/grades"
	"kabinet-assist/internal/scrapers/kabinet"
	"net/http"

	"connectrpc.com/connect"
)

const (
	PortalServiceName = "kabinet.v1.PortalService"

	FetchAcademicYearsProcedure = "/" + PortalServiceName + "/FetchAcademicYears"
	FetchSemestersProcedure     = "/" + PortalServiceName + "/FetchSemesters"
	FetchCourseDataProcedure    = "/" + PortalServiceName + "/FetchCourseData"
)

type FetchAcademicYearsRequest struct{}

type FetchSemestersRequest struct {
	Year string `json:"eduYear"`
}

type FetchCourseDataRequest struct {
	Year     string `json:"eduYear"`
	Semester string `json:"eduSemester"`
}

// jsonCodec lets connect carry plain go structs instead of protobuf messages.
type jsonCodec struct{}

func (jsonCodec) Name() string {
	return "json"
}

func (jsonCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (jsonCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, msg)
}

// NewHandler exposes `api` as a connect service, it returns the path prefix to mount the handler on.
func NewHandler(api API, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)

	mux := http.NewServeMux()
	mux.Handle(FetchAcademicYearsProcedure, connect.NewUnaryHandler(
		FetchAcademicYearsProcedure,
		func(ctx context.Context, req *connect.Request[FetchAcademicYearsRequest]) (*connect.Response[Result[[]kabinet.Option]], error) {
			res := api.FetchAcademicYears(ctx)
			return connect.NewResponse(&res), nil
		},
		opts...,
	))
	mux.Handle(FetchSemestersProcedure, connect.NewUnaryHandler(
		FetchSemestersProcedure,
		func(ctx context.Context, req *connect.Request[FetchSemestersRequest]) (*connect.Response[Result[[]kabinet.Option]], error) {
			res := api.FetchSemesters(ctx, req.Msg.Year)
			return connect.NewResponse(&res), nil
		},
		opts...,
	))
	mux.Handle(FetchCourseDataProcedure, connect.NewUnaryHandler(
		FetchCourseDataProcedure,
		func(ctx context.Context, req *connect.Request[FetchCourseDataRequest]) (*connect.Response[Result[[]grades.EnrichedCourse]], error) {
			res := api.FetchCourseData(ctx, req.Msg.Year, req.Msg.Semester)
			return connect.NewResponse(&res), nil
		},
		opts...,
	))

	return "/" + PortalServiceName + "/", mux
}

// Client implements API by calling a remote service.
type Client struct {
	years     *connect.Client[FetchAcademicYearsRequest, Result[[]kabinet.Option]]
	semesters *connect.Client[FetchSemestersRequest, Result[[]kabinet.Option]]
	courses   *connect.Client[FetchCourseDataRequest, Result[[]grades.EnrichedCourse]]
}

func NewClient(httpClient connect.HTTPClient, baseUrl string, opts ...connect.ClientOption) Client {
	opts = append([]connect.ClientOption{connect.WithCodec(jsonCodec{})}, opts...)
	return Client{
		years: connect.NewClient[FetchAcademicYearsRequest, Result[[]kabinet.Option]](
			httpClient, baseUrl+FetchAcademicYearsProcedure, opts...,
		),
		semesters: connect.NewClient[FetchSemestersRequest, Result[[]kabinet.Option]](
			httpClient, baseUrl+FetchSemestersProcedure, opts...,
		),
		courses: connect.NewClient[FetchCourseDataRequest, Result[[]grades.EnrichedCourse]](
			httpClient, baseUrl+FetchCourseDataProcedure, opts...,
		),
	}
}

// remoteFailure is the result of a call that never reached the service.
func remoteFailure[T any](prefix string, err error) Result[T] {
	message := err.Error()
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		message = connectErr.Message()
	}
	return Result[T]{Success: false, Error: prefix + message}
}

func (c Client) FetchAcademicYears(ctx context.Context) Result[[]kabinet.Option] {
	res, err := c.years.CallUnary(ctx, connect.NewRequest(&FetchAcademicYearsRequest{}))
	if err != nil {
		return remoteFailure[[]kabinet.Option](PrefixYearsFailed, err)
	}
	return *res.Msg
}

func (c Client) FetchSemesters(ctx context.Context, year string) Result[[]kabinet.Option] {
	res, err := c.semesters.CallUnary(ctx, connect.NewRequest(&FetchSemestersRequest{Year: year}))
	if err != nil {
		return remoteFailure[[]kabinet.Option](PrefixSemestersFailed, err)
	}
	return *res.Msg
}

func (c Client) FetchCourseData(ctx context.Context, year, semester string) Result[[]grades.EnrichedCourse] {
	res, err := c.courses.CallUnary(ctx, connect.NewRequest(&FetchCourseDataRequest{Year: year, Semester: semester}))
	if err != nil {
		return remoteFailure[[]grades.EnrichedCourse](PrefixCoursesFailed, err)
	}
	return *res.Msg
}
