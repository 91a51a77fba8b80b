package telemetry

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	report_http_exchange = "portal_http.exchange"
	report_http_failure  = "portal_http.failure"
)

// InstrumentOutput receives a dump of every exchange of an instrumented
// client, keyed by a per client sequence number.
type InstrumentOutput interface {
	Write(id string, contents string)
}

// headers whose values are session secrets and never leave the process
var redactedHeaders = []string{"Cookie", "Set-Cookie", "Authorization"}

type exchangeKey struct{}

type restyInstrument struct {
	tel    API
	tracer trace.Tracer
	output InstrumentOutput
	seq    atomic.Uint64
}

// InstrumentResty gives every request of `client` a sequence number and an
// otel span, reports it to `tel`, and dumps it to `output` if that is not nil.
func InstrumentResty(client *resty.Client, tel API, output InstrumentOutput) {
	i := &restyInstrument{
		tel:    tel,
		tracer: otel.Tracer("kabinet-assist/portal_http"),
		output: output,
	}
	client.OnBeforeRequest(i.before)
	client.OnAfterResponse(i.after)
	client.OnError(i.failed)
}

func exchangeId(ctx context.Context) uint64 {
	id, _ := ctx.Value(exchangeKey{}).(uint64)
	return id
}

func spanName(method, rawUrl string) string {
	parsed, err := url.Parse(rawUrl)
	if err != nil || parsed.Path == "" {
		return method
	}
	return method + " " + parsed.Path
}

func (i *restyInstrument) before(_ *resty.Client, req *resty.Request) error {
	id := i.seq.Add(1)
	ctx := context.WithValue(req.Context(), exchangeKey{}, id)
	ctx, _ = i.tracer.Start(
		ctx,
		spanName(req.Method, req.URL),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			semconv.HTTPRequestMethodKey.String(req.Method),
			semconv.URLFull(req.URL),
		),
	)
	req.SetContext(ctx)
	i.tel.ReportDebug(report_http_exchange, id, req.Method, req.URL)
	return nil
}

func (i *restyInstrument) after(_ *resty.Client, res *resty.Response) error {
	ctx := res.Request.Context()
	span := trace.SpanFromContext(ctx)
	defer span.End()

	span.SetAttributes(
		semconv.HTTPResponseStatusCode(res.StatusCode()),
		semconv.HTTPResponseBodySize(len(res.Body())),
	)
	if res.IsError() {
		span.SetStatus(codes.Error, res.Status())
	}

	id := exchangeId(ctx)
	i.tel.ReportDebug(report_http_exchange, id, res.StatusCode(), res.Time().String())
	if i.output != nil {
		i.output.Write(strconv.FormatUint(id, 10), dumpExchange(res))
	}
	return nil
}

func (i *restyInstrument) failed(req *resty.Request, err error) {
	span := trace.SpanFromContext(req.Context())
	defer span.End()
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	i.tel.ReportBroken(report_http_failure, err, exchangeId(req.Context()), req.Method, req.URL)
}

func writeHeaders(out *strings.Builder, headers http.Header) {
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		redact := false
		for _, r := range redactedHeaders {
			if strings.EqualFold(r, name) {
				redact = true
			}
		}
		for _, value := range headers[name] {
			if redact {
				value = "<redacted>"
			}
			fmt.Fprintf(out, "%s: %s\n", name, value)
		}
	}
}

func requestBody(req *http.Request) string {
	if req == nil || req.GetBody == nil {
		return ""
	}
	body, err := req.GetBody()
	if err != nil {
		return fmt.Sprintf("<body unavailable: %v>", err)
	}
	if body == nil || body == http.NoBody {
		return ""
	}
	defer body.Close()
	contents, err := io.ReadAll(body)
	if err != nil {
		return fmt.Sprintf("<body unavailable: %v>", err)
	}
	return string(contents)
}

// dumpExchange renders a request and its response roughly the way they
// looked on the wire, with session secrets redacted.
func dumpExchange(res *resty.Response) string {
	var out strings.Builder

	fmt.Fprintf(&out, "> %s %s\n", res.Request.Method, res.Request.URL)
	if raw := res.Request.RawRequest; raw != nil {
		writeHeaders(&out, raw.Header)
		if body := requestBody(raw); body != "" {
			fmt.Fprintf(&out, "\n%s\n", body)
		}
	}

	fmt.Fprintf(&out, "\n< %s (%s)\n", res.Status(), res.Time())
	writeHeaders(&out, res.Header())
	fmt.Fprintf(&out, "\n%s", res.String())
	return out.String()
}
