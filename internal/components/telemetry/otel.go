package telemetry

import (
	"context"
	"errors"
	"fmt"
	"kabinet-assist/pkg/configutil"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const (
	ProtocolGrpc = "grpc"
	ProtocolHttp = "http"
)

// ConfigFile is looked up from the working directory upwards by SetupFromEnv.
const ConfigFile = "telemetry.json5"

const defaultMetricInterval = 15 * time.Second

// ExporterConfig describes one otlp destination, an empty Endpoint
// disables the signal.
type ExporterConfig struct {
	// Protocol is "grpc" or "http", http is used when empty.
	Protocol string            `json:"protocol"`
	Endpoint string            `json:"endpoint"`
	Headers  map[string]string `json:"headers"`
}

type Config struct {
	// ServiceName overrides the name the binary passes to Setup.
	ServiceName string         `json:"service_name"`
	Traces      ExporterConfig `json:"traces"`
	Metrics     ExporterConfig `json:"metrics"`
	// SampleRatio is the fraction of portal sessions traced, 0 means all.
	SampleRatio           float64 `json:"sample_ratio"`
	MetricIntervalSeconds int     `json:"metric_interval_seconds"`
}

func (c Config) metricInterval() time.Duration {
	if c.MetricIntervalSeconds <= 0 {
		return defaultMetricInterval
	}
	return time.Duration(c.MetricIntervalSeconds) * time.Second
}

func (c Config) sampler() trace.Sampler {
	if c.SampleRatio <= 0 || c.SampleRatio >= 1 {
		return trace.ParentBased(trace.AlwaysSample())
	}
	return trace.ParentBased(trace.TraceIDRatioBased(c.SampleRatio))
}

// Telemetry holds whichever otel providers were installed, the zero value
// has none.
type Telemetry struct {
	TracerProvider *trace.TracerProvider
	MeterProvider  *metric.MeterProvider
}

// Shutdown flushes and stops every installed provider.
func (t Telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	if t.TracerProvider != nil {
		errs = append(errs, t.TracerProvider.Shutdown(ctx))
	}
	if t.MeterProvider != nil {
		errs = append(errs, t.MeterProvider.Shutdown(ctx))
	}
	return errors.Join(errs...)
}

// SetupFromEnv installs otel from the nearest telemetry.json5, without
// one nothing is exported.
func SetupFromEnv(ctx context.Context, serviceName string) (Telemetry, error) {
	config, err := configutil.ReadRecursively[Config](ConfigFile)
	if errors.Is(err, os.ErrNotExist) {
		slog.Debug("no telemetry config found, otel export disabled", "file", ConfigFile)
		return Telemetry{}, nil
	}
	if err != nil {
		return Telemetry{}, fmt.Errorf("read %s: %w", ConfigFile, err)
	}
	return Setup(ctx, serviceName, config)
}

// Setup installs a tracer provider and a meter provider for every signal
// with an endpoint.
func Setup(ctx context.Context, serviceName string, config Config) (Telemetry, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	if config.ServiceName != "" {
		serviceName = config.ServiceName
	}
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			semconv.ServiceNamespace("kabinet-assist"),
		),
	)
	if err != nil {
		return Telemetry{}, err
	}

	var out Telemetry
	if config.Traces.Endpoint != "" {
		exporter, err := newSpanExporter(ctx, config.Traces)
		if err != nil {
			return Telemetry{}, fmt.Errorf("trace exporter: %w", err)
		}
		out.TracerProvider = trace.NewTracerProvider(
			trace.WithBatcher(exporter),
			trace.WithResource(res),
			trace.WithSampler(config.sampler()),
		)
		otel.SetTracerProvider(out.TracerProvider)
	}
	if config.Metrics.Endpoint != "" {
		exporter, err := newMetricExporter(ctx, config.Metrics)
		if err != nil {
			return Telemetry{}, errors.Join(fmt.Errorf("metric exporter: %w", err), out.Shutdown(ctx))
		}
		out.MeterProvider = metric.NewMeterProvider(
			metric.WithReader(metric.NewPeriodicReader(exporter, metric.WithInterval(config.metricInterval()))),
			metric.WithResource(res),
		)
		otel.SetMeterProvider(out.MeterProvider)
	}

	slog.Info(
		"otel export configured",
		"service", serviceName,
		"traces", config.Traces.Endpoint,
		"metrics", config.Metrics.Endpoint,
	)
	return out, nil
}

func newSpanExporter(ctx context.Context, c ExporterConfig) (trace.SpanExporter, error) {
	switch c.Protocol {
	case ProtocolGrpc:
		return otlptracegrpc.New(
			ctx,
			otlptracegrpc.WithEndpointURL(c.Endpoint),
			otlptracegrpc.WithHeaders(c.Headers),
		)
	case ProtocolHttp, "":
		return otlptracehttp.New(
			ctx,
			otlptracehttp.WithEndpointURL(c.Endpoint),
			otlptracehttp.WithHeaders(c.Headers),
		)
	}
	return nil, fmt.Errorf("unknown otlp protocol %q", c.Protocol)
}

func newMetricExporter(ctx context.Context, c ExporterConfig) (metric.Exporter, error) {
	switch c.Protocol {
	case ProtocolGrpc:
		return otlpmetricgrpc.New(
			ctx,
			otlpmetricgrpc.WithEndpointURL(c.Endpoint),
			otlpmetricgrpc.WithHeaders(c.Headers),
		)
	case ProtocolHttp, "":
		return otlpmetrichttp.New(
			ctx,
			otlpmetrichttp.WithEndpointURL(c.Endpoint),
			otlpmetrichttp.WithHeaders(c.Headers),
		)
	}
	return nil, fmt.Errorf("unknown otlp protocol %q", c.Protocol)
}
