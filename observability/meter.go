package observability

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"

	"github.com/kbukum/launchpad/logger"
)

// InitMeter installs an OTLP/HTTP meter provider as the global provider.
// The returned provider must be shut down on exit.
func InitMeter(ctx context.Context, cfg TelemetryConfig, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if cfg.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"endpoint", cfg.Endpoint,
		"interval", cfg.Interval.String(),
	))
	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the instruments launchpad records.
type Metrics struct {
	requestTotal    metric.Int64Counter
	requestDuration metric.Float64Histogram
	requestActive   metric.Int64UpDownCounter
	probeTotal      metric.Int64Counter
	transitionTotal metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	requestTotal, err := meter.Int64Counter("http.server.request.total",
		metric.WithDescription("Requests dispatched to the application"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating http.server.request.total counter: %w", err)
	}

	requestDuration, err := meter.Float64Histogram("http.server.request.duration",
		metric.WithDescription("Duration of application requests"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating http.server.request.duration histogram: %w", err)
	}

	requestActive, err := meter.Int64UpDownCounter("http.server.active_requests",
		metric.WithDescription("Application requests in flight"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating http.server.active_requests gauge: %w", err)
	}

	probeTotal, err := meter.Int64Counter("health.probe.total",
		metric.WithDescription("Liveness probes answered, by reported status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating health.probe.total counter: %w", err)
	}

	transitionTotal, err := meter.Int64Counter("lifecycle.transition.total",
		metric.WithDescription("Lifecycle state transitions"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating lifecycle.transition.total counter: %w", err)
	}

	return &Metrics{
		requestTotal:    requestTotal,
		requestDuration: requestDuration,
		requestActive:   requestActive,
		probeTotal:      probeTotal,
		transitionTotal: transitionTotal,
	}, nil
}

// RecordRequestStart increments the in-flight request count.
func (m *Metrics) RecordRequestStart(ctx context.Context) {
	m.requestActive.Add(ctx, 1)
}

// RecordRequest decrements the in-flight count and records a completed request.
func (m *Metrics) RecordRequest(ctx context.Context, method string, status int, d time.Duration) {
	m.requestActive.Add(ctx, -1)
	attrs := metric.WithAttributes(
		attribute.String("http.request.method", method),
		attribute.String("http.response.status_code", strconv.Itoa(status)),
	)
	m.requestTotal.Add(ctx, 1, attrs)
	m.requestDuration.Record(ctx, d.Seconds(), attrs)
}

// RecordProbe counts one answered liveness probe.
func (m *Metrics) RecordProbe(ctx context.Context, status HealthStatus) {
	m.probeTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", string(status))))
}

// RecordTransition counts one lifecycle transition.
func (m *Metrics) RecordTransition(ctx context.Context, from, to string) {
	m.transitionTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("from", from),
		attribute.String("to", to),
	))
}
