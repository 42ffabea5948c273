package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/restorm/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows plain HTTP towards the collector.
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "dev",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the global OpenTelemetry meter provider.
// The returned provider should be shut down on exit.
func InitMeter(ctx context.Context, config *MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	logger.Get("observability").Info("meter initialized", logger.Fields(
		logger.FieldService, config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the instruments recorded by querysets and managers.
type Metrics struct {
	queryTotal    metric.Int64Counter
	queryDuration metric.Float64Histogram
	queryActive   metric.Int64UpDownCounter
	objectsBound  metric.Int64Counter
	errorTotal    metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	queryTotal, err := meter.Int64Counter("restorm.query.total",
		metric.WithDescription("Remote collection queries by model, operation and status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating restorm.query.total counter: %w", err)
	}

	queryDuration, err := meter.Float64Histogram("restorm.query.duration",
		metric.WithDescription("Duration of remote collection queries in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating restorm.query.duration histogram: %w", err)
	}

	queryActive, err := meter.Int64UpDownCounter("restorm.query.active",
		metric.WithDescription("Queries currently in flight"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating restorm.query.active gauge: %w", err)
	}

	objectsBound, err := meter.Int64Counter("restorm.objects.bound",
		metric.WithDescription("Model instances bound from remote payloads"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating restorm.objects.bound counter: %w", err)
	}

	errorTotal, err := meter.Int64Counter("restorm.error.total",
		metric.WithDescription("Errors by code and model"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating restorm.error.total counter: %w", err)
	}

	return &Metrics{
		queryTotal:    queryTotal,
		queryDuration: queryDuration,
		queryActive:   queryActive,
		objectsBound:  objectsBound,
		errorTotal:    errorTotal,
	}, nil
}

// RecordQueryStart increments the in-flight query count.
func (m *Metrics) RecordQueryStart(ctx context.Context) {
	m.queryActive.Add(ctx, 1)
}

// RecordQueryEnd decrements in-flight queries and records the finished query
// along with the number of objects it bound.
func (m *Metrics) RecordQueryEnd(ctx context.Context, model, operation, status string, objects int, duration time.Duration) {
	m.queryActive.Add(ctx, -1)
	m.queryTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("model", model),
		attribute.String("operation", operation),
		attribute.String("status", status),
	))
	m.queryDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("model", model),
		attribute.String("operation", operation),
	))
	if objects > 0 {
		m.objectsBound.Add(ctx, int64(objects), metric.WithAttributes(attribute.String("model", model)))
	}
}

// RecordError records an error by code and model.
func (m *Metrics) RecordError(ctx context.Context, code, model string) {
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("code", code),
		attribute.String("model", model),
	))
}
