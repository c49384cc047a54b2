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

	"github.com/flowforge/flowkit/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, config MeterConfig) (*sdkmetric.MeterProvider, error) {
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

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// StageMetrics holds metric instruments for pipeline stage observability.
type StageMetrics struct {
	eventsProcessed metric.Int64Counter
	eventsFailed    metric.Int64Counter
	processDuration metric.Float64Histogram
	subscriptions   metric.Int64UpDownCounter
}

// NewStageMetrics creates stage metric instruments on the given meter.
func NewStageMetrics(meter metric.Meter) (*StageMetrics, error) {
	eventsProcessed, err := meter.Int64Counter("stage.events.processed",
		metric.WithDescription("Total number of events processed successfully"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating stage.events.processed counter: %w", err)
	}

	eventsFailed, err := meter.Int64Counter("stage.events.failed",
		metric.WithDescription("Total number of events folded into error events"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating stage.events.failed counter: %w", err)
	}

	processDuration, err := meter.Float64Histogram("stage.process.duration",
		metric.WithDescription("Duration of per-event processing in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating stage.process.duration histogram: %w", err)
	}

	subscriptions, err := meter.Int64UpDownCounter("stage.subscriptions.active",
		metric.WithDescription("Number of currently active stage subscriptions"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating stage.subscriptions.active counter: %w", err)
	}

	return &StageMetrics{
		eventsProcessed: eventsProcessed,
		eventsFailed:    eventsFailed,
		processDuration: processDuration,
		subscriptions:   subscriptions,
	}, nil
}

// RecordProcessed records one successfully processed event.
func (m *StageMetrics) RecordProcessed(ctx context.Context, stage string, d time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("stage", stage))
	m.eventsProcessed.Add(ctx, 1, attrs)
	m.processDuration.Record(ctx, d.Seconds(), attrs)
}

// RecordFailed records one event folded into an error event.
func (m *StageMetrics) RecordFailed(ctx context.Context, stage string, code string) {
	if m == nil {
		return
	}
	m.eventsFailed.Add(ctx, 1, metric.WithAttributes(
		attribute.String("stage", stage),
		attribute.String("code", code),
	))
}

// SubscriptionStarted records a new active subscription.
func (m *StageMetrics) SubscriptionStarted(ctx context.Context, stage string) {
	if m == nil {
		return
	}
	m.subscriptions.Add(ctx, 1, metric.WithAttributes(attribute.String("stage", stage)))
}

// SubscriptionEnded records a terminated subscription.
func (m *StageMetrics) SubscriptionEnded(ctx context.Context, stage string) {
	if m == nil {
		return
	}
	m.subscriptions.Add(ctx, -1, metric.WithAttributes(attribute.String("stage", stage)))
}
