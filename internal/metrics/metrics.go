// Package metrics wires the OpenTelemetry meter (C9) that the validation
// orchestrator reports through: a request counter and a duration
// histogram, both labelled by message name and field-check mode.
package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// MeterName is the OpenTelemetry meter name every instrument is published
// under, per spec.md §4.7.
const MeterName = "json-validation-service"

// Recorder is the interface the validation orchestrator depends on. It is
// satisfied by both Meter (when metrics are enabled) and NoopRecorder
// (when they are not), so the orchestrator never branches on whether
// metrics are on.
type Recorder interface {
	IncRequests(messageName, fieldCheck string)
	ObserveDuration(messageName, fieldCheck string, seconds float64)
}

// NoopRecorder discards every observation. Used when --enable-metrics is
// not set, matching the original's `enable_metrics: bool` gate.
type NoopRecorder struct{}

func (NoopRecorder) IncRequests(string, string)            {}
func (NoopRecorder) ObserveDuration(string, string, float64) {}

// Meter publishes the two instruments required by spec.md §4.7.
type Meter struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

// NewMeter creates the counter and histogram instruments on the given
// provider's meter.
func NewMeter(provider metric.MeterProvider) (*Meter, error) {
	meter := provider.Meter(MeterName)

	requests, err := meter.Int64Counter(
		"validate_json_requests_total",
		metric.WithDescription("Counts the total number of JSON validation requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request counter: %w", err)
	}

	duration, err := meter.Float64Histogram(
		"validate_json_duration_seconds",
		metric.WithDescription("Tracks the duration of JSON validation in seconds"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	return &Meter{requests: requests, duration: duration}, nil
}

// IncRequests increments the request counter with the given labels.
func (m *Meter) IncRequests(messageName, fieldCheck string) {
	m.requests.Add(context.Background(), 1,
		metric.WithAttributes(
			attribute.String("message_name", messageName),
			attribute.String("field_check", fieldCheck),
		),
	)
}

// ObserveDuration records one duration sample with the given labels.
func (m *Meter) ObserveDuration(messageName, fieldCheck string, seconds float64) {
	m.duration.Record(context.Background(), seconds,
		metric.WithAttributes(
			attribute.String("message_name", messageName),
			attribute.String("field_check", fieldCheck),
		),
	)
}

// Provider holds the SDK meter provider so the caller can flush/shut it
// down on process exit, mirroring the original's SdkMeterProvider handle.
type Provider struct {
	*sdkmetric.MeterProvider
}

// Shutdown flushes and tears down the provider, per the original's
// drop-on-exit semantics for its meter provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	return p.MeterProvider.Shutdown(ctx)
}
