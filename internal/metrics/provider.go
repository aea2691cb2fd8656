package metrics

import (
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// NewStdoutProvider builds the default meter provider: a periodic reader
// over a stdout exporter, resource-tagged with the service name, the
// direct Go analog of the original's opentelemetry-stdout wiring.
func NewStdoutProvider() (*Provider, error) {
	exporter, err := stdoutmetric.New()
	if err != nil {
		return nil, err
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(MeterName),
	)

	provider := metric.NewMeterProvider(
		metric.WithReader(metric.NewPeriodicReader(exporter)),
		metric.WithResource(res),
	)

	return &Provider{MeterProvider: provider}, nil
}
