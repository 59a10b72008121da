// Package otel provides lightweight wrapper functions
// to export and record OpenTelemetry metrics.
package otel

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"

	"github.com/tzrikka/revowners/internal/logger"
)

const name = "github.com/tzrikka/revowners/internal/otel"

type Config struct {
	Enabled     bool
	Endpoint    string
	Timeout     time.Duration
	Compression string
}

// InitMetrics registers a global meter provider which exports metrics to an OTLP
// HTTP endpoint. The returned function flushes and stops it, and must be called
// before the process exits, because runs are much shorter than the export period.
// If metrics are disabled, the global no-op provider remains in place.
func InitMetrics(ctx context.Context, cfg Config) (func(context.Context) error, error) {
	if !cfg.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpointURL(cfg.Endpoint)}
	if cfg.Timeout > 0 {
		opts = append(opts, otlpmetrichttp.WithTimeout(cfg.Timeout))
	}
	switch cfg.Compression {
	case "", "none":
		// Do nothing.
	case "gzip":
		opts = append(opts, otlpmetrichttp.WithCompression(otlpmetrichttp.GzipCompression))
	default:
		return nil, fmt.Errorf("unsupported OTLP compression method: %q", cfg.Compression)
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OTLP metrics exporter: %w", err)
	}

	reader := metric.NewPeriodicReader(exporter)
	res := resource.NewWithAttributes(semconv.SchemaURL, semconv.ServiceName("revowners"))
	provider := metric.NewMeterProvider(metric.WithReader(reader), metric.WithResource(res))

	otel.SetMeterProvider(provider)
	return provider.Shutdown, nil
}

// IncrementCounter increments a metric counter. Attributes are optional.
// Failures are logged, but never abort the current run.
func IncrementCounter(ctx context.Context, name string, incr int64, attrs map[string]string) {
	if err := incrementCounter(ctx, name, incr, attrs); err != nil {
		logger.FromContext(ctx).Error("failed to increment metric counter", slog.Any("error", err),
			slog.String("name", name), slog.Any("attrs", attrs))
	}
}

func incrementCounter(ctx context.Context, counterName string, incr int64, attrs map[string]string) error {
	meter := otel.GetMeterProvider().Meter(name)
	counter, err := meter.Int64Counter(counterName)
	if err != nil {
		return err
	}

	kvs := make([]attribute.KeyValue, 0, len(attrs))
	for k, v := range attrs {
		if v == "" {
			continue
		}
		kvs = append(kvs, attribute.String(k, v))
	}

	counter.Add(ctx, incr, otelmetric.WithAttributes(kvs...))
	return nil
}
