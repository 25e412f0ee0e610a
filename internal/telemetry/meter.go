// Package telemetry provides OpenTelemetry metrics for the sync console,
// exposed in Prometheus format.
package telemetry

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
)

// Provider bundles the meter provider with the scrape handler that serves it.
type Provider struct {
	MeterProvider metric.MeterProvider
	// Handler is nil when metrics are disabled.
	Handler http.Handler

	sdk *sdkmetric.MeterProvider
}

// NewProvider creates a Prometheus-backed meter provider, or a no-op one when
// disabled. The caller is responsible for calling Shutdown.
func NewProvider(enabled bool, logger *zap.Logger) (*Provider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !enabled {
		logger.Info("Metrics disabled, using no-op meter provider")
		return &Provider{MeterProvider: noop.NewMeterProvider()}, nil
	}

	registry := prometheus.NewRegistry()
	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	logger.Info("Metrics initialized")

	return &Provider{
		MeterProvider: mp,
		Handler:       promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		sdk:           mp,
	}, nil
}

// Shutdown flushes and releases the SDK provider, if any.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil || p.sdk == nil {
		return nil
	}
	return p.sdk.Shutdown(ctx)
}
