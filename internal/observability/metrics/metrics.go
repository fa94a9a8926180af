package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments for the pricing engine.
type Metrics struct {
	validations    metric.Int64Counter
	tamperEvents   metric.Int64Counter
	cacheHits      metric.Int64Counter
	cacheMisses    metric.Int64Counter
	cacheRebuilds  metric.Int64Counter
	purchaseChecks metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "priceguard"
	}
	meter := provider.Meter(name)

	validations, err := meter.Int64Counter("priceguard_validations_total")
	if err != nil {
		return nil, err
	}
	tamperEvents, err := meter.Int64Counter("priceguard_tampering_events_total")
	if err != nil {
		return nil, err
	}
	cacheHits, err := meter.Int64Counter("priceguard_catalog_cache_hits_total")
	if err != nil {
		return nil, err
	}
	cacheMisses, err := meter.Int64Counter("priceguard_catalog_cache_misses_total")
	if err != nil {
		return nil, err
	}
	cacheRebuilds, err := meter.Int64Counter("priceguard_catalog_cache_rebuilds_total")
	if err != nil {
		return nil, err
	}
	purchaseChecks, err := meter.Int64Counter("priceguard_purchase_checks_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		validations:    validations,
		tamperEvents:   tamperEvents,
		cacheHits:      cacheHits,
		cacheMisses:    cacheMisses,
		cacheRebuilds:  cacheRebuilds,
		purchaseChecks: purchaseChecks,
	}, nil
}

// RecordValidation counts a validation by outcome code (OK or an error code).
func (m *Metrics) RecordValidation(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.validations.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordTamperEvent counts a recorded tampering event for a plan.
func (m *Metrics) RecordTamperEvent(ctx context.Context, planCode string) {
	if m == nil {
		return
	}
	m.tamperEvents.Add(ctx, 1, metric.WithAttributes(attribute.String("plan", planCode)))
}

// RecordCacheHit counts a catalog cache hit.
func (m *Metrics) RecordCacheHit(ctx context.Context) {
	if m == nil {
		return
	}
	m.cacheHits.Add(ctx, 1)
}

// RecordCacheMiss counts a catalog cache miss.
func (m *Metrics) RecordCacheMiss(ctx context.Context) {
	if m == nil {
		return
	}
	m.cacheMisses.Add(ctx, 1)
}

// RecordCacheRebuild counts a catalog snapshot rebuild.
func (m *Metrics) RecordCacheRebuild(ctx context.Context) {
	if m == nil {
		return
	}
	m.cacheRebuilds.Add(ctx, 1)
}

// RecordPurchaseCheck counts a purchase guard decision.
func (m *Metrics) RecordPurchaseCheck(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.purchaseChecks.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(protocol)) {
	case "", "grpc":
		return otlpmetricgrpc.New(context.Background(),
			otlpmetricgrpc.WithEndpoint(endpoint),
			otlpmetricgrpc.WithInsecure(),
		)
	case "http", "http/protobuf":
		return otlpmetrichttp.New(context.Background(),
			otlpmetrichttp.WithEndpoint(endpoint),
			otlpmetrichttp.WithInsecure(),
		)
	default:
		return nil, fmt.Errorf("unsupported otlp metrics protocol %q", protocol)
	}
}
