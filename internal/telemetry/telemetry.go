// Package telemetry exports adapter spans over OTLP/gRPC. The providers only
// emit spans, so no meter provider is installed.
package telemetry

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/mygamer123/tradingagents/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Providers owns the span pipeline built by Init. The zero value is the
// disabled pipeline.
type Providers struct {
	tp *sdktrace.TracerProvider
}

// Init builds the span pipeline described by cfg and makes it the process
// default. Nothing is dialed while cfg.Enabled is false.
func Init(cfg config.TelemetryConfig, logger *zap.Logger) (*Providers, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.Enabled {
		logger.Debug("span export off")
		return &Providers{}, nil
	}

	tp, err := newTracerProvider(context.Background(), cfg)
	if err != nil {
		return nil, err
	}
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{}))

	logger.Info("span export on",
		zap.String("collector", cfg.OTLPEndpoint),
		zap.String("service", cfg.ServiceName),
		zap.Float64("ratio", cfg.SampleRate))
	return &Providers{tp: tp}, nil
}

func newTracerProvider(ctx context.Context, cfg config.TelemetryConfig) (*sdktrace.TracerProvider, error) {
	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(moduleVersion()),
	))
	if err != nil {
		return nil, fmt.Errorf("telemetry resource: %w", err)
	}

	exp, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint),
		otlptracegrpc.WithInsecure())
	if err != nil {
		return nil, fmt.Errorf("span exporter for %s: %w", cfg.OTLPEndpoint, err)
	}

	sampler := sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRate))
	return sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
		sdktrace.WithBatcher(exp),
	), nil
}

// TracerProvider is what adapters should start spans from. With export off
// it falls back to the process default.
func (p *Providers) TracerProvider() trace.TracerProvider {
	if !p.Enabled() {
		return otel.GetTracerProvider()
	}
	return p.tp
}

// Enabled reports whether spans leave the process.
func (p *Providers) Enabled() bool { return p != nil && p.tp != nil }

// Shutdown drains batched spans. It is a no-op with export off.
func (p *Providers) Shutdown(ctx context.Context) error {
	if !p.Enabled() {
		return nil
	}
	if err := p.tp.Shutdown(ctx); err != nil {
		return fmt.Errorf("drain spans: %w", err)
	}
	return nil
}

// moduleVersion is the tagged module version, or "dev" for local builds.
func moduleVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		if v := info.Main.Version; v != "" && v != "(devel)" {
			return v
		}
	}
	return "dev"
}
