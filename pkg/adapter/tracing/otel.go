// pkg/adapter/tracing/otel.go

// Package tracing provides an OpenTelemetry implementation of the tracing domain interfaces
package tracing

import (
	"context"
	"fmt"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/contrib/propagators/b3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/damianoneill/go-titlepage/pkg/domain/options"
	"github.com/damianoneill/go-titlepage/pkg/domain/tracing"
)

var _ tracing.Provider = (*Provider)(nil)

// Provider implements the domain Provider interface using OpenTelemetry
type Provider struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
	enabled  bool
}

// Factory creates OpenTelemetry-based Provider instances
type Factory struct{}

// NewFactory creates a new OpenTelemetry factory
func NewFactory() tracing.Factory {
	return &Factory{}
}

// NewProvider implements Factory.NewProvider
func (f *Factory) NewProvider(opts ...tracing.Option) (tracing.Provider, error) {
	o := &tracing.Options{
		ExporterType: tracing.HTTPExporter,
		SamplingRate: 1.0,
	}

	if err := options.Apply(o, opts...); err != nil {
		return nil, fmt.Errorf("applying option: %w", err)
	}

	if o.ServiceName == "" {
		return nil, fmt.Errorf("service name is required")
	}

	// Propagators are installed even for the noop exporter so inbound trace
	// headers still reach downstream calls
	f.setupPropagators(o)

	if o.ExporterType == tracing.NoopExporter {
		return &Provider{enabled: false}, nil
	}

	exporter, err := f.createExporter(context.Background(), o)
	if err != nil {
		return nil, fmt.Errorf("creating exporter: %w", err)
	}

	res, err := f.createResource(o)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(f.createSampler(o)),
	)

	otel.SetTracerProvider(tp)

	return NewProviderFromSDK(tp, o.ServiceName), nil
}

// NewProviderFromSDK wraps an already configured SDK tracer provider, for
// example one backed by a tracetest.SpanRecorder. It is not installed as
// the global provider.
func NewProviderFromSDK(tp *sdktrace.TracerProvider, serviceName string) *Provider {
	return &Provider{
		provider: tp,
		tracer:   tp.Tracer(serviceName),
		enabled:  true,
	}
}

// HTTPMiddleware creates an http.Handler that adds tracing
func (f *Factory) HTTPMiddleware(operation string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, operation)
	}
}

// Shutdown implements Provider.Shutdown
func (p *Provider) Shutdown(ctx context.Context) error {
	if !p.enabled || p.provider == nil {
		return nil
	}
	return p.provider.Shutdown(ctx)
}

// IsEnabled implements Provider.IsEnabled
func (p *Provider) IsEnabled() bool {
	return p.enabled
}

// Start implements Provider.Start
func (p *Provider) Start(ctx context.Context, name string, attrs ...tracing.Attribute) (context.Context, tracing.EndFunc) {
	if !p.enabled || p.tracer == nil {
		return ctx, func(error) {}
	}

	kv := make([]attribute.KeyValue, 0, len(attrs))
	for _, a := range attrs {
		kv = append(kv, attribute.String(a.Key, a.Value))
	}

	ctx, span := p.tracer.Start(ctx, name, trace.WithAttributes(kv...))
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}

// createExporter creates an OTLP exporter based on the configuration
func (f *Factory) createExporter(ctx context.Context, opts *tracing.Options) (sdktrace.SpanExporter, error) {
	switch opts.ExporterType {
	case tracing.HTTPExporter:
		httpOpts := []otlptracehttp.Option{
			otlptracehttp.WithEndpoint(opts.CollectorEndpoint),
		}

		if opts.Insecure {
			httpOpts = append(httpOpts, otlptracehttp.WithInsecure())
		}

		if len(opts.Headers) > 0 {
			httpOpts = append(httpOpts, otlptracehttp.WithHeaders(opts.Headers))
		}

		return otlptracehttp.New(ctx, httpOpts...)

	case tracing.GRPCExporter:
		grpcOpts := []otlptracegrpc.Option{
			otlptracegrpc.WithEndpoint(opts.CollectorEndpoint),
		}

		if opts.Insecure {
			grpcOpts = append(grpcOpts, otlptracegrpc.WithInsecure())
		}

		if len(opts.Headers) > 0 {
			grpcOpts = append(grpcOpts, otlptracegrpc.WithHeaders(opts.Headers))
		}

		return otlptracegrpc.New(ctx, grpcOpts...)

	default:
		return nil, fmt.Errorf("unsupported exporter type: %s", opts.ExporterType)
	}
}

// createResource creates a resource with service information
func (f *Factory) createResource(opts *tracing.Options) (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(opts.ServiceName),
			semconv.ServiceVersion(opts.ServiceVersion),
		),
	)
}

// createSampler creates a sampler based on the configuration
func (f *Factory) createSampler(opts *tracing.Options) sdktrace.Sampler {
	if opts.SamplingRate >= 1.0 {
		return sdktrace.AlwaysSample()
	}
	if opts.SamplingRate <= 0.0 {
		return sdktrace.NeverSample()
	}
	return sdktrace.TraceIDRatioBased(opts.SamplingRate)
}

// setupPropagators installs the global propagator. Unknown names are
// rejected by tracing.WithPropagatorTypes before reaching here.
func (f *Factory) setupPropagators(opts *tracing.Options) {
	types := opts.PropagatorTypes
	if len(types) == 0 {
		types = []string{
			tracing.PropagatorTraceContext,
			tracing.PropagatorBaggage,
		}
	}

	otel.SetTextMapPropagator(newPropagator(types))
}

func newPropagator(types []string) propagation.TextMapPropagator {
	propagators := make([]propagation.TextMapPropagator, 0, len(types))
	for _, pType := range types {
		switch pType {
		case tracing.PropagatorTraceContext:
			propagators = append(propagators, propagation.TraceContext{})
		case tracing.PropagatorBaggage:
			propagators = append(propagators, propagation.Baggage{})
		case tracing.PropagatorB3:
			propagators = append(propagators, b3.New(b3.WithInjectEncoding(b3.B3SingleHeader)))
		case tracing.PropagatorB3Multi:
			propagators = append(propagators, b3.New(b3.WithInjectEncoding(b3.B3MultipleHeader)))
		}
	}

	return propagation.NewCompositeTextMapPropagator(propagators...)
}
