// pkg/domain/tracing/tracing.go

// Package tracing declares the span provider used around title page work
// and HTTP requests, and the options its OpenTelemetry adapter accepts.
package tracing

import (
	"context"
	"fmt"
	"net/http"

	"github.com/damianoneill/go-titlepage/pkg/domain/options"
)

//go:generate mockgen -destination=mocks/mock_tracing.go -package=mocks github.com/damianoneill/go-titlepage/pkg/domain/tracing Provider,Factory

// Provider owns the exporter pipeline for one service.
type Provider interface {
	// Shutdown flushes pending spans, bounded by ctx.
	Shutdown(ctx context.Context) error

	IsEnabled() bool

	// Start opens a child span of any span already in ctx. The returned
	// EndFunc must be called exactly once; a non-nil error marks the span
	// as failed. When tracing is disabled ctx is returned unchanged.
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, EndFunc)
}

// EndFunc finishes a span started by Provider.Start.
type EndFunc func(err error)

// Attribute is a string key/value recorded on a span.
type Attribute struct {
	Key   string
	Value string
}

// String builds an Attribute.
func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

// ExporterType selects the OTLP transport.
type ExporterType string

const (
	HTTPExporter ExporterType = "http"
	GRPCExporter ExporterType = "grpc"

	// NoopExporter keeps the API usable while recording nothing
	NoopExporter ExporterType = "noop"
)

// Propagation formats accepted by WithPropagatorTypes.
const (
	PropagatorTraceContext = "tracecontext"
	PropagatorBaggage      = "baggage"
	PropagatorB3           = "b3"      // single b3 header
	PropagatorB3Multi      = "b3multi" // X-B3-* headers
)

// Options configures a Provider. The adapter fills in defaults for anything
// left empty: HTTP export, tracecontext+baggage propagation and sampling
// of every trace.
type Options struct {
	ServiceName    string
	ServiceVersion string

	// CollectorEndpoint is host:port, e.g. localhost:4317 for gRPC
	CollectorEndpoint string
	ExporterType      ExporterType

	// Headers are sent with every export request
	Headers  map[string]string
	Insecure bool

	PropagatorTypes []string

	// SamplingRate is the fraction of root spans kept, 0.0 to 1.0
	SamplingRate float64
}

// Option is a function that modifies Options
type Option = options.Option[Options]

// Factory creates configured Provider instances
type Factory interface {
	NewProvider(opts ...Option) (Provider, error)

	// HTTPMiddleware wraps handlers in server spans named after operation
	HTTPMiddleware(operation string) func(http.Handler) http.Handler
}

func set(fn func(o *Options)) Option {
	return options.OptionFunc[Options](func(o *Options) error {
		fn(o)
		return nil
	})
}

func WithServiceName(name string) Option {
	return set(func(o *Options) { o.ServiceName = name })
}

func WithServiceVersion(version string) Option {
	return set(func(o *Options) { o.ServiceVersion = version })
}

func WithCollectorEndpoint(endpoint string) Option {
	return set(func(o *Options) { o.CollectorEndpoint = endpoint })
}

func WithExporterType(exporterType ExporterType) Option {
	return set(func(o *Options) { o.ExporterType = exporterType })
}

func WithHeaders(headers map[string]string) Option {
	return set(func(o *Options) { o.Headers = headers })
}

func WithInsecure(insecure bool) Option {
	return set(func(o *Options) { o.Insecure = insecure })
}

// WithPropagatorTypes sets the propagation formats. Unknown names are
// rejected.
func WithPropagatorTypes(types []string) Option {
	return options.OptionFunc[Options](func(o *Options) error {
		for _, t := range types {
			switch t {
			case PropagatorTraceContext, PropagatorBaggage, PropagatorB3, PropagatorB3Multi:
			default:
				return fmt.Errorf("unsupported propagator: %s", t)
			}
		}
		o.PropagatorTypes = types
		return nil
	})
}

// WithSamplingRate rejects rates outside 0.0 to 1.0.
func WithSamplingRate(rate float64) Option {
	return options.OptionFunc[Options](func(o *Options) error {
		if rate < 0.0 || rate > 1.0 {
			return fmt.Errorf("sampling rate must be between 0.0 and 1.0")
		}
		o.SamplingRate = rate
		return nil
	})
}

// WithDefaultPropagators selects W3C trace context and baggage.
func WithDefaultPropagators() Option {
	return WithPropagatorTypes([]string{PropagatorTraceContext, PropagatorBaggage})
}
