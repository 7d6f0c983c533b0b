// pkg/adapter/tracing/otel_test.go

package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/damianoneill/go-titlepage/pkg/domain/tracing"
)

func TestNewFactory(t *testing.T) {
	factory := NewFactory()
	assert.NotNil(t, factory)
	assert.IsType(t, &Factory{}, factory)
}

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name    string
		opts    []tracing.Option
		wantErr bool
	}{
		{
			name: "valid configuration with http exporter",
			opts: []tracing.Option{
				tracing.WithServiceName("test-service"),
				tracing.WithExporterType(tracing.HTTPExporter),
				tracing.WithCollectorEndpoint("localhost:4318"),
			},
			wantErr: false,
		},
		{
			name: "valid configuration with grpc exporter",
			opts: []tracing.Option{
				tracing.WithServiceName("test-service"),
				tracing.WithExporterType(tracing.GRPCExporter),
				tracing.WithCollectorEndpoint("localhost:4317"),
				tracing.WithInsecure(true),
			},
			wantErr: false,
		},
		{
			name: "noop exporter",
			opts: []tracing.Option{
				tracing.WithServiceName("test-service"),
				tracing.WithExporterType(tracing.NoopExporter),
			},
			wantErr: false,
		},
		{
			name: "missing service name",
			opts: []tracing.Option{
				tracing.WithExporterType(tracing.HTTPExporter),
			},
			wantErr: true,
		},
		{
			name: "unsupported propagator",
			opts: []tracing.Option{
				tracing.WithServiceName("test-service"),
				tracing.WithPropagatorTypes([]string{"jaeger"}),
			},
			wantErr: true,
		},
		{
			name: "invalid exporter type",
			opts: []tracing.Option{
				tracing.WithServiceName("test-service"),
				tracing.WithExporterType("invalid"),
			},
			wantErr: true,
		},
		{
			name: "with sampling rate",
			opts: []tracing.Option{
				tracing.WithServiceName("test-service"),
				tracing.WithSamplingRate(0.5),
			},
			wantErr: false,
		},
		{
			name: "with headers",
			opts: []tracing.Option{
				tracing.WithServiceName("test-service"),
				tracing.WithHeaders(map[string]string{
					"Authorization": "Bearer token",
				}),
			},
			wantErr: false,
		},
		{
			name: "with propagators",
			opts: []tracing.Option{
				tracing.WithServiceName("test-service"),
				tracing.WithDefaultPropagators(),
			},
			wantErr: false,
		},
		{
			name: "with b3 propagators",
			opts: []tracing.Option{
				tracing.WithServiceName("test-service"),
				tracing.WithPropagatorTypes([]string{
					tracing.PropagatorTraceContext,
					tracing.PropagatorB3,
					tracing.PropagatorB3Multi,
				}),
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			factory := NewFactory()
			provider, err := factory.NewProvider(tt.opts...)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, provider)
				return
			}

			assert.NoError(t, err)
			assert.NotNil(t, provider)

			// Test shutdown
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()

			err = provider.Shutdown(ctx)
			assert.NoError(t, err)
		})
	}
}

func TestProvider_Shutdown(t *testing.T) {
	tests := []struct {
		name     string
		provider *Provider
		wantErr  bool
	}{
		{
			name: "disabled provider",
			provider: &Provider{
				enabled: false,
			},
			wantErr: false,
		},
		{
			name: "nil provider",
			provider: &Provider{
				enabled:  true,
				provider: nil,
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			err := tt.provider.Shutdown(ctx)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProvider_IsEnabled(t *testing.T) {
	tests := []struct {
		name     string
		provider *Provider
		want     bool
	}{
		{
			name: "enabled provider",
			provider: &Provider{
				enabled: true,
			},
			want: true,
		},
		{
			name: "disabled provider",
			provider: &Provider{
				enabled: false,
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.provider.IsEnabled())
		})
	}
}

func TestFactory_HTTPMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		operation      string
		expectedStatus int
		requestHeaders map[string]string
	}{
		{
			name:           "basic handler",
			operation:      "test-operation",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "with trace headers",
			operation:      "test-operation",
			expectedStatus: http.StatusOK,
			requestHeaders: map[string]string{
				"traceparent": "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Create provider with noop exporter for testing
			factory := NewFactory()
			provider, err := factory.NewProvider(
				tracing.WithServiceName("test-service"),
				tracing.WithExporterType(tracing.NoopExporter),
				tracing.WithDefaultPropagators(),
			)
			require.NoError(t, err)
			defer func() {
				if err := provider.Shutdown(context.Background()); err != nil {
					t.Errorf("failed to shutdown provider: %v", err)
				}
			}()

			// Create test handler
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.expectedStatus)
			})

			// Create middleware
			middleware := factory.HTTPMiddleware(tt.operation)
			require.NotNil(t, middleware)

			// Create traced handler
			tracedHandler := middleware(handler)

			// Create test request
			req := httptest.NewRequest("GET", "/test", nil)
			for k, v := range tt.requestHeaders {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()

			// Execute request
			tracedHandler.ServeHTTP(rec, req)

			// Verify response
			assert.Equal(t, tt.expectedStatus, rec.Code)
		})
	}
}

func newRecordingProvider(t *testing.T) (*Provider, *tracetest.SpanRecorder) {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	return NewProviderFromSDK(tp, "test-service"), recorder
}

func TestProvider_Start(t *testing.T) {
	provider, recorder := newRecordingProvider(t)

	ctx, endParent := provider.Start(context.Background(), "titlepage.render",
		tracing.String("http.route", "/"))
	_, endChild := provider.Start(ctx, "config.flatten")
	endChild(nil)
	endParent(errors.New("template failed"))

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	child, parent := spans[0], spans[1]
	assert.Equal(t, "config.flatten", child.Name())
	assert.Equal(t, parent.SpanContext().SpanID(), child.Parent().SpanID())

	assert.Equal(t, "titlepage.render", parent.Name())
	assert.Equal(t, codes.Error, parent.Status().Code)
	assert.Equal(t, "template failed", parent.Status().Description)
	if assert.Len(t, parent.Attributes(), 1) {
		assert.Equal(t, "http.route", string(parent.Attributes()[0].Key))
		assert.Equal(t, "/", parent.Attributes()[0].Value.AsString())
	}
}

func TestProvider_StartDisabled(t *testing.T) {
	provider := &Provider{enabled: false}

	ctx := context.Background()
	got, end := provider.Start(ctx, "noop")
	assert.Equal(t, ctx, got)
	assert.NotPanics(t, func() { end(errors.New("ignored")) })
}

func TestNewPropagator(t *testing.T) {
	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	tests := []struct {
		name       string
		types      []string
		wantHeader string
	}{
		{"tracecontext", []string{tracing.PropagatorTraceContext}, "traceparent"},
		{"b3 single header", []string{tracing.PropagatorB3}, "b3"},
		{"b3 multi header", []string{tracing.PropagatorB3Multi}, "x-b3-traceid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			carrier := propagation.MapCarrier{}
			newPropagator(tt.types).Inject(ctx, carrier)

			assert.Contains(t, carrier.Get(tt.wantHeader), "4bf92f3577b34da6a3ce929d0e0e4736")
		})
	}
}
