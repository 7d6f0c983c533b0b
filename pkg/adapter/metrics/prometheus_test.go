// pkg/adapter/metrics/prometheus_test.go
package metrics

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damianoneill/go-titlepage/pkg/domain/metrics"
)

func newTestCollector(t *testing.T, reg *prometheus.Registry, opts ...metrics.Option) *prometheusCollector {
	t.Helper()

	collector, err := NewMetricsFactoryWithRegistry(reg).NewCollector(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = collector.Close() })

	return collector.(*prometheusCollector)
}

func TestPrometheusFactory(t *testing.T) {
	tests := []struct {
		name    string
		options []metrics.Option
	}{
		{
			name: "creates collector with default options",
			options: []metrics.Option{
				metrics.WithServiceName("test-service"),
			},
		},
		{
			name: "creates collector with custom options",
			options: []metrics.Option{
				metrics.WithServiceName("custom-service"),
				metrics.WithLabels(map[string]string{
					"environment": "test",
				}),
				metrics.WithBuckets([]float64{0.1, 0.5, 1.0}),
				metrics.WithSubsystem("titlepage"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := prometheus.NewRegistry()
			c := newTestCollector(t, reg, tt.options...)

			c.CollectRequestMetrics("GET", "/", 200, 0.1)
			c.CollectRedaction("partial")
			c.CollectPageRender("ok", 0.2)

			families, err := reg.Gather()
			require.NoError(t, err)
			assert.Len(t, families, 4, "errors counter has no series until a failure")
		})
	}
}

func TestPrometheusCollector_Counts(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := newTestCollector(t, reg, metrics.WithServiceName("orders-api"))

	c.CollectRequestMetrics("GET", "/", 200, 0.01)
	c.CollectRequestMetrics("GET", "/", 429, 0.01)
	c.CollectRedaction("partial")
	c.CollectRedaction("partial")
	c.CollectRedaction("connection-string")
	c.CollectPageRender("ok", 0.05)

	assert.Equal(t, float64(1), testutil.ToFloat64(c.requestsTotal.WithLabelValues("GET", "/", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.errorsTotal.WithLabelValues("GET", "/", "429")))
	assert.Equal(t, float64(2), testutil.ToFloat64(c.redactionsTotal.WithLabelValues("partial")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.redactionsTotal.WithLabelValues("connection-string")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.renderDuration, "title_page_render_duration_seconds"))
}

func TestPrometheusCollector_SubsystemPrefixesNames(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := newTestCollector(t, reg,
		metrics.WithServiceName("orders-api"),
		metrics.WithSubsystem("titlepage"),
	)
	c.CollectRedaction("hidden")

	assert.Equal(t, 1, testutil.CollectAndCount(c.redactionsTotal, "titlepage_config_redactions_total"))
}

func TestPrometheusCollectorConcurrency(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := newTestCollector(t, reg, metrics.WithServiceName("concurrent-test"))

	const goroutines = 10
	const iterations = 100

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				c.CollectRequestMetrics("GET", "/", 200, float64(j)*0.1)
				c.CollectRedaction("passthrough")
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, float64(goroutines*iterations), testutil.ToFloat64(c.redactionsTotal.WithLabelValues("passthrough")))
}

func TestPrometheusCollector_CloseUnregisters(t *testing.T) {
	reg := prometheus.NewRegistry()
	factory := NewMetricsFactoryWithRegistry(reg)

	first, err := factory.NewCollector(metrics.WithServiceName("orders-api"))
	require.NoError(t, err)
	require.NoError(t, first.Close())
	require.NoError(t, first.Close())

	second, err := factory.NewCollector(metrics.WithServiceName("orders-api"))
	require.NoError(t, err)
	assert.NoError(t, second.Close())
}

func TestPrometheusCollectorErrors(t *testing.T) {
	tests := []struct {
		name          string
		setupRegistry func(reg *prometheus.Registry)
		options       []metrics.Option
		wantErrMsg    string
	}{
		{
			name: "fails with empty service name",
			options: []metrics.Option{
				metrics.WithServiceName(""),
			},
			wantErrMsg: "service name is required",
		},
		{
			name: "fails with invalid bucket values",
			options: []metrics.Option{
				metrics.WithServiceName("test"),
				metrics.WithBuckets([]float64{2.0, 1.0}),
			},
			wantErrMsg: "buckets must be in increasing order",
		},
		{
			name: "fails with duplicate registration",
			setupRegistry: func(reg *prometheus.Registry) {
				reg.MustRegister(prometheus.NewCounterVec(
					prometheus.CounterOpts{
						Name: "config_redactions_total",
						Help: "Registered elsewhere",
					},
					[]string{"key"},
				))
			},
			options: []metrics.Option{
				metrics.WithServiceName("test"),
			},
			wantErrMsg: "registering collector",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := prometheus.NewRegistry()
			if tt.setupRegistry != nil {
				tt.setupRegistry(reg)
			}

			collector, err := NewMetricsFactoryWithRegistry(reg).NewCollector(tt.options...)

			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErrMsg)
			assert.Nil(t, collector)
		})
	}
}
