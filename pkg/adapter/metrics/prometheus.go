// pkg/adapter/metrics/prometheus.go
package metrics

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/damianoneill/go-titlepage/pkg/domain/metrics"
	"github.com/damianoneill/go-titlepage/pkg/domain/options"
)

var _ metrics.Collector = (*prometheusCollector)(nil)

type prometheusCollector struct {
	requestDuration *prometheus.HistogramVec
	requestsTotal   *prometheus.CounterVec
	errorsTotal     *prometheus.CounterVec
	redactionsTotal *prometheus.CounterVec
	renderDuration  *prometheus.HistogramVec
	reg             prometheus.Registerer
	mu              sync.RWMutex
	closed          bool
}

// PrometheusFactory creates collectors registered with a single registerer.
type PrometheusFactory struct {
	reg prometheus.Registerer
}

// NewMetricsFactory registers collectors with the process-wide default
// registry, which is what promhttp.Handler serves.
func NewMetricsFactory() metrics.Factory {
	return NewMetricsFactoryWithRegistry(prometheus.DefaultRegisterer)
}

// NewMetricsFactoryWithRegistry registers collectors with reg. Tests use a
// fresh prometheus.NewRegistry() so collectors do not clash.
func NewMetricsFactoryWithRegistry(reg prometheus.Registerer) *PrometheusFactory {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &PrometheusFactory{reg: reg}
}

func (f *PrometheusFactory) NewCollector(opts ...metrics.Option) (metrics.Collector, error) {
	o := metrics.DefaultOptions()
	if err := options.Apply(&o, opts...); err != nil {
		return nil, fmt.Errorf("applying option: %w", err)
	}

	if o.ServiceName == "" {
		return nil, fmt.Errorf("service name is required")
	}

	labels := prometheus.Labels{
		"service": o.ServiceName,
	}
	for k, v := range o.Labels {
		labels[k] = v
	}

	buckets := o.Buckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}

	for i := 1; i < len(buckets); i++ {
		if buckets[i] <= buckets[i-1] {
			return nil, fmt.Errorf("buckets must be in increasing order: %v", buckets)
		}
	}

	c := &prometheusCollector{
		reg: f.reg,
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Subsystem:   o.Subsystem,
				Name:        "http_request_duration_seconds",
				Help:        "HTTP request duration in seconds",
				Buckets:     buckets,
				ConstLabels: labels,
			},
			[]string{"method", "path", "status"},
		),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Subsystem:   o.Subsystem,
				Name:        "http_requests_total",
				Help:        "Total number of HTTP requests",
				ConstLabels: labels,
			},
			[]string{"method", "path", "status"},
		),
		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Subsystem:   o.Subsystem,
				Name:        "http_errors_total",
				Help:        "Total number of HTTP errors",
				ConstLabels: labels,
			},
			[]string{"method", "path", "status"},
		),
		redactionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Subsystem:   o.Subsystem,
				Name:        "config_redactions_total",
				Help:        "Configuration values passed through the obfuscation policy",
				ConstLabels: labels,
			},
			[]string{"action"},
		),
		renderDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Subsystem:   o.Subsystem,
				Name:        "title_page_render_duration_seconds",
				Help:        "Title page render duration in seconds",
				Buckets:     buckets,
				ConstLabels: labels,
			},
			[]string{"outcome"},
		),
	}

	collectors := c.collectors()
	for i, collector := range collectors {
		if err := c.reg.Register(collector); err != nil {
			for _, registered := range collectors[:i] {
				c.reg.Unregister(registered)
			}
			return nil, fmt.Errorf("registering collector: %w", err)
		}
	}

	return c, nil
}

func (c *prometheusCollector) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		c.requestDuration,
		c.requestsTotal,
		c.errorsTotal,
		c.redactionsTotal,
		c.renderDuration,
	}
}

func (c *prometheusCollector) CollectRequestMetrics(method, path string, status int, duration float64) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	labels := prometheus.Labels{
		"method": method,
		"path":   path,
		"status": strconv.Itoa(status),
	}

	c.requestDuration.With(labels).Observe(duration)
	c.requestsTotal.With(labels).Inc()

	if status >= 400 {
		c.errorsTotal.With(labels).Inc()
	}
}

func (c *prometheusCollector) CollectRedaction(action string) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	c.redactionsTotal.WithLabelValues(action).Inc()
}

func (c *prometheusCollector) CollectPageRender(outcome string, duration float64) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	c.renderDuration.WithLabelValues(outcome).Observe(duration)
}

// Close unregisters every collector. It is safe to call more than once.
func (c *prometheusCollector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	for _, collector := range c.collectors() {
		c.reg.Unregister(collector)
	}
	c.closed = true

	return nil
}
