// pkg/adapter/http/router_test.go
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	domainhttp "github.com/damianoneill/go-titlepage/pkg/domain/http"
	mocklog "github.com/damianoneill/go-titlepage/pkg/domain/logging/mocks"
	mockmetrics "github.com/damianoneill/go-titlepage/pkg/domain/metrics/mocks"
	mocktracing "github.com/damianoneill/go-titlepage/pkg/domain/tracing/mocks"
)

func TestNewFactory(t *testing.T) {
	factory := NewFactory()
	assert.NotNil(t, factory)
}

func TestNewRouter(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tests := []struct {
		name         string
		options      []domainhttp.Option
		setupMetrics func(*mockmetrics.MockFactory)
		wantErr      bool
	}{
		{
			name: "success with minimal options",
			options: []domainhttp.Option{
				domainhttp.WithService("test-service", "1.0"),
			},
			wantErr: false,
		},
		{
			name:    "error without service name",
			options: []domainhttp.Option{},
			wantErr: true,
		},
		{
			name: "success with metrics",
			options: []domainhttp.Option{
				domainhttp.WithService("test-service", "1.0"),
			},
			setupMetrics: func(mf *mockmetrics.MockFactory) {
				collector := mockmetrics.NewMockCollector(ctrl)
				mf.EXPECT().NewCollector(gomock.Any()).Return(collector, nil)
			},
			wantErr: false,
		},
		{
			name: "error when collector cannot be created",
			options: []domainhttp.Option{
				domainhttp.WithService("test-service", "1.0"),
			},
			setupMetrics: func(mf *mockmetrics.MockFactory) {
				mf.EXPECT().NewCollector(gomock.Any()).Return(nil, errors.New("duplicate metrics collector registration"))
			},
			wantErr: true,
		},
		{
			name: "error with invalid rate limit",
			options: []domainhttp.Option{
				domainhttp.WithService("test-service", "1.0"),
				domainhttp.WithRateLimit(-1, 1, "/"),
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			factory := NewFactory()

			opts := tt.options
			if tt.setupMetrics != nil {
				metricsFactory := mockmetrics.NewMockFactory(ctrl)
				tt.setupMetrics(metricsFactory)
				opts = append(opts, domainhttp.WithMetricsFactory(metricsFactory))
			}

			router, err := factory.NewRouter(opts...)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, router)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, router)
			}
		})
	}
}

func TestRouterProbeEndpoints(t *testing.T) {
	factory := NewFactory()
	router, err := factory.NewRouter(
		domainhttp.WithService("test-service", "1.0"),
		domainhttp.WithProbeHandlers(domainhttp.DefaultProbeHandlers()),
	)
	assert.NoError(t, err)

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   map[string]interface{}
	}{
		{
			name:       "liveness probe",
			path:       "/internal/health",
			wantStatus: http.StatusOK,
			wantBody: map[string]interface{}{
				"status": "ok",
			},
		},
		{
			name:       "readiness probe",
			path:       "/internal/ready",
			wantStatus: http.StatusOK,
			wantBody: map[string]interface{}{
				"status": "ok",
			},
		},
		{
			name:       "startup probe",
			path:       "/internal/startup",
			wantStatus: http.StatusOK,
			wantBody: map[string]interface{}{
				"status": "ok",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest("GET", tt.path, nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)

			var got map[string]interface{}
			err := json.NewDecoder(w.Body).Decode(&got)
			assert.NoError(t, err)
			assert.Equal(t, tt.wantBody["status"], got["status"])
		})
	}
}

func TestRouterMiddleware(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	logger := mocklog.NewMockLogger(ctrl)
	logger.EXPECT().InfoWith(gomock.Any(), gomock.Any()).AnyTimes()
	logger.EXPECT().WithContext(gomock.Any()).Return(logger).AnyTimes()

	collector := mockmetrics.NewMockCollector(ctrl)
	collector.EXPECT().CollectRequestMetrics(
		gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(),
	).AnyTimes()

	metricsFactory := mockmetrics.NewMockFactory(ctrl)
	metricsFactory.EXPECT().NewCollector(gomock.Any()).Return(collector, nil)

	tracingProvider := mocktracing.NewMockProvider(ctrl)

	factory := NewFactory()
	router, err := factory.NewRouter(
		domainhttp.WithService("test-service", "1.0"),
		domainhttp.WithLogger(logger),
		domainhttp.WithMetricsFactory(metricsFactory),
		domainhttp.WithTracingProvider(tracingProvider),
	)
	assert.NoError(t, err)

	// Add test endpoint
	router.(*Router).Get("/test", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Test request
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/test", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouterClose(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	collector := mockmetrics.NewMockCollector(ctrl)
	collector.EXPECT().Close().Return(nil)

	metricsFactory := mockmetrics.NewMockFactory(ctrl)
	metricsFactory.EXPECT().NewCollector(gomock.Any()).Return(collector, nil)

	factory := NewFactory()
	router, err := factory.NewRouter(
		domainhttp.WithService("test-service", "1.0"),
		domainhttp.WithMetricsFactory(metricsFactory),
	)
	assert.NoError(t, err)

	// Test close
	err = router.(*Router).Close(context.Background())
	assert.NoError(t, err)
}

func TestRouterSharedCollectorIsNotClosed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	collector := mockmetrics.NewMockCollector(ctrl)
	collector.EXPECT().CollectRequestMetrics("GET", "/", http.StatusOK, gomock.Any())
	collector.EXPECT().Close().Times(0)

	metricsFactory := mockmetrics.NewMockFactory(ctrl)
	metricsFactory.EXPECT().NewCollector(gomock.Any()).Times(0)

	router, err := NewFactory().NewRouter(
		domainhttp.WithService("test-service", "1.0"),
		domainhttp.WithMetricsFactory(metricsFactory),
		domainhttp.WithMetricsCollector(collector),
	)
	assert.NoError(t, err)

	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NoError(t, router.(*Router).Close(context.Background()))
}

func TestRouterObservabilityExclusions(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	logger := mocklog.NewMockLogger(ctrl)
	logger.EXPECT().InfoWith(gomock.Any(), gomock.Any()).AnyTimes()
	logger.EXPECT().WithContext(gomock.Any()).Return(logger).MinTimes(1)

	collector := mockmetrics.NewMockCollector(ctrl)
	collector.EXPECT().CollectRequestMetrics(
		gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(),
	).MinTimes(1)

	metricsFactory := mockmetrics.NewMockFactory(ctrl)
	metricsFactory.EXPECT().NewCollector(gomock.Any()).Return(collector, nil)

	factory := NewFactory()
	router, err := factory.NewRouter(
		domainhttp.WithService("test-service", "1.0"),
		domainhttp.WithLogger(logger),
		domainhttp.WithMetricsFactory(metricsFactory),
		domainhttp.WithObservabilityExclusions(
			[]string{"/excluded"},
			[]string{"/excluded"},
		),
	)
	assert.NoError(t, err)

	// Add test endpoints
	router.(*Router).Get("/test", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(10 * time.Millisecond) // Add small delay to ensure metrics are collected
		w.WriteHeader(http.StatusOK)
	})
	router.(*Router).Get("/excluded", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name string
		path string
	}{
		{
			name: "included path",
			path: "/test",
		},
		{
			name: "excluded path",
			path: "/excluded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest("GET", tt.path, nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
}

func TestRouterRateLimit(t *testing.T) {
	factory := NewFactory()
	router, err := factory.NewRouter(
		domainhttp.WithService("test-service", "1.0"),
		domainhttp.WithRateLimit(0.001, 2, "/"),
	)
	assert.NoError(t, err)
	defer func() { _ = router.(*Router).Close(context.Background()) }()

	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	get := func(path, remote string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = remote
		router.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, get("/", "10.0.0.1:1000").Code)
	assert.Equal(t, http.StatusOK, get("/", "10.0.0.1:1001").Code)

	throttled := get("/", "10.0.0.1:1002")
	assert.Equal(t, http.StatusTooManyRequests, throttled.Code)
	assert.Equal(t, "1", throttled.Header().Get("Retry-After"))

	// other clients have their own bucket
	assert.Equal(t, http.StatusOK, get("/", "10.0.0.2:1000").Code)

	// probes are not on the limited path list
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, get("/internal/health", "10.0.0.1:1003").Code)
	}
}
