package metrics

import (
	"sync"

	"github.com/1cvibe/connectgate/internal/core"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Ensure Metrics implements core.Recorder interface at compile time
var _ core.Recorder = (*Metrics)(nil)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// Connect flow Metrics
	ConnectStartedTotal   *prometheus.CounterVec
	StateValidationTotal  *prometheus.CounterVec
	OAuthCallbackTotal    *prometheus.CounterVec
	DisconnectTotal       *prometheus.CounterVec
	ConnectionsActive     *prometheus.GaugeVec
	TokenRefreshTotal     *prometheus.CounterVec
	TokenExchangeTotal    *prometheus.CounterVec
	TokenExchangeDuration *prometheus.HistogramVec

	// HTTP Request Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Database Query Metrics
	DatabaseQueryErrorsTotal *prometheus.CounterVec
}

var (
	defaultMetrics *Metrics
	once           sync.Once
)

// Init initializes metrics based on enabled flag
// If enabled=true, returns Prometheus-based Metrics
// If enabled=false, returns NoopMetrics (zero overhead)
// Uses sync.Once to ensure Prometheus metrics are only registered once
func Init(enabled bool) core.Recorder {
	if !enabled {
		return NewNoopMetrics()
	}

	once.Do(func() {
		defaultMetrics = initMetrics()
	})
	return defaultMetrics
}

// initMetrics creates and registers all Prometheus metrics
func initMetrics() *Metrics {
	m := &Metrics{
		ConnectStartedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oauth_connect_started_total",
				Help: "Total number of connect flows started",
			},
			[]string{"provider", "result"}, // success, error
		),
		StateValidationTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oauth_state_validation_total",
				Help: "Total number of state token validations",
			},
			[]string{"result"}, // success, not_found, expired, provider_mismatch, error
		),
		OAuthCallbackTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oauth_callback_total",
				Help: "Total number of provider callbacks by outcome",
			},
			[]string{"provider", "result"}, // success or an error reason code
		),
		DisconnectTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oauth_disconnect_total",
				Help: "Total number of disconnect requests",
			},
			[]string{"provider"},
		),
		ConnectionsActive: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "oauth_connections_active",
				Help: "Current number of stored provider connections",
			},
			[]string{"provider"},
		),
		TokenRefreshTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oauth_token_refresh_total",
				Help: "Total number of connection token refreshes",
			},
			[]string{"provider", "result"},
		),
		TokenExchangeTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oauth_token_exchange_total",
				Help: "Total number of token endpoint calls",
			},
			[]string{"provider", "grant_type", "result"},
		),
		TokenExchangeDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "oauth_token_exchange_duration_seconds",
				Help: "Token endpoint latency in seconds",
				Buckets: []float64{
					0.050,
					0.100,
					0.250,
					0.500,
					1.0,
					2.5,
					5.0,
					10.0,
				},
			},
			[]string{"provider", "grant_type"},
		),

		// HTTP Request Metrics
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "http_request_duration_seconds",
				Help: "HTTP request latency in seconds",
				Buckets: []float64{
					0.001,
					0.005,
					0.010,
					0.025,
					0.050,
					0.100,
					0.250,
					0.500,
					1.0,
					2.5,
					5.0,
					10.0,
				},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Current number of HTTP requests being served",
			},
		),

		// Database Query Metrics
		DatabaseQueryErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "database_query_errors_total",
				Help: "Total number of database query errors",
			},
			[]string{"operation"}, // get_connection, upsert_connection, count_connections
		),
	}

	return m
}
