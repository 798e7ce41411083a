package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/fx"
)

// Metrics holds the prometheus instruments the service exports.
type Metrics struct {
	HTTPRequests          *prometheus.CounterVec
	HTTPDuration          *prometheus.HistogramVec
	Assemblies            *prometheus.CounterVec
	LowStockNotifications prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "stockroom_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stockroom_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		Assemblies: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "stockroom_assemblies_total",
			Help: "Assembly runs by outcome.",
		}, []string{"status"}),
		LowStockNotifications: promauto.NewCounter(prometheus.CounterOpts{
			Name: "stockroom_low_stock_notifications_total",
			Help: "Low-stock notifications enqueued.",
		}),
	}
}

var Module = fx.Module("metrics",
	fx.Provide(New),
)
