package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// KVOperations 存储层操作计数，result 为 ok / miss / error / quota
	KVOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "amine_kv_operations_total",
		Help: "Total key-value store operations by driver, operation and result",
	}, []string{"driver", "op", "result"})

	KVDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "amine_kv_operation_duration_seconds",
		Help:    "Key-value store operation duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14),
	}, []string{"driver", "op"})

	LoginTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "amine_login_total",
		Help: "Login attempts by result",
	}, []string{"result"})

	ModerationActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "amine_moderation_actions_total",
		Help: "Moderation actions by action and result",
	}, []string{"action", "result"})

	MigrationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "amine_migrations_total",
		Help: "Legacy identity migrations by result",
	}, []string{"result"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "amine_http_requests_total",
		Help: "HTTP requests by route, method and status",
	}, []string{"route", "method", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "amine_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "amine_events_published_total",
		Help: "Domain events published by topic",
	}, []string{"topic"})
)

// Result 把 error 折算成 ok / error 标签
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
