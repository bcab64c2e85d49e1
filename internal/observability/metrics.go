package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fbclone_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fbclone_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// ReactionsTotal counts reaction state transitions by kind.
	ReactionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fbclone_reactions_total",
		Help: "Reaction transitions applied to posts",
	}, []string{"kind", "transition"})

	// FriendRequestsTotal counts friend-graph mutations by action and outcome.
	FriendRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fbclone_friend_requests_total",
		Help: "Friend request mutations by action and outcome",
	}, []string{"action", "outcome"})

	// NotificationsTotal counts notification creation attempts by outcome.
	NotificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fbclone_notifications_total",
		Help: "Notification creation attempts by outcome",
	}, []string{"outcome"})

	// MediaUploadBytes records the size of stored media objects.
	MediaUploadBytes = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fbclone_media_upload_bytes",
		Help:    "Size of encoded media objects written to storage",
		Buckets: prometheus.ExponentialBuckets(16*1024, 2, 10),
	}, []string{"prefix"})

	// WebSocketConnectionsTotal is the gauge of active WebSocket connections.
	WebSocketConnectionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fbclone_websocket_connections_total",
		Help: "Total number of active WebSocket connections",
	})

	// WebSocketBackpressureDrops counts messages dropped due to backpressure by reason.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fbclone_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"reason"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

// Outcome converts a boolean mutation result into a metric label.
func Outcome(ok bool) string {
	if ok {
		return "applied"
	}
	return "rejected"
}
