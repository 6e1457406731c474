// SentinelShield - Multi-Tenant Security Monitoring Backend
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentinelshield/sentinelshield

// Package metrics provides Prometheus instrumentation for the realtime
// broadcast subsystem, the feedback buffer, and the HTTP API.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Realtime connection metrics
	ConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "realtime_connections_active",
			Help: "Current number of live WebSocket connections",
		},
	)

	ConnectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "realtime_connections_total",
			Help: "Total number of accepted WebSocket connections",
		},
	)

	HeartbeatFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "realtime_heartbeat_failures_total",
			Help: "Total number of heartbeat deliveries that reaped a connection",
		},
	)

	// Broadcast metrics
	BroadcastsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "realtime_broadcasts_total",
			Help: "Total number of broadcast calls by message type",
		},
		[]string{"type"},
	)

	BroadcastDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "realtime_broadcast_deliveries_total",
			Help: "Total number of per-connection deliveries by message type",
		},
		[]string{"type"},
	)

	SendFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "realtime_send_failures_total",
			Help: "Total number of failed sends that disconnected a peer",
		},
	)

	// Offline queue metrics
	QueuedMessages = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "realtime_queued_messages_total",
			Help: "Total number of messages queued for offline users",
		},
	)

	QueueOverflows = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "realtime_queue_overflow_total",
			Help: "Total number of messages dropped at the per-user queue cap",
		},
	)

	QueueFlushed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "realtime_queue_flushed_total",
			Help: "Total number of queued messages delivered on reconnect",
		},
	)

	// Feedback and retraining metrics
	FeedbackReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedback_received_total",
			Help: "Total number of accepted feedback items by corrected classification",
		},
		[]string{"classification"},
	)

	FeedbackRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feedback_rejected_total",
			Help: "Total number of feedback items rejected by validation",
		},
	)

	RetrainingJobs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retraining_jobs_total",
			Help: "Total number of retraining job status transitions by status",
		},
		[]string{"status"},
	)

	TrainerDispatchFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "retraining_dispatch_failures_total",
			Help: "Total number of failed job dispatches to the training worker",
		},
	)

	// Ingest metrics
	IngestEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_events_total",
			Help: "Total number of detection events consumed from NATS by outcome",
		},
		[]string{"outcome"},
	)

	// API metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)
)

// RecordAPIRequest records a completed API request.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
