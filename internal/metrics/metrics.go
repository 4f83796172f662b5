// Package metrics exposes the Prometheus collectors of the attendance API.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "chamada"

var (
	Detections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "detections_total",
		Help:      "Detection sessions created, by outcome",
	}, []string{"outcome"})

	FacesDetected = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "faces_detected_total",
		Help:      "Total number of faces detected in classroom photos",
	})

	FacesRecognized = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "faces_recognized_total",
		Help:      "Total number of faces matched to an enrolled student",
	})

	AttendanceMarked = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "attendance_marked_total",
		Help:      "Presence records created, by source",
	}, []string{"source"})

	AttendanceDuplicates = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "attendance_duplicates_total",
		Help:      "Marks ignored because the student was already present that day",
	})

	TrainingSamples = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "training_samples_total",
		Help:      "Training sample updates, by operation",
	}, []string{"op"})

	TrainingEvicted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "training_samples_evicted_total",
		Help:      "Samples dropped by FIFO eviction",
	})

	Verifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "verifications_total",
		Help:      "One-to-one student verifications, by result",
	}, []string{"result"})

	EmbeddingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "embedding_request_duration_seconds",
		Help:      "Latency of embedding service calls",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
	}, []string{"operation", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "ws_connections",
		Help:      "Number of active WebSocket connections",
	})
)

// ObserveEmbedding records one embedding service call.
func ObserveEmbedding(operation string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	EmbeddingDuration.WithLabelValues(operation, status).Observe(time.Since(start).Seconds())
}
