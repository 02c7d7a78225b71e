package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	ResultAccepted        = "accepted"
	ResultUnauthenticated = "unauthenticated"
	ResultStale           = "stale"
	ResultRejectedVersion = "rejected_version"
	ResultMalformed       = "malformed"
)

var (
	registerOnce sync.Once

	collectorFrames = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "d4",
			Subsystem: "collector",
			Name:      "frames_total",
			Help:      "Frames received by the collector, by result.",
		},
		[]string{"result"},
	)
	collectorBytes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "d4",
			Subsystem: "collector",
			Name:      "bytes_total",
			Help:      "Encoded bytes of accepted frames.",
		},
	)
	collectorConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "d4",
			Subsystem: "collector",
			Name:      "connections_active",
			Help:      "Open sensor connections.",
		},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(collectorFrames, collectorBytes, collectorConnections)
	})
}

func RecordFrame(result string, size int) {
	RegisterMetrics()
	collectorFrames.WithLabelValues(result).Inc()
	if result == ResultAccepted {
		collectorBytes.Add(float64(size))
	}
}

func ConnectionOpened() {
	RegisterMetrics()
	collectorConnections.Inc()
}

func ConnectionClosed() {
	RegisterMetrics()
	collectorConnections.Dec()
}
