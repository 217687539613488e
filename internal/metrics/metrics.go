// Package metrics defines the application's Prometheus collectors.
// They register with the default registry that /metrics serves.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ops_portal"

var (
	// Subscribers is the number of connected push subscribers.
	Subscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "broadcast",
		Name:      "subscribers",
		Help:      "Connected push subscribers.",
	})

	// Broadcasts counts published events by type.
	Broadcasts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "broadcast",
		Name:      "events_total",
		Help:      "Events published to subscribers.",
	}, []string{"event"})

	// DroppedSubscribers counts subscribers removed after a failed send.
	DroppedSubscribers = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "broadcast",
		Name:      "dropped_subscribers_total",
		Help:      "Subscribers removed after a failed delivery.",
	})

	// LockWait observes how long mutations wait for their locks.
	LockWait = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "locks",
		Name:      "wait_seconds",
		Help:      "Time spent waiting to acquire mutation locks.",
		Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 2.5, 5},
	}, []string{"key"})

	// LockTimeouts counts lock acquisitions that gave up.
	LockTimeouts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "locks",
		Name:      "timeouts_total",
		Help:      "Lock acquisitions that timed out.",
	}, []string{"key"})

	// Mutations counts completed mutations by operation and outcome.
	Mutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "services",
		Name:      "mutations_total",
		Help:      "Mutations by operation and result.",
	}, []string{"op", "result"})
)
