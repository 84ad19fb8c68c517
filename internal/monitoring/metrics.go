// Package monitoring exposes Prometheus collectors for the queue engine.
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// QueueDepth tracks the number of active (waiting plus called) entries.
	QueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "motogarage_queue_depth",
		Help: "Number of active entries in the walk-in queue.",
	})

	// EntriesAdmitted counts successful AddToQueue operations.
	EntriesAdmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "motogarage_queue_entries_admitted_total",
		Help: "Customers admitted into the walk-in queue.",
	})

	// EntriesCalled counts entries handed to a technician.
	EntriesCalled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "motogarage_queue_entries_called_total",
		Help: "Queue entries called by staff.",
	})

	// EntriesServed counts entries completed successfully.
	EntriesServed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "motogarage_queue_entries_served_total",
		Help: "Queue entries served to completion.",
	})

	// EntriesCancelled counts withdrawn entries, clears included.
	EntriesCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "motogarage_queue_entries_cancelled_total",
		Help: "Queue entries cancelled by staff or customers.",
	})

	// EntriesExpired counts waiting entries lazily marked no_show.
	EntriesExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "motogarage_queue_entries_expired_total",
		Help: "Waiting entries whose ticket expired before being called.",
	})

	// WaitEstimateMinutes observes the wait estimate given at admission.
	WaitEstimateMinutes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "motogarage_queue_wait_estimate_minutes",
		Help:    "Estimated wait time quoted to customers at admission.",
		Buckets: []float64{5, 10, 15, 30, 45, 60, 90, 120},
	})
)
