// Package metrics exposes tax recording counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	EventsRecorded prometheus.Counter
	EventConflicts prometheus.Counter
	StatusUpdates  *prometheus.CounterVec
}

// New creates and registers tax metrics on the default registerer.
func New() *Metrics {
	return &Metrics{
		EventsRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "madavola_tax_events_recorded_total",
			Help: "Taxable events successfully apportioned and recorded.",
		}),
		EventConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "madavola_tax_event_conflicts_total",
			Help: "Recording attempts rejected because the event was already taxed.",
		}),
		StatusUpdates: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "madavola_tax_status_updates_total",
			Help: "Tax record status transitions by target status.",
		}, []string{"status"}),
	}
}
