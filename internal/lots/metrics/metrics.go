package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts lifecycle operations for the lot engine.
type Metrics struct {
	LotsCreated      prometheus.Counter
	LotsTransferred  prometheus.Counter
	LotsConsolidated prometheus.Counter
	LotsSplit        prometheus.Counter
	LotsBlocked      prometheus.Counter
	LotsSeized       prometheus.Counter
}

// New creates and registers lot engine metrics on the default registerer.
func New() *Metrics {
	return &Metrics{
		LotsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "madavola_lots_created_total",
			Help: "Lots declared into the system.",
		}),
		LotsTransferred: promauto.NewCounter(prometheus.CounterOpts{
			Name: "madavola_lots_transferred_total",
			Help: "Ownership transfers completed.",
		}),
		LotsConsolidated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "madavola_lots_consolidated_total",
			Help: "Consolidation operations completed.",
		}),
		LotsSplit: promauto.NewCounter(prometheus.CounterOpts{
			Name: "madavola_lots_split_total",
			Help: "Split operations completed.",
		}),
		LotsBlocked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "madavola_lots_blocked_total",
			Help: "Lots blocked by enforcement.",
		}),
		LotsSeized: promauto.NewCounter(prometheus.CounterOpts{
			Name: "madavola_lots_seized_total",
			Help: "Lots seized by enforcement.",
		}),
	}
}
