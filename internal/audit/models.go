// Package audit captures the side-channel trail of successful operations.
//
// The engine emits events after each successful lifecycle or taxation
// operation and never waits for acknowledgement: a full buffer or a dead sink
// drops events rather than failing the business operation. Interpretation of
// the trail belongs to the compliance tooling, not to this service.
package audit

import (
	"context"
	"time"

	id "github.com/Soozey/MADAVOLA/pkg/domain"
)

// Actions emitted by this service.
const (
	ActionLotCreated      = "lot_created"
	ActionLotTransferred  = "lot_transferred"
	ActionLotConsolidated = "lot_consolidated"
	ActionLotSplit        = "lot_split"
	ActionLotBlocked      = "lot_blocked"
	ActionLotSeized       = "lot_seized"
	ActionTaxesRecorded   = "taxes_recorded"
	ActionTaxStatusSet    = "tax_status_set"
)

// Event is one audit trail entry. Keep it transport-agnostic so sinks can fan
// out to Kafka, Postgres or memory without translation.
type Event struct {
	Timestamp  time.Time         `json:"timestamp"`
	ActorID    id.ActorID        `json:"actor_id"`
	Action     string            `json:"action"`
	EntityType string            `json:"entity_type"`
	EntityID   string            `json:"entity_id"`
	Meta       map[string]string `json:"meta,omitempty"`
}

// Sink receives drained events. Append may block; only the worker calls it.
type Sink interface {
	Append(ctx context.Context, event Event) error
}
