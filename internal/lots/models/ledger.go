package models

import (
	"time"

	"github.com/shopspring/decimal"

	id "github.com/Soozey/MADAVOLA/pkg/domain"
)

// MovementType enumerates the ledger movements a lifecycle operation may write.
type MovementType string

const (
	MovementCreate         MovementType = "create"
	MovementTransferOut    MovementType = "transfer_out"
	MovementTransferIn     MovementType = "transfer_in"
	MovementConsolidateOut MovementType = "consolidate_out"
	MovementConsolidateIn  MovementType = "consolidate_in"
	MovementSplitOut       MovementType = "split_out"
	MovementSplitIn        MovementType = "split_in"
	MovementSeizureOut     MovementType = "seizure_out"
	MovementSeizureIn      MovementType = "seizure_in"
)

// RefEventType names the kind of lifecycle event a ledger entry references.
type RefEventType string

const (
	RefEventLot           RefEventType = "lot"
	RefEventTransfer      RefEventType = "transfer"
	RefEventConsolidation RefEventType = "consolidation"
	RefEventSplit         RefEventType = "split"
	RefEventPenalty       RefEventType = "penalty"
)

// LedgerEntry is one append-only inventory movement. Entries are never updated
// or deleted. Every operation except create writes a set of entries whose
// deltas sum to exactly zero: quantity only moves, it never appears or
// vanishes after declaration.
type LedgerEntry struct {
	ID            id.LedgerEntryID
	ActorID       id.ActorID
	LotID         id.LotID
	MovementType  MovementType
	QuantityDelta decimal.Decimal
	RefEventType  RefEventType
	RefEventID    string
	CreatedAt     time.Time
}

// Balance is the live aggregation of ledger deltas for one (actor, lot) pair.
// It is always computed at read time, never cached.
type Balance struct {
	ActorID  id.ActorID
	LotID    id.LotID
	Quantity decimal.Decimal
}
