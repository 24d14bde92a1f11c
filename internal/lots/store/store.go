// Package store persists lots and the append-only inventory ledger.
//
// The contract is deliberately narrow: the lifecycle engine owns every
// business rule, the store only reads rows, inserts rows and flips
// status/owner on existing lots. Quantities on lot rows are immutable and
// ledger rows are never updated or deleted; no method exists that could
// violate either.
package store

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Soozey/MADAVOLA/internal/lots/models"
	id "github.com/Soozey/MADAVOLA/pkg/domain"
)

// LedgerFilter narrows ledger listings for the read API.
type LedgerFilter struct {
	ActorID *id.ActorID
	LotID   *id.LotID
}

// LotFilter narrows lot listings for the read API.
type LotFilter struct {
	Owner  *id.ActorID
	Status *models.Status
}

// Store is the unit-of-work view of the lot and ledger tables. Implementations
// are either bound to one SQL transaction or to the in-memory fake; services
// obtain one through Tx.RunInTx and must not retain it.
type Store interface {
	// GetLot loads a lot without locking. sentinel.ErrNotFound when absent.
	GetLot(ctx context.Context, lotID id.LotID) (*models.Lot, error)
	// GetLotForUpdate loads a lot holding a pessimistic row lock for the
	// remainder of the transaction, so the status precondition checked by the
	// engine still holds at the point of mutation.
	GetLotForUpdate(ctx context.Context, lotID id.LotID) (*models.Lot, error)
	// GetLotsForUpdate locks and loads several lots at once, in a stable order
	// to keep concurrent consolidations deadlock-free. Any missing id yields
	// sentinel.ErrNotFound.
	GetLotsForUpdate(ctx context.Context, lotIDs []id.LotID) ([]*models.Lot, error)
	// ListLots returns lots matching the filter, most recently declared first.
	ListLots(ctx context.Context, filter LotFilter) ([]*models.Lot, error)
	// InsertLot persists a new lot row.
	InsertLot(ctx context.Context, lot *models.Lot) error
	// UpdateLotStatusAndOwner flips the two mutable columns of a lot row.
	// Quantity and lineage are untouched.
	UpdateLotStatusAndOwner(ctx context.Context, lotID id.LotID, status models.Status, owner id.ActorID) error
	// SetParentLot records lineage on a child/consolidated row.
	SetParentLot(ctx context.Context, lotID id.LotID, parent id.LotID) error

	// InsertLedgerEntries appends one operation's movement set.
	InsertLedgerEntries(ctx context.Context, entries []models.LedgerEntry) error
	// ListLedger returns movements matching the filter, newest first.
	ListLedger(ctx context.Context, filter LedgerFilter) ([]models.LedgerEntry, error)
	// SumDeltas computes a live balance over the ledger; nil filters aggregate
	// across all actors or all lots.
	SumDeltas(ctx context.Context, actorID *id.ActorID, lotID *id.LotID) (decimal.Decimal, error)
	// ListBalances aggregates deltas per (actor, lot) pair, optionally scoped
	// to one actor. Always computed from the ledger, never cached.
	ListBalances(ctx context.Context, actorID *id.ActorID) ([]models.Balance, error)
}

// Tx runs a function against a Store inside one atomic unit of work. Any error
// rolls the whole unit back: no orphan ledger entries, no half-created child
// lots survive a failed operation.
type Tx interface {
	RunInTx(ctx context.Context, fn func(s Store) error) error
}
