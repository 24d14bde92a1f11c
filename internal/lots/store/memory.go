package store

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/Soozey/MADAVOLA/internal/lots/models"
	id "github.com/Soozey/MADAVOLA/pkg/domain"
	"github.com/Soozey/MADAVOLA/pkg/platform/sentinel"
)

// Memory is the in-memory lot/ledger store used by unit tests and local runs.
// RunInTx serializes writers and restores a snapshot on failure, which keeps
// the conservation invariant testable without a database.
type Memory struct {
	mu     sync.RWMutex
	lots   map[id.LotID]models.Lot
	ledger []models.LedgerEntry
}

func NewMemory() *Memory {
	return &Memory{lots: make(map[id.LotID]models.Lot)}
}

// RunInTx serializes the unit of work under the store lock. On error the
// pre-transaction snapshot is restored so partial writes never survive.
func (m *Memory) RunInTx(_ context.Context, fn func(s Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshotLots := make(map[id.LotID]models.Lot, len(m.lots))
	for k, v := range m.lots {
		snapshotLots[k] = v
	}
	snapshotLedgerLen := len(m.ledger)

	if err := fn(&memoryTxView{m: m}); err != nil {
		m.lots = snapshotLots
		m.ledger = m.ledger[:snapshotLedgerLen]
		return err
	}
	return nil
}

// memoryTxView gives the transaction body lock-free access; the outer RunInTx
// already holds the store lock, mirroring how a SQL transaction holds its
// row locks.
type memoryTxView struct {
	m *Memory
}

func (v *memoryTxView) GetLot(_ context.Context, lotID id.LotID) (*models.Lot, error) {
	return v.m.getLotLocked(lotID)
}

func (v *memoryTxView) GetLotForUpdate(_ context.Context, lotID id.LotID) (*models.Lot, error) {
	// The store lock held by RunInTx is the pessimistic lock here.
	return v.m.getLotLocked(lotID)
}

func (v *memoryTxView) GetLotsForUpdate(_ context.Context, lotIDs []id.LotID) ([]*models.Lot, error) {
	lots := make([]*models.Lot, 0, len(lotIDs))
	for _, lotID := range lotIDs {
		lot, err := v.m.getLotLocked(lotID)
		if err != nil {
			return nil, err
		}
		lots = append(lots, lot)
	}
	return lots, nil
}

func (v *memoryTxView) ListLots(_ context.Context, filter LotFilter) ([]*models.Lot, error) {
	return v.m.listLotsLocked(filter), nil
}

func (v *memoryTxView) InsertLot(_ context.Context, lot *models.Lot) error {
	if _, exists := v.m.lots[lot.ID]; exists {
		return sentinel.ErrConflict
	}
	v.m.lots[lot.ID] = *lot
	return nil
}

func (v *memoryTxView) UpdateLotStatusAndOwner(_ context.Context, lotID id.LotID, status models.Status, owner id.ActorID) error {
	lot, ok := v.m.lots[lotID]
	if !ok {
		return sentinel.ErrNotFound
	}
	lot.Status = status
	lot.Owner = owner
	v.m.lots[lotID] = lot
	return nil
}

func (v *memoryTxView) SetParentLot(_ context.Context, lotID id.LotID, parent id.LotID) error {
	lot, ok := v.m.lots[lotID]
	if !ok {
		return sentinel.ErrNotFound
	}
	lot.ParentLotID = &parent
	v.m.lots[lotID] = lot
	return nil
}

func (v *memoryTxView) InsertLedgerEntries(_ context.Context, entries []models.LedgerEntry) error {
	v.m.ledger = append(v.m.ledger, entries...)
	return nil
}

func (v *memoryTxView) ListLedger(_ context.Context, filter LedgerFilter) ([]models.LedgerEntry, error) {
	return v.m.listLedgerLocked(filter), nil
}

func (v *memoryTxView) SumDeltas(_ context.Context, actorID *id.ActorID, lotID *id.LotID) (decimal.Decimal, error) {
	return v.m.sumDeltasLocked(actorID, lotID), nil
}

func (v *memoryTxView) ListBalances(_ context.Context, actorID *id.ActorID) ([]models.Balance, error) {
	return v.m.listBalancesLocked(actorID), nil
}

// Read-path methods on Memory itself serve callers outside a transaction.

func (m *Memory) GetLot(_ context.Context, lotID id.LotID) (*models.Lot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getLotLocked(lotID)
}

func (m *Memory) ListLots(_ context.Context, filter LotFilter) ([]*models.Lot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listLotsLocked(filter), nil
}

func (m *Memory) ListLedger(_ context.Context, filter LedgerFilter) ([]models.LedgerEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listLedgerLocked(filter), nil
}

func (m *Memory) SumDeltas(_ context.Context, actorID *id.ActorID, lotID *id.LotID) (decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sumDeltasLocked(actorID, lotID), nil
}

func (m *Memory) ListBalances(_ context.Context, actorID *id.ActorID) ([]models.Balance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listBalancesLocked(actorID), nil
}

func (m *Memory) getLotLocked(lotID id.LotID) (*models.Lot, error) {
	lot, ok := m.lots[lotID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &lot, nil
}

func (m *Memory) listLotsLocked(filter LotFilter) []*models.Lot {
	lots := make([]*models.Lot, 0, len(m.lots))
	for _, lot := range m.lots {
		if filter.Owner != nil && lot.Owner != *filter.Owner {
			continue
		}
		if filter.Status != nil && lot.Status != *filter.Status {
			continue
		}
		l := lot
		lots = append(lots, &l)
	}
	sort.Slice(lots, func(i, j int) bool {
		return lots[i].DeclaredAt.After(lots[j].DeclaredAt)
	})
	return lots
}

func (m *Memory) listLedgerLocked(filter LedgerFilter) []models.LedgerEntry {
	entries := make([]models.LedgerEntry, 0, len(m.ledger))
	for i := len(m.ledger) - 1; i >= 0; i-- {
		e := m.ledger[i]
		if filter.ActorID != nil && e.ActorID != *filter.ActorID {
			continue
		}
		if filter.LotID != nil && e.LotID != *filter.LotID {
			continue
		}
		entries = append(entries, e)
	}
	return entries
}

func (m *Memory) sumDeltasLocked(actorID *id.ActorID, lotID *id.LotID) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range m.ledger {
		if actorID != nil && e.ActorID != *actorID {
			continue
		}
		if lotID != nil && e.LotID != *lotID {
			continue
		}
		sum = sum.Add(e.QuantityDelta)
	}
	return sum
}

func (m *Memory) listBalancesLocked(actorID *id.ActorID) []models.Balance {
	type key struct {
		actor id.ActorID
		lot   id.LotID
	}
	sums := make(map[key]decimal.Decimal)
	order := make([]key, 0)
	for _, e := range m.ledger {
		if actorID != nil && e.ActorID != *actorID {
			continue
		}
		k := key{actor: e.ActorID, lot: e.LotID}
		if _, seen := sums[k]; !seen {
			order = append(order, k)
		}
		sums[k] = sums[k].Add(e.QuantityDelta)
	}
	balances := make([]models.Balance, 0, len(order))
	for _, k := range order {
		balances = append(balances, models.Balance{ActorID: k.actor, LotID: k.lot, Quantity: sums[k]})
	}
	return balances
}
