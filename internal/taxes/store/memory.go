package store

import (
	"context"
	"sort"
	"sync"

	"github.com/Soozey/MADAVOLA/internal/taxes/models"
	id "github.com/Soozey/MADAVOLA/pkg/domain"
	"github.com/Soozey/MADAVOLA/pkg/platform/sentinel"
)

// uniqueKey mirrors the partial unique index columns.
type uniqueKey struct {
	eventType string
	eventID   string
	taxType   models.TaxType
	level     models.BeneficiaryLevel
	benefKey  string
}

func keyOf(r *models.TaxRecord) uniqueKey {
	return uniqueKey{
		eventType: r.EventType,
		eventID:   r.EventID,
		taxType:   r.TaxType,
		level:     r.Level,
		benefKey:  r.BeneficiaryKey,
	}
}

// Memory is the in-memory tax record store used by unit tests and local runs.
// It reproduces the active-scoped uniqueness guard of the SQL schema.
type Memory struct {
	mu      sync.RWMutex
	records map[id.TaxRecordID]models.TaxRecord
}

func NewMemory() *Memory {
	return &Memory{records: make(map[id.TaxRecordID]models.TaxRecord)}
}

// RunInTx serializes the unit of work under the store lock and restores a
// snapshot on error.
func (m *Memory) RunInTx(_ context.Context, fn func(s Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := make(map[id.TaxRecordID]models.TaxRecord, len(m.records))
	for k, v := range m.records {
		snapshot[k] = v
	}

	if err := fn(&memoryTxView{m: m}); err != nil {
		m.records = snapshot
		return err
	}
	return nil
}

type memoryTxView struct {
	m *Memory
}

func (v *memoryTxView) HasActiveEvent(_ context.Context, eventType, eventID string) (bool, error) {
	return v.m.hasActiveEventLocked(eventType, eventID), nil
}

func (v *memoryTxView) CreateBatch(_ context.Context, records []models.TaxRecord) error {
	active := make(map[uniqueKey]struct{})
	for _, existing := range v.m.records {
		if existing.Active() {
			active[keyOf(&existing)] = struct{}{}
		}
	}
	for i := range records {
		r := records[i]
		if r.Active() {
			k := keyOf(&r)
			if _, dup := active[k]; dup {
				return sentinel.ErrConflict
			}
			active[k] = struct{}{}
		}
	}
	for _, r := range records {
		if _, exists := v.m.records[r.ID]; exists {
			return sentinel.ErrConflict
		}
		v.m.records[r.ID] = r
	}
	return nil
}

func (v *memoryTxView) GetRecord(_ context.Context, recordID id.TaxRecordID) (*models.TaxRecord, error) {
	return v.m.getRecordLocked(recordID)
}

func (v *memoryTxView) UpdateStatus(_ context.Context, recordID id.TaxRecordID, status models.Status) error {
	r, ok := v.m.records[recordID]
	if !ok {
		return sentinel.ErrNotFound
	}
	next := r
	next.Status = status
	if next.Active() && !r.Active() {
		// Reactivating a voided record re-enters the partial unique index.
		k := keyOf(&next)
		for otherID, other := range v.m.records {
			if otherID != recordID && other.Active() && keyOf(&other) == k {
				return sentinel.ErrConflict
			}
		}
	}
	v.m.records[recordID] = next
	return nil
}

func (v *memoryTxView) List(_ context.Context, filter Filter) ([]models.TaxRecord, error) {
	return v.m.listLocked(filter), nil
}

// Read paths outside a unit of work.

func (m *Memory) HasActiveEvent(_ context.Context, eventType, eventID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hasActiveEventLocked(eventType, eventID), nil
}

func (m *Memory) GetRecord(_ context.Context, recordID id.TaxRecordID) (*models.TaxRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getRecordLocked(recordID)
}

func (m *Memory) List(_ context.Context, filter Filter) ([]models.TaxRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listLocked(filter), nil
}

func (m *Memory) hasActiveEventLocked(eventType, eventID string) bool {
	for _, r := range m.records {
		if r.EventType == eventType && r.EventID == eventID && r.Active() {
			return true
		}
	}
	return false
}

func (m *Memory) getRecordLocked(recordID id.TaxRecordID) (*models.TaxRecord, error) {
	r, ok := m.records[recordID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &r, nil
}

func (m *Memory) listLocked(filter Filter) []models.TaxRecord {
	var out []models.TaxRecord
	for _, r := range m.records {
		if filter.EventType != nil && r.EventType != *filter.EventType {
			continue
		}
		if filter.EventID != nil && r.EventID != *filter.EventID {
			continue
		}
		if filter.Status != nil && r.Status != *filter.Status {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}
