// Package store persists tax apportionment records.
//
// The duplicate-event guard lives here, not in the recorder: a partial unique
// index over (event_type, event_id, tax_type, beneficiary_level,
// beneficiary_key) scoped to active statuses makes concurrent recording safe
// by construction. The in-memory store reproduces the same semantics so the
// recorder's conflict path is testable without a database.
package store

import (
	"context"

	"github.com/Soozey/MADAVOLA/internal/taxes/models"
	id "github.com/Soozey/MADAVOLA/pkg/domain"
)

// Filter narrows record listings for the read API.
type Filter struct {
	EventType *string
	EventID   *string
	Status    *models.Status
}

// Store is the unit-of-work view of the tax record table.
type Store interface {
	// HasActiveEvent reports whether any DUE or PAID record exists for the
	// event. Advisory fast-fail only; CreateBatch is the race-safe guard.
	HasActiveEvent(ctx context.Context, eventType, eventID string) (bool, error)
	// CreateBatch inserts one event's records atomically.
	// sentinel.ErrConflict when any record violates the active-uniqueness
	// guard; in that case none of the batch survives.
	CreateBatch(ctx context.Context, records []models.TaxRecord) error
	// GetRecord loads one record. sentinel.ErrNotFound when absent.
	GetRecord(ctx context.Context, recordID id.TaxRecordID) (*models.TaxRecord, error)
	// UpdateStatus writes the record's collection state.
	// sentinel.ErrNotFound when absent; sentinel.ErrConflict when moving the
	// record back to an active status would violate the active-uniqueness
	// guard.
	UpdateStatus(ctx context.Context, recordID id.TaxRecordID, status models.Status) error
	// List returns records matching the filter, newest first.
	List(ctx context.Context, filter Filter) ([]models.TaxRecord, error)
}

// Tx runs a function against a Store inside one atomic unit of work.
type Tx interface {
	RunInTx(ctx context.Context, fn func(s Store) error) error
}
