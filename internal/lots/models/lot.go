// Package models defines the lot inventory entities and their invariants.
package models

import (
	"time"

	"github.com/shopspring/decimal"

	id "github.com/Soozey/MADAVOLA/pkg/domain"
	dErrors "github.com/Soozey/MADAVOLA/pkg/domain-errors"
)

// Status is the lifecycle state of a lot row.
//
// available is the only circulating state. split and consolidated are terminal
// for the row: its quantity lives on in child or parent rows and no longer
// circulates under this id. blocked and seized come from enforcement actions;
// neither returns to available through this engine.
type Status string

const (
	StatusAvailable    Status = "available"
	StatusSplit        Status = "split"
	StatusConsolidated Status = "consolidated"
	StatusBlocked      Status = "blocked"
	StatusSeized       Status = "seized"
)

// Filiere is the commodity sector a lot belongs to.
type Filiere string

// FiliereOr is the gold value chain, the only sector live today.
const FiliereOr Filiere = "OR"

// QuantityPlaces is the fixed-point scale for lot quantities and ledger deltas.
const QuantityPlaces = 4

// Lot is a traceable quantity of a regulated commodity.
//
// Quantity is set once at creation and never mutated; every quantity movement
// is represented by new ledger entries and, for split/consolidate, new lot
// rows. Rows are never deleted.
type Lot struct {
	ID            id.LotID
	Filiere       Filiere
	ProductType   string
	Unit          string
	Quantity      decimal.Decimal
	Status        Status
	DeclaredBy    id.ActorID
	Owner         id.ActorID
	OriginGeoID   id.GeoPointID
	ParentLotID   *id.LotID
	ReceiptNumber string
	QRValue       string
	DeclaredAt    time.Time
}

// CommoditySpec carries the descriptive attributes of a lot at creation time.
type CommoditySpec struct {
	Filiere     Filiere
	ProductType string
	Unit        string
}

// NewLot validates invariants and builds an available lot owned by its declarer.
func NewLot(lotID id.LotID, spec CommoditySpec, quantity decimal.Decimal, declarer id.ActorID, origin id.GeoPointID, now time.Time) (*Lot, error) {
	if spec.ProductType == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "product type is required")
	}
	if spec.Unit == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "unit is required")
	}
	if !quantity.IsPositive() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "quantity must be positive")
	}
	if !quantity.Equal(quantity.Round(QuantityPlaces)) {
		return nil, dErrors.Newf(dErrors.CodeInvariantViolation, "quantity resolution exceeds %d decimal places", QuantityPlaces)
	}
	if declarer.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "declarer is required")
	}
	if origin.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "origin location is required")
	}
	filiere := spec.Filiere
	if filiere == "" {
		filiere = FiliereOr
	}
	return &Lot{
		ID:          lotID,
		Filiere:     filiere,
		ProductType: spec.ProductType,
		Unit:        spec.Unit,
		Quantity:    quantity.Round(QuantityPlaces),
		Status:      StatusAvailable,
		DeclaredBy:  declarer,
		Owner:       declarer,
		OriginGeoID: origin,
		DeclaredAt:  now,
	}, nil
}

// IsAvailable reports whether the lot can still be moved, split or consolidated.
func (l *Lot) IsAvailable() bool { return l.Status == StatusAvailable }

// OwnedBy reports whether the given actor is the current owner.
func (l *Lot) OwnedBy(actor id.ActorID) bool { return l.Owner == actor }
