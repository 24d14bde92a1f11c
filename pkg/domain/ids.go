// Package domain holds strongly typed identifiers shared across features.
//
// Every entity gets its own UUID-backed type so the compiler rejects a lot id
// where an actor id is expected. Parse helpers enforce the invariant that ids
// crossing a trust boundary are valid, non-nil UUIDs.
package domain

import (
	"github.com/google/uuid"

	dErrors "github.com/Soozey/MADAVOLA/pkg/domain-errors"
)

type (
	// ActorID identifies an authenticated actor (miner, collector, exporter,
	// enforcement agent, ...). Role resolution happens upstream.
	ActorID uuid.UUID
	// LotID identifies a traceable quantity of commodity.
	LotID uuid.UUID
	// LedgerEntryID identifies one append-only inventory movement.
	LedgerEntryID uuid.UUID
	// PaymentID identifies an externally settled payment request.
	PaymentID uuid.UUID
	// PenaltyID identifies the enforcement decision behind a block/seize.
	PenaltyID uuid.UUID
	// TaxRecordID identifies one beneficiary line of a taxed event.
	TaxRecordID uuid.UUID
	// GeoPointID references a declared origin location (territory data is
	// maintained elsewhere; only the reference circulates here).
	GeoPointID uuid.UUID
	// BeneficiaryID references a commune/region/province entity.
	BeneficiaryID uuid.UUID
)

func (id ActorID) String() string       { return uuid.UUID(id).String() }
func (id LotID) String() string         { return uuid.UUID(id).String() }
func (id LedgerEntryID) String() string { return uuid.UUID(id).String() }
func (id PaymentID) String() string     { return uuid.UUID(id).String() }
func (id PenaltyID) String() string     { return uuid.UUID(id).String() }
func (id TaxRecordID) String() string   { return uuid.UUID(id).String() }
func (id GeoPointID) String() string    { return uuid.UUID(id).String() }
func (id BeneficiaryID) String() string { return uuid.UUID(id).String() }

// MarshalText keeps the canonical UUID form when ids cross a serialization
// boundary (JSON payloads, audit events).
func (id ActorID) MarshalText() ([]byte, error)       { return []byte(id.String()), nil }
func (id LotID) MarshalText() ([]byte, error)         { return []byte(id.String()), nil }
func (id LedgerEntryID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id PaymentID) MarshalText() ([]byte, error)     { return []byte(id.String()), nil }
func (id PenaltyID) MarshalText() ([]byte, error)     { return []byte(id.String()), nil }
func (id TaxRecordID) MarshalText() ([]byte, error)   { return []byte(id.String()), nil }
func (id GeoPointID) MarshalText() ([]byte, error)    { return []byte(id.String()), nil }
func (id BeneficiaryID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *ActorID) UnmarshalText(raw []byte) error {
	parsed, err := uuid.Parse(string(raw))
	if err != nil {
		return err
	}
	*id = ActorID(parsed)
	return nil
}

func (id *LotID) UnmarshalText(raw []byte) error {
	parsed, err := uuid.Parse(string(raw))
	if err != nil {
		return err
	}
	*id = LotID(parsed)
	return nil
}

func (id ActorID) IsZero() bool       { return uuid.UUID(id) == uuid.Nil }
func (id LotID) IsZero() bool         { return uuid.UUID(id) == uuid.Nil }
func (id PaymentID) IsZero() bool     { return uuid.UUID(id) == uuid.Nil }
func (id PenaltyID) IsZero() bool     { return uuid.UUID(id) == uuid.Nil }
func (id TaxRecordID) IsZero() bool   { return uuid.UUID(id) == uuid.Nil }
func (id GeoPointID) IsZero() bool    { return uuid.UUID(id) == uuid.Nil }
func (id BeneficiaryID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }

// NewActorID mints a fresh actor identifier.
func NewActorID() ActorID { return ActorID(uuid.New()) }

// NewLotID mints a fresh lot identifier.
func NewLotID() LotID { return LotID(uuid.New()) }

// NewLedgerEntryID mints a fresh ledger entry identifier.
func NewLedgerEntryID() LedgerEntryID { return LedgerEntryID(uuid.New()) }

// NewPaymentID mints a fresh payment identifier.
func NewPaymentID() PaymentID { return PaymentID(uuid.New()) }

// NewPenaltyID mints a fresh penalty identifier.
func NewPenaltyID() PenaltyID { return PenaltyID(uuid.New()) }

// NewTaxRecordID mints a fresh tax record identifier.
func NewTaxRecordID() TaxRecordID { return TaxRecordID(uuid.New()) }

// NewGeoPointID mints a fresh geo point identifier.
func NewGeoPointID() GeoPointID { return GeoPointID(uuid.New()) }

// NewBeneficiaryID mints a fresh beneficiary identifier.
func NewBeneficiaryID() BeneficiaryID { return BeneficiaryID(uuid.New()) }

func parseUUID(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id is required")
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id is not a valid UUID")
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must not be the nil UUID")
	}
	return parsed, nil
}

// ParseActorID validates and converts a raw string into an ActorID.
func ParseActorID(raw string) (ActorID, error) {
	parsed, err := parseUUID(raw)
	if err != nil {
		return ActorID{}, err
	}
	return ActorID(parsed), nil
}

// ParseLotID validates and converts a raw string into a LotID.
func ParseLotID(raw string) (LotID, error) {
	parsed, err := parseUUID(raw)
	if err != nil {
		return LotID{}, err
	}
	return LotID(parsed), nil
}

// ParsePaymentID validates and converts a raw string into a PaymentID.
func ParsePaymentID(raw string) (PaymentID, error) {
	parsed, err := parseUUID(raw)
	if err != nil {
		return PaymentID{}, err
	}
	return PaymentID(parsed), nil
}

// ParsePenaltyID validates and converts a raw string into a PenaltyID.
func ParsePenaltyID(raw string) (PenaltyID, error) {
	parsed, err := parseUUID(raw)
	if err != nil {
		return PenaltyID{}, err
	}
	return PenaltyID(parsed), nil
}

// ParseTaxRecordID validates and converts a raw string into a TaxRecordID.
func ParseTaxRecordID(raw string) (TaxRecordID, error) {
	parsed, err := parseUUID(raw)
	if err != nil {
		return TaxRecordID{}, err
	}
	return TaxRecordID(parsed), nil
}

// ParseGeoPointID validates and converts a raw string into a GeoPointID.
func ParseGeoPointID(raw string) (GeoPointID, error) {
	parsed, err := parseUUID(raw)
	if err != nil {
		return GeoPointID{}, err
	}
	return GeoPointID(parsed), nil
}

// ParseBeneficiaryID validates and converts a raw string into a BeneficiaryID.
func ParseBeneficiaryID(raw string) (BeneficiaryID, error) {
	parsed, err := parseUUID(raw)
	if err != nil {
		return BeneficiaryID{}, err
	}
	return BeneficiaryID(parsed), nil
}
