// Package models defines the persisted tax apportionment records.
package models

import (
	"time"

	"github.com/shopspring/decimal"

	id "github.com/Soozey/MADAVOLA/pkg/domain"
)

// TaxType distinguishes the two components of the DTSPM scheme.
type TaxType string

const (
	TaxTypeRedevance TaxType = "DTSPM_REDEVANCE"
	TaxTypeRistourne TaxType = "DTSPM_RISTOURNE"
)

// BeneficiaryLevel is the tier entitled to a share of a tax component.
type BeneficiaryLevel string

const (
	LevelEtat     BeneficiaryLevel = "ETAT"
	LevelFNP      BeneficiaryLevel = "FNP"
	LevelCommune  BeneficiaryLevel = "COMMUNE"
	LevelRegion   BeneficiaryLevel = "REGION"
	LevelProvince BeneficiaryLevel = "PROVINCE"
)

// Status is a tax record's collection state.
type Status string

const (
	StatusDue  Status = "DUE"
	StatusPaid Status = "PAID"
	StatusVoid Status = "VOID"
)

// ValidStatus reports whether s is one of the three collection states.
func ValidStatus(s Status) bool {
	return s == StatusDue || s == StatusPaid || s == StatusVoid
}

// BeneficiaryKeyNone stands in for the beneficiary key when the beneficiary
// is not yet resolved. The uniqueness guard needs a non-null key, so "no
// beneficiary" must be a concrete value.
const BeneficiaryKeyNone = "__NONE__"

// AttributionPending marks records whose territorial beneficiary still has to
// be assigned by the revenue administration.
const AttributionPending = "a_attribuer"

// TaxRecord is one beneficiary line of a taxable event's apportionment.
//
// At most one record per (event type, event id, tax type, level, beneficiary
// key) may be active, meaning status DUE or PAID. Voided records do not count
// against that guard, so a corrected batch can be recorded after voiding the
// first one.
type TaxRecord struct {
	ID              id.TaxRecordID
	EventType       string
	EventID         string
	TaxType         TaxType
	Level           BeneficiaryLevel
	BeneficiaryID   *id.BeneficiaryID
	BeneficiaryKey  string
	BaseAmount      decimal.Decimal
	Rate            decimal.Decimal
	Amount          decimal.Decimal
	Currency        string
	Status          Status
	AttributionNote string
	CreatedAt       time.Time
}

// Active reports whether the record counts against the uniqueness guard.
func (r *TaxRecord) Active() bool {
	return r.Status == StatusDue || r.Status == StatusPaid
}
