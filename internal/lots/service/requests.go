package service

import (
	"github.com/shopspring/decimal"

	"github.com/Soozey/MADAVOLA/internal/lots/models"
	id "github.com/Soozey/MADAVOLA/pkg/domain"
)

// PenaltyActionType distinguishes the two enforcement outcomes a penalty can
// apply to a lot.
type PenaltyActionType string

const (
	PenaltyBlock PenaltyActionType = "block"
	PenaltySeize PenaltyActionType = "seize"
)

type CreateLotRequest struct {
	Declarer id.ActorID
	Spec     models.CommoditySpec
	Quantity decimal.Decimal
	Origin   id.GeoPointID
}

type TransferRequest struct {
	Requester id.ActorID
	LotID     id.LotID
	NewOwner  id.ActorID
	PaymentID id.PaymentID
}

type ConsolidateRequest struct {
	Requester id.ActorID
	LotIDs    []id.LotID
	Spec      models.CommoditySpec
	Origin    id.GeoPointID
}

type SplitRequest struct {
	Requester  id.ActorID
	LotID      id.LotID
	Quantities []decimal.Decimal
}

type PenaltyRequest struct {
	Enforcer  id.ActorID
	LotID     id.LotID
	Action    PenaltyActionType
	PenaltyID id.PenaltyID
	// SeizedTo overrides the custody owner for a seizure; defaults to the
	// enforcer when nil.
	SeizedTo *id.ActorID
}
