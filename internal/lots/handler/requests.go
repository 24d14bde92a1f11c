package handler

import (
	"github.com/shopspring/decimal"

	"github.com/Soozey/MADAVOLA/internal/lots/models"
	"github.com/Soozey/MADAVOLA/internal/lots/service"
	id "github.com/Soozey/MADAVOLA/pkg/domain"
	dErrors "github.com/Soozey/MADAVOLA/pkg/domain-errors"
)

type createLotRequest struct {
	Filiere          string          `json:"filiere"`
	ProductType      string          `json:"product_type"`
	Unit             string          `json:"unit"`
	Quantity         decimal.Decimal `json:"quantity"`
	OriginGeoPointID string          `json:"origin_geo_point_id"`
}

func (r createLotRequest) toService(declarer id.ActorID) (service.CreateLotRequest, error) {
	origin, err := id.ParseGeoPointID(r.OriginGeoPointID)
	if err != nil {
		return service.CreateLotRequest{}, err
	}
	return service.CreateLotRequest{
		Declarer: declarer,
		Spec: models.CommoditySpec{
			Filiere:     models.Filiere(r.Filiere),
			ProductType: r.ProductType,
			Unit:        r.Unit,
		},
		Quantity: r.Quantity,
		Origin:   origin,
	}, nil
}

type transferRequest struct {
	NewOwnerID string `json:"new_owner_id"`
	PaymentID  string `json:"payment_id"`
}

func (r transferRequest) toService(requester id.ActorID, lotID id.LotID) (service.TransferRequest, error) {
	newOwner, err := id.ParseActorID(r.NewOwnerID)
	if err != nil {
		return service.TransferRequest{}, err
	}
	paymentID, err := id.ParsePaymentID(r.PaymentID)
	if err != nil {
		return service.TransferRequest{}, err
	}
	return service.TransferRequest{
		Requester: requester,
		LotID:     lotID,
		NewOwner:  newOwner,
		PaymentID: paymentID,
	}, nil
}

type consolidateRequest struct {
	LotIDs           []string `json:"lot_ids"`
	Filiere          string   `json:"filiere"`
	ProductType      string   `json:"product_type"`
	Unit             string   `json:"unit"`
	OriginGeoPointID string   `json:"origin_geo_point_id"`
}

func (r consolidateRequest) toService(requester id.ActorID) (service.ConsolidateRequest, error) {
	lotIDs := make([]id.LotID, 0, len(r.LotIDs))
	for _, raw := range r.LotIDs {
		lotID, err := id.ParseLotID(raw)
		if err != nil {
			return service.ConsolidateRequest{}, err
		}
		lotIDs = append(lotIDs, lotID)
	}
	origin, err := id.ParseGeoPointID(r.OriginGeoPointID)
	if err != nil {
		return service.ConsolidateRequest{}, err
	}
	return service.ConsolidateRequest{
		Requester: requester,
		LotIDs:    lotIDs,
		Spec: models.CommoditySpec{
			Filiere:     models.Filiere(r.Filiere),
			ProductType: r.ProductType,
			Unit:        r.Unit,
		},
		Origin: origin,
	}, nil
}

type splitRequest struct {
	Quantities []decimal.Decimal `json:"quantities"`
}

type penaltyRequest struct {
	Action    string  `json:"action"`
	PenaltyID string  `json:"penalty_id"`
	SeizedTo  *string `json:"seized_to,omitempty"`
}

func (r penaltyRequest) toService(enforcer id.ActorID, lotID id.LotID) (service.PenaltyRequest, error) {
	action := service.PenaltyActionType(r.Action)
	if action != service.PenaltyBlock && action != service.PenaltySeize {
		return service.PenaltyRequest{}, dErrors.Newf(dErrors.CodeValidation, "unknown penalty action %q", r.Action)
	}
	penaltyID, err := id.ParsePenaltyID(r.PenaltyID)
	if err != nil {
		return service.PenaltyRequest{}, err
	}
	req := service.PenaltyRequest{
		Enforcer:  enforcer,
		LotID:     lotID,
		Action:    action,
		PenaltyID: penaltyID,
	}
	if r.SeizedTo != nil {
		seizedTo, err := id.ParseActorID(*r.SeizedTo)
		if err != nil {
			return service.PenaltyRequest{}, err
		}
		req.SeizedTo = &seizedTo
	}
	return req, nil
}
