package handler

import (
	"github.com/shopspring/decimal"

	"github.com/Soozey/MADAVOLA/internal/taxes/service"
	id "github.com/Soozey/MADAVOLA/pkg/domain"
)

type createTaxEventRequest struct {
	EventType  string          `json:"event_type"`
	EventID    string          `json:"event_id"`
	BaseAmount decimal.Decimal `json:"base_amount"`
	Currency   string          `json:"currency"`
	CommuneID  *string         `json:"commune_id,omitempty"`
	RegionID   *string         `json:"region_id,omitempty"`
	ProvinceID *string         `json:"province_id,omitempty"`
}

func (r createTaxEventRequest) toService(recorder id.ActorID) (service.CreateTaxEventRequest, error) {
	req := service.CreateTaxEventRequest{
		Recorder:   recorder,
		EventType:  r.EventType,
		EventID:    r.EventID,
		BaseAmount: r.BaseAmount,
		Currency:   r.Currency,
	}
	parse := func(raw *string) (*id.BeneficiaryID, error) {
		if raw == nil || *raw == "" {
			return nil, nil
		}
		parsed, err := id.ParseBeneficiaryID(*raw)
		if err != nil {
			return nil, err
		}
		return &parsed, nil
	}
	var err error
	if req.CommuneID, err = parse(r.CommuneID); err != nil {
		return service.CreateTaxEventRequest{}, err
	}
	if req.RegionID, err = parse(r.RegionID); err != nil {
		return service.CreateTaxEventRequest{}, err
	}
	if req.ProvinceID, err = parse(r.ProvinceID); err != nil {
		return service.CreateTaxEventRequest{}, err
	}
	return req, nil
}

type updateStatusRequest struct {
	Status string `json:"status"`
}
