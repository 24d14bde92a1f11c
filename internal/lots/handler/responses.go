package handler

import (
	"time"

	"github.com/Soozey/MADAVOLA/internal/lots/models"
)

type lotResponse struct {
	ID               string    `json:"id"`
	Filiere          string    `json:"filiere"`
	ProductType      string    `json:"product_type"`
	Unit             string    `json:"unit"`
	Quantity         string    `json:"quantity"`
	Status           string    `json:"status"`
	DeclaredBy       string    `json:"declared_by"`
	Owner            string    `json:"owner"`
	OriginGeoPointID string    `json:"origin_geo_point_id"`
	ParentLotID      *string   `json:"parent_lot_id,omitempty"`
	ReceiptNumber    string    `json:"receipt_number,omitempty"`
	QRValue          string    `json:"qr_value,omitempty"`
	DeclaredAt       time.Time `json:"declared_at"`
}

func fromLot(lot *models.Lot) lotResponse {
	resp := lotResponse{
		ID:               lot.ID.String(),
		Filiere:          string(lot.Filiere),
		ProductType:      lot.ProductType,
		Unit:             lot.Unit,
		Quantity:         lot.Quantity.StringFixed(models.QuantityPlaces),
		Status:           string(lot.Status),
		DeclaredBy:       lot.DeclaredBy.String(),
		Owner:            lot.Owner.String(),
		OriginGeoPointID: lot.OriginGeoID.String(),
		ReceiptNumber:    lot.ReceiptNumber,
		QRValue:          lot.QRValue,
		DeclaredAt:       lot.DeclaredAt,
	}
	if lot.ParentLotID != nil {
		parent := lot.ParentLotID.String()
		resp.ParentLotID = &parent
	}
	return resp
}

func fromLots(lots []*models.Lot) []lotResponse {
	out := make([]lotResponse, 0, len(lots))
	for _, lot := range lots {
		out = append(out, fromLot(lot))
	}
	return out
}

type ledgerEntryResponse struct {
	ID            string    `json:"id"`
	ActorID       string    `json:"actor_id"`
	LotID         string    `json:"lot_id"`
	MovementType  string    `json:"movement_type"`
	QuantityDelta string    `json:"quantity_delta"`
	RefEventType  string    `json:"ref_event_type"`
	RefEventID    string    `json:"ref_event_id"`
	CreatedAt     time.Time `json:"created_at"`
}

func fromLedgerEntries(entries []models.LedgerEntry) []ledgerEntryResponse {
	out := make([]ledgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, ledgerEntryResponse{
			ID:            e.ID.String(),
			ActorID:       e.ActorID.String(),
			LotID:         e.LotID.String(),
			MovementType:  string(e.MovementType),
			QuantityDelta: e.QuantityDelta.StringFixed(models.QuantityPlaces),
			RefEventType:  string(e.RefEventType),
			RefEventID:    e.RefEventID,
			CreatedAt:     e.CreatedAt,
		})
	}
	return out
}

type balanceResponse struct {
	ActorID  string `json:"actor_id"`
	LotID    string `json:"lot_id"`
	Quantity string `json:"quantity"`
}

func fromBalances(balances []models.Balance) []balanceResponse {
	out := make([]balanceResponse, 0, len(balances))
	for _, b := range balances {
		out = append(out, balanceResponse{
			ActorID:  b.ActorID.String(),
			LotID:    b.LotID.String(),
			Quantity: b.Quantity.StringFixed(models.QuantityPlaces),
		})
	}
	return out
}
