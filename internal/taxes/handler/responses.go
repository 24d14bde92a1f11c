package handler

import (
	"time"

	"github.com/Soozey/MADAVOLA/internal/taxes/calc"
	"github.com/Soozey/MADAVOLA/internal/taxes/models"
)

type breakdownLineResponse struct {
	TaxType    string `json:"tax_type"`
	Level      string `json:"beneficiary_level"`
	Share      string `json:"share"`
	RateOfBase string `json:"rate_of_base"`
	Amount     string `json:"amount"`
}

type breakdownResponse struct {
	BaseAmount     string                  `json:"base_amount"`
	Currency       string                  `json:"currency"`
	TotalRate      string                  `json:"total_rate"`
	TotalAmount    string                  `json:"total_amount"`
	RedevanceTotal string                  `json:"redevance_total"`
	RistourneTotal string                  `json:"ristourne_total"`
	Lines          []breakdownLineResponse `json:"lines"`
}

func fromBreakdown(b *calc.Breakdown) breakdownResponse {
	lines := make([]breakdownLineResponse, 0, len(b.Lines))
	for _, line := range b.Lines {
		lines = append(lines, breakdownLineResponse{
			TaxType:    string(line.TaxType),
			Level:      string(line.Level),
			Share:      line.Share.String(),
			RateOfBase: line.RateOfBase.StringFixed(calc.RatePlaces),
			Amount:     line.Amount.StringFixed(calc.MoneyPlaces),
		})
	}
	return breakdownResponse{
		BaseAmount:     b.BaseAmount.String(),
		Currency:       b.Currency,
		TotalRate:      b.TotalRate.String(),
		TotalAmount:    b.TotalAmount.StringFixed(calc.MoneyPlaces),
		RedevanceTotal: b.RedevanceTotal.StringFixed(calc.MoneyPlaces),
		RistourneTotal: b.RistourneTotal.StringFixed(calc.MoneyPlaces),
		Lines:          lines,
	}
}

type taxRecordResponse struct {
	ID              string    `json:"id"`
	EventType       string    `json:"event_type"`
	EventID         string    `json:"event_id"`
	TaxType         string    `json:"tax_type"`
	Level           string    `json:"beneficiary_level"`
	BeneficiaryID   *string   `json:"beneficiary_id,omitempty"`
	BeneficiaryKey  string    `json:"beneficiary_key"`
	BaseAmount      string    `json:"base_amount"`
	Rate            string    `json:"rate"`
	Amount          string    `json:"amount"`
	Currency        string    `json:"currency"`
	Status          string    `json:"status"`
	AttributionNote string    `json:"attribution_note,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

func fromRecords(records []models.TaxRecord) []taxRecordResponse {
	out := make([]taxRecordResponse, 0, len(records))
	for _, r := range records {
		resp := taxRecordResponse{
			ID:              r.ID.String(),
			EventType:       r.EventType,
			EventID:         r.EventID,
			TaxType:         string(r.TaxType),
			Level:           string(r.Level),
			BeneficiaryKey:  r.BeneficiaryKey,
			BaseAmount:      r.BaseAmount.StringFixed(calc.MoneyPlaces),
			Rate:            r.Rate.StringFixed(calc.RatePlaces),
			Amount:          r.Amount.StringFixed(calc.MoneyPlaces),
			Currency:        r.Currency,
			Status:          string(r.Status),
			AttributionNote: r.AttributionNote,
			CreatedAt:       r.CreatedAt,
		}
		if r.BeneficiaryID != nil {
			beneficiary := r.BeneficiaryID.String()
			resp.BeneficiaryID = &beneficiary
		}
		out = append(out, resp)
	}
	return out
}
