// Package calc computes the DTSPM apportionment for one taxable event.
//
// The scheme is fixed by decree: 5% of the base, decomposed into a 3%
// redevance attributed wholly to the state and a 2% ristourne shared between
// the national fund and the territorial collectivities. Every money amount is
// rounded independently, half-up, to 2 decimal places at the point it is
// computed. The beneficiary amounts may therefore differ from the top-level
// total by a few hundredths of a unit; that drift is accepted, not
// reconciled.
package calc

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/Soozey/MADAVOLA/internal/taxes/models"
	dErrors "github.com/Soozey/MADAVOLA/pkg/domain-errors"
)

// MoneyPlaces is the fixed-point scale for tax amounts.
const MoneyPlaces = 2

// RatePlaces is the fixed-point scale for rate-of-base reporting.
const RatePlaces = 8

// Rates carries the decree rates and sharing keys. Carrying them as a value
// keeps the calculator free of package state and lets a rate revision be
// injected without a rebuild.
type Rates struct {
	Total     decimal.Decimal
	Redevance decimal.Decimal
	Ristourne decimal.Decimal

	FNPShare     decimal.Decimal
	CTDPoolShare decimal.Decimal

	CommuneShare  decimal.Decimal
	RegionShare   decimal.Decimal
	ProvinceShare decimal.Decimal
}

// DefaultRates returns the scheme in force: 5% total, split 3% redevance to
// the state and 2% ristourne shared FNP 10% / CTD pool 90%, the pool going
// commune 60%, region 30%, province 10%.
func DefaultRates() Rates {
	return Rates{
		Total:         decimal.RequireFromString("0.05"),
		Redevance:     decimal.RequireFromString("0.03"),
		Ristourne:     decimal.RequireFromString("0.02"),
		FNPShare:      decimal.RequireFromString("0.10"),
		CTDPoolShare:  decimal.RequireFromString("0.90"),
		CommuneShare:  decimal.RequireFromString("0.60"),
		RegionShare:   decimal.RequireFromString("0.30"),
		ProvinceShare: decimal.RequireFromString("0.10"),
	}
}

// Line is one beneficiary's allocation. Share is the fraction of the parent
// bucket (redevance, ristourne, or the CTD pool), RateOfBase is the effective
// fraction of the event base after rounding.
type Line struct {
	TaxType    models.TaxType
	Level      models.BeneficiaryLevel
	Share      decimal.Decimal
	RateOfBase decimal.Decimal
	Amount     decimal.Decimal
}

// Breakdown is the full apportionment of one taxable event base.
type Breakdown struct {
	BaseAmount     decimal.Decimal
	Currency       string
	TotalRate      decimal.Decimal
	TotalAmount    decimal.Decimal
	RedevanceTotal decimal.Decimal
	RistourneTotal decimal.Decimal
	Lines          []Line
}

// ComputeBreakdown apportions a positive base amount across the five
// beneficiary lines. The currency must be a known ISO 4217 code.
func ComputeBreakdown(rates Rates, baseAmount decimal.Decimal, currency string) (*Breakdown, error) {
	if !baseAmount.IsPositive() {
		return nil, dErrors.New(dErrors.CodeValidation, "base amount must be positive")
	}
	if money.GetCurrency(currency) == nil {
		return nil, dErrors.Newf(dErrors.CodeValidation, "unknown currency %q", currency)
	}

	round := func(d decimal.Decimal) decimal.Decimal { return d.Round(MoneyPlaces) }

	redevance := round(baseAmount.Mul(rates.Redevance))
	ristourne := round(baseAmount.Mul(rates.Ristourne))
	fnp := round(ristourne.Mul(rates.FNPShare))
	ctdPool := round(ristourne.Mul(rates.CTDPoolShare))
	commune := round(ctdPool.Mul(rates.CommuneShare))
	region := round(ctdPool.Mul(rates.RegionShare))
	province := round(ctdPool.Mul(rates.ProvinceShare))

	line := func(taxType models.TaxType, level models.BeneficiaryLevel, share, amount decimal.Decimal) Line {
		return Line{
			TaxType:    taxType,
			Level:      level,
			Share:      share,
			RateOfBase: amount.DivRound(baseAmount, RatePlaces),
			Amount:     amount,
		}
	}

	return &Breakdown{
		BaseAmount:     baseAmount,
		Currency:       currency,
		TotalRate:      rates.Total,
		TotalAmount:    round(baseAmount.Mul(rates.Total)),
		RedevanceTotal: redevance,
		RistourneTotal: ristourne,
		Lines: []Line{
			line(models.TaxTypeRedevance, models.LevelEtat, decimal.NewFromInt(1), redevance),
			line(models.TaxTypeRistourne, models.LevelFNP, rates.FNPShare, fnp),
			line(models.TaxTypeRistourne, models.LevelCommune, rates.CommuneShare, commune),
			line(models.TaxTypeRistourne, models.LevelRegion, rates.RegionShare, region),
			line(models.TaxTypeRistourne, models.LevelProvince, rates.ProvinceShare, province),
		},
	}, nil
}
