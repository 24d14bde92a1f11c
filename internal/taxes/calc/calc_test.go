package calc

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Soozey/MADAVOLA/internal/taxes/models"
	dErrors "github.com/Soozey/MADAVOLA/pkg/domain-errors"
)

func amountFor(t *testing.T, b *Breakdown, level models.BeneficiaryLevel) Line {
	t.Helper()
	for _, line := range b.Lines {
		if line.Level == level {
			return line
		}
	}
	t.Fatalf("no line for level %s", level)
	return Line{}
}

func TestComputeBreakdown_ReferenceValues(t *testing.T) {
	b, err := ComputeBreakdown(DefaultRates(), decimal.NewFromInt(100), "MGA")
	require.NoError(t, err)

	assert.True(t, b.TotalAmount.Equal(decimal.RequireFromString("5.00")), "total %s", b.TotalAmount)
	assert.True(t, b.RedevanceTotal.Equal(decimal.RequireFromString("3.00")), "redevance %s", b.RedevanceTotal)
	assert.True(t, b.RistourneTotal.Equal(decimal.RequireFromString("2.00")), "ristourne %s", b.RistourneTotal)

	expected := map[models.BeneficiaryLevel]string{
		models.LevelEtat:     "3.00",
		models.LevelFNP:      "0.20",
		models.LevelCommune:  "1.08",
		models.LevelRegion:   "0.54",
		models.LevelProvince: "0.18",
	}
	for level, want := range expected {
		line := amountFor(t, b, level)
		assert.True(t, line.Amount.Equal(decimal.RequireFromString(want)),
			"%s: got %s want %s", level, line.Amount, want)
	}

	etat := amountFor(t, b, models.LevelEtat)
	assert.Equal(t, models.TaxTypeRedevance, etat.TaxType)
	assert.True(t, etat.Share.Equal(decimal.NewFromInt(1)))
	assert.True(t, etat.RateOfBase.Equal(decimal.RequireFromString("0.03")))

	commune := amountFor(t, b, models.LevelCommune)
	assert.Equal(t, models.TaxTypeRistourne, commune.TaxType)
	assert.True(t, commune.Share.Equal(decimal.RequireFromString("0.60")))
	assert.True(t, commune.RateOfBase.Equal(decimal.RequireFromString("0.0108")))
}

func TestComputeBreakdown_LineSet(t *testing.T) {
	b, err := ComputeBreakdown(DefaultRates(), decimal.NewFromInt(100), "MGA")
	require.NoError(t, err)
	require.Len(t, b.Lines, 5)

	redevance, ristourne := 0, 0
	for _, line := range b.Lines {
		switch line.TaxType {
		case models.TaxTypeRedevance:
			redevance++
		case models.TaxTypeRistourne:
			ristourne++
		}
	}
	assert.Equal(t, 1, redevance)
	assert.Equal(t, 4, ristourne)
}

func TestComputeBreakdown_NestedIndependentRounding(t *testing.T) {
	// With an awkward base each bucket rounds on its own; the beneficiary sum
	// may drift from the top-level total by a few hundredths. That drift is
	// accepted, not reconciled.
	b, err := ComputeBreakdown(DefaultRates(), decimal.RequireFromString("33.33"), "MGA")
	require.NoError(t, err)

	assert.True(t, b.TotalAmount.Equal(decimal.RequireFromString("1.67")), "total %s", b.TotalAmount)
	assert.True(t, b.RedevanceTotal.Equal(decimal.RequireFromString("1.00")), "redevance %s", b.RedevanceTotal)
	assert.True(t, b.RistourneTotal.Equal(decimal.RequireFromString("0.67")), "ristourne %s", b.RistourneTotal)

	// FNP: round2(0.67 * 0.10) = 0.07; CTD pool: round2(0.67 * 0.90) = 0.60.
	assert.True(t, amountFor(t, b, models.LevelFNP).Amount.Equal(decimal.RequireFromString("0.07")))
	assert.True(t, amountFor(t, b, models.LevelCommune).Amount.Equal(decimal.RequireFromString("0.36")))
	assert.True(t, amountFor(t, b, models.LevelRegion).Amount.Equal(decimal.RequireFromString("0.18")))
	assert.True(t, amountFor(t, b, models.LevelProvince).Amount.Equal(decimal.RequireFromString("0.06")))

	sum := decimal.Zero
	for _, line := range b.Lines {
		sum = sum.Add(line.Amount)
	}
	drift := sum.Sub(b.TotalAmount).Abs()
	assert.True(t, drift.LessThanOrEqual(decimal.RequireFromString("0.05")), "drift %s", drift)
}

func TestComputeBreakdown_HalfUpRounding(t *testing.T) {
	// base 0.50: ristourne = 0.01, FNP = round2(0.001) = 0.00 stays, but
	// redevance = round2(0.015) rounds half up to 0.02.
	b, err := ComputeBreakdown(DefaultRates(), decimal.RequireFromString("0.50"), "MGA")
	require.NoError(t, err)
	assert.True(t, b.RedevanceTotal.Equal(decimal.RequireFromString("0.02")), "redevance %s", b.RedevanceTotal)
	assert.True(t, b.RistourneTotal.Equal(decimal.RequireFromString("0.01")), "ristourne %s", b.RistourneTotal)
}

func TestComputeBreakdown_RateOfBasePrecision(t *testing.T) {
	b, err := ComputeBreakdown(DefaultRates(), decimal.RequireFromString("33.33"), "MGA")
	require.NoError(t, err)

	// amount / base at 8 decimal places: 0.36 / 33.33.
	commune := amountFor(t, b, models.LevelCommune)
	assert.True(t, commune.RateOfBase.Equal(decimal.RequireFromString("0.01080108")),
		"rate of base %s", commune.RateOfBase)
}

func TestComputeBreakdown_Rejections(t *testing.T) {
	_, err := ComputeBreakdown(DefaultRates(), decimal.Zero, "MGA")
	assert.True(t, dErrors.Has(err, dErrors.CodeValidation))

	_, err = ComputeBreakdown(DefaultRates(), decimal.NewFromInt(-5), "MGA")
	assert.True(t, dErrors.Has(err, dErrors.CodeValidation))

	_, err = ComputeBreakdown(DefaultRates(), decimal.NewFromInt(100), "NOPE")
	assert.True(t, dErrors.Has(err, dErrors.CodeValidation))
}
