package analytics

import (
	"math"

	"github.com/blazeintel/diamond-analytics/internal/models"
)

// HAV-F composite weights. The four dimension weights sum to 1.0, as do
// the stat weights inside each dimension.
const (
	WeightHitting  = 0.35
	WeightAtBat    = 0.25
	WeightPower    = 0.25
	WeightFielding = 0.15
)

// Hitting (H) stat weights.
const (
	hWeightAverage = 0.15
	hWeightOnBase  = 0.25
	hWeightSlug    = 0.25
	hWeightWOBA    = 0.25
	hWeightISO     = 0.10
)

// At-bat quality (A) stat weights. Strikeout rate is inverted: lower is better.
const (
	aWeightWalkRate  = 0.30
	aWeightStrikeout = 0.30
	aWeightBABIP     = 0.20
	aWeightHomeRun   = 0.20
)

// Power (V) stat weights.
const (
	vWeightISO     = 0.40
	vWeightSlug    = 0.30
	vWeightHomeRun = 0.30
)

// Fielding (F) stat weights.
const (
	fWeightFieldingPct = 0.50
	fWeightRangeFactor = 0.30
	fWeightAssists     = 0.20
)

// ComputeHAVF scores one player's batting and fielding profiles against a
// population percentile table. It never fails: degenerate inputs (empty
// table, zero games) degrade to neutral ranks and zero derived stats.
func ComputeHAVF(batting models.BattingProfile, fielding models.FieldingProfile, table *PercentileTable) models.CompositeResult {
	hitting := hWeightAverage*table.Rank(StatAverage, batting.Average) +
		hWeightOnBase*table.Rank(StatOnBasePct, batting.OnBasePct) +
		hWeightSlug*table.Rank(StatSluggingPct, batting.SluggingPct) +
		hWeightWOBA*table.Rank(StatWOBA, batting.WOBA) +
		hWeightISO*table.Rank(StatIsolatedPower, batting.IsolatedPower)

	atBat := aWeightWalkRate*table.Rank(StatWalkRate, batting.WalkRate) +
		aWeightStrikeout*(100-table.Rank(StatStrikeoutRate, batting.StrikeoutRate)) +
		aWeightBABIP*table.Rank(StatBABIP, batting.BABIP) +
		aWeightHomeRun*table.Rank(StatHomeRunRate, batting.HomeRunRate)

	power := vWeightISO*table.Rank(StatIsolatedPower, batting.IsolatedPower) +
		vWeightSlug*table.Rank(StatSluggingPct, batting.SluggingPct) +
		vWeightHomeRun*table.Rank(StatHomeRunRate, batting.HomeRunRate)

	field := fWeightFieldingPct*table.Rank(StatFieldingPct, fielding.FieldingPct) +
		fWeightRangeFactor*table.Rank(StatRangeFactor, fielding.RangeFactor()) +
		fWeightAssists*table.Rank(StatAssistsPerGm, fielding.AssistsPerGame())

	hitting = clampScore(hitting)
	atBat = clampScore(atBat)
	power = clampScore(power)
	field = clampScore(field)

	composite := WeightHitting*hitting + WeightAtBat*atBat +
		WeightPower*power + WeightFielding*field

	return models.CompositeResult{
		Hitting:   round1(hitting),
		AtBat:     round1(atBat),
		Power:     round1(power),
		Fielding:  round1(field),
		Composite: round1(clampScore(composite)),
	}
}

func clampScore(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
