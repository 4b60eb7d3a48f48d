package analytics

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blazeintel/diamond-analytics/internal/models"
)

func TestHAVFWeights_SumToOne(t *testing.T) {
	assert.InDelta(t, 1.0, WeightHitting+WeightAtBat+WeightPower+WeightFielding, 1e-9)
	assert.InDelta(t, 1.0, hWeightAverage+hWeightOnBase+hWeightSlug+hWeightWOBA+hWeightISO, 1e-9)
	assert.InDelta(t, 1.0, aWeightWalkRate+aWeightStrikeout+aWeightBABIP+aWeightHomeRun, 1e-9)
	assert.InDelta(t, 1.0, vWeightISO+vWeightSlug+vWeightHomeRun, 1e-9)
	assert.InDelta(t, 1.0, fWeightFieldingPct+fWeightRangeFactor+fWeightAssists, 1e-9)
}

func TestComputeHAVF_ScoresBounded(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	population := make([]models.PlayerSeason, 60)
	for i := range population {
		population[i] = models.PlayerSeason{
			Batting: models.BattingProfile{
				Average:       0.200 + rng.Float64()*0.150,
				OnBasePct:     0.280 + rng.Float64()*0.160,
				SluggingPct:   0.300 + rng.Float64()*0.350,
				WOBA:          0.280 + rng.Float64()*0.150,
				IsolatedPower: rng.Float64() * 0.300,
				WalkRate:      0.03 + rng.Float64()*0.15,
				StrikeoutRate: 0.10 + rng.Float64()*0.25,
				BABIP:         0.250 + rng.Float64()*0.130,
				HomeRunRate:   rng.Float64() * 0.08,
			},
			Fielding: models.FieldingProfile{
				FieldingPct: 0.900 + rng.Float64()*0.100,
				Putouts:     rng.Intn(400),
				Assists:     rng.Intn(300),
				Errors:      rng.Intn(20),
				Games:       1 + rng.Intn(55),
			},
		}
	}
	table := BuildPercentileTable(population)

	for _, p := range population {
		result := ComputeHAVF(p.Batting, p.Fielding, table)
		for name, score := range map[string]float64{
			"hitting":   result.Hitting,
			"at_bat":    result.AtBat,
			"power":     result.Power,
			"fielding":  result.Fielding,
			"composite": result.Composite,
		} {
			assert.GreaterOrEqual(t, score, 0.0, name)
			assert.LessOrEqual(t, score, 100.0, name)
		}
	}
}

func TestComputeHAVF_EmptyPopulationIsNeutral(t *testing.T) {
	table := BuildPercentileTable(nil)
	result := ComputeHAVF(models.BattingProfile{Average: 0.300}, models.FieldingProfile{Games: 30}, table)

	// Every rank resolves to 50, so every score sits at the midpoint.
	assert.Equal(t, 50.0, result.Hitting)
	assert.Equal(t, 50.0, result.AtBat)
	assert.Equal(t, 50.0, result.Power)
	assert.Equal(t, 50.0, result.Fielding)
	assert.Equal(t, 50.0, result.Composite)
}

func TestComputeHAVF_ZeroGamesFieldingDegrades(t *testing.T) {
	population := []models.PlayerSeason{
		{Fielding: models.FieldingProfile{FieldingPct: 0.950, Putouts: 90, Assists: 60, Games: 30}},
		{Fielding: models.FieldingProfile{FieldingPct: 0.980, Putouts: 150, Assists: 90, Games: 30}},
	}
	table := BuildPercentileTable(population)

	// A player with no recorded games never panics; derived stats fall to 0.
	result := ComputeHAVF(models.BattingProfile{}, models.FieldingProfile{FieldingPct: 0.970, Games: 0}, table)
	assert.GreaterOrEqual(t, result.Fielding, 0.0)
	assert.LessOrEqual(t, result.Fielding, 100.0)
}

func TestComputeHAVF_BetterHitterScoresHigher(t *testing.T) {
	weak := models.BattingProfile{Average: 0.220, OnBasePct: 0.290, SluggingPct: 0.320, WOBA: 0.290, IsolatedPower: 0.080, WalkRate: 0.05, StrikeoutRate: 0.28, BABIP: 0.270, HomeRunRate: 0.01}
	strong := models.BattingProfile{Average: 0.330, OnBasePct: 0.430, SluggingPct: 0.610, WOBA: 0.420, IsolatedPower: 0.270, WalkRate: 0.14, StrikeoutRate: 0.12, BABIP: 0.350, HomeRunRate: 0.06}
	mid := models.BattingProfile{Average: 0.275, OnBasePct: 0.350, SluggingPct: 0.450, WOBA: 0.350, IsolatedPower: 0.170, WalkRate: 0.09, StrikeoutRate: 0.20, BABIP: 0.310, HomeRunRate: 0.03}

	population := []models.PlayerSeason{{Batting: weak}, {Batting: mid}, {Batting: strong}}
	table := BuildPercentileTable(population)

	fielding := models.FieldingProfile{FieldingPct: 0.960, Putouts: 100, Assists: 60, Games: 40}
	weakScore := ComputeHAVF(weak, fielding, table)
	strongScore := ComputeHAVF(strong, fielding, table)

	assert.Greater(t, strongScore.Hitting, weakScore.Hitting)
	assert.Greater(t, strongScore.Power, weakScore.Power)
	assert.Greater(t, strongScore.Composite, weakScore.Composite)
}
