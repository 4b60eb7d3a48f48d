package analytics

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blazeintel/diamond-analytics/internal/models"
)

func simMatchups(probs ...float64) []models.ProspectiveMatchup {
	matchups := make([]models.ProspectiveMatchup, 0, len(probs))
	for i, p := range probs {
		matchups = append(matchups, models.ProspectiveMatchup{
			OpponentID:     string(rune('A' + i)),
			WinProbability: p,
		})
	}
	return matchups
}

func TestSimulateScheduleImpact_GatedWithoutMatchups(t *testing.T) {
	team := models.TeamProfile{TeamID: "LSU", Season: 2025, Wins: 30, Losses: 12}

	result, err := SimulateScheduleImpact(team, nil, SimulationOptions{})
	require.NoError(t, err)

	assert.True(t, result.Gated)
	assert.Equal(t, 0.0, result.Confidence)
	assert.Empty(t, result.Distribution)
	assert.NotEmpty(t, result.Notes)
	assert.Equal(t, result.BaselineOdds, result.ProjectedOdds)
}

func TestSimulateScheduleImpact_RestrictedModeGates(t *testing.T) {
	team := models.TeamProfile{TeamID: "LSU", Season: 2025, Wins: 30, Losses: 12}

	result, err := SimulateScheduleImpact(team, simMatchups(0.7, 0.3), SimulationOptions{RestrictAdvanced: true})
	require.NoError(t, err)

	assert.True(t, result.Gated)
	assert.Equal(t, 0.0, result.Confidence)
	assert.Empty(t, result.Distribution)
	// Cheap mode still reports the closed-form expectation.
	assert.InDelta(t, 1.0, result.ExpectedWins, 1e-9)
	assert.InDelta(t, 1.0, result.ExpectedLosses, 1e-9)
}

func TestSimulateScheduleImpact_RequiresExplicitRand(t *testing.T) {
	team := models.TeamProfile{TeamID: "LSU", Season: 2025, Wins: 30, Losses: 12}

	_, err := SimulateScheduleImpact(team, simMatchups(0.5), SimulationOptions{})
	assert.Error(t, err)
}

func TestSimulateScheduleImpact_RejectsBadProbability(t *testing.T) {
	team := models.TeamProfile{TeamID: "LSU", Season: 2025}

	_, err := SimulateScheduleImpact(team, simMatchups(-0.1), SimulationOptions{Rand: rand.New(rand.NewSource(1))})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSimulateScheduleImpact_SeedReproduces(t *testing.T) {
	team := models.TeamProfile{TeamID: "LSU", Season: 2025, Wins: 25, Losses: 15}
	matchups := simMatchups(0.65, 0.40, 0.80)

	first, err := SimulateScheduleImpact(team, matchups, SimulationOptions{Simulations: 500, Rand: rand.New(rand.NewSource(42))})
	require.NoError(t, err)
	second, err := SimulateScheduleImpact(team, matchups, SimulationOptions{Simulations: 500, Rand: rand.New(rand.NewSource(42))})
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSimulateScheduleImpact_DistributionIsProper(t *testing.T) {
	team := models.TeamProfile{TeamID: "LSU", Season: 2025, Wins: 25, Losses: 15}
	matchups := simMatchups(0.65, 0.40, 0.80)

	result, err := SimulateScheduleImpact(team, matchups, SimulationOptions{Simulations: 2000, Rand: rand.New(rand.NewSource(3))})
	require.NoError(t, err)

	require.Len(t, result.Distribution, len(matchups)+1)
	total := 0.0
	for i, bucket := range result.Distribution {
		assert.Equal(t, i, bucket.Wins)
		assert.GreaterOrEqual(t, bucket.Probability, 0.0)
		total += bucket.Probability
	}
	assert.InDelta(t, 1.0, total, 1e-9)
	assert.False(t, result.Gated)
	assert.Greater(t, result.Confidence, 0.0)
}

// With independent Bernoulli outcomes, the empirical mean win count must
// converge to the sum of the probabilities as trials grow.
func TestSimulateScheduleImpact_MeanConvergesToExpectation(t *testing.T) {
	team := models.TeamProfile{TeamID: "LSU", Season: 2025, Wins: 20, Losses: 20}
	probs := []float64{0.72, 0.55, 0.31, 0.86, 0.48}
	matchups := simMatchups(probs...)

	expected := 0.0
	for _, p := range probs {
		expected += p
	}

	result, err := SimulateScheduleImpact(team, matchups, SimulationOptions{
		Simulations: 10000,
		Rand:        rand.New(rand.NewSource(99)),
	})
	require.NoError(t, err)
	assert.InDelta(t, expected, result.ExpectedWins, 0.05)

	// A coarser run is allowed a wider band but should still be close.
	coarse, err := SimulateScheduleImpact(team, matchups, SimulationOptions{
		Simulations: 1000,
		Rand:        rand.New(rand.NewSource(99)),
	})
	require.NoError(t, err)
	assert.InDelta(t, expected, coarse.ExpectedWins, 0.2)
}

func TestSimulateScheduleImpact_OddsShiftWithStrongSlate(t *testing.T) {
	team := models.TeamProfile{TeamID: "LSU", Season: 2025, Wins: 20, Losses: 16}

	favorable, err := SimulateScheduleImpact(team, simMatchups(0.9, 0.9, 0.9, 0.9), SimulationOptions{
		Simulations: 4000, Rand: rand.New(rand.NewSource(5)),
	})
	require.NoError(t, err)
	brutal, err := SimulateScheduleImpact(team, simMatchups(0.1, 0.1, 0.1, 0.1), SimulationOptions{
		Simulations: 4000, Rand: rand.New(rand.NewSource(5)),
	})
	require.NoError(t, err)

	assert.Greater(t, favorable.ProjectedOdds, brutal.ProjectedOdds)
	assert.Greater(t, favorable.OddsDelta, brutal.OddsDelta)
}

func TestQualificationCurve_MonotoneInWinPct(t *testing.T) {
	curve := DefaultQualificationCurve
	assert.Less(t, curve.Odds(0.40), curve.Odds(0.55))
	assert.Less(t, curve.Odds(0.55), curve.Odds(0.70))
	assert.InDelta(t, 0.5, curve.Odds(curve.WinPctCutoff), 1e-9)
}
