package analytics

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/blazeintel/diamond-analytics/internal/models"
)

// Simulation policy constants.
const (
	DefaultSimulations = 1000
	// simFullTrialSample is where trial-count confidence saturates.
	simFullTrialSample = 5000
	simConfidenceBase  = 0.40
)

// QualificationCurve maps a season win percentage to postseason
// qualification odds through a logistic centered on the cutoff. Each
// conference can carry its own curve; the default approximates an at-large
// field where .550 ball is a coin flip.
type QualificationCurve struct {
	WinPctCutoff float64
	Steepness    float64
}

// DefaultQualificationCurve is used when no conference-specific curve is
// configured.
var DefaultQualificationCurve = QualificationCurve{WinPctCutoff: 0.55, Steepness: 12}

// Odds returns qualification probability for a season win percentage.
func (q QualificationCurve) Odds(winPct float64) float64 {
	return 1 / (1 + math.Exp(-q.Steepness*(winPct-q.WinPctCutoff)))
}

// SimulationOptions configures a schedule simulation. Rand must be an
// explicit, caller-owned source: a fixed seed reproduces an exact result,
// and concurrent simulations never contend on a shared generator.
type SimulationOptions struct {
	Simulations      int
	RestrictAdvanced bool
	Rand             *rand.Rand
	Qualification    QualificationCurve
	// Progress, when set, is invoked with (completed, total) as trials
	// finish. Used by the websocket hub for long runs.
	Progress func(completed, total int)
}

// SimulateScheduleImpact runs repeated Bernoulli trials over the
// prospective matchups and reports the resulting win-count distribution
// plus the baseline-vs-projected postseason odds shift. Preconditions that
// fail (no matchups, restricted mode) gate the simulation: the result
// carries a zero-width distribution, confidence 0, and a note instead of a
// fabricated one.
func SimulateScheduleImpact(team models.TeamProfile, matchups []models.ProspectiveMatchup, opts SimulationOptions) (models.ScheduleSimulationResult, error) {
	if team.Wins < 0 || team.Losses < 0 {
		return models.ScheduleSimulationResult{}, fmt.Errorf("%w: record for team %s: %d-%d", ErrInvalidInput, team.TeamID, team.Wins, team.Losses)
	}
	for i, m := range matchups {
		if m.WinProbability < 0 || m.WinProbability > 1 {
			return models.ScheduleSimulationResult{}, fmt.Errorf("%w: matchup %d: win probability %.3f outside [0,1]", ErrInvalidInput, i, m.WinProbability)
		}
	}

	if opts.Simulations <= 0 {
		opts.Simulations = DefaultSimulations
	}
	curve := opts.Qualification
	if curve.Steepness == 0 {
		curve = DefaultQualificationCurve
	}

	result := models.ScheduleSimulationResult{
		TeamID:       team.TeamID,
		Season:       team.Season,
		BaselineOdds: round3(curve.Odds(team.WinPct())),
		Distribution: []models.WinBucket{},
	}

	if len(matchups) == 0 {
		result.Gated = true
		result.Confidence = 0
		result.ProjectedOdds = result.BaselineOdds
		result.Notes = append(result.Notes, "no prospective matchups supplied; simulation skipped")
		return result, nil
	}

	if opts.RestrictAdvanced {
		// Cheap mode: closed-form expectation only, no trials.
		expected := 0.0
		for _, m := range matchups {
			expected += m.WinProbability
		}
		result.Gated = true
		result.Confidence = 0
		result.ExpectedWins = round2(expected)
		result.ExpectedLosses = round2(float64(len(matchups)) - expected)
		result.ProjectedOdds = result.BaselineOdds
		result.Notes = append(result.Notes, "advanced simulation restricted; expected record computed in closed form only")
		return result, nil
	}

	if opts.Rand == nil {
		return models.ScheduleSimulationResult{}, fmt.Errorf("simulation requires an explicit random source")
	}

	counts := make([]int, len(matchups)+1)
	for trial := 0; trial < opts.Simulations; trial++ {
		wins := 0
		for _, m := range matchups {
			if opts.Rand.Float64() < m.WinProbability {
				wins++
			}
		}
		counts[wins]++
		if opts.Progress != nil {
			opts.Progress(trial+1, opts.Simulations)
		}
	}

	result.Simulations = opts.Simulations
	total := float64(opts.Simulations)
	games := float64(team.GamesPlayed() + len(matchups))

	expectedWins := 0.0
	projectedOdds := 0.0
	distribution := make([]models.WinBucket, 0, len(counts))
	for wins, count := range counts {
		prob := float64(count) / total
		distribution = append(distribution, models.WinBucket{Wins: wins, Probability: prob})
		expectedWins += float64(wins) * prob

		finalWinPct := 0.0
		if games > 0 {
			finalWinPct = (float64(team.Wins) + float64(wins)) / games
		}
		projectedOdds += prob * curve.Odds(finalWinPct)
	}

	result.Distribution = distribution
	result.ExpectedWins = round2(expectedWins)
	result.ExpectedLosses = round2(float64(len(matchups)) - expectedWins)
	result.ProjectedOdds = round3(projectedOdds)
	result.OddsDelta = round3(projectedOdds - curve.Odds(team.WinPct()))
	result.Confidence = round3(clamp01(simConfidenceBase + (1-simConfidenceBase)*math.Min(1, total/simFullTrialSample)))

	return result, nil
}
