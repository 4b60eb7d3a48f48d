package analytics

import (
	"errors"
	"fmt"
	"math"

	"github.com/blazeintel/diamond-analytics/internal/models"
)

// ErrInvalidInput marks a rejected projection or simulation input, as
// opposed to an internal failure.
var ErrInvalidInput = errors.New("invalid input")

// Standard three-term RPI weighting.
const (
	RPIWeightWinPct  = 0.25
	RPIWeightOppWin  = 0.50
	RPIWeightOppOpp  = 0.25
	defaultRPI       = 0.5
	defaultOppRPI    = 0.5
)

// Projection policy constants. Documented and tunable, not law.
const (
	// rpiShiftPerGame scales a single matchup's marginal contribution.
	rpiShiftPerGame = 0.012
	// rpiDilutionGames controls how fast new games stop moving an
	// established rating: contribution *= dilution/(dilution+played).
	rpiDilutionGames = 15.0

	// NCAA-style venue weights: road wins count more, home wins less.
	venueRoadWin    = 1.4
	venueHomeWin    = 0.6
	venueNeutralWin = 1.0
)

// Projection confidence: base plus per-matchup volume plus outcome
// certainty (probabilities clustered near 0.5 are uncertain coin flips).
const (
	projConfidenceBase      = 0.20
	projConfidencePerGame   = 0.05
	projConfidenceGameCap   = 6
	projConfidenceCertainty = 0.50
)

// ComputeRPI recomputes a team's rating from game history using the
// standard three-term formula: 25% own win percentage, 50% opponents' win
// percentage, 25% opponents' opponents' win percentage. A team with no
// games rates at the neutral 0.5.
func ComputeRPI(teamID string, games []models.HistoricalGame) float64 {
	opponents := opponentsOf(teamID, games)
	if len(opponents) == 0 {
		return defaultRPI
	}

	wp := winPctExcluding(teamID, "", games)

	owp := 0.0
	for _, opp := range opponents {
		owp += winPctExcluding(opp, teamID, games)
	}
	owp /= float64(len(opponents))

	oowp := 0.0
	for _, opp := range opponents {
		oppOpponents := opponentsOf(opp, games)
		if len(oppOpponents) == 0 {
			oowp += defaultRPI
			continue
		}
		sub := 0.0
		for _, oo := range oppOpponents {
			sub += winPctExcluding(oo, opp, games)
		}
		oowp += sub / float64(len(oppOpponents))
	}
	oowp /= float64(len(opponents))

	return RPIWeightWinPct*wp + RPIWeightOppWin*owp + RPIWeightOppOpp*oowp
}

// opponentsOf lists each opponent once per game played, which is how the
// standard formula weights repeat opponents.
func opponentsOf(teamID string, games []models.HistoricalGame) []string {
	var opps []string
	for _, g := range games {
		if opp := g.OpponentOf(teamID); opp != "" {
			opps = append(opps, opp)
		}
	}
	return opps
}

// winPctExcluding computes teamID's win percentage, ignoring games against
// exclude (the standard formula removes the subject team from its
// opponents' records).
func winPctExcluding(teamID, exclude string, games []models.HistoricalGame) float64 {
	wins, losses := 0, 0
	for _, g := range games {
		if !g.Involves(teamID) {
			continue
		}
		if exclude != "" && g.Involves(exclude) {
			continue
		}
		switch g.WinnerID() {
		case teamID:
			wins++
		case "":
		default:
			losses++
		}
	}
	if wins+losses == 0 {
		return defaultRPI
	}
	return float64(wins) / float64(wins+losses)
}

// ProjectRPIShift computes a team's baseline RPI, then the shift a set of
// prospective matchups would produce. Each matchup's contribution is
// exposed term-by-term in the scenario breakdown so callers can audit the
// projection. An empty matchup list returns the baseline unchanged with a
// note, not an error.
func ProjectRPIShift(team models.TeamProfile, matchups []models.ProspectiveMatchup, peers []models.TeamProfile, games []models.HistoricalGame) (models.RpiProjectionResult, error) {
	if team.Wins < 0 || team.Losses < 0 {
		return models.RpiProjectionResult{}, fmt.Errorf("%w: record for team %s: %d-%d", ErrInvalidInput, team.TeamID, team.Wins, team.Losses)
	}
	for i, m := range matchups {
		if m.WinProbability < 0 || m.WinProbability > 1 {
			return models.RpiProjectionResult{}, fmt.Errorf("%w: matchup %d: win probability %.3f outside [0,1]", ErrInvalidInput, i, m.WinProbability)
		}
		if m.Venue != "" && !m.Venue.Valid() {
			return models.RpiProjectionResult{}, fmt.Errorf("%w: matchup %d: unknown venue %q", ErrInvalidInput, i, m.Venue)
		}
	}

	result := models.RpiProjectionResult{
		TeamID: team.TeamID,
		Season: team.Season,
	}

	baseline := team.RPI
	if baseline <= 0 {
		if len(games) > 0 {
			baseline = ComputeRPI(team.TeamID, games)
			result.Notes = append(result.Notes, "stored RPI absent; baseline recomputed from game history")
		} else {
			baseline = defaultRPI
			result.Notes = append(result.Notes, "no stored RPI and no game history; baseline defaulted to 0.500")
		}
	}
	result.BaselineRPI = round3(baseline)

	dilution := rpiDilutionGames / (rpiDilutionGames + float64(team.GamesPlayed()))

	shift := 0.0
	scenarios := make([]models.MatchupScenario, 0, len(matchups))
	addedWins, addedLosses := 0.0, 0.0
	for _, m := range matchups {
		oppRPI := resolveOpponentRPI(m)
		p := m.WinProbability

		// Beating a team you were unlikely to beat is worth the most;
		// strong opponents also soften the penalty for losing.
		winGain := rpiShiftPerGame * (1 - p) * (0.5 + oppRPI) * venueWinMultiplier(m.Venue)
		lossCost := rpiShiftPerGame * p * (1.5 - oppRPI) * venueLossMultiplier(m.Venue)
		contribution := (p*winGain - (1-p)*lossCost) * dilution

		shift += contribution
		addedWins += p
		addedLosses += 1 - p
		scenarios = append(scenarios, models.MatchupScenario{
			OpponentID:      m.OpponentID,
			Venue:           normalizeVenue(m.Venue),
			WinProbability:  p,
			OpponentRPI:     round3(oppRPI),
			RPIContribution: round6(contribution),
		})
	}
	result.ScenarioBreakdown = scenarios

	projected := clamp01(baseline + shift)
	result.ProjectedRPI = round3(projected)
	result.RPIDelta = round3(projected - baseline)

	if len(matchups) == 0 {
		result.ProjectedRPI = result.BaselineRPI
		result.RPIDelta = 0
		result.Confidence = projConfidenceBase
		result.Notes = append(result.Notes, "no prospective matchups supplied; baseline returned unchanged")
	} else {
		result.Confidence = projectionConfidence(matchups)
	}

	result.ExpectedRecord = &models.ExpectedRecord{
		CurrentWins:     team.Wins,
		CurrentLosses:   team.Losses,
		AddedWins:       round2(addedWins),
		AddedLosses:     round2(addedLosses),
		ProjectedWins:   round2(float64(team.Wins) + addedWins),
		ProjectedLosses: round2(float64(team.Losses) + addedLosses),
	}

	if containsTeam(peers, team.TeamID) {
		rows := BuildConferenceRanking(peers, team.TeamID, projected)
		for _, row := range rows {
			if row.TeamID == team.TeamID {
				base, proj := row.BaselineRank, row.ProjectedRank
				result.BaselineRank = &base
				result.ProjectedRank = &proj
			}
		}
	} else {
		result.Notes = append(result.Notes, "conference peer set unresolved; ranks omitted")
	}

	return result, nil
}

// projectionConfidence shrinks with fewer matchups and with win
// probabilities clustered near 0.5.
func projectionConfidence(matchups []models.ProspectiveMatchup) float64 {
	certainty := 0.0
	for _, m := range matchups {
		certainty += 2 * math.Abs(m.WinProbability-0.5)
	}
	certainty /= float64(len(matchups))

	volume := math.Min(float64(len(matchups)), projConfidenceGameCap) * projConfidencePerGame
	return round3(clamp01(projConfidenceBase + volume + projConfidenceCertainty*certainty))
}

// resolveOpponentRPI prefers an explicit opponent RPI, falls back to the
// opponent's overall win percentage as a strength proxy, then to neutral.
func resolveOpponentRPI(m models.ProspectiveMatchup) float64 {
	if m.OpponentRPI != nil {
		return *m.OpponentRPI
	}
	if m.OpponentWinPct != nil {
		return *m.OpponentWinPct
	}
	return defaultOppRPI
}

func venueWinMultiplier(v models.Venue) float64 {
	switch v {
	case models.VenueAway:
		return venueRoadWin
	case models.VenueHome:
		return venueHomeWin
	default:
		return venueNeutralWin
	}
}

// Losses mirror wins: dropping one at home hurts most.
func venueLossMultiplier(v models.Venue) float64 {
	switch v {
	case models.VenueHome:
		return venueRoadWin
	case models.VenueAway:
		return venueHomeWin
	default:
		return venueNeutralWin
	}
}

func normalizeVenue(v models.Venue) models.Venue {
	if v == "" {
		return models.VenueNeutral
	}
	return v
}

func containsTeam(teams []models.TeamProfile, teamID string) bool {
	for _, t := range teams {
		if t.TeamID == teamID {
			return true
		}
	}
	return false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
