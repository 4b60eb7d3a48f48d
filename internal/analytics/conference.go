package analytics

import (
	"math"

	"github.com/blazeintel/diamond-analytics/internal/models"
)

// Conference rating blend weights. Documented policy constants, tunable;
// they sum to 1.0.
const (
	ConfWeightCrossRecord   = 0.30
	ConfWeightNormalizedRPI = 0.30
	ConfWeightRunDiff       = 0.15
	ConfWeightQualityWins   = 0.15
	ConfWeightTop50Wins     = 0.10
)

// Small-sample confidence saturates at these counts.
const (
	confFullTeamSample = 8
	confFullGameSample = 60
)

// Quality-win scoring: quad 1 wins and quad 4 losses count double.
const (
	qualityQuadEdgeWeight = 2.0
	qualityPerTeamScale   = 4.0
)

// NeutralRating is the midpoint returned for an empty sample.
const NeutralRating = 50.0

// top50RankCutoff bounds what counts as a top-50-caliber opponent.
const top50RankCutoff = 50

// ConferenceStrengthInput carries the resolved records a strength
// calculation operates over. ID resolution happens in the service layer.
type ConferenceStrengthInput struct {
	Conference string
	Season     int
	Teams      []models.TeamProfile // current conference membership
	Games      []models.HistoricalGame
	League     []models.TeamProfile // full league, for RPI normalization and rank lookup
}

// CalculateConferenceStrength aggregates a conference's game results into a
// single bounded rating with confidence. A conference with zero games
// returns the population midpoint with confidence 0 and a note, never a
// division-by-zero failure.
func CalculateConferenceStrength(input ConferenceStrengthInput) models.ConferenceStrengthResult {
	result := models.ConferenceStrengthResult{
		Conference: input.Conference,
		Season:     input.Season,
		TeamCount:  len(input.Teams),
	}

	members := make(map[string]bool, len(input.Teams))
	for _, t := range input.Teams {
		members[t.TeamID] = true
	}

	ranks := make(map[string]int, len(input.League))
	for _, t := range input.League {
		ranks[t.TeamID] = t.NationalRank
	}

	var (
		crossWins, crossLosses int
		intraWins, intraLosses int
		gamesSeen              int
	)
	for _, g := range input.Games {
		homeMember := members[g.HomeTeamID]
		awayMember := members[g.AwayTeamID]
		if !homeMember && !awayMember {
			continue
		}
		winner := g.WinnerID()
		if winner == "" {
			continue
		}
		gamesSeen++

		if homeMember && awayMember {
			// Intra-conference: one member win and one member loss per game.
			intraWins++
			intraLosses++
			continue
		}
		if members[winner] {
			crossWins++
		} else {
			crossLosses++
		}

		// Top-50 wins only count against outside competition.
		if members[winner] {
			opp := g.OpponentOf(winner)
			if r, ok := ranks[opp]; ok && r > 0 && r <= top50RankCutoff {
				result.Top50Wins++
			}
		}
	}

	if gamesSeen == 0 {
		result.Rating = NeutralRating
		result.Confidence = 0
		result.AverageRPI = averageRPI(input.Teams)
		result.Notes = append(result.Notes, "no completed games for conference; rating defaulted to population midpoint")
		return result
	}

	result.CrossConfWins = crossWins
	result.CrossConfLosses = crossLosses
	result.CrossConfWinPct = safeRatio(float64(crossWins), float64(crossWins+crossLosses), 0.5)
	result.IntraConfGames = intraWins // one game per win/loss pair
	result.IntraConfWinPct = safeRatio(float64(intraWins), float64(intraWins+intraLosses), 0.5)

	result.AverageRPI = averageRPI(input.Teams)
	result.NormalizedRPI = normalizeAgainstLeague(result.AverageRPI, input.League)
	result.RunDiffPerGame = averageRunDiff(input.Teams)
	result.QualityWinScore = qualityWinScore(input.Teams)

	runDiffScore := clamp01(0.5 + result.RunDiffPerGame/10)
	top50Score := math.Min(1, float64(result.Top50Wins)/(float64(len(input.Teams))*2))

	rating := 100 * (ConfWeightCrossRecord*result.CrossConfWinPct +
		ConfWeightNormalizedRPI*result.NormalizedRPI +
		ConfWeightRunDiff*runDiffScore +
		ConfWeightQualityWins*result.QualityWinScore +
		ConfWeightTop50Wins*top50Score)
	result.Rating = round1(clampScore(rating))

	teamSample := math.Min(1, float64(len(input.Teams))/confFullTeamSample)
	gameSample := math.Min(1, float64(gamesSeen)/confFullGameSample)
	result.Confidence = round3(teamSample * gameSample)
	if result.Confidence < 0.5 {
		result.Notes = append(result.Notes, "small sample; rating confidence reduced")
	}

	return result
}

// qualityWinScore maps aggregate quadrant wins against bad losses into 0-1.
// Quad 1 wins and quad 4 losses are the extremes and count double.
func qualityWinScore(teams []models.TeamProfile) float64 {
	if len(teams) == 0 {
		return 0.5
	}
	raw := 0.0
	for _, t := range teams {
		raw += qualityQuadEdgeWeight*float64(t.Quad1Wins) + float64(t.Quad2Wins)
		raw -= float64(t.Quad3Losses) + qualityQuadEdgeWeight*float64(t.Quad4Losses)
	}
	perTeam := raw / float64(len(teams))
	return clamp01(0.5 + perTeam/(2*qualityPerTeamScale))
}

// normalizeAgainstLeague places a conference's average RPI within the full
// league RPI distribution, so 0.55 in a weak sample does not read as
// universally strong. An empty league yields 0.5.
func normalizeAgainstLeague(avg float64, league []models.TeamProfile) float64 {
	if len(league) == 0 {
		return 0.5
	}
	below := 0
	for _, t := range league {
		if t.RPI < avg {
			below++
		}
	}
	return float64(below) / float64(len(league))
}

func averageRPI(teams []models.TeamProfile) float64 {
	if len(teams) == 0 {
		return 0
	}
	sum := 0.0
	for _, t := range teams {
		sum += t.RPI
	}
	return sum / float64(len(teams))
}

func averageRunDiff(teams []models.TeamProfile) float64 {
	if len(teams) == 0 {
		return 0
	}
	sum := 0.0
	for _, t := range teams {
		sum += t.RunDiffPerGame
	}
	return sum / float64(len(teams))
}

func safeRatio(num, den, fallback float64) float64 {
	if den == 0 {
		return fallback
	}
	return num / den
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
