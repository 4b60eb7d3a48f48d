package analytics

import (
	"sort"

	"github.com/blazeintel/diamond-analytics/internal/models"
)

// Stat identifies one of the tracked statistics in a percentile table.
type Stat string

const (
	StatAverage       Stat = "avg"
	StatOnBasePct     Stat = "obp"
	StatSluggingPct   Stat = "slg"
	StatWOBA          Stat = "woba"
	StatIsolatedPower Stat = "iso"
	StatWalkRate      Stat = "bb_rate"
	StatStrikeoutRate Stat = "k_rate"
	StatBABIP         Stat = "babip"
	StatHomeRunRate   Stat = "hr_rate"
	StatFieldingPct   Stat = "fielding_pct"
	StatRangeFactor   Stat = "range_factor"
	StatAssistsPerGm  Stat = "assists_per_game"
)

// TrackedStats lists every statistic a table carries, in a fixed order.
var TrackedStats = []Stat{
	StatAverage, StatOnBasePct, StatSluggingPct, StatWOBA, StatIsolatedPower,
	StatWalkRate, StatStrikeoutRate, StatBABIP, StatHomeRunRate,
	StatFieldingPct, StatRangeFactor, StatAssistsPerGm,
}

// NeutralRank is returned when a stat has no population to rank against.
const NeutralRank = 50.0

// PercentileTable holds, for each tracked statistic, the population's values
// sorted ascending. Tables are built fresh per population and never mutated
// afterward, so concurrent scoring never sees a half-sorted view.
type PercentileTable struct {
	values map[Stat][]float64
}

// statValue extracts a single tracked statistic from a player season.
// Range factor and assists per game are derived from raw fielding counts.
func statValue(p models.PlayerSeason, stat Stat) float64 {
	switch stat {
	case StatAverage:
		return p.Batting.Average
	case StatOnBasePct:
		return p.Batting.OnBasePct
	case StatSluggingPct:
		return p.Batting.SluggingPct
	case StatWOBA:
		return p.Batting.WOBA
	case StatIsolatedPower:
		return p.Batting.IsolatedPower
	case StatWalkRate:
		return p.Batting.WalkRate
	case StatStrikeoutRate:
		return p.Batting.StrikeoutRate
	case StatBABIP:
		return p.Batting.BABIP
	case StatHomeRunRate:
		return p.Batting.HomeRunRate
	case StatFieldingPct:
		return p.Fielding.FieldingPct
	case StatRangeFactor:
		return p.Fielding.RangeFactor()
	case StatAssistsPerGm:
		return p.Fielding.AssistsPerGame()
	}
	return 0
}

// BuildPercentileTable builds per-statistic sorted reference arrays from a
// population sample. No outlier filtering: zero and negative rates are kept
// as-is. The result does not depend on input order.
func BuildPercentileTable(population []models.PlayerSeason) *PercentileTable {
	table := &PercentileTable{values: make(map[Stat][]float64, len(TrackedStats))}

	for _, stat := range TrackedStats {
		vals := make([]float64, 0, len(population))
		for _, p := range population {
			vals = append(vals, statValue(p, stat))
		}
		sort.Float64s(vals)
		table.values[stat] = vals
	}

	return table
}

// Size returns the population size the table was built from.
func (t *PercentileTable) Size() int {
	if t == nil {
		return 0
	}
	return len(t.values[StatAverage])
}

// Rank returns the left-exclusive percentile rank of value within the
// population for stat: the share of population values strictly below it,
// scaled to 0-100. Ties with the probed value do not count as beaten, so
// the population minimum scores 0. An empty population yields NeutralRank.
func (t *PercentileTable) Rank(stat Stat, value float64) float64 {
	if t == nil {
		return NeutralRank
	}
	sorted := t.values[stat]
	if len(sorted) == 0 {
		return NeutralRank
	}
	// First index with sorted[i] >= value equals the count strictly below.
	below := sort.SearchFloat64s(sorted, value)
	return float64(below) / float64(len(sorted)) * 100
}
