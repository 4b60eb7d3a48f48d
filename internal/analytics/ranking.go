package analytics

import (
	"sort"

	"github.com/blazeintel/diamond-analytics/internal/models"
)

// BuildConferenceRanking sorts a conference descending by RPI for baseline
// ranks, then re-sorts with the subject team's RPI replaced by projectedRPI
// for projected ranks. Equal RPI values order by team ID, so ranks never
// depend on input iteration order. One row is returned per team so callers
// can see conference-wide rank churn from one team's change.
func BuildConferenceRanking(teams []models.TeamProfile, subjectID string, projectedRPI float64) []models.ProjectedRankingRow {
	baseline := rankByRPI(teams, func(t models.TeamProfile) float64 {
		return t.RPI
	})
	projected := rankByRPI(teams, func(t models.TeamProfile) float64 {
		if t.TeamID == subjectID {
			return projectedRPI
		}
		return t.RPI
	})

	rows := make([]models.ProjectedRankingRow, 0, len(teams))
	for _, t := range teams {
		row := models.ProjectedRankingRow{
			TeamID:        t.TeamID,
			Name:          t.Name,
			BaselineRank:  baseline[t.TeamID],
			ProjectedRank: projected[t.TeamID],
			BaselineRPI:   round3(t.RPI),
			ProjectedRPI:  round3(t.RPI),
			IsSubject:     t.TeamID == subjectID,
		}
		if row.IsSubject {
			row.ProjectedRPI = round3(projectedRPI)
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].ProjectedRank < rows[j].ProjectedRank
	})
	return rows
}

func rankByRPI(teams []models.TeamProfile, rpiOf func(models.TeamProfile) float64) map[string]int {
	ordered := make([]models.TeamProfile, len(teams))
	copy(ordered, teams)
	sort.Slice(ordered, func(i, j int) bool {
		ri, rj := rpiOf(ordered[i]), rpiOf(ordered[j])
		if ri != rj {
			return ri > rj
		}
		return ordered[i].TeamID < ordered[j].TeamID
	})

	ranks := make(map[string]int, len(ordered))
	for i, t := range ordered {
		ranks[t.TeamID] = i + 1
	}
	return ranks
}
