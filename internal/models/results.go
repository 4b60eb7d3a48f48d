package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ConferenceStrengthResult is a single bounded rating for a conference plus
// the itemized metrics it was blended from. Confidence is reported so a
// thin sample is distinguishable from a trusted one.
type ConferenceStrengthResult struct {
	Conference string  `json:"conference"`
	Season     int     `json:"season"`
	TeamCount  int     `json:"team_count"`
	Rating     float64 `json:"rating"`
	Confidence float64 `json:"confidence"`

	CrossConfWins   int     `json:"cross_conf_wins"`
	CrossConfLosses int     `json:"cross_conf_losses"`
	CrossConfWinPct float64 `json:"cross_conf_win_pct"`
	IntraConfGames  int     `json:"intra_conf_games"`
	IntraConfWinPct float64 `json:"intra_conf_win_pct"`
	AverageRPI      float64 `json:"average_rpi"`
	NormalizedRPI   float64 `json:"normalized_rpi"`
	RunDiffPerGame  float64 `json:"run_diff_per_game"`
	QualityWinScore float64 `json:"quality_win_score"`
	Top50Wins       int     `json:"top50_wins"`

	Notes []string `json:"notes,omitempty"`
}

// MatchupScenario is the audit row for one prospective matchup inside a
// projection: its win probability, the RPI contribution it produced, and
// the opponent RPI used to produce it.
type MatchupScenario struct {
	OpponentID      string  `json:"opponent_id"`
	Venue           Venue   `json:"venue"`
	WinProbability  float64 `json:"win_probability"`
	OpponentRPI     float64 `json:"opponent_rpi"`
	RPIContribution float64 `json:"rpi_contribution"`
}

// ExpectedRecord is the matchup win probabilities converted into expected
// added wins/losses appended to the current record.
type ExpectedRecord struct {
	CurrentWins     int     `json:"current_wins"`
	CurrentLosses   int     `json:"current_losses"`
	AddedWins       float64 `json:"added_wins"`
	AddedLosses     float64 `json:"added_losses"`
	ProjectedWins   float64 `json:"projected_wins"`
	ProjectedLosses float64 `json:"projected_losses"`
}

// RpiProjectionResult is the outcome of projecting prospective matchups
// onto a team's baseline RPI.
type RpiProjectionResult struct {
	TeamID        string  `json:"team_id"`
	Season        int     `json:"season"`
	BaselineRPI   float64 `json:"baseline_rpi"`
	ProjectedRPI  float64 `json:"projected_rpi"`
	RPIDelta      float64 `json:"rpi_delta"`
	BaselineRank  *int    `json:"baseline_rank"`
	ProjectedRank *int    `json:"projected_rank"`
	Confidence    float64 `json:"confidence"`

	ExpectedRecord    *ExpectedRecord   `json:"expected_record,omitempty"`
	ScenarioBreakdown []MatchupScenario `json:"scenario_breakdown"`
	Notes             []string          `json:"notes,omitempty"`
}

// WinBucket is one point of the discrete win-count distribution produced
// by the schedule simulator.
type WinBucket struct {
	Wins        int     `json:"wins"`
	Probability float64 `json:"probability"`
}

// ScheduleSimulationResult aggregates the Monte Carlo trials for a team's
// prospective schedule. Gated results carry confidence 0 and a note rather
// than a fabricated distribution.
type ScheduleSimulationResult struct {
	TeamID         string      `json:"team_id"`
	Season         int         `json:"season"`
	Simulations    int         `json:"simulations"`
	ExpectedWins   float64     `json:"expected_added_wins"`
	ExpectedLosses float64     `json:"expected_added_losses"`
	BaselineOdds   float64     `json:"baseline_postseason_odds"`
	ProjectedOdds  float64     `json:"projected_postseason_odds"`
	OddsDelta      float64     `json:"postseason_odds_delta"`
	Distribution   []WinBucket `json:"distribution"`
	Gated          bool        `json:"gated"`
	Confidence     float64     `json:"confidence"`
	Notes          []string    `json:"notes,omitempty"`
}

// ProjectedRankingRow is one conference team's before/after standing.
type ProjectedRankingRow struct {
	TeamID        string  `json:"team_id"`
	Name          string  `json:"name"`
	BaselineRank  int     `json:"baseline_rank"`
	ProjectedRank int     `json:"projected_rank"`
	BaselineRPI   float64 `json:"baseline_rpi"`
	ProjectedRPI  float64 `json:"projected_rpi"`
	IsSubject     bool    `json:"is_subject"`
}

// ProjectionRecord persists one projection or simulation run so past
// results stay auditable after ratings move.
type ProjectionRecord struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	TeamID       string         `gorm:"size:20;index;not null" json:"team_id"`
	Season       int            `gorm:"index" json:"season"`
	Kind         string         `gorm:"size:20;not null" json:"kind"` // "projection" or "simulation"
	BaselineRPI  float64        `json:"baseline_rpi"`
	ProjectedRPI float64        `json:"projected_rpi"`
	Confidence   float64        `json:"confidence"`
	Breakdown    datatypes.JSON `gorm:"type:jsonb" json:"breakdown"`
	CreatedAt    time.Time      `json:"created_at"`
}

// TableName specifies the table name for GORM
func (ProjectionRecord) TableName() string {
	return "projection_records"
}
