package models

import (
	"time"
)

// Venue identifies where a game is played from the subject team's view.
type Venue string

const (
	VenueHome    Venue = "home"
	VenueAway    Venue = "away"
	VenueNeutral Venue = "neutral"
)

// Valid reports whether v is one of the three recognized venues.
func (v Venue) Valid() bool {
	return v == VenueHome || v == VenueAway || v == VenueNeutral
}

// TeamProfile is a team's season snapshot. Mutated only by ingestion;
// the analytics core treats it as read-only input.
type TeamProfile struct {
	TeamID         string    `gorm:"primaryKey;size:20" json:"team_id"`
	Name           string    `gorm:"size:100;not null" json:"name"`
	Conference     string    `gorm:"size:40;index" json:"conference"`
	Season         int       `gorm:"index" json:"season"`
	Wins           int       `json:"wins"`
	Losses         int       `json:"losses"`
	Quad1Wins      int       `json:"quad1_wins"`
	Quad1Losses    int       `json:"quad1_losses"`
	Quad2Wins      int       `json:"quad2_wins"`
	Quad2Losses    int       `json:"quad2_losses"`
	Quad3Wins      int       `json:"quad3_wins"`
	Quad3Losses    int       `json:"quad3_losses"`
	Quad4Wins      int       `json:"quad4_wins"`
	Quad4Losses    int       `json:"quad4_losses"`
	RPI            float64   `json:"rpi"`
	SOS            float64   `json:"sos"`
	NetRating      float64   `json:"net_rating"`
	RunDiffPerGame float64   `json:"run_diff_per_game"`
	NationalRank   int       `json:"national_rank"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (TeamProfile) TableName() string {
	return "team_profiles"
}

// GamesPlayed returns wins + losses.
func (t TeamProfile) GamesPlayed() int {
	return t.Wins + t.Losses
}

// WinPct returns the team's overall winning percentage, 0 for no games.
func (t TeamProfile) WinPct() float64 {
	games := t.GamesPlayed()
	if games == 0 {
		return 0
	}
	return float64(t.Wins) / float64(games)
}

// HistoricalGame is a completed game between two teams. Immutable once
// recorded.
type HistoricalGame struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Season         int       `gorm:"index" json:"season"`
	HomeTeamID     string    `gorm:"size:20;index;not null" json:"home_team_id"`
	AwayTeamID     string    `gorm:"size:20;index;not null" json:"away_team_id"`
	PlayedAt       time.Time `json:"played_at"`
	HomeScore      int       `json:"home_score"`
	AwayScore      int       `json:"away_score"`
	ConferenceGame bool      `json:"conference_game"`
	CreatedAt      time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (HistoricalGame) TableName() string {
	return "historical_games"
}

// WinnerID returns the winning team's ID, empty on a tie.
func (g HistoricalGame) WinnerID() string {
	switch {
	case g.HomeScore > g.AwayScore:
		return g.HomeTeamID
	case g.AwayScore > g.HomeScore:
		return g.AwayTeamID
	default:
		return ""
	}
}

// Involves reports whether teamID played in this game.
func (g HistoricalGame) Involves(teamID string) bool {
	return g.HomeTeamID == teamID || g.AwayTeamID == teamID
}

// OpponentOf returns the other team's ID, empty if teamID did not play.
func (g HistoricalGame) OpponentOf(teamID string) string {
	switch teamID {
	case g.HomeTeamID:
		return g.AwayTeamID
	case g.AwayTeamID:
		return g.HomeTeamID
	default:
		return ""
	}
}

// ProspectiveMatchup is a hypothetical future game used for projections.
// WinProbability is supplied by the caller (typically a separate win
// probability model) and treated as given.
type ProspectiveMatchup struct {
	OpponentID     string   `json:"opponent_id" binding:"required"`
	Venue          Venue    `json:"venue"`
	WinProbability float64  `json:"win_probability"`
	OpponentRPI    *float64 `json:"opponent_rpi,omitempty"`
	OpponentWinPct *float64 `json:"opponent_win_pct,omitempty"`
}
