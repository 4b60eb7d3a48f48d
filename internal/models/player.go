package models

import (
	"time"
)

// BattingProfile holds per-season rate stats for a hitter. All values are
// season aggregates produced by ingestion; the analytics core only reads them.
type BattingProfile struct {
	Average       float64 `gorm:"column:avg" json:"avg"`
	OnBasePct     float64 `gorm:"column:obp" json:"obp"`
	SluggingPct   float64 `gorm:"column:slg" json:"slg"`
	WOBA          float64 `gorm:"column:woba" json:"woba"`
	IsolatedPower float64 `gorm:"column:iso" json:"iso"`
	WalkRate      float64 `gorm:"column:bb_rate" json:"bb_rate"`
	StrikeoutRate float64 `gorm:"column:k_rate" json:"k_rate"`
	BABIP         float64 `gorm:"column:babip" json:"babip"`
	HomeRunRate   float64 `gorm:"column:hr_rate" json:"hr_rate"`
}

// FieldingProfile holds raw fielding counts. Range factor and assists per
// game are derived on demand and never stored.
type FieldingProfile struct {
	FieldingPct float64 `gorm:"column:fielding_pct" json:"fielding_pct"`
	Putouts     int     `gorm:"column:putouts" json:"putouts"`
	Assists     int     `gorm:"column:assists" json:"assists"`
	Errors      int     `gorm:"column:errors" json:"errors"`
	Games       int     `gorm:"column:games" json:"games"`
}

// RangeFactor returns (putouts + assists) / games, or 0 for an empty season.
func (f FieldingProfile) RangeFactor() float64 {
	if f.Games == 0 {
		return 0
	}
	return float64(f.Putouts+f.Assists) / float64(f.Games)
}

// AssistsPerGame returns assists / games, or 0 for an empty season.
func (f FieldingProfile) AssistsPerGame() float64 {
	if f.Games == 0 {
		return 0
	}
	return float64(f.Assists) / float64(f.Games)
}

// PlayerSeason is one player's season aggregate within a league peer group.
type PlayerSeason struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	ExternalID string          `gorm:"index" json:"external_id"`
	Name       string          `gorm:"size:100;not null" json:"name"`
	TeamID     string          `gorm:"size:20;index" json:"team_id"`
	League     string          `gorm:"size:20;index" json:"league"`
	Season     int             `gorm:"index" json:"season"`
	Batting    BattingProfile  `gorm:"embedded" json:"batting"`
	Fielding   FieldingProfile `gorm:"embedded" json:"fielding"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (PlayerSeason) TableName() string {
	return "player_seasons"
}

// CompositeResult is the HAV-F evaluation for one player: four 0-100
// sub-scores and the weighted composite, all rounded to one decimal.
type CompositeResult struct {
	Hitting   float64 `json:"hitting"`
	AtBat     float64 `json:"at_bat"`
	Power     float64 `json:"power"`
	Fielding  float64 `json:"fielding"`
	Composite float64 `json:"composite"`
}
