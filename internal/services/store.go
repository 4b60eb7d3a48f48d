package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/blazeintel/diamond-analytics/internal/models"
	"github.com/blazeintel/diamond-analytics/pkg/database"
)

// ErrNotFound marks an unresolvable team, conference, or player reference.
// Callers surface it explicitly instead of fabricating a rating.
var ErrNotFound = errors.New("not found")

// StatsStore is the persistence collaborator: team profiles, historical
// games, and player seasons, read-only to the analytics core.
type StatsStore struct {
	db *database.DB
}

func NewStatsStore(db *database.DB) *StatsStore {
	return &StatsStore{db: db}
}

// AutoMigrate creates the analytics tables.
func (s *StatsStore) AutoMigrate() error {
	return s.db.AutoMigrate(
		&models.TeamProfile{},
		&models.HistoricalGame{},
		&models.PlayerSeason{},
		&models.ProjectionRecord{},
	)
}

func (s *StatsStore) GetTeam(teamID string) (*models.TeamProfile, error) {
	var team models.TeamProfile
	err := s.db.Where("team_id = ?", teamID).First(&team).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("team %s: %w", teamID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load team %s: %w", teamID, err)
	}
	return &team, nil
}

// GetConferenceTeams returns a conference's current membership. An unknown
// conference resolves to ErrNotFound rather than an empty rating input.
func (s *StatsStore) GetConferenceTeams(conference string, season int) ([]models.TeamProfile, error) {
	var teams []models.TeamProfile
	err := s.db.Where("conference = ? AND season = ?", conference, season).
		Order("team_id").
		Find(&teams).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load conference %s: %w", conference, err)
	}
	if len(teams) == 0 {
		return nil, fmt.Errorf("conference %s season %d: %w", conference, season, ErrNotFound)
	}
	return teams, nil
}

func (s *StatsStore) GetLeagueTeams(season int) ([]models.TeamProfile, error) {
	var teams []models.TeamProfile
	if err := s.db.Where("season = ?", season).Find(&teams).Error; err != nil {
		return nil, fmt.Errorf("failed to load league teams: %w", err)
	}
	return teams, nil
}

func (s *StatsStore) GetTeamGames(teamID string, season int) ([]models.HistoricalGame, error) {
	var games []models.HistoricalGame
	err := s.db.Where("season = ? AND (home_team_id = ? OR away_team_id = ?)", season, teamID, teamID).
		Order("played_at").
		Find(&games).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load games for %s: %w", teamID, err)
	}
	return games, nil
}

// GetGamesInvolving returns every game with at least one of the given
// teams, each game once.
func (s *StatsStore) GetGamesInvolving(teamIDs []string, season int) ([]models.HistoricalGame, error) {
	var games []models.HistoricalGame
	err := s.db.Where("season = ? AND (home_team_id IN ? OR away_team_id IN ?)", season, teamIDs, teamIDs).
		Order("played_at").
		Find(&games).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load conference games: %w", err)
	}
	return games, nil
}

// GetSeasonGames returns the full season's history, used when the baseline
// RPI needs the opponents-of-opponents term.
func (s *StatsStore) GetSeasonGames(season int) ([]models.HistoricalGame, error) {
	var games []models.HistoricalGame
	if err := s.db.Where("season = ?", season).Find(&games).Error; err != nil {
		return nil, fmt.Errorf("failed to load season games: %w", err)
	}
	return games, nil
}

func (s *StatsStore) GetPlayerSeason(id uint) (*models.PlayerSeason, error) {
	var player models.PlayerSeason
	err := s.db.First(&player, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("player season %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load player season %d: %w", id, err)
	}
	return &player, nil
}

// GetPopulation loads the comparison peer group: same league, same season.
func (s *StatsStore) GetPopulation(league string, season int) ([]models.PlayerSeason, error) {
	var players []models.PlayerSeason
	err := s.db.Where("league = ? AND season = ?", league, season).Find(&players).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load population %s/%d: %w", league, season, err)
	}
	return players, nil
}

func (s *StatsStore) SaveProjection(record *models.ProjectionRecord) error {
	if err := s.db.Create(record).Error; err != nil {
		return fmt.Errorf("failed to save projection record: %w", err)
	}
	return nil
}

func (s *StatsStore) GetProjectionHistory(teamID string, limit int) ([]models.ProjectionRecord, error) {
	var records []models.ProjectionRecord
	err := s.db.Where("team_id = ?", teamID).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load projection history: %w", err)
	}
	return records, nil
}

// Upsert helpers used by ingestion and the refresher.

func (s *StatsStore) UpsertTeams(teams []models.TeamProfile) error {
	if len(teams) == 0 {
		return nil
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "team_id"}},
		UpdateAll: true,
	}).Create(&teams).Error
	if err != nil {
		return fmt.Errorf("failed to upsert teams: %w", err)
	}
	return nil
}

func (s *StatsStore) UpsertGames(games []models.HistoricalGame) error {
	if len(games) == 0 {
		return nil
	}
	if err := s.db.Create(&games).Error; err != nil {
		return fmt.Errorf("failed to insert games: %w", err)
	}
	return nil
}

func (s *StatsStore) UpsertPlayerSeasons(players []models.PlayerSeason) error {
	if len(players) == 0 {
		return nil
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&players).Error
	if err != nil {
		return fmt.Errorf("failed to upsert player seasons: %w", err)
	}
	return nil
}

// UpdateTeamRating writes a recomputed RPI back to a team profile.
func (s *StatsStore) UpdateTeamRating(teamID string, rpi float64) error {
	err := s.db.Model(&models.TeamProfile{}).
		Where("team_id = ?", teamID).
		Update("rpi", rpi).Error
	if err != nil {
		return fmt.Errorf("failed to update rating for %s: %w", teamID, err)
	}
	return nil
}
