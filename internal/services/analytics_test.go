package services

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/blazeintel/diamond-analytics/internal/models"
	"github.com/blazeintel/diamond-analytics/pkg/config"
	"github.com/blazeintel/diamond-analytics/pkg/database"
)

type AnalyticsServiceTestSuite struct {
	suite.Suite
	db    *database.DB
	store *StatsStore
	svc   *AnalyticsService
}

func (s *AnalyticsServiceTestSuite) SetupSuite() {
	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	s.Require().NoError(err)

	s.db = &database.DB{DB: gormDB}
	s.store = NewStatsStore(s.db)
	s.Require().NoError(s.store.AutoMigrate())

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	cfg := &config.Config{
		DefaultSimulations: 1000,
		MaxSimulations:     5000,
		PercentileCacheTTL: 60,
		StrengthCacheTTL:   60,
		CurrentSeason:      2025,
		DefaultLeague:      "NCAA",
	}
	s.svc = NewAnalyticsService(s.store, nil, nil, cfg, logger)
}

func (s *AnalyticsServiceTestSuite) SetupTest() {
	s.db.Exec("DELETE FROM projection_records")
	s.db.Exec("DELETE FROM player_seasons")
	s.db.Exec("DELETE FROM historical_games")
	s.db.Exec("DELETE FROM team_profiles")
}

func (s *AnalyticsServiceTestSuite) seedSEC() {
	teams := []models.TeamProfile{
		{TeamID: "TENN", Name: "Tennessee", Conference: "SEC", Season: 2025, Wins: 44, Losses: 12, RPI: 0.631},
		{TeamID: "ARK", Name: "Arkansas", Conference: "SEC", Season: 2025, Wins: 41, Losses: 14, RPI: 0.612},
		{TeamID: "LSU", Name: "LSU", Conference: "SEC", Season: 2025, Wins: 40, Losses: 15, RPI: 0.604},
		{TeamID: "CLEM", Name: "Clemson", Conference: "ACC", Season: 2025, Wins: 42, Losses: 13, RPI: 0.618},
	}
	s.Require().NoError(s.store.UpsertTeams(teams))

	played := time.Date(2025, time.March, 1, 18, 0, 0, 0, time.UTC)
	games := []models.HistoricalGame{
		{Season: 2025, HomeTeamID: "TENN", AwayTeamID: "ARK", PlayedAt: played, HomeScore: 7, AwayScore: 4, ConferenceGame: true},
		{Season: 2025, HomeTeamID: "LSU", AwayTeamID: "TENN", PlayedAt: played.AddDate(0, 0, 3), HomeScore: 2, AwayScore: 6, ConferenceGame: true},
		{Season: 2025, HomeTeamID: "TENN", AwayTeamID: "CLEM", PlayedAt: played.AddDate(0, 0, 10), HomeScore: 6, AwayScore: 5},
		{Season: 2025, HomeTeamID: "CLEM", AwayTeamID: "ARK", PlayedAt: played.AddDate(0, 0, 11), HomeScore: 8, AwayScore: 2},
	}
	s.Require().NoError(s.store.UpsertGames(games))
}

func (s *AnalyticsServiceTestSuite) seedPlayers() {
	players := []models.PlayerSeason{
		{ExternalID: "p1", Name: "Blake Burke", TeamID: "TENN", League: "NCAA", Season: 2025,
			Batting:  models.BattingProfile{Average: 0.379, OnBasePct: 0.448, SluggingPct: 0.701, WOBA: 0.462, IsolatedPower: 0.322, WalkRate: 0.098, StrikeoutRate: 0.166, BABIP: 0.384, HomeRunRate: 0.071},
			Fielding: models.FieldingProfile{FieldingPct: 0.994, Putouts: 487, Assists: 31, Errors: 3, Games: 56}},
		{ExternalID: "p2", Name: "Wehiwa Aloy", TeamID: "ARK", League: "NCAA", Season: 2025,
			Batting:  models.BattingProfile{Average: 0.331, OnBasePct: 0.401, SluggingPct: 0.594, WOBA: 0.419, IsolatedPower: 0.263, WalkRate: 0.081, StrikeoutRate: 0.204, BABIP: 0.352, HomeRunRate: 0.059},
			Fielding: models.FieldingProfile{FieldingPct: 0.952, Putouts: 84, Assists: 167, Errors: 13, Games: 55}},
		{ExternalID: "p3", Name: "Tommy White", TeamID: "LSU", League: "NCAA", Season: 2025,
			Batting:  models.BattingProfile{Average: 0.343, OnBasePct: 0.405, SluggingPct: 0.625, WOBA: 0.428, IsolatedPower: 0.282, WalkRate: 0.072, StrikeoutRate: 0.151, BABIP: 0.349, HomeRunRate: 0.065},
			Fielding: models.FieldingProfile{FieldingPct: 0.918, Putouts: 42, Assists: 101, Errors: 13, Games: 55}},
	}
	s.Require().NoError(s.store.UpsertPlayerSeasons(players))
}

func (s *AnalyticsServiceTestSuite) TestScorePlayer() {
	s.seedPlayers()

	var player models.PlayerSeason
	s.Require().NoError(s.db.Where("external_id = ?", "p1").First(&player).Error)

	evaluation, err := s.svc.ScorePlayer(context.Background(), player.ID)
	s.Require().NoError(err)

	s.Equal("Blake Burke", evaluation.Name)
	s.Equal(3, evaluation.PopulationSize)
	s.GreaterOrEqual(evaluation.Scores.Composite, 0.0)
	s.LessOrEqual(evaluation.Scores.Composite, 100.0)
}

func (s *AnalyticsServiceTestSuite) TestScorePlayerNotFound() {
	_, err := s.svc.ScorePlayer(context.Background(), 99999)
	s.ErrorIs(err, ErrNotFound)
}

func (s *AnalyticsServiceTestSuite) TestScorePopulation() {
	s.seedPlayers()

	evaluations, err := s.svc.ScorePopulation(context.Background(), "NCAA", 2025)
	s.Require().NoError(err)
	s.Len(evaluations, 3)

	for _, e := range evaluations {
		s.Equal(3, e.PopulationSize)
	}
}

func (s *AnalyticsServiceTestSuite) TestConferenceStrength() {
	s.seedSEC()

	result, err := s.svc.ConferenceStrength(context.Background(), "SEC", 2025)
	s.Require().NoError(err)

	s.Equal("SEC", result.Conference)
	s.Equal(3, result.TeamCount)
	s.Equal(1, result.CrossConfWins)
	s.Equal(1, result.CrossConfLosses)
}

func (s *AnalyticsServiceTestSuite) TestConferenceStrengthUnknown() {
	s.seedSEC()

	_, err := s.svc.ConferenceStrength(context.Background(), "Big 12", 2025)
	s.ErrorIs(err, ErrNotFound)
}

func (s *AnalyticsServiceTestSuite) TestProjectRPIPersistsRun() {
	s.seedSEC()

	matchups := []models.ProspectiveMatchup{
		{OpponentID: "LSU", Venue: models.VenueAway, WinProbability: 0.55},
		{OpponentID: "ARK", Venue: models.VenueHome, WinProbability: 0.65},
	}

	result, err := s.svc.ProjectRPI(context.Background(), "TENN", matchups)
	s.Require().NoError(err)

	s.InDelta(0.631, result.BaselineRPI, 1e-9)
	s.Len(result.ScenarioBreakdown, 2)

	// Missing opponent RPIs are filled from stored profiles
	s.InDelta(0.604, result.ScenarioBreakdown[0].OpponentRPI, 1e-9)
	s.InDelta(0.612, result.ScenarioBreakdown[1].OpponentRPI, 1e-9)

	history, err := s.svc.ProjectionHistory("TENN", 10)
	s.Require().NoError(err)
	s.Require().Len(history, 1)
	s.Equal("projection", history[0].Kind)
	s.NotEmpty(history[0].Breakdown)
}

func (s *AnalyticsServiceTestSuite) TestProjectRPIUnknownTeam() {
	s.seedSEC()

	_, err := s.svc.ProjectRPI(context.Background(), "NOPE", nil)
	s.ErrorIs(err, ErrNotFound)
}

func (s *AnalyticsServiceTestSuite) TestSimulateScheduleSeedIsReproducible() {
	s.seedSEC()

	matchups := []models.ProspectiveMatchup{
		{OpponentID: "LSU", Venue: models.VenueAway, WinProbability: 0.55},
		{OpponentID: "ARK", Venue: models.VenueHome, WinProbability: 0.65},
		{OpponentID: "CLEM", Venue: models.VenueNeutral, WinProbability: 0.50},
	}
	seed := int64(42)

	first, err := s.svc.SimulateSchedule(context.Background(), "TENN", matchups, SimulateOptions{Seed: &seed})
	s.Require().NoError(err)
	second, err := s.svc.SimulateSchedule(context.Background(), "TENN", matchups, SimulateOptions{Seed: &seed})
	s.Require().NoError(err)

	s.Equal(first.Distribution, second.Distribution)
	s.Equal(first.ProjectedOdds, second.ProjectedOdds)

	history, err := s.svc.ProjectionHistory("TENN", 10)
	s.Require().NoError(err)
	s.Len(history, 2)
	s.Equal("simulation", history[0].Kind)
}

func (s *AnalyticsServiceTestSuite) TestSimulateScheduleClampsTrialCount() {
	s.seedSEC()

	matchups := []models.ProspectiveMatchup{
		{OpponentID: "LSU", Venue: models.VenueAway, WinProbability: 0.55},
	}
	seed := int64(7)

	result, err := s.svc.SimulateSchedule(context.Background(), "TENN", matchups, SimulateOptions{
		Simulations: 1000000,
		Seed:        &seed,
	})
	s.Require().NoError(err)
	s.Equal(5000, result.Simulations)
}

func (s *AnalyticsServiceTestSuite) TestConferenceRanking() {
	s.seedSEC()

	rows, err := s.svc.ConferenceRanking(context.Background(), "SEC", 2025, "LSU", 0.645)
	s.Require().NoError(err)
	s.Len(rows, 3)

	// LSU's projected RPI moves it past both peers
	for _, row := range rows {
		if row.TeamID == "LSU" {
			s.True(row.IsSubject)
			s.Equal(3, row.BaselineRank)
			s.Equal(1, row.ProjectedRank)
		}
	}

	_, err = s.svc.ConferenceRanking(context.Background(), "SEC", 2025, "CLEM", 0.645)
	s.ErrorIs(err, ErrNotFound)
}

func TestAnalyticsServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AnalyticsServiceTestSuite))
}
