package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/blazeintel/diamond-analytics/internal/models"
	"github.com/blazeintel/diamond-analytics/pkg/config"
	"github.com/blazeintel/diamond-analytics/pkg/database"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: migrate [up|down|seed]")
	}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	db, err := database.NewConnection(cfg.DatabaseDriver, cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	command := os.Args[1]

	switch command {
	case "up":
		if err := runMigrations(db, cfg.DatabaseDriver); err != nil {
			logrus.Fatalf("Failed to run migrations: %v", err)
		}
		logrus.Info("Migrations completed successfully")

	case "down":
		if err := dropTables(db); err != nil {
			logrus.Fatalf("Failed to drop tables: %v", err)
		}
		logrus.Info("Tables dropped successfully")

	case "seed":
		if err := seedData(db, cfg.CurrentSeason); err != nil {
			logrus.Fatalf("Failed to seed data: %v", err)
		}
		logrus.Info("Data seeded successfully")

	default:
		log.Fatalf("Unknown command: %s", command)
	}
}

func runMigrations(db *database.DB, driver string) error {
	if driver == "postgres" {
		if err := db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error; err != nil {
			return fmt.Errorf("failed to create UUID extension: %w", err)
		}
	}

	if err := db.AutoMigrate(
		&models.TeamProfile{},
		&models.HistoricalGame{},
		&models.PlayerSeason{},
		&models.ProjectionRecord{},
	); err != nil {
		return fmt.Errorf("failed to migrate models: %w", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_teams_conference_season ON team_profiles(conference, season)",
		"CREATE INDEX IF NOT EXISTS idx_games_season_home ON historical_games(season, home_team_id)",
		"CREATE INDEX IF NOT EXISTS idx_games_season_away ON historical_games(season, away_team_id)",
		"CREATE INDEX IF NOT EXISTS idx_players_league_season ON player_seasons(league, season)",
		"CREATE INDEX IF NOT EXISTS idx_projections_team_created ON projection_records(team_id, created_at DESC)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

func dropTables(db *database.DB) error {
	tables := []string{
		"projection_records",
		"player_seasons",
		"historical_games",
		"team_profiles",
	}

	for _, table := range tables {
		if err := db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)).Error; err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}

	return nil
}

func seedData(db *database.DB, season int) error {
	teams := []models.TeamProfile{
		{TeamID: "TENN", Name: "Tennessee", Conference: "SEC", Season: season, Wins: 44, Losses: 12, RPI: 0.631, RunDiffPerGame: 3.4, NationalRank: 3, Quad1Wins: 14, Quad1Losses: 6},
		{TeamID: "ARK", Name: "Arkansas", Conference: "SEC", Season: season, Wins: 41, Losses: 14, RPI: 0.612, RunDiffPerGame: 2.8, NationalRank: 7, Quad1Wins: 12, Quad1Losses: 8},
		{TeamID: "LSU", Name: "LSU", Conference: "SEC", Season: season, Wins: 40, Losses: 15, RPI: 0.604, RunDiffPerGame: 2.5, NationalRank: 9, Quad1Wins: 11, Quad1Losses: 9},
		{TeamID: "FLA", Name: "Florida", Conference: "SEC", Season: season, Wins: 36, Losses: 19, RPI: 0.577, RunDiffPerGame: 1.6, NationalRank: 18, Quad1Wins: 9, Quad1Losses: 11},
		{TeamID: "UGA", Name: "Georgia", Conference: "SEC", Season: season, Wins: 34, Losses: 21, RPI: 0.562, RunDiffPerGame: 1.1, NationalRank: 24, Quad1Wins: 8, Quad1Losses: 12},
		{TeamID: "CLEM", Name: "Clemson", Conference: "ACC", Season: season, Wins: 42, Losses: 13, RPI: 0.618, RunDiffPerGame: 2.9, NationalRank: 5, Quad1Wins: 10, Quad1Losses: 7},
		{TeamID: "FSU", Name: "Florida State", Conference: "ACC", Season: season, Wins: 38, Losses: 17, RPI: 0.589, RunDiffPerGame: 2.0, NationalRank: 14, Quad1Wins: 9, Quad1Losses: 9},
		{TeamID: "ORST", Name: "Oregon State", Conference: "Pac-12", Season: season, Wins: 39, Losses: 16, RPI: 0.595, RunDiffPerGame: 2.2, NationalRank: 12, Quad1Wins: 10, Quad1Losses: 8},
	}
	if err := db.Create(&teams).Error; err != nil {
		return fmt.Errorf("failed to create teams: %w", err)
	}

	opening := time.Date(season, time.February, 14, 18, 0, 0, 0, time.UTC)
	games := []models.HistoricalGame{
		{Season: season, HomeTeamID: "TENN", AwayTeamID: "ARK", PlayedAt: opening, HomeScore: 7, AwayScore: 4, ConferenceGame: true},
		{Season: season, HomeTeamID: "ARK", AwayTeamID: "TENN", PlayedAt: opening.AddDate(0, 0, 1), HomeScore: 5, AwayScore: 3, ConferenceGame: true},
		{Season: season, HomeTeamID: "LSU", AwayTeamID: "TENN", PlayedAt: opening.AddDate(0, 0, 7), HomeScore: 2, AwayScore: 6, ConferenceGame: true},
		{Season: season, HomeTeamID: "FLA", AwayTeamID: "UGA", PlayedAt: opening.AddDate(0, 0, 8), HomeScore: 8, AwayScore: 5, ConferenceGame: true},
		{Season: season, HomeTeamID: "UGA", AwayTeamID: "LSU", PlayedAt: opening.AddDate(0, 0, 14), HomeScore: 4, AwayScore: 9, ConferenceGame: true},
		{Season: season, HomeTeamID: "TENN", AwayTeamID: "CLEM", PlayedAt: opening.AddDate(0, 0, 21), HomeScore: 6, AwayScore: 5},
		{Season: season, HomeTeamID: "FSU", AwayTeamID: "ARK", PlayedAt: opening.AddDate(0, 0, 22), HomeScore: 3, AwayScore: 7},
		{Season: season, HomeTeamID: "ORST", AwayTeamID: "LSU", PlayedAt: opening.AddDate(0, 0, 28), HomeScore: 5, AwayScore: 4},
		{Season: season, HomeTeamID: "CLEM", AwayTeamID: "FLA", PlayedAt: opening.AddDate(0, 0, 29), HomeScore: 9, AwayScore: 2},
		{Season: season, HomeTeamID: "UGA", AwayTeamID: "FSU", PlayedAt: opening.AddDate(0, 0, 35), HomeScore: 6, AwayScore: 6},
	}
	if err := db.Create(&games).Error; err != nil {
		return fmt.Errorf("failed to create games: %w", err)
	}

	players := []models.PlayerSeason{
		{ExternalID: "ncaa_1001", Name: "Blake Burke", TeamID: "TENN", League: "NCAA", Season: season,
			Batting:  models.BattingProfile{Average: 0.379, OnBasePct: 0.448, SluggingPct: 0.701, WOBA: 0.462, IsolatedPower: 0.322, WalkRate: 0.098, StrikeoutRate: 0.166, BABIP: 0.384, HomeRunRate: 0.071},
			Fielding: models.FieldingProfile{FieldingPct: 0.994, Putouts: 487, Assists: 31, Errors: 3, Games: 56}},
		{ExternalID: "ncaa_1002", Name: "Christian Moore", TeamID: "TENN", League: "NCAA", Season: season,
			Batting:  models.BattingProfile{Average: 0.352, OnBasePct: 0.422, SluggingPct: 0.672, WOBA: 0.448, IsolatedPower: 0.320, WalkRate: 0.089, StrikeoutRate: 0.192, BABIP: 0.361, HomeRunRate: 0.083},
			Fielding: models.FieldingProfile{FieldingPct: 0.961, Putouts: 98, Assists: 152, Errors: 10, Games: 56}},
		{ExternalID: "ncaa_1003", Name: "Wehiwa Aloy", TeamID: "ARK", League: "NCAA", Season: season,
			Batting:  models.BattingProfile{Average: 0.331, OnBasePct: 0.401, SluggingPct: 0.594, WOBA: 0.419, IsolatedPower: 0.263, WalkRate: 0.081, StrikeoutRate: 0.204, BABIP: 0.352, HomeRunRate: 0.059},
			Fielding: models.FieldingProfile{FieldingPct: 0.952, Putouts: 84, Assists: 167, Errors: 13, Games: 55}},
		{ExternalID: "ncaa_1004", Name: "Tommy White", TeamID: "LSU", League: "NCAA", Season: season,
			Batting:  models.BattingProfile{Average: 0.343, OnBasePct: 0.405, SluggingPct: 0.625, WOBA: 0.428, IsolatedPower: 0.282, WalkRate: 0.072, StrikeoutRate: 0.151, BABIP: 0.349, HomeRunRate: 0.065},
			Fielding: models.FieldingProfile{FieldingPct: 0.918, Putouts: 42, Assists: 101, Errors: 13, Games: 55}},
		{ExternalID: "ncaa_1005", Name: "Jac Caglianone", TeamID: "FLA", League: "NCAA", Season: season,
			Batting:  models.BattingProfile{Average: 0.419, OnBasePct: 0.544, SluggingPct: 0.875, WOBA: 0.553, IsolatedPower: 0.456, WalkRate: 0.182, StrikeoutRate: 0.098, BABIP: 0.366, HomeRunRate: 0.126},
			Fielding: models.FieldingProfile{FieldingPct: 0.989, Putouts: 401, Assists: 28, Errors: 5, Games: 55}},
		{ExternalID: "ncaa_1006", Name: "Charlie Condon", TeamID: "UGA", League: "NCAA", Season: season,
			Batting:  models.BattingProfile{Average: 0.433, OnBasePct: 0.556, SluggingPct: 1.009, WOBA: 0.601, IsolatedPower: 0.576, WalkRate: 0.168, StrikeoutRate: 0.131, BABIP: 0.392, HomeRunRate: 0.151},
			Fielding: models.FieldingProfile{FieldingPct: 0.948, Putouts: 112, Assists: 64, Errors: 9, Games: 56}},
		{ExternalID: "ncaa_1007", Name: "Cam Cannarella", TeamID: "CLEM", League: "NCAA", Season: season,
			Batting:  models.BattingProfile{Average: 0.337, OnBasePct: 0.417, SluggingPct: 0.561, WOBA: 0.412, IsolatedPower: 0.224, WalkRate: 0.102, StrikeoutRate: 0.149, BABIP: 0.358, HomeRunRate: 0.041},
			Fielding: models.FieldingProfile{FieldingPct: 0.991, Putouts: 151, Assists: 6, Errors: 2, Games: 54}},
		{ExternalID: "ncaa_1008", Name: "Travis Bazzana", TeamID: "ORST", League: "NCAA", Season: season,
			Batting:  models.BattingProfile{Average: 0.407, OnBasePct: 0.568, SluggingPct: 0.911, WOBA: 0.582, IsolatedPower: 0.504, WalkRate: 0.211, StrikeoutRate: 0.117, BABIP: 0.371, HomeRunRate: 0.139},
			Fielding: models.FieldingProfile{FieldingPct: 0.973, Putouts: 103, Assists: 141, Errors: 7, Games: 55}},
	}
	if err := db.Create(&players).Error; err != nil {
		return fmt.Errorf("failed to create player seasons: %w", err)
	}

	logrus.Infof("Seeded %d teams, %d games, %d player seasons", len(teams), len(games), len(players))
	return nil
}
