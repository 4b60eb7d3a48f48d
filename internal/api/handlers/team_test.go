package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/blazeintel/diamond-analytics/internal/models"
	"github.com/blazeintel/diamond-analytics/internal/services"
	"github.com/blazeintel/diamond-analytics/pkg/config"
	"github.com/blazeintel/diamond-analytics/pkg/database"
)

type apiEnvelope struct {
	Success bool                       `json:"success"`
	Data    map[string]json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Meta *struct {
		League string `json:"league"`
		Season int    `json:"season"`
		Count  int    `json:"count"`
		Limit  int    `json:"limit"`
	} `json:"meta"`
}

type HandlerTestSuite struct {
	suite.Suite
	db     *database.DB
	store  *services.StatsStore
	router *gin.Engine
}

func (s *HandlerTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)

	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	s.Require().NoError(err)

	s.db = &database.DB{DB: gormDB}
	s.store = services.NewStatsStore(s.db)
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
	svc := services.NewAnalyticsService(s.store, nil, nil, cfg, logger)

	teams := NewTeamHandler(svc, cfg)
	players := NewPlayerHandler(svc, cfg)

	s.router = gin.New()
	s.router.GET("/players", players.ListEvaluations)
	s.router.POST("/teams/:id/projection", teams.ProjectRPI)
	s.router.POST("/teams/:id/simulation", teams.SimulateSchedule)
	s.router.GET("/teams/:id/projections", teams.GetProjectionHistory)
}

func (s *HandlerTestSuite) SetupTest() {
	s.db.Exec("DELETE FROM projection_records")
	s.db.Exec("DELETE FROM player_seasons")
	s.db.Exec("DELETE FROM historical_games")
	s.db.Exec("DELETE FROM team_profiles")
}

func (s *HandlerTestSuite) seed() {
	teams := []models.TeamProfile{
		{TeamID: "TENN", Name: "Tennessee", Conference: "SEC", Season: 2025, Wins: 44, Losses: 12, RPI: 0.631},
		{TeamID: "ARK", Name: "Arkansas", Conference: "SEC", Season: 2025, Wins: 41, Losses: 14, RPI: 0.612},
	}
	s.Require().NoError(s.store.UpsertTeams(teams))

	played := time.Date(2025, time.March, 1, 18, 0, 0, 0, time.UTC)
	games := []models.HistoricalGame{
		{Season: 2025, HomeTeamID: "TENN", AwayTeamID: "ARK", PlayedAt: played, HomeScore: 7, AwayScore: 4, ConferenceGame: true},
	}
	s.Require().NoError(s.store.UpsertGames(games))

	players := []models.PlayerSeason{
		{ExternalID: "p1", Name: "Blake Burke", TeamID: "TENN", League: "NCAA", Season: 2025,
			Batting:  models.BattingProfile{Average: 0.379, OnBasePct: 0.448, SluggingPct: 0.701, WOBA: 0.462, IsolatedPower: 0.322, WalkRate: 0.098, StrikeoutRate: 0.166, BABIP: 0.384, HomeRunRate: 0.071},
			Fielding: models.FieldingProfile{FieldingPct: 0.994, Putouts: 487, Assists: 31, Errors: 3, Games: 56}},
		{ExternalID: "p2", Name: "Wehiwa Aloy", TeamID: "ARK", League: "NCAA", Season: 2025,
			Batting:  models.BattingProfile{Average: 0.331, OnBasePct: 0.401, SluggingPct: 0.594, WOBA: 0.419, IsolatedPower: 0.263, WalkRate: 0.081, StrikeoutRate: 0.204, BABIP: 0.352, HomeRunRate: 0.059},
			Fielding: models.FieldingProfile{FieldingPct: 0.952, Putouts: 84, Assists: 167, Errors: 13, Games: 55}},
	}
	s.Require().NoError(s.store.UpsertPlayerSeasons(players))
}

func (s *HandlerTestSuite) do(method, path string, body interface{}) (*httptest.ResponseRecorder, apiEnvelope) {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var envelope apiEnvelope
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &envelope))
	return w, envelope
}

func (s *HandlerTestSuite) TestListEvaluationsCarriesListMeta() {
	s.seed()

	w, envelope := s.do(http.MethodGet, "/players", nil)
	s.Equal(http.StatusOK, w.Code)
	s.True(envelope.Success)
	s.Require().NotNil(envelope.Meta)
	s.Equal("NCAA", envelope.Meta.League)
	s.Equal(2025, envelope.Meta.Season)
	s.Equal(2, envelope.Meta.Count)

	var evaluations []services.PlayerEvaluation
	s.Require().NoError(json.Unmarshal(envelope.Data["evaluations"], &evaluations))
	s.Len(evaluations, 2)
}

func (s *HandlerTestSuite) TestProjectionHistoryCarriesListMeta() {
	s.seed()

	w, envelope := s.do(http.MethodGet, "/teams/TENN/projections?limit=5", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Require().NotNil(envelope.Meta)
	s.Equal(0, envelope.Meta.Count)
	s.Equal(5, envelope.Meta.Limit)
}

func (s *HandlerTestSuite) TestProjectRPIBadProbabilityIsValidationError() {
	s.seed()

	body := gin.H{"matchups": []gin.H{{"opponent_id": "ARK", "win_probability": 1.5}}}
	w, envelope := s.do(http.MethodPost, "/teams/TENN/projection", body)

	s.Equal(http.StatusBadRequest, w.Code)
	s.Require().NotNil(envelope.Error)
	s.Equal("VALIDATION_ERROR", envelope.Error.Code)
}

func (s *HandlerTestSuite) TestProjectRPIUnknownTeamIsNotFound() {
	s.seed()

	body := gin.H{"matchups": []gin.H{{"opponent_id": "ARK", "win_probability": 0.5}}}
	w, envelope := s.do(http.MethodPost, "/teams/NOPE/projection", body)

	s.Equal(http.StatusNotFound, w.Code)
	s.Require().NotNil(envelope.Error)
	s.Equal("NOT_FOUND", envelope.Error.Code)
}

func (s *HandlerTestSuite) TestProjectRPIStoreFailureIsInternalError() {
	s.seed()
	s.Require().NoError(s.db.Exec("DROP TABLE historical_games").Error)
	defer func() {
		s.Require().NoError(s.store.AutoMigrate())
	}()

	body := gin.H{"matchups": []gin.H{{"opponent_id": "ARK", "win_probability": 0.5}}}
	w, envelope := s.do(http.MethodPost, "/teams/TENN/projection", body)

	s.Equal(http.StatusInternalServerError, w.Code)
	s.Require().NotNil(envelope.Error)
	s.Equal("INTERNAL_ERROR", envelope.Error.Code)
}

func (s *HandlerTestSuite) TestSimulateBadProbabilityIsValidationError() {
	s.seed()

	body := gin.H{
		"matchups":    []gin.H{{"opponent_id": "ARK", "win_probability": -0.2}},
		"simulations": 100,
	}
	w, envelope := s.do(http.MethodPost, "/teams/TENN/simulation", body)

	s.Equal(http.StatusBadRequest, w.Code)
	s.Require().NotNil(envelope.Error)
	s.Equal("VALIDATION_ERROR", envelope.Error.Code)
}

func TestHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}
