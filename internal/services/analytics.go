package services

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/blazeintel/diamond-analytics/internal/analytics"
	"github.com/blazeintel/diamond-analytics/internal/models"
	"github.com/blazeintel/diamond-analytics/pkg/config"
)

// ErrInvalidInput marks a rejected projection or simulation input so
// handlers can tell it apart from internal failures.
var ErrInvalidInput = analytics.ErrInvalidInput

// PlayerEvaluation pairs a player with their HAV-F composite and the peer
// group size it was computed against.
type PlayerEvaluation struct {
	PlayerID       uint                   `json:"player_id"`
	Name           string                 `json:"name"`
	League         string                 `json:"league"`
	Season         int                    `json:"season"`
	PopulationSize int                    `json:"population_size"`
	Scores         models.CompositeResult `json:"scores"`
}

// SimulateOptions carries the caller-facing simulation knobs. Seed, when
// set, reproduces an exact run.
type SimulateOptions struct {
	Simulations      int
	RestrictAdvanced bool
	Seed             *int64
}

// AnalyticsService resolves identifiers against the store, assembles core
// inputs, and applies the cache policy the pure core deliberately does not
// own.
type AnalyticsService struct {
	store  *StatsStore
	cache  *CacheService
	hub    *WebSocketHub
	cfg    *config.Config
	logger *logrus.Logger
}

func NewAnalyticsService(store *StatsStore, cache *CacheService, hub *WebSocketHub, cfg *config.Config, logger *logrus.Logger) *AnalyticsService {
	return &AnalyticsService{
		store:  store,
		cache:  cache,
		hub:    hub,
		cfg:    cfg,
		logger: logger,
	}
}

// ScorePlayer computes a player's HAV-F composite against their
// league-season peer group. The percentile population is cached per
// league-season; same population, same table, same score.
func (s *AnalyticsService) ScorePlayer(ctx context.Context, playerID uint) (*PlayerEvaluation, error) {
	cacheKey := CompositeScoreCacheKey(playerID)
	if s.cache != nil {
		var cached PlayerEvaluation
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil && cached.PlayerID == playerID {
			return &cached, nil
		}
	}

	player, err := s.store.GetPlayerSeason(playerID)
	if err != nil {
		return nil, err
	}

	population, err := s.loadPopulation(ctx, player.League, player.Season)
	if err != nil {
		return nil, err
	}

	table := analytics.BuildPercentileTable(population)
	scores := analytics.ComputeHAVF(player.Batting, player.Fielding, table)

	evaluation := &PlayerEvaluation{
		PlayerID:       player.ID,
		Name:           player.Name,
		League:         player.League,
		Season:         player.Season,
		PopulationSize: table.Size(),
		Scores:         scores,
	}

	if s.cache != nil {
		ttl := time.Duration(s.cfg.PercentileCacheTTL) * time.Second
		if err := s.cache.SetWithRetry(ctx, cacheKey, evaluation, ttl, cacheWriteRetries); err != nil {
			s.logger.Warnf("Failed to cache evaluation for player %d: %v", playerID, err)
		}
	}
	return evaluation, nil
}

// ScorePopulation evaluates every player in a league-season against one
// shared table.
func (s *AnalyticsService) ScorePopulation(ctx context.Context, league string, season int) ([]PlayerEvaluation, error) {
	population, err := s.loadPopulation(ctx, league, season)
	if err != nil {
		return nil, err
	}

	table := analytics.BuildPercentileTable(population)
	evaluations := make([]PlayerEvaluation, 0, len(population))
	for _, p := range population {
		evaluations = append(evaluations, PlayerEvaluation{
			PlayerID:       p.ID,
			Name:           p.Name,
			League:         p.League,
			Season:         p.Season,
			PopulationSize: table.Size(),
			Scores:         analytics.ComputeHAVF(p.Batting, p.Fielding, table),
		})
	}
	return evaluations, nil
}

func (s *AnalyticsService) loadPopulation(ctx context.Context, league string, season int) ([]models.PlayerSeason, error) {
	cacheKey := PercentileTableCacheKey(league, season)

	if s.cache != nil {
		var cached []models.PlayerSeason
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil && len(cached) > 0 {
			return cached, nil
		}
	}

	population, err := s.store.GetPopulation(league, season)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		ttl := time.Duration(s.cfg.PercentileCacheTTL) * time.Second
		if err := s.cache.SetWithRetry(ctx, cacheKey, population, ttl, cacheWriteRetries); err != nil {
			s.logger.Warnf("Failed to cache population %s/%d: %v", league, season, err)
		}
	}
	return population, nil
}

// ConferenceStrength computes (or serves from cache) a conference's
// strength rating.
func (s *AnalyticsService) ConferenceStrength(ctx context.Context, conference string, season int) (*models.ConferenceStrengthResult, error) {
	cacheKey := ConferenceStrengthCacheKey(conference, season)

	if s.cache != nil {
		var cached models.ConferenceStrengthResult
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil && cached.Conference != "" {
			return &cached, nil
		}
	}

	teams, err := s.store.GetConferenceTeams(conference, season)
	if err != nil {
		return nil, err
	}

	teamIDs := make([]string, 0, len(teams))
	for _, t := range teams {
		teamIDs = append(teamIDs, t.TeamID)
	}
	games, err := s.store.GetGamesInvolving(teamIDs, season)
	if err != nil {
		return nil, err
	}
	league, err := s.store.GetLeagueTeams(season)
	if err != nil {
		return nil, err
	}

	result := analytics.CalculateConferenceStrength(analytics.ConferenceStrengthInput{
		Conference: conference,
		Season:     season,
		Teams:      teams,
		Games:      games,
		League:     league,
	})

	if s.cache != nil {
		ttl := time.Duration(s.cfg.StrengthCacheTTL) * time.Second
		if err := s.cache.SetWithRetry(ctx, cacheKey, result, ttl, cacheWriteRetries); err != nil {
			s.logger.Warnf("Failed to cache strength for %s: %v", conference, err)
		}
	}
	return &result, nil
}

// ProjectRPI projects the RPI shift for a team's prospective matchups and
// persists the run for auditing.
func (s *AnalyticsService) ProjectRPI(ctx context.Context, teamID string, matchups []models.ProspectiveMatchup) (*models.RpiProjectionResult, error) {
	team, err := s.store.GetTeam(teamID)
	if err != nil {
		return nil, err
	}

	peers, err := s.store.GetConferenceTeams(team.Conference, team.Season)
	if err != nil {
		// Rank lookup degrades to absent ranks; the core notes it.
		s.logger.WithFields(logrus.Fields{"team": teamID, "conference": team.Conference}).
			Warn("Conference peers unresolved for projection")
		peers = nil
	}

	games, err := s.store.GetSeasonGames(team.Season)
	if err != nil {
		return nil, err
	}

	s.resolveOpponents(matchups)

	result, err := analytics.ProjectRPIShift(*team, matchups, peers, games)
	if err != nil {
		return nil, err
	}

	s.persistRun(team, "projection", result.BaselineRPI, result.ProjectedRPI, result.Confidence, result)
	return &result, nil
}

// SimulateSchedule runs the Monte Carlo schedule simulation with an
// explicit seeded source and streams progress to the hub.
func (s *AnalyticsService) SimulateSchedule(ctx context.Context, teamID string, matchups []models.ProspectiveMatchup, opts SimulateOptions) (*models.ScheduleSimulationResult, error) {
	team, err := s.store.GetTeam(teamID)
	if err != nil {
		return nil, err
	}

	s.resolveOpponents(matchups)

	simulations := opts.Simulations
	if simulations <= 0 {
		simulations = s.cfg.DefaultSimulations
	}
	if simulations > s.cfg.MaxSimulations {
		simulations = s.cfg.MaxSimulations
	}

	seed := time.Now().UnixNano()
	if opts.Seed != nil {
		seed = *opts.Seed
	}

	// Broadcast at ~1% granularity so 10k-trial runs don't flood the hub.
	step := simulations / 100
	if step == 0 {
		step = 1
	}

	result, err := analytics.SimulateScheduleImpact(*team, matchups, analytics.SimulationOptions{
		Simulations:      simulations,
		RestrictAdvanced: opts.RestrictAdvanced,
		Rand:             rand.New(rand.NewSource(seed)),
		Progress: func(completed, total int) {
			if s.hub != nil && completed%step == 0 {
				s.hub.BroadcastProgress(teamID, completed, total)
			}
		},
	})
	if err != nil {
		return nil, err
	}

	s.persistRun(team, "simulation", result.BaselineOdds, result.ProjectedOdds, result.Confidence, result)
	return &result, nil
}

// ConferenceRanking builds the before/after conference table for a
// projected subject RPI.
func (s *AnalyticsService) ConferenceRanking(ctx context.Context, conference string, season int, teamID string, projectedRPI float64) ([]models.ProjectedRankingRow, error) {
	teams, err := s.store.GetConferenceTeams(conference, season)
	if err != nil {
		return nil, err
	}
	if !hasTeam(teams, teamID) {
		return nil, ErrNotFound
	}
	return analytics.BuildConferenceRanking(teams, teamID, projectedRPI), nil
}

// ProjectionHistory returns a team's saved projection/simulation runs.
func (s *AnalyticsService) ProjectionHistory(teamID string, limit int) ([]models.ProjectionRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.store.GetProjectionHistory(teamID, limit)
}

// resolveOpponents fills missing opponent RPIs from stored profiles so the
// core sees the best available strength figure.
func (s *AnalyticsService) resolveOpponents(matchups []models.ProspectiveMatchup) {
	for i := range matchups {
		if matchups[i].OpponentRPI != nil {
			continue
		}
		opp, err := s.store.GetTeam(matchups[i].OpponentID)
		if err != nil {
			continue
		}
		if opp.RPI > 0 {
			rpi := opp.RPI
			matchups[i].OpponentRPI = &rpi
		}
	}
}

func (s *AnalyticsService) persistRun(team *models.TeamProfile, kind string, baseline, projected, confidence float64, payload interface{}) {
	breakdown, err := json.Marshal(payload)
	if err != nil {
		s.logger.Errorf("Failed to marshal %s breakdown: %v", kind, err)
		return
	}
	record := &models.ProjectionRecord{
		ID:           uuid.New(),
		TeamID:       team.TeamID,
		Season:       team.Season,
		Kind:         kind,
		BaselineRPI:  baseline,
		ProjectedRPI: projected,
		Confidence:   confidence,
		Breakdown:    datatypes.JSON(breakdown),
	}
	if err := s.store.SaveProjection(record); err != nil {
		s.logger.Errorf("Failed to persist %s run for %s: %v", kind, team.TeamID, err)
	}
}

func hasTeam(teams []models.TeamProfile, teamID string) bool {
	for _, t := range teams {
		if t.TeamID == teamID {
			return true
		}
	}
	return false
}
