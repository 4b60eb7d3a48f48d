package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/blazeintel/diamond-analytics/internal/analytics"
	"github.com/blazeintel/diamond-analytics/internal/models"
)

// StatsProvider is the slice of the upstream stats API the refresher needs.
type StatsProvider interface {
	FetchTeams(ctx context.Context, season int) ([]models.TeamProfile, error)
	FetchGames(ctx context.Context, season int) ([]models.HistoricalGame, error)
	FetchPlayerSeasons(ctx context.Context, league string, season int) ([]models.PlayerSeason, error)
}

// RatingRefresher keeps stored team ratings current: it syncs raw results
// from the provider on a schedule, recomputes every team's RPI from the
// synced games, and invalidates the derived caches.
type RatingRefresher struct {
	store     *StatsStore
	cache     *CacheService
	provider  StatsProvider
	logger    *logrus.Logger
	cron      *cron.Cron
	mu        sync.Mutex
	isRunning bool
	interval  time.Duration
	league    string
	season    int
}

func NewRatingRefresher(
	store *StatsStore,
	cache *CacheService,
	provider StatsProvider,
	logger *logrus.Logger,
	interval time.Duration,
	league string,
	season int,
) *RatingRefresher {
	return &RatingRefresher{
		store:    store,
		cache:    cache,
		provider: provider,
		logger:   logger,
		cron:     cron.New(),
		interval: interval,
		league:   league,
		season:   season,
	}
}

// Start begins the scheduled refresh cycle.
func (s *RatingRefresher) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("rating refresher is already running")
	}

	schedule := fmt.Sprintf("@every %s", s.interval.String())
	_, err := s.cron.AddFunc(schedule, s.refreshAll)
	if err != nil {
		return fmt.Errorf("failed to schedule rating refresh: %w", err)
	}

	// Daily cleanup of stale projection runs
	_, err = s.cron.AddFunc("0 3 * * *", s.cleanupOldProjections)
	if err != nil {
		return fmt.Errorf("failed to schedule cleanup: %w", err)
	}

	s.cron.Start()
	s.isRunning = true

	// Run initial refresh
	go s.refreshAll()

	s.logger.Info("Rating refresher started")
	return nil
}

// Stop halts the scheduled refreshes, waiting for any in-flight run.
func (s *RatingRefresher) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.logger.Info("Rating refresher stopped")
}

// refreshAll syncs provider data and recomputes every team's RPI.
func (s *RatingRefresher) refreshAll() {
	s.logger.Infof("Starting rating refresh for season %d", s.season)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	s.syncProviderData(ctx)
	s.recomputeRatings(ctx)

	s.logger.Info("Completed rating refresh")
}

func (s *RatingRefresher) syncProviderData(ctx context.Context) {
	if s.provider == nil {
		return
	}

	teams, err := s.provider.FetchTeams(ctx, s.season)
	if err != nil {
		s.logger.Errorf("Failed to fetch teams: %v", err)
	} else if err := s.store.UpsertTeams(teams); err != nil {
		s.logger.Errorf("Failed to upsert %d teams: %v", len(teams), err)
	} else {
		s.logger.Infof("Synced %d teams", len(teams))
	}

	games, err := s.provider.FetchGames(ctx, s.season)
	if err != nil {
		s.logger.Errorf("Failed to fetch games: %v", err)
	} else if err := s.store.UpsertGames(games); err != nil {
		s.logger.Errorf("Failed to upsert %d games: %v", len(games), err)
	} else {
		s.logger.Infof("Synced %d games", len(games))
	}

	players, err := s.provider.FetchPlayerSeasons(ctx, s.league, s.season)
	if err != nil {
		s.logger.Errorf("Failed to fetch player seasons: %v", err)
	} else if err := s.store.UpsertPlayerSeasons(players); err != nil {
		s.logger.Errorf("Failed to upsert %d player seasons: %v", len(players), err)
	} else {
		s.logger.Infof("Synced %d player seasons", len(players))
	}
}

// recomputeRatings rebuilds each stored team's RPI from the full season
// game log, then drops the derived caches so the next read reflects the
// new ratings.
func (s *RatingRefresher) recomputeRatings(ctx context.Context) {
	teams, err := s.store.GetLeagueTeams(s.season)
	if err != nil {
		s.logger.Errorf("Failed to load teams for recompute: %v", err)
		return
	}
	games, err := s.store.GetSeasonGames(s.season)
	if err != nil {
		s.logger.Errorf("Failed to load season games: %v", err)
		return
	}

	updated := 0
	conferences := make(map[string]struct{})
	for _, team := range teams {
		rpi := analytics.ComputeRPI(team.TeamID, games)
		if err := s.store.UpdateTeamRating(team.TeamID, rpi); err != nil {
			s.logger.Errorf("Failed to update rating for %s: %v", team.TeamID, err)
			continue
		}
		conferences[team.Conference] = struct{}{}
		updated++
	}

	keys := []string{PercentileTableCacheKey(s.league, s.season)}
	for conf := range conferences {
		keys = append(keys, ConferenceStrengthCacheKey(conf, s.season))
	}
	if len(keys) > 0 {
		if err := s.cache.Delete(ctx, keys...); err != nil {
			s.logger.Warnf("Failed to invalidate strength caches: %v", err)
		}
	}

	s.logger.Infof("Recomputed ratings for %d of %d teams", updated, len(teams))
}

// cleanupOldProjections removes projection runs older than 90 days.
func (s *RatingRefresher) cleanupOldProjections() {
	s.logger.Info("Starting daily cleanup of old projection runs")

	cutoff := time.Now().AddDate(0, 0, -90)
	result := s.store.db.Where("created_at < ?", cutoff).Delete(&models.ProjectionRecord{})
	if result.Error != nil {
		s.logger.Errorf("Failed to cleanup projection runs: %v", result.Error)
		return
	}
	s.logger.Infof("Cleaned up %d old projection runs", result.RowsAffected)
}

// RefreshOnDemand triggers a full refresh outside the schedule.
func (s *RatingRefresher) RefreshOnDemand() {
	go s.refreshAll()
}

// Status reports the refresher's schedule state.
func (s *RatingRefresher) Status() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	nextRuns := make([]time.Time, 0, len(entries))
	for _, entry := range entries {
		nextRuns = append(nextRuns, entry.Next)
	}

	return map[string]interface{}{
		"is_running":       s.isRunning,
		"refresh_interval": s.interval.String(),
		"season":           s.season,
		"next_runs":        nextRuns,
		"cron_jobs":        len(entries),
	}
}
