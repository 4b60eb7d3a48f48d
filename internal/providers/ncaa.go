package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/blazeintel/diamond-analytics/internal/models"
)

// NCAAClient fetches normalized college baseball stats from the upstream
// feed. Requests are rate limited and wrapped in a circuit breaker so a
// degraded feed cannot stall the refresher.
type NCAAClient struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	logger      *logrus.Logger
	rateLimiter *rate.Limiter
	breaker     *gobreaker.CircuitBreaker
}

func NewNCAAClient(baseURL, apiKey string, requestsPerSecond, maxFailures int, timeout time.Duration, logger *logrus.Logger) *NCAAClient {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 5
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	settings := gobreaker.Settings{
		Name:    "ncaa-feed",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(maxFailures)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"component": "circuit_breaker",
				"service":   name,
				"from":      from.String(),
				"to":        to.String(),
			}).Info("Circuit breaker state changed")
		},
	}

	return &NCAAClient{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     baseURL,
		apiKey:      apiKey,
		logger:      logger,
		rateLimiter: rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
		breaker:     gobreaker.NewCircuitBreaker(settings),
	}
}

// Feed response structures
type feedTeamsResponse struct {
	Teams []feedTeam `json:"teams"`
}

type feedTeam struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Conference     string  `json:"conference"`
	Wins           int     `json:"wins"`
	Losses         int     `json:"losses"`
	Quad1Wins      int     `json:"quad1_wins"`
	Quad1Losses    int     `json:"quad1_losses"`
	Quad2Wins      int     `json:"quad2_wins"`
	Quad2Losses    int     `json:"quad2_losses"`
	Quad3Wins      int     `json:"quad3_wins"`
	Quad3Losses    int     `json:"quad3_losses"`
	Quad4Wins      int     `json:"quad4_wins"`
	Quad4Losses    int     `json:"quad4_losses"`
	RPI            float64 `json:"rpi"`
	SOS            float64 `json:"sos"`
	RunDiffPerGame float64 `json:"run_diff_per_game"`
	NationalRank   int     `json:"national_rank"`
}

type feedGamesResponse struct {
	Games []feedGame `json:"games"`
}

type feedGame struct {
	HomeTeamID     string `json:"home_team_id"`
	AwayTeamID     string `json:"away_team_id"`
	PlayedAt       string `json:"played_at"`
	HomeScore      int    `json:"home_score"`
	AwayScore      int    `json:"away_score"`
	ConferenceGame bool   `json:"conference_game"`
}

type feedPlayersResponse struct {
	Players []feedPlayer `json:"players"`
}

type feedPlayer struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	TeamID string `json:"team_id"`

	Batting struct {
		Avg    float64 `json:"avg"`
		Obp    float64 `json:"obp"`
		Slg    float64 `json:"slg"`
		Woba   float64 `json:"woba"`
		Iso    float64 `json:"iso"`
		BbRate float64 `json:"bb_rate"`
		KRate  float64 `json:"k_rate"`
		Babip  float64 `json:"babip"`
		HrRate float64 `json:"hr_rate"`
	} `json:"batting"`

	Fielding struct {
		FieldingPct float64 `json:"fielding_pct"`
		Putouts     int     `json:"putouts"`
		Assists     int     `json:"assists"`
		Errors      int     `json:"errors"`
		Games       int     `json:"games"`
	} `json:"fielding"`
}

// FetchTeams returns every team profile for a season.
func (c *NCAAClient) FetchTeams(ctx context.Context, season int) ([]models.TeamProfile, error) {
	url := fmt.Sprintf("%s/seasons/%d/teams", c.baseURL, season)

	var payload feedTeamsResponse
	if err := c.getJSON(ctx, url, &payload); err != nil {
		return nil, fmt.Errorf("failed to fetch teams: %w", err)
	}

	teams := make([]models.TeamProfile, 0, len(payload.Teams))
	for _, t := range payload.Teams {
		teams = append(teams, models.TeamProfile{
			TeamID:         t.ID,
			Name:           t.Name,
			Conference:     t.Conference,
			Season:         season,
			Wins:           t.Wins,
			Losses:         t.Losses,
			Quad1Wins:      t.Quad1Wins,
			Quad1Losses:    t.Quad1Losses,
			Quad2Wins:      t.Quad2Wins,
			Quad2Losses:    t.Quad2Losses,
			Quad3Wins:      t.Quad3Wins,
			Quad3Losses:    t.Quad3Losses,
			Quad4Wins:      t.Quad4Wins,
			Quad4Losses:    t.Quad4Losses,
			RPI:            t.RPI,
			SOS:            t.SOS,
			RunDiffPerGame: t.RunDiffPerGame,
			NationalRank:   t.NationalRank,
		})
	}
	return teams, nil
}

// FetchGames returns every completed game for a season.
func (c *NCAAClient) FetchGames(ctx context.Context, season int) ([]models.HistoricalGame, error) {
	url := fmt.Sprintf("%s/seasons/%d/games", c.baseURL, season)

	var payload feedGamesResponse
	if err := c.getJSON(ctx, url, &payload); err != nil {
		return nil, fmt.Errorf("failed to fetch games: %w", err)
	}

	games := make([]models.HistoricalGame, 0, len(payload.Games))
	for _, g := range payload.Games {
		playedAt, err := time.Parse(time.RFC3339, g.PlayedAt)
		if err != nil {
			c.logger.Warnf("Skipping game %s@%s with bad timestamp %q", g.AwayTeamID, g.HomeTeamID, g.PlayedAt)
			continue
		}
		games = append(games, models.HistoricalGame{
			Season:         season,
			HomeTeamID:     g.HomeTeamID,
			AwayTeamID:     g.AwayTeamID,
			PlayedAt:       playedAt,
			HomeScore:      g.HomeScore,
			AwayScore:      g.AwayScore,
			ConferenceGame: g.ConferenceGame,
		})
	}
	return games, nil
}

// FetchPlayerSeasons returns the season batting and fielding lines for a
// league's player population.
func (c *NCAAClient) FetchPlayerSeasons(ctx context.Context, league string, season int) ([]models.PlayerSeason, error) {
	url := fmt.Sprintf("%s/seasons/%d/players?league=%s", c.baseURL, season, league)

	var payload feedPlayersResponse
	if err := c.getJSON(ctx, url, &payload); err != nil {
		return nil, fmt.Errorf("failed to fetch player seasons: %w", err)
	}

	players := make([]models.PlayerSeason, 0, len(payload.Players))
	for _, p := range payload.Players {
		players = append(players, models.PlayerSeason{
			ExternalID: p.ID,
			Name:       p.Name,
			TeamID:     p.TeamID,
			League:     league,
			Season:     season,
			Batting: models.BattingProfile{
				Average:       p.Batting.Avg,
				OnBasePct:     p.Batting.Obp,
				SluggingPct:   p.Batting.Slg,
				WOBA:          p.Batting.Woba,
				IsolatedPower: p.Batting.Iso,
				WalkRate:      p.Batting.BbRate,
				StrikeoutRate: p.Batting.KRate,
				BABIP:         p.Batting.Babip,
				HomeRunRate:   p.Batting.HrRate,
			},
			Fielding: models.FieldingProfile{
				FieldingPct: p.Fielding.FieldingPct,
				Putouts:     p.Fielding.Putouts,
				Assists:     p.Fielding.Assists,
				Errors:      p.Fielding.Errors,
				Games:       p.Fielding.Games,
			},
		})
	}
	return players, nil
}

// getJSON performs a rate-limited, breaker-protected GET and decodes the
// JSON body into dest.
func (c *NCAAClient) getJSON(ctx context.Context, url string, dest interface{}) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return err
	}

	_, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}
		return nil, json.NewDecoder(resp.Body).Decode(dest)
	})
	return err
}
