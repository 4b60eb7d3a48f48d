package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/blazeintel/diamond-analytics/internal/services"
	"github.com/blazeintel/diamond-analytics/pkg/config"
	"github.com/blazeintel/diamond-analytics/pkg/utils"
)

type PlayerHandler struct {
	svc *services.AnalyticsService
	cfg *config.Config
}

func NewPlayerHandler(svc *services.AnalyticsService, cfg *config.Config) *PlayerHandler {
	return &PlayerHandler{
		svc: svc,
		cfg: cfg,
	}
}

// GetEvaluation returns a player's HAV-F composite score against their
// league-season peer group.
func (h *PlayerHandler) GetEvaluation(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		utils.SendValidationError(c, "Invalid player ID", err.Error())
		return
	}

	evaluation, err := h.svc.ScorePlayer(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			utils.SendNotFound(c, "Player not found")
			return
		}
		utils.SendInternalError(c, "Failed to evaluate player")
		return
	}

	utils.SendSuccess(c, evaluation)
}

// ListEvaluations returns HAV-F scores for every player in a league-season,
// all computed against one shared percentile table.
func (h *PlayerHandler) ListEvaluations(c *gin.Context) {
	league := c.DefaultQuery("league", h.cfg.DefaultLeague)
	season, err := strconv.Atoi(c.DefaultQuery("season", strconv.Itoa(h.cfg.CurrentSeason)))
	if err != nil {
		utils.SendValidationError(c, "Invalid season", err.Error())
		return
	}

	evaluations, err := h.svc.ScorePopulation(c.Request.Context(), league, season)
	if err != nil {
		utils.SendInternalError(c, "Failed to evaluate population")
		return
	}

	utils.SendList(c, gin.H{"evaluations": evaluations}, &utils.ListMeta{
		League: league,
		Season: season,
		Count:  len(evaluations),
	})
}
