package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/blazeintel/diamond-analytics/internal/models"
	"github.com/blazeintel/diamond-analytics/internal/services"
	"github.com/blazeintel/diamond-analytics/pkg/config"
	"github.com/blazeintel/diamond-analytics/pkg/utils"
)

type TeamHandler struct {
	svc *services.AnalyticsService
	cfg *config.Config
}

func NewTeamHandler(svc *services.AnalyticsService, cfg *config.Config) *TeamHandler {
	return &TeamHandler{
		svc: svc,
		cfg: cfg,
	}
}

// GetConferenceStrength returns a conference's blended strength rating.
func (h *TeamHandler) GetConferenceStrength(c *gin.Context) {
	conference := c.Param("name")
	season, err := strconv.Atoi(c.DefaultQuery("season", strconv.Itoa(h.cfg.CurrentSeason)))
	if err != nil {
		utils.SendValidationError(c, "Invalid season", err.Error())
		return
	}

	result, err := h.svc.ConferenceStrength(c.Request.Context(), conference, season)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			utils.SendNotFound(c, "Conference not found")
			return
		}
		utils.SendInternalError(c, "Failed to compute conference strength")
		return
	}

	utils.SendSuccess(c, result)
}

// ProjectRPI projects a team's RPI across a set of prospective matchups.
func (h *TeamHandler) ProjectRPI(c *gin.Context) {
	teamID := c.Param("id")

	var req struct {
		Matchups []models.ProspectiveMatchup `json:"matchups"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	result, err := h.svc.ProjectRPI(c.Request.Context(), teamID, req.Matchups)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			utils.SendNotFound(c, "Team not found")
			return
		}
		if errors.Is(err, services.ErrInvalidInput) {
			utils.SendValidationError(c, "Invalid projection input", err.Error())
			return
		}
		utils.SendInternalError(c, "Failed to project RPI")
		return
	}

	utils.SendSuccess(c, result)
}

// SimulateSchedule runs the Monte Carlo schedule simulation for a team.
func (h *TeamHandler) SimulateSchedule(c *gin.Context) {
	teamID := c.Param("id")

	var req struct {
		Matchups         []models.ProspectiveMatchup `json:"matchups"`
		Simulations      int                         `json:"simulations"`
		RestrictAdvanced bool                        `json:"restrict_advanced"`
		Seed             *int64                      `json:"seed"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	result, err := h.svc.SimulateSchedule(c.Request.Context(), teamID, req.Matchups, services.SimulateOptions{
		Simulations:      req.Simulations,
		RestrictAdvanced: req.RestrictAdvanced,
		Seed:             req.Seed,
	})
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			utils.SendNotFound(c, "Team not found")
			return
		}
		if errors.Is(err, services.ErrInvalidInput) {
			utils.SendValidationError(c, "Invalid simulation input", err.Error())
			return
		}
		utils.SendInternalError(c, "Failed to run simulation")
		return
	}

	utils.SendSuccess(c, result)
}

// GetConferenceRanking returns the before/after conference table for a
// projected subject RPI.
func (h *TeamHandler) GetConferenceRanking(c *gin.Context) {
	conference := c.Param("name")
	teamID := c.Query("team_id")
	if teamID == "" {
		utils.SendValidationError(c, "team_id query parameter required", "")
		return
	}

	season, err := strconv.Atoi(c.DefaultQuery("season", strconv.Itoa(h.cfg.CurrentSeason)))
	if err != nil {
		utils.SendValidationError(c, "Invalid season", err.Error())
		return
	}
	projectedRPI, err := strconv.ParseFloat(c.Query("projected_rpi"), 64)
	if err != nil {
		utils.SendValidationError(c, "Invalid projected_rpi", err.Error())
		return
	}

	rows, err := h.svc.ConferenceRanking(c.Request.Context(), conference, season, teamID, projectedRPI)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			utils.SendNotFound(c, "Team or conference not found")
			return
		}
		utils.SendInternalError(c, "Failed to build ranking")
		return
	}

	utils.SendSuccess(c, gin.H{
		"conference": conference,
		"season":     season,
		"ranking":    rows,
	})
}

// GetProjectionHistory returns a team's persisted projection and
// simulation runs.
func (h *TeamHandler) GetProjectionHistory(c *gin.Context) {
	teamID := c.Param("id")

	limit := 20
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil {
			utils.SendValidationError(c, "Invalid limit", err.Error())
			return
		}
		limit = parsed
	}

	records, err := h.svc.ProjectionHistory(teamID, limit)
	if err != nil {
		utils.SendInternalError(c, "Failed to fetch projection history")
		return
	}

	utils.SendList(c, gin.H{
		"team_id": teamID,
		"history": records,
	}, &utils.ListMeta{Count: len(records), Limit: limit})
}
