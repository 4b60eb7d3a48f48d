package api

import (
	"github.com/gin-gonic/gin"

	"github.com/blazeintel/diamond-analytics/internal/api/handlers"
	"github.com/blazeintel/diamond-analytics/internal/api/middleware"
	"github.com/blazeintel/diamond-analytics/internal/services"
	"github.com/blazeintel/diamond-analytics/pkg/config"
)

// SetupRoutes configures all API routes on the given router group
func SetupRoutes(group *gin.RouterGroup, svc *services.AnalyticsService, refresher *services.RatingRefresher, cfg *config.Config) {
	playerHandler := handlers.NewPlayerHandler(svc, cfg)
	teamHandler := handlers.NewTeamHandler(svc, cfg)
	adminHandler := handlers.NewAdminHandler(refresher)

	// Player evaluation endpoints
	group.GET("/players", playerHandler.ListEvaluations)
	group.GET("/players/:id/evaluation", playerHandler.GetEvaluation)

	// Conference endpoints
	group.GET("/conferences/:name/strength", teamHandler.GetConferenceStrength)
	group.GET("/conferences/:name/ranking", teamHandler.GetConferenceRanking)

	// Team projection endpoints
	group.POST("/teams/:id/projection", teamHandler.ProjectRPI)
	group.POST("/teams/:id/simulation", teamHandler.SimulateSchedule)
	group.GET("/teams/:id/projections", teamHandler.GetProjectionHistory)

	// Admin endpoints
	admin := group.Group("/admin")
	admin.Use(middleware.AuthRequired(cfg.JWTSecret))
	{
		admin.POST("/refresh", adminHandler.TriggerRefresh)
		admin.GET("/refresh/status", adminHandler.GetRefreshStatus)
	}
}
