package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/blazeintel/diamond-analytics/internal/services"
	"github.com/blazeintel/diamond-analytics/pkg/utils"
)

type AdminHandler struct {
	refresher *services.RatingRefresher
}

func NewAdminHandler(refresher *services.RatingRefresher) *AdminHandler {
	return &AdminHandler{refresher: refresher}
}

// TriggerRefresh starts a rating refresh outside the schedule.
func (h *AdminHandler) TriggerRefresh(c *gin.Context) {
	if h.refresher == nil {
		utils.SendError(c, http.StatusServiceUnavailable, utils.NewAppError(utils.ErrCodeInternal, "Background jobs are disabled"))
		return
	}
	h.refresher.RefreshOnDemand()
	utils.SendSuccess(c, gin.H{"status": "refresh started"})
}

// GetRefreshStatus reports the refresher's schedule state.
func (h *AdminHandler) GetRefreshStatus(c *gin.Context) {
	if h.refresher == nil {
		utils.SendSuccess(c, gin.H{"is_running": false, "enabled": false})
		return
	}
	utils.SendSuccess(c, h.refresher.Status())
}
