package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vikascool786/mezbaani-desktop/services"
	"github.com/vikascool786/mezbaani-desktop/utils"
)

type DashboardController struct {
	Dashboard *services.DashboardService
}

func NewDashboardController(dashboard *services.DashboardService) *DashboardController {
	return &DashboardController{Dashboard: dashboard}
}

// GetDashboardTables returns the local projection, ordered the way the
// floor view renders it (section, then name).
func (dc *DashboardController) GetDashboardTables(c *gin.Context) {
	tables, err := dc.Dashboard.List(c.Param("restaurant_id"))
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Dashboard tables", tables)
}

// RecomputeDashboard rebuilds every row from local order state. Works
// fully offline.
func (dc *DashboardController) RecomputeDashboard(c *gin.Context) {
	restaurantID := c.Param("restaurant_id")
	if err := dc.Dashboard.Recompute(restaurantID); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	tables, err := dc.Dashboard.List(restaurantID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Dashboard recomputed", tables)
}
