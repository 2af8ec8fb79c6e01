package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vikascool786/mezbaani-desktop/services"
	"github.com/vikascool786/mezbaani-desktop/utils"
)

type SyncController struct {
	Sync      *services.SyncService
	Dashboard *services.DashboardService
}

func NewSyncController(sync *services.SyncService, dashboard *services.DashboardService) *SyncController {
	return &SyncController{Sync: sync, Dashboard: dashboard}
}

/* ----------------------------------
   BULK REPLACE-SYNC
----------------------------------- */

func (sc *SyncController) SyncRoles(c *gin.Context) {
	result, err := sc.Sync.SyncRoles()
	sc.respond(c, result, err)
}

func (sc *SyncController) SyncRestaurants(c *gin.Context) {
	result, err := sc.Sync.SyncRestaurants()
	sc.respond(c, result, err)
}

func (sc *SyncController) SyncTables(c *gin.Context) {
	result, err := sc.Sync.SyncTables(c.Param("restaurant_id"))
	sc.respond(c, result, err)
}

func (sc *SyncController) SyncMenuCategories(c *gin.Context) {
	result, err := sc.Sync.SyncMenuCategories()
	sc.respond(c, result, err)
}

func (sc *SyncController) SyncMenuItems(c *gin.Context) {
	result, err := sc.Sync.SyncMenuItems()
	sc.respond(c, result, err)
}

func (sc *SyncController) SyncOrders(c *gin.Context) {
	result, err := sc.Sync.SyncOrders()
	sc.respond(c, result, err)
}

// SyncDashboardTables is the one-time dashboard bootstrap. A second call
// is a no-op reported as skipped, never a duplicate insert.
func (sc *SyncController) SyncDashboardTables(c *gin.Context) {
	result, err := sc.Dashboard.Bootstrap(c.Param("restaurant_id"))
	sc.respond(c, result, err)
}

/* ----------------------------------
   TARGETED RECONCILIATION
----------------------------------- */

func (sc *SyncController) SyncOrderByTable(c *gin.Context) {
	order, err := sc.Sync.SyncOrderByTable(c.Param("table_id"))
	if err != nil {
		sc.respondRemoteError(c, err)
		return
	}
	if order == nil {
		utils.RespondJSON(c, http.StatusOK, "No remote order for table", nil)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order reconciled", order)
}

func (sc *SyncController) SyncOrderByID(c *gin.Context) {
	order, err := sc.Sync.SyncOrderByID(c.Param("order_id"))
	if err != nil {
		sc.respondRemoteError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order reconciled", order)
}

/* ----------------------------------
   HELPERS
----------------------------------- */

// respond maps a bulk sync outcome to the wire. A family already syncing
// is a normal answer for the renderer, not an HTTP failure.
func (sc *SyncController) respond(c *gin.Context, result *services.SyncResult, err error) {
	if errors.Is(err, services.ErrSyncInProgress) {
		utils.RespondJSON(c, http.StatusOK, result.Message, result)
		return
	}
	if err != nil {
		sc.respondRemoteError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, result.Message, result)
}

func (sc *SyncController) respondRemoteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUnauthorized):
		utils.RespondError(c, http.StatusUnauthorized, err)
	case errors.Is(err, services.ErrNotAuthenticated):
		utils.RespondError(c, http.StatusUnauthorized, err)
	case errors.Is(err, services.ErrInvalidPayload):
		utils.RespondError(c, http.StatusBadGateway, err)
	default:
		utils.RespondError(c, http.StatusBadGateway, err)
	}
}
