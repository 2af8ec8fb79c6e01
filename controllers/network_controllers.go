package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vikascool786/mezbaani-desktop/services"
	"github.com/vikascool786/mezbaani-desktop/utils"
)

type NetworkController struct {
	Network *services.NetworkService
}

func NewNetworkController(network *services.NetworkService) *NetworkController {
	return &NetworkController{Network: network}
}

// GetStatus probes reachability. A false answer must never break callers;
// they fall back to local reads.
func (nc *NetworkController) GetStatus(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "Network status", gin.H{
		"online": nc.Network.IsOnline(),
	})
}
