package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vikascool786/mezbaani-desktop/services"
	"github.com/vikascool786/mezbaani-desktop/utils"
)

type AuthController struct {
	Auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{Auth: auth}
}

// Login authenticates against the remote service and stores the session
// locally. Requires the network; everything after login works offline.
func (ac *AuthController) Login(c *gin.Context) {
	var req struct {
		Phone    string `json:"phone" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	session, err := ac.Auth.Login(req.Phone, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrUnauthorized) {
			utils.RespondError(c, http.StatusUnauthorized, err)
			return
		}
		utils.RespondError(c, http.StatusBadGateway, err)
		return
	}

	utils.InfoLogger.Printf("User %s logged in", session.UserID)
	utils.RespondJSON(c, http.StatusOK, "Login successful", session)
}

// GetSession returns the stored session, or null data when logged out.
func (ac *AuthController) GetSession(c *gin.Context) {
	session, err := ac.Auth.Session()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if session == nil {
		utils.RespondJSON(c, http.StatusOK, "No active session", nil)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Active session", session)
}

func (ac *AuthController) Logout(c *gin.Context) {
	if err := ac.Auth.Logout(); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Logged out", nil)
}
