package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vikascool786/mezbaani-desktop/models"
	"github.com/vikascool786/mezbaani-desktop/utils"
	"gorm.io/gorm"
)

// MasterController serves the read side of the synced master collections.
// Everything here answers from the local store only; it works identically
// offline.
type MasterController struct {
	DB *gorm.DB
}

func NewMasterController(db *gorm.DB) *MasterController {
	return &MasterController{DB: db}
}

func (mc *MasterController) GetAllRoles(c *gin.Context) {
	var roles []models.Role
	if err := mc.DB.Find(&roles).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of roles", roles)
}

func (mc *MasterController) GetAllRestaurants(c *gin.Context) {
	var restaurants []models.Restaurant
	if err := mc.DB.Find(&restaurants).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of restaurants", restaurants)
}

func (mc *MasterController) GetTablesByRestaurant(c *gin.Context) {
	var tables []models.Table
	if err := mc.DB.Where("restaurant_id = ?", c.Param("restaurant_id")).
		Order("name").Find(&tables).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

func (mc *MasterController) GetAllMenuCategories(c *gin.Context) {
	var categories []models.MenuCategory
	if err := mc.DB.Order("name").Find(&categories).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of menu categories", categories)
}

func (mc *MasterController) GetAllMenuItems(c *gin.Context) {
	var items []models.MenuItem
	if err := mc.DB.Order("name").Find(&items).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of menu items", items)
}
