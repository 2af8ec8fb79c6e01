package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vikascool786/mezbaani-desktop/services"
	"github.com/vikascool786/mezbaani-desktop/utils"
)

type OrderController struct {
	Orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{Orders: orders}
}

// CreateOrder opens an order on a table. The write is local and durable
// before this returns; the remote mirror happens in the background.
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var req services.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Orders.Create(&req)
	if err != nil {
		if errors.Is(err, services.ErrOpenOrderExists) {
			utils.RespondError(c, http.StatusConflict, err)
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Order %s created on table %s", order.ID, order.TableID)
	utils.RespondJSON(c, http.StatusCreated, "Order created", order)
}

// UpdateOrder is the send-to-KOT path: new or changed line items plus
// whichever monetary header fields the renderer recomputed.
func (oc *OrderController) UpdateOrder(c *gin.Context) {
	var req services.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Orders.Update(c.Param("order_id"), &req)
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			utils.RespondError(c, http.StatusNotFound, err)
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Order updated", order)
}

func (oc *OrderController) UpdateItemStatus(c *gin.Context) {
	var req services.ItemStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Orders.UpdateItemStatus(c.Param("order_id"), c.Param("menu_item_id"), &req)
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			utils.RespondError(c, http.StatusNotFound, err)
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Item status updated", order)
}

func (oc *OrderController) CloseOrder(c *gin.Context) {
	var req services.CloseBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Orders.Close(c.Param("order_id"), &req)
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			utils.RespondError(c, http.StatusNotFound, err)
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Order %s closed", order.ID)
	utils.RespondJSON(c, http.StatusOK, "Order closed", order)
}

/* ----------------------------------
   LOCAL READS
----------------------------------- */

func (oc *OrderController) GetAllOrders(c *gin.Context) {
	orders, err := oc.Orders.List()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

func (oc *OrderController) GetOrderByID(c *gin.Context) {
	order, err := oc.Orders.GetByID(c.Param("order_id"))
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			utils.RespondError(c, http.StatusNotFound, err)
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

// GetOrderByTable answers "what is on this table right now". Null data
// means the table is vacant.
func (oc *OrderController) GetOrderByTable(c *gin.Context) {
	order, err := oc.Orders.GetByTable(c.Param("table_id"))
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if order == nil {
		utils.RespondJSON(c, http.StatusOK, "No open order for table", nil)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Open order for table", order)
}
